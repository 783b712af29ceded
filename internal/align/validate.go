package align

import "fmt"

// validate checks the LineAlignment invariants against its inputs and returns an error on the first violation.
func (la LineAlignment) validate(base, variant []string) error {
	if len(la.BaseRows) != len(base) {
		return fmt.Errorf("got %d base rows for %d base lines", len(la.BaseRows), len(base))
	}
	for i, r := range la.BaseRows {
		if r.BaseText != base[i] {
			return fmt.Errorf("row[%d]: BaseText %q != base line %q", i, r.BaseText, base[i])
		}
		switch r.Status {
		case StatusEqual:
			if r.Text != r.BaseText {
				return fmt.Errorf("row[%d]: StatusEqual requires Text==BaseText", i)
			}
		case StatusChange:
			if r.LineNumber == 0 {
				return fmt.Errorf("row[%d]: StatusChange requires a variant line number", i)
			}
		case StatusDelete:
			if r.Text != "" || r.LineNumber != 0 {
				return fmt.Errorf("row[%d]: StatusDelete requires no variant line", i)
			}
		default:
			return fmt.Errorf("row[%d]: invalid status %d", i, int(r.Status))
		}
	}
	for p, lines := range la.InsertsAt {
		if p < 0 || p > len(base) {
			return fmt.Errorf("insertion batch at out-of-range position %d", p)
		}
		if len(lines) == 0 {
			return fmt.Errorf("empty insertion batch at position %d", p)
		}
	}

	n := 0
	var err error
	la.walkVariant(func(text string, lineNumber int) {
		if err != nil {
			return
		}
		switch {
		case n >= len(variant):
			err = fmt.Errorf("alignment has more variant lines than the variant (%d)", len(variant))
		case text != variant[n]:
			err = fmt.Errorf("variant line %d: got %q, want %q", n+1, text, variant[n])
		case lineNumber != n+1:
			err = fmt.Errorf("variant line %d: numbered %d", n+1, lineNumber)
		}
		n++
	})
	if err != nil {
		return err
	}
	if n != len(variant) {
		return fmt.Errorf("alignment reconstructs %d of %d variant lines", n, len(variant))
	}
	return nil
}
