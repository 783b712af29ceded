package align

import "fmt"

// ColumnStatus is the status of one column of a ThreeWayRow.
type ColumnStatus int

// Column statuses.
const (
	ColumnEmpty ColumnStatus = iota
	ColumnEqual
	ColumnInsert
	ColumnDelete
	ColumnChange
)

var columnStatusNames = [...]string{
	ColumnEmpty:  "empty",
	ColumnEqual:  "equal",
	ColumnInsert: "insert",
	ColumnDelete: "delete",
	ColumnChange: "change",
}

func (s ColumnStatus) String() string {
	if s < 0 || int(s) >= len(columnStatusNames) {
		return fmt.Sprintf("ColumnStatus(%d)", int(s))
	}
	return columnStatusNames[s]
}

func (s ColumnStatus) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(columnStatusNames) {
		return nil, fmt.Errorf("align: invalid column status %d", int(s))
	}
	return []byte(columnStatusNames[s]), nil
}

func (s *ColumnStatus) UnmarshalText(b []byte) error {
	for i, name := range columnStatusNames {
		if name == string(b) {
			*s = ColumnStatus(i)
			return nil
		}
	}
	return fmt.Errorf("align: unknown column status %q", string(b))
}

// Column is one side (base, B, or C) of a ThreeWayRow. When Present is false, Text is "" and LineNumber is 0.
type Column struct {
	Present    bool         `json:"present"`
	LineNumber int          `json:"lineNumber,omitempty"`
	Text       string       `json:"text,omitempty"`
	Status     ColumnStatus `json:"status"`
}

// ThreeWayRow is one synchronized visual row of a three-way comparison: either a base line with its two counterparts, or one zipped pair of insertions at Position.
type ThreeWayRow struct {
	Position  int    `json:"position"`  // base position: the base line index, or the insertion anchor
	Insertion bool   `json:"insertion"` // true for rows built from insertion batches; Base is then empty
	Base      Column `json:"base"`
	B         Column `json:"b"`
	C         Column `json:"c"`
}

// Reconcile aligns variantB and variantC against base independently and merges the two alignments into one row stream. B and C are never compared to each other.
func Reconcile(base, variantB, variantC []string) []ThreeWayRow {
	return ReconcileAlignments(base, AlignLines(base, variantB), AlignLines(base, variantC))
}

// ReconcileAlignments merges ab (base vs B) and ac (base vs C), which must both be alignments against base.
//
// For each base position p in 0..len(base): insertions from both sides at p are zipped index by index (the shorter side padded with ColumnEmpty), then, if p < len(base),
// one row for base line p. The base column of that row is ColumnEqual only if both B and C are ColumnEqual; any difference in either variant marks it ColumnChange.
func ReconcileAlignments(base []string, ab, ac LineAlignment) []ThreeWayRow {
	if len(ab.BaseRows) != len(base) || len(ac.BaseRows) != len(base) {
		panic(fmt.Errorf("ReconcileAlignments: alignments have %d and %d rows for %d base lines", len(ab.BaseRows), len(ac.BaseRows), len(base)))
	}

	rows := make([]ThreeWayRow, 0, len(base))
	for p := 0; p <= len(base); p++ {
		insB, insC := ab.InsertsAt[p], ac.InsertsAt[p]
		for k := 0; k < max(len(insB), len(insC)); k++ {
			rows = append(rows, ThreeWayRow{
				Position:  p,
				Insertion: true,
				Base:      Column{Status: ColumnEmpty},
				B:         insertionColumn(insB, k),
				C:         insertionColumn(insC, k),
			})
		}
		if p == len(base) {
			break
		}

		baseText := base[p]
		row := ThreeWayRow{
			Position: p,
			Base:     Column{Present: true, LineNumber: p + 1, Text: baseText},
			B:        variantColumn(baseText, ab.BaseRows[p]),
			C:        variantColumn(baseText, ac.BaseRows[p]),
		}
		if row.B.Status == ColumnEqual && row.C.Status == ColumnEqual {
			row.Base.Status = ColumnEqual
		} else {
			row.Base.Status = ColumnChange
		}
		rows = append(rows, row)
	}
	return rows
}

func insertionColumn(batch []InsertedLine, k int) Column {
	if k >= len(batch) {
		return Column{Status: resolveCellStatus(nil, nil, true)}
	}
	text := batch[k].Text
	return Column{
		Present:    true,
		LineNumber: batch[k].LineNumber,
		Text:       text,
		Status:     resolveCellStatus(nil, &text, true),
	}
}

func variantColumn(baseText string, r BaseRow) Column {
	if !r.HasVariant() {
		return Column{Status: resolveCellStatus(&baseText, nil, false)}
	}
	text := r.Text
	return Column{
		Present:    true,
		LineNumber: r.LineNumber,
		Text:       text,
		Status:     resolveCellStatus(&baseText, &text, false),
	}
}

// resolveCellStatus computes one column's status from the base text and the variant's aligned text (nil means absent).
func resolveCellStatus(baseText, variantText *string, insertion bool) ColumnStatus {
	if insertion {
		if variantText != nil {
			return ColumnInsert
		}
		return ColumnEmpty
	}
	switch {
	case variantText == nil:
		return ColumnDelete
	case baseText == nil:
		return ColumnInsert
	case *baseText == *variantText:
		return ColumnEqual
	default:
		return ColumnChange
	}
}
