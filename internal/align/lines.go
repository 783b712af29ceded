package align

import "fmt"

// AlignLines aligns variant against base. It never fails; either side may be empty:
//   - empty base: no rows, and all of variant is one insertion batch at position 0.
//   - empty variant: one StatusDelete row per base line, no insertions.
//   - identical sequences: all rows StatusEqual, no insertions.
//
// See the package doc for the anchoring rules and invariants.
func AlignLines(base, variant []string) LineAlignment {
	la := LineAlignment{BaseRows: make([]BaseRow, 0, len(base))}

	bi := 0 // index of the next base line to emit
	vn := 0 // last variant line number handed out; shared by rows and insertions

	emit := func(status Status, text string) {
		row := BaseRow{Status: status, BaseText: base[bi]}
		if status != StatusDelete {
			vn++
			row.Text = text
			row.LineNumber = vn
		}
		la.BaseRows = append(la.BaseRows, row)
		bi++
	}
	insert := func(lines []string) {
		if la.InsertsAt == nil {
			la.InsertsAt = map[int][]InsertedLine{}
		}
		for _, line := range lines {
			vn++
			la.InsertsAt[bi] = append(la.InsertsAt[bi], InsertedLine{Text: line, LineNumber: vn})
		}
	}

	chunks := chunkLines(base, variant)
	for i := 0; i < len(chunks); i++ {
		c := chunks[i]
		switch c.op {
		case chunkCommon:
			for _, line := range c.lines {
				emit(StatusEqual, line)
			}
		case chunkAdded:
			insert(c.lines)
		case chunkRemoved:
			if i+1 < len(chunks) && chunks[i+1].op == chunkAdded {
				// Change block: pair positionally, spill the remainder.
				added := chunks[i+1].lines
				n := min(len(c.lines), len(added))
				for k := 0; k < n; k++ {
					emit(StatusChange, added[k])
				}
				for k := n; k < len(c.lines); k++ {
					emit(StatusDelete, "")
				}
				if len(added) > n {
					insert(added[n:])
				}
				i++
				continue
			}
			for range c.lines {
				emit(StatusDelete, "")
			}
		}
	}

	if err := la.validate(base, variant); err != nil {
		panic(fmt.Errorf("AlignLines: validate failed with %v", err))
	}
	return la
}
