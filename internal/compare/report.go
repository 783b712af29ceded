package compare

import (
	"fmt"

	"github.com/nbreview/nbreview/internal/align"
	"github.com/nbreview/nbreview/internal/notebook"
)

// RowKind classifies a CellRow.
type RowKind int

// Row kinds.
const (
	RowMatched  RowKind = iota // the base cell has a counterpart in at least one other notebook
	RowBaseOnly                // the base cell has no counterpart anywhere
	RowInserted                // cells with no base counterpart
)

var rowKindNames = [...]string{
	RowMatched:  "matched",
	RowBaseOnly: "base-only",
	RowInserted: "inserted",
}

func (k RowKind) String() string {
	if k < 0 || int(k) >= len(rowKindNames) {
		return fmt.Sprintf("RowKind(%d)", int(k))
	}
	return rowKindNames[k]
}

func (k RowKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// CellRef identifies one cell of one notebook in a CellRow.
type CellRef struct {
	Index     int           `json:"index"` // cell index in its notebook
	Key       string        `json:"key"`
	Kind      notebook.Kind `json:"kind"`
	LineCount int           `json:"lineCount"`
}

// CellRow is one synchronized row of a comparison: a base cell with its counterparts, or cells inserted at a base position.
//
// Cells is indexed like Report.Notebooks; a nil entry means that notebook has no cell in this row. Exactly one of Lines (two notebooks) and ThreeWay (three notebooks)
// is set, unless Skipped.
type CellRow struct {
	Kind     RowKind    `json:"kind"`
	Position int        `json:"position"` // base cell index, or the insertion anchor for RowInserted
	Cells    []*CellRef `json:"cells"`

	Lines    *align.LineAlignment `json:"lines,omitempty"`
	ThreeWay []align.ThreeWayRow  `json:"threeWay,omitempty"`

	// Skipped is set when a cell in the row exceeds Limits.MaxLines; no line alignment is computed.
	Skipped bool `json:"skipped,omitempty"`

	// Changed reports whether any compared variant differs from the base cell (always true for inserted and base-only rows).
	Changed bool `json:"changed"`
}

// NotebookInfo describes one compared notebook.
type NotebookInfo struct {
	Path      string `json:"path"`
	Role      string `json:"role"` // "base", "B", or "C"
	Language  string `json:"language,omitempty"`
	Cells     int    `json:"cells"`
	Described int    `json:"described"`

	// Described keys present in the base but not here, and here but not in the base. Unset for the base.
	MissingSteps []string `json:"missingSteps,omitempty"`
	ExtraSteps   []string `json:"extraSteps,omitempty"`
}

// Summary counts rows by outcome.
type Summary struct {
	Matched   int `json:"matched"`
	Unchanged int `json:"unchanged"` // matched rows where every counterpart is identical to the base cell
	BaseOnly  int `json:"baseOnly"`
	Inserted  int `json:"inserted"`
	Skipped   int `json:"skipped"`
}

// Report is the result of comparing two or three notebooks. It is plain data; renderers consume it without calling back into the engine.
type Report struct {
	ID        string         `json:"id"`
	Base      int            `json:"base"`
	Notebooks []NotebookInfo `json:"notebooks"`
	Rows      []CellRow      `json:"rows"`
	Warnings  []string       `json:"warnings,omitempty"`
	Summary   Summary        `json:"summary"`
}

// Others returns the indices of the non-base notebooks in request order.
func (r *Report) Others() []int {
	var out []int
	for i := range r.Notebooks {
		if i != r.Base {
			out = append(out, i)
		}
	}
	return out
}

func (r *Report) summarize() {
	var s Summary
	for _, row := range r.Rows {
		switch row.Kind {
		case RowMatched:
			s.Matched++
			if !row.Changed {
				s.Unchanged++
			}
		case RowBaseOnly:
			s.BaseOnly++
		case RowInserted:
			s.Inserted++
		}
		if row.Skipped {
			s.Skipped++
		}
	}
	r.Summary = s
}
