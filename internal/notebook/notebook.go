// Package notebook imports Jupyter notebooks (and py:percent scripts) into normalized cells for comparison.
//
// Cells are a closed sum type (CodeCell, MarkdownCell, RawCell) resolved once at import, so downstream code never deals with optional or loosely typed fields.
// Every cell carries a Description: a human-readable label that identifies the pedagogical step the cell belongs to, or "" when none can be found. See Describe.
package notebook

import (
	"errors"

	"github.com/nbreview/nbreview/internal/align"
)

// ErrNotNotebook is returned (wrapped) when input cannot be read as a notebook.
var ErrNotNotebook = errors.New("not a notebook")

// Kind is a cell's type.
type Kind int

// Cell kinds.
const (
	KindCode Kind = iota
	KindMarkdown
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindMarkdown:
		return "markdown"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// MarshalText encodes k by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// CellCommon holds the fields shared by all cell kinds.
type CellCommon struct {
	Index       int    // 0-based position in the notebook
	Source      string // source text, line endings normalized to LF
	Description string // "" when the cell has no description
}

// Cell is one notebook cell. Implementations: CodeCell, MarkdownCell, RawCell.
type Cell interface {
	Kind() Kind
	Common() CellCommon
	isCell()
}

// CodeCell is an executable cell.
type CodeCell struct {
	CellCommon
	ExecutionCount *int // nil if never executed
}

// MarkdownCell is a prose cell.
type MarkdownCell struct {
	CellCommon
}

// RawCell is an unrendered cell, passed through as text.
type RawCell struct {
	CellCommon
}

func (c CodeCell) Kind() Kind             { return KindCode }
func (c CodeCell) Common() CellCommon     { return c.CellCommon }
func (CodeCell) isCell()                  {}
func (c MarkdownCell) Kind() Kind         { return KindMarkdown }
func (c MarkdownCell) Common() CellCommon { return c.CellCommon }
func (MarkdownCell) isCell()              {}
func (c RawCell) Kind() Kind              { return KindRaw }
func (c RawCell) Common() CellCommon      { return c.CellCommon }
func (RawCell) isCell()                   {}

// Notebook is an imported notebook.
type Notebook struct {
	Path     string
	Language string // kernel language, ex: "python"; "" if unknown
	Cells    []Cell
}

// Key returns the identity key of a cell: its description, or a synthetic positional key when it has none.
func Key(c Cell) string {
	cc := c.Common()
	if cc.Description != "" {
		return cc.Description
	}
	return align.SyntheticKey(cc.Index)
}

// Sequence returns a cell's source split into lines.
func Sequence(c Cell) []string {
	return align.SplitLines(c.Common().Source)
}

// EngineCells returns nb's cells in the shape the cell aligner consumes.
func (nb *Notebook) EngineCells() []align.Cell {
	out := make([]align.Cell, len(nb.Cells))
	for i, c := range nb.Cells {
		out[i] = align.Cell{Key: Key(c), Position: c.Common().Index}
	}
	return out
}

// CellAt returns the cell whose Index is index, or nil.
func (nb *Notebook) CellAt(index int) Cell {
	if index >= 0 && index < len(nb.Cells) && nb.Cells[index].Common().Index == index {
		return nb.Cells[index]
	}
	for _, c := range nb.Cells {
		if c.Common().Index == index {
			return c
		}
	}
	return nil
}

// Described returns the number of cells with a description.
func (nb *Notebook) Described() int {
	n := 0
	for _, c := range nb.Cells {
		if c.Common().Description != "" {
			n++
		}
	}
	return n
}

// CountKinds returns the number of cells of each kind.
func (nb *Notebook) CountKinds() map[Kind]int {
	counts := map[Kind]int{}
	for _, c := range nb.Cells {
		counts[c.Kind()]++
	}
	return counts
}
