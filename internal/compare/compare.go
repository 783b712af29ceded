// Package compare compares two or three notebooks cell by cell and line by line, anchored to one notebook chosen as the base.
//
// Cells are first matched by identity key (align.AlignCells, once per non-base notebook). The resulting cell rows are synchronized the same way align.Reconcile
// synchronizes lines: at each base position, inserted cells from the other notebooks are zipped into shared rows, then the base cell is emitted with its
// counterparts. Each row's cells are then aligned line by line: pairwise for two notebooks, with align.ReconcileAlignments for three.
package compare

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nbreview/nbreview/internal/align"
	"github.com/nbreview/nbreview/internal/notebook"
	"github.com/nbreview/nbreview/internal/simplelogger"
)

var (
	// ErrBadRequest is returned for comparisons that are malformed (wrong notebook count, base out of range).
	ErrBadRequest = errors.New("invalid comparison")

	// ErrTooLarge is returned when a notebook has more cells than Limits.MaxCells.
	ErrTooLarge = errors.New("comparison too large")
)

// Limits bound the work of a comparison. Alignment is quadratic in the number of cells and lines, so integrators should keep these set. Zero means unlimited.
type Limits struct {
	MaxCells    int // max cells per notebook
	MaxLines    int // cells with more lines are not line-aligned (their rows are marked Skipped)
	Parallelism int // max cell rows aligned concurrently; <= 0 means GOMAXPROCS
}

// DefaultLimits are the limits used when none are configured.
var DefaultLimits = Limits{MaxCells: 500, MaxLines: 2000}

// Comparer compares notebooks. The zero value is usable; set Memo to share results across comparisons.
type Comparer struct {
	Limits Limits
	Memo   *Memo // optional
}

// New returns a Comparer with limits and a fresh Memo.
func New(limits Limits) *Comparer {
	return &Comparer{Limits: limits, Memo: NewMemo(0)}
}

// Compare compares notebooks (two or three) anchored to notebooks[base].
//
// The result is deterministic for equal inputs except for Report.ID. Compare returns ctx's error if ctx is canceled before all rows are aligned.
func (c *Comparer) Compare(ctx context.Context, notebooks []*notebook.Notebook, base int) (*Report, error) {
	defer simplelogger.Since(time.Now(), "compare: %d notebooks", len(notebooks))

	if len(notebooks) < 2 || len(notebooks) > 3 {
		return nil, fmt.Errorf("%w: need 2 or 3 notebooks, got %d", ErrBadRequest, len(notebooks))
	}
	if base < 0 || base >= len(notebooks) {
		return nil, fmt.Errorf("%w: base %d out of range [0, %d)", ErrBadRequest, base, len(notebooks))
	}
	for i, nb := range notebooks {
		if nb == nil {
			return nil, fmt.Errorf("%w: notebook %d is nil", ErrBadRequest, i)
		}
		if c.Limits.MaxCells > 0 && len(nb.Cells) > c.Limits.MaxCells {
			return nil, fmt.Errorf("%w: %s has %d cells (max %d)", ErrTooLarge, nb.Path, len(nb.Cells), c.Limits.MaxCells)
		}
	}

	memo := c.Memo
	if memo == nil {
		memo = NewMemo(0)
	}

	report := &Report{ID: uuid.NewString(), Base: base}
	engineCells := make([][]align.Cell, len(notebooks))
	for i, nb := range notebooks {
		engineCells[i] = nb.EngineCells()
	}

	others := make([]int, 0, 2)
	for i := range notebooks {
		if i != base {
			others = append(others, i)
		}
	}

	roles := map[int]string{base: "base"}
	for k, i := range others {
		roles[i] = string(rune('B' + k))
	}
	for i, nb := range notebooks {
		info := NotebookInfo{
			Path:      nb.Path,
			Role:      roles[i],
			Language:  nb.Language,
			Cells:     len(nb.Cells),
			Described: nb.Described(),
		}
		if i != base {
			info.MissingSteps, info.ExtraSteps = notebook.KeyDiff(engineCells[base], engineCells[i])
		}
		report.Notebooks = append(report.Notebooks, info)
		report.Warnings = append(report.Warnings, keyWarnings(nb, engineCells[i])...)
	}

	alignments := make([]align.CellAlignment, len(others))
	for k, i := range others {
		alignments[k] = memo.AlignCells(engineCells[base], engineCells[i])
	}
	rows, cells := syncRows(notebooks, base, others, alignments)

	par := c.Limits.Parallelism
	if par <= 0 {
		par = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(par)
	for i := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c.alignRow(memo, &rows[i], cells[i], base, others)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Rows = rows
	report.summarize()

	hits, misses := memo.Stats()
	simplelogger.Log("compare: %d rows, memo hits=%d misses=%d", len(rows), hits, misses)
	return report, nil
}

// syncRows builds the cell rows (without line alignment) and, parallel to them, the notebook cells each row compares.
func syncRows(notebooks []*notebook.Notebook, base int, others []int, alignments []align.CellAlignment) ([]CellRow, [][]notebook.Cell) {
	var rows []CellRow
	var cells [][]notebook.Cell

	add := func(row CellRow, rowCells []notebook.Cell) {
		for i, nc := range rowCells {
			if nc != nil {
				row.Cells[i] = cellRef(nc)
			}
		}
		rows = append(rows, row)
		cells = append(cells, rowCells)
	}

	baseCells := alignments[0].Base
	for p := 0; p <= len(baseCells); p++ {
		zipped := 0
		for _, ca := range alignments {
			zipped = max(zipped, len(ca.InsertsAt[p]))
		}
		for z := 0; z < zipped; z++ {
			rowCells := make([]notebook.Cell, len(notebooks))
			for k, ca := range alignments {
				if ins := ca.InsertsAt[p]; z < len(ins) {
					rowCells[others[k]] = notebooks[others[k]].CellAt(ca.Other[ins[z]].Position)
				}
			}
			add(CellRow{Kind: RowInserted, Position: p, Cells: make([]*CellRef, len(notebooks))}, rowCells)
		}
		if p == len(baseCells) {
			break
		}

		rowCells := make([]notebook.Cell, len(notebooks))
		rowCells[base] = notebooks[base].CellAt(baseCells[p].Position)
		kind := RowBaseOnly
		for k, ca := range alignments {
			if cp := ca.Counterpart[p]; cp >= 0 {
				rowCells[others[k]] = notebooks[others[k]].CellAt(ca.Other[cp].Position)
				kind = RowMatched
			}
		}
		add(CellRow{Kind: kind, Position: p, Cells: make([]*CellRef, len(notebooks))}, rowCells)
	}
	return rows, cells
}

func (c *Comparer) alignRow(memo *Memo, row *CellRow, rowCells []notebook.Cell, base int, others []int) {
	if c.Limits.MaxLines > 0 {
		for _, ref := range row.Cells {
			if ref != nil && ref.LineCount > c.Limits.MaxLines {
				row.Skipped = true
			}
		}
	}
	if row.Skipped {
		row.Changed = row.Kind != RowMatched || !sameSources(rowCells, base, others)
		simplelogger.Log("compare: skipped row at base position %d: cell exceeds %d lines", row.Position, c.Limits.MaxLines)
		return
	}

	seq := func(i int) []string {
		if rowCells[i] == nil {
			return nil
		}
		return notebook.Sequence(rowCells[i])
	}
	baseSeq := seq(base)

	identical := true
	pairwise := make([]align.LineAlignment, len(others))
	for k, i := range others {
		pairwise[k] = memo.AlignLines(baseSeq, seq(i))
		identical = identical && pairwise[k].Stats().Identical()
	}
	if len(others) == 1 {
		row.Lines = &pairwise[0]
	} else {
		row.ThreeWay = align.ReconcileAlignments(baseSeq, pairwise[0], pairwise[1])
	}
	row.Changed = row.Kind != RowMatched || !identical
}

func sameSources(rowCells []notebook.Cell, base int, others []int) bool {
	for _, i := range others {
		if rowCells[i] == nil || rowCells[base] == nil {
			return false
		}
		if rowCells[i].Common().Source != rowCells[base].Common().Source {
			return false
		}
	}
	return true
}

func cellRef(c notebook.Cell) *CellRef {
	cc := c.Common()
	return &CellRef{
		Index:     cc.Index,
		Key:       notebook.Key(c),
		Kind:      c.Kind(),
		LineCount: align.LineCount(cc.Source),
	}
}

func keyWarnings(nb *notebook.Notebook, cells []align.Cell) []string {
	var warnings []string
	if dups := notebook.DuplicateKeys(cells); dups.Cardinality() > 0 {
		warnings = append(warnings, fmt.Sprintf("%s: duplicate cell descriptions are matched ambiguously: %s", nb.Path, strings.Join(notebook.SortedKeys(dups), ", ")))
	}
	if len(nb.Cells) > 0 && nb.Described() == 0 {
		warnings = append(warnings, fmt.Sprintf("%s: no cell descriptions; cells are matched by position", nb.Path))
	}
	return warnings
}
