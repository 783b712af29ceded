// Package render turns comparison results into terminal text, unified diffs, JSON, or debug dumps.
//
// Renderers only read their inputs. Styling goes through a Palette, so output without color is plain text suitable for golden tests.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/nbreview/nbreview/internal/align"
	"github.com/nbreview/nbreview/internal/compare"
	"github.com/nbreview/nbreview/internal/notebook"
	"github.com/nbreview/nbreview/internal/q/uni"
)

// Defaults for Options.
const (
	DefaultWidth    = 120
	DefaultTabWidth = 4
	minTextWidth    = 8
)

// Options control text rendering.
type Options struct {
	Width         int  // total width in terminal cells; <= 0 means DefaultWidth
	Color         bool // emit ANSI styles
	TabWidth      int  // <= 0 means DefaultTabWidth
	ShowUnchanged bool // print the lines of unchanged cells, not just their header
}

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.TabWidth <= 0 {
		o.TabWidth = DefaultTabWidth
	}
	return o
}

// textWriter writes lines to w, keeping the first write error.
type textWriter struct {
	w    io.Writer
	err  error
	p    Palette
	opts Options
}

func newTextWriter(w io.Writer, opts Options) *textWriter {
	opts = opts.normalized()
	return &textWriter{w: w, p: NewPalette(opts.Color), opts: opts}
}

func (tw *textWriter) println(s string) {
	if tw.err != nil {
		return
	}
	_, tw.err = io.WriteString(tw.w, s+"\n")
}

// side is one column of a line row.
type side struct {
	present bool
	lineNo  int
	marker  byte // ' ', '~', '-', '+'
	text    string
	mark    Mark
}

// textWidth is the width available for line text in each of n columns. A column is "NNNN M text"; columns are joined by " │ ".
func (tw *textWriter) textWidth(n int) int {
	col := (tw.opts.Width - 3*(n-1)) / n
	return max(col-7, minTextWidth)
}

func (tw *textWriter) renderSide(column int, s side, width int, last bool) string {
	num := "    "
	if s.present {
		num = fmt.Sprintf("%4d", s.lineNo)
	}
	text := uni.Sanitize(s.text, tw.opts.TabWidth)
	if last {
		text = uni.Truncate(text, width, nil)
	} else {
		text = uni.Fit(text, width, nil)
	}

	return tw.p.render(column, MarkLineNo, num) + " " + tw.p.render(column, s.mark, string(s.marker)+" "+text)
}

func (tw *textWriter) lineRow(sides []side) {
	width := tw.textWidth(len(sides))
	parts := make([]string, len(sides))
	for i, s := range sides {
		parts[i] = tw.renderSide(i, s, width, i == len(sides)-1)
	}
	line := strings.Join(parts, tw.p.render(0, MarkMuted, " │ "))
	if !tw.p.Color() {
		line = strings.TrimRight(line, " ")
	}
	tw.println(line)
}

// equalMark styles an unchanged line, dimming separator lines.
func equalMark(text string) Mark {
	if notebook.IsSeparatorLine(text) {
		return MarkSeparator
	}
	return MarkEqual
}

// pairSides flattens a pairwise alignment into (base, variant) line rows: insertions at p, then base row p.
func pairSides(la align.LineAlignment) [][]side {
	var rows [][]side
	for p := 0; p <= len(la.BaseRows); p++ {
		for _, ins := range la.InsertsAt[p] {
			rows = append(rows, []side{
				{marker: ' '},
				{present: true, lineNo: ins.LineNumber, marker: '+', text: ins.Text, mark: MarkInsert},
			})
		}
		if p == len(la.BaseRows) {
			break
		}

		r := la.BaseRows[p]
		left := side{present: true, lineNo: p + 1, text: r.BaseText}
		var right side
		switch r.Status {
		case align.StatusEqual:
			left.marker, left.mark = ' ', equalMark(r.BaseText)
			right = side{present: true, lineNo: r.LineNumber, marker: ' ', text: r.Text, mark: left.mark}
		case align.StatusChange:
			left.marker, left.mark = '~', MarkChange
			right = side{present: true, lineNo: r.LineNumber, marker: '~', text: r.Text, mark: MarkChange}
		case align.StatusDelete:
			left.marker, left.mark = '-', MarkDelete
			right = side{marker: ' '}
		}
		rows = append(rows, []side{left, right})
	}
	return rows
}

// columnSide converts one column of a three-way row.
func columnSide(c align.Column) side {
	s := side{present: c.Present, lineNo: c.LineNumber, text: c.Text, marker: ' '}
	switch c.Status {
	case align.ColumnEqual:
		s.mark = equalMark(c.Text)
	case align.ColumnChange:
		s.marker, s.mark = '~', MarkChange
	case align.ColumnInsert:
		s.marker, s.mark = '+', MarkInsert
	case align.ColumnDelete:
		s.marker, s.mark = '-', MarkDelete
	}
	return s
}

func threeWaySides(rows []align.ThreeWayRow) [][]side {
	out := make([][]side, 0, len(rows))
	for _, r := range rows {
		out = append(out, []side{columnSide(r.Base), columnSide(r.B), columnSide(r.C)})
	}
	return out
}

// PairLines writes a side-by-side view of a pairwise alignment: base on the left, variant on the right.
func PairLines(w io.Writer, la align.LineAlignment, opts Options) error {
	tw := newTextWriter(w, opts)
	for _, row := range pairSides(la) {
		tw.lineRow(row)
	}
	return tw.err
}

// ThreeWayLines writes a three-column view (base, B, C) of reconciled rows.
func ThreeWayLines(w io.Writer, rows []align.ThreeWayRow, opts Options) error {
	tw := newTextWriter(w, opts)
	for _, row := range threeWaySides(rows) {
		tw.lineRow(row)
	}
	return tw.err
}

// Text writes a full comparison: notebook titles, warnings, then every cell row with its header and line rows, then a summary.
func Text(w io.Writer, r *compare.Report, opts Options) error {
	tw := newTextWriter(w, opts)
	tw.titles(r)

	for _, row := range r.Rows {
		tw.println("")
		tw.println(tw.p.render(0, MarkHeader, rowHeader(r, row)))

		switch {
		case row.Skipped:
			tw.println(tw.p.render(0, MarkMuted, "  (not aligned: cell exceeds the line limit)"))
			continue
		case row.Kind == compare.RowMatched && !row.Changed && !tw.opts.ShowUnchanged:
			continue
		}

		var lines [][]side
		if row.Lines != nil {
			lines = pairSides(*row.Lines)
		} else {
			lines = threeWaySides(row.ThreeWay)
		}
		for _, l := range lines {
			tw.lineRow(l)
		}
	}

	tw.println("")
	tw.println(summaryLine(r.Summary))
	return tw.err
}

// Outline writes one line per cell row: its marker and the cell in each notebook. No line content is shown.
func Outline(w io.Writer, r *compare.Report, opts Options) error {
	tw := newTextWriter(w, opts)
	tw.titles(r)
	tw.println("")

	n := len(r.Notebooks)
	width := max((tw.opts.Width-2-3*(n-1))/n, minTextWidth)
	for _, row := range r.Rows {
		marker, mark := rowMarker(row)
		parts := make([]string, n)
		for i, ref := range row.Cells {
			text := "-"
			if ref != nil {
				text = fmt.Sprintf("#%d %s", ref.Index, displayKey(ref))
			}
			if i == n-1 {
				parts[i] = uni.Truncate(text, width, nil)
			} else {
				parts[i] = uni.Fit(text, width, nil)
			}
		}
		tw.println(tw.p.render(0, mark, string(marker)+" "+strings.Join(parts, " │ ")))
	}

	tw.println("")
	tw.println(summaryLine(r.Summary))
	return tw.err
}

func (tw *textWriter) titles(r *compare.Report) {
	for i, nb := range r.Notebooks {
		detail := fmt.Sprintf("%d cells, %d described", nb.Cells, nb.Described)
		if len(nb.MissingSteps) > 0 {
			detail += "; missing: " + strings.Join(nb.MissingSteps, ", ")
		}
		if len(nb.ExtraSteps) > 0 {
			detail += "; extra: " + strings.Join(nb.ExtraSteps, ", ")
		}
		tw.println(tw.p.render(i, MarkTitle, fmt.Sprintf("%-4s %s", nb.Role, nb.Path)) + " (" + detail + ")")
	}
	for _, warning := range r.Warnings {
		tw.println(tw.p.render(0, MarkWarning, "warning: ") + warning)
	}
}

func rowMarker(row compare.CellRow) (byte, Mark) {
	switch {
	case row.Kind == compare.RowInserted:
		return '+', MarkInsert
	case row.Kind == compare.RowBaseOnly:
		return '-', MarkDelete
	case row.Changed:
		return '~', MarkChange
	default:
		return ' ', MarkEqual
	}
}

func rowHeader(r *compare.Report, row compare.CellRow) string {
	var names []string
	seen := map[string]bool{}
	for _, ref := range row.Cells {
		if ref == nil {
			continue
		}
		name := displayKey(ref)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	var where []string
	for i, ref := range row.Cells {
		if ref != nil {
			where = append(where, fmt.Sprintf("%s #%d", r.Notebooks[i].Role, ref.Index))
		}
	}

	var state string
	switch {
	case row.Kind == compare.RowInserted:
		state = "inserted"
	case row.Kind == compare.RowBaseOnly:
		state = "only in base"
	case row.Changed:
		state = "changed"
	default:
		state = "unchanged"
	}
	return fmt.Sprintf("── %s ── %s (%s)", strings.Join(names, " / "), state, strings.Join(where, ", "))
}

// displayKey names a cell: its description, or its index and kind when it has none.
func displayKey(ref *compare.CellRef) string {
	if align.IsSyntheticKey(ref.Key) {
		return fmt.Sprintf("%s cell %d", ref.Kind, ref.Index)
	}
	return ref.Key
}

func summaryLine(s compare.Summary) string {
	return fmt.Sprintf("%d matched (%d unchanged), %d only in base, %d inserted, %d not aligned", s.Matched, s.Unchanged, s.BaseOnly, s.Inserted, s.Skipped)
}
