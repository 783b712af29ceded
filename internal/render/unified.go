package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/nbreview/nbreview/internal/align"
)

type diffLine struct {
	tag  byte // ' ', '+', '-'
	text string
}

// unifiedLines flattens a pairwise alignment into unified-diff order. Within a run of differences, all removed lines come before all added lines.
func unifiedLines(la align.LineAlignment) []diffLine {
	var out, minus, plus []diffLine
	flush := func() {
		out = append(out, minus...)
		out = append(out, plus...)
		minus, plus = minus[:0], plus[:0]
	}

	for p := 0; p <= len(la.BaseRows); p++ {
		for _, ins := range la.InsertsAt[p] {
			plus = append(plus, diffLine{tag: '+', text: ins.Text})
		}
		if p == len(la.BaseRows) {
			break
		}
		r := la.BaseRows[p]
		switch r.Status {
		case align.StatusEqual:
			flush()
			out = append(out, diffLine{tag: ' ', text: r.BaseText})
		case align.StatusChange:
			minus = append(minus, diffLine{tag: '-', text: r.BaseText})
			plus = append(plus, diffLine{tag: '+', text: r.Text})
		case align.StatusDelete:
			minus = append(minus, diffLine{tag: '-', text: r.BaseText})
		}
	}
	flush()
	return out
}

// Unified writes la as a unified diff from fromName (the base) to toName (the variant), with contextSize unchanged lines around each change. Two changes
// separated by at most 2*contextSize unchanged lines share a hunk. Nothing but the file headers is written when the sides are identical.
func Unified(w io.Writer, la align.LineAlignment, fromName, toName string, contextSize int, color bool) error {
	if contextSize < 0 {
		contextSize = 0
	}
	p := NewPalette(color)
	lines := unifiedLines(la)

	// oldBefore[k] and newBefore[k] count the old and new lines preceding lines[k].
	oldBefore := make([]int, len(lines)+1)
	newBefore := make([]int, len(lines)+1)
	for k, l := range lines {
		oldBefore[k+1], newBefore[k+1] = oldBefore[k], newBefore[k]
		if l.tag != '+' {
			oldBefore[k+1]++
		}
		if l.tag != '-' {
			newBefore[k+1]++
		}
	}

	var b strings.Builder
	b.WriteString(p.render(0, MarkHeader, "--- "+fromName) + "\n")
	b.WriteString(p.render(0, MarkHeader, "+++ "+toName) + "\n")

	i := 0
	for i < len(lines) {
		if lines[i].tag == ' ' {
			i++
			continue
		}

		// Extend over changes separated by short runs of context.
		lastChange := i
		for j := i + 1; j < len(lines); j++ {
			if lines[j].tag != ' ' {
				lastChange = j
				continue
			}
			if j-lastChange > 2*contextSize {
				break
			}
		}

		start := max(i-contextSize, 0)
		end := min(lastChange+contextSize+1, len(lines))

		oldCount := oldBefore[end] - oldBefore[start]
		newCount := newBefore[end] - newBefore[start]
		b.WriteString(p.render(0, MarkMuted, fmt.Sprintf("@@ -%s +%s @@", hunkRange(oldBefore[start], oldCount), hunkRange(newBefore[start], newCount))) + "\n")

		for _, l := range lines[start:end] {
			text := string(l.tag) + l.text
			switch l.tag {
			case '-':
				text = p.render(0, MarkDelete, text)
			case '+':
				text = p.render(0, MarkInsert, text)
			}
			b.WriteString(text + "\n")
		}
		i = end
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// hunkRange formats one side of a hunk header. An empty side names the line before the hunk, as GNU diff does.
func hunkRange(before, count int) string {
	if count == 0 {
		return fmt.Sprintf("%d,0", before)
	}
	return fmt.Sprintf("%d,%d", before+1, count)
}
