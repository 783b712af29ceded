package align

import (
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type chunkOp int

const (
	chunkCommon chunkOp = iota
	chunkRemoved
	chunkAdded
)

// chunk is a maximal run of lines with the same op, in document order.
type chunk struct {
	op    chunkOp
	lines []string
}

// chunkLines decomposes variant against base into common/removed/added runs. Removed runs always precede an adjacent added run.
func chunkLines(base, variant []string) []chunk {
	if len(base) == 0 && len(variant) == 0 {
		return nil
	}

	enc := newLineEncoder()
	rBase := enc.encode(base)
	rVariant := enc.encode(variant)

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // No deadline: results must be minimal and deterministic.
	diffs := dmp.DiffMainRunes(rBase, rVariant, false)
	diffs = dmp.DiffCleanupMerge(diffs)

	var chunks []chunk
	for _, d := range diffs {
		lines := enc.decode(d.Text)
		if len(lines) == 0 {
			continue
		}
		var op chunkOp
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			op = chunkCommon
		case diffmatchpatch.DiffDelete:
			op = chunkRemoved
		case diffmatchpatch.DiffInsert:
			op = chunkAdded
		}
		if n := len(chunks); n > 0 && chunks[n-1].op == op {
			chunks[n-1].lines = append(chunks[n-1].lines, lines...)
			continue
		}
		chunks = append(chunks, chunk{op: op, lines: lines})
	}
	return chunks
}

// lineEncoder maps each distinct line to one rune so diffmatchpatch can diff whole lines. Rune 0 and the surrogate range are skipped; surrogates would not survive
// the []rune -> string conversion diffmatchpatch performs.
type lineEncoder struct {
	runes map[string]rune
	lines map[rune]string
	next  rune
}

const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
	maxLineRune  = 0x10FFFF
)

func newLineEncoder() *lineEncoder {
	return &lineEncoder{
		runes: map[string]rune{},
		lines: map[rune]string{},
		next:  1,
	}
}

func (e *lineEncoder) encode(lines []string) []rune {
	out := make([]rune, len(lines))
	for i, line := range lines {
		r, ok := e.runes[line]
		if !ok {
			r = e.allocate()
			e.runes[line] = r
			e.lines[r] = line
		}
		out[i] = r
	}
	return out
}

func (e *lineEncoder) allocate() rune {
	r := e.next
	if r >= surrogateMin && r <= surrogateMax {
		r = surrogateMax + 1
	}
	if r > maxLineRune {
		panic(fmt.Errorf("align: more than %d distinct lines", len(e.lines)))
	}
	e.next = r + 1
	return r
}

func (e *lineEncoder) decode(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, len(s))
	for _, r := range s {
		line, ok := e.lines[r]
		if !ok {
			panic(fmt.Errorf("align: diff produced unknown line rune %U", r))
		}
		out = append(out, line)
	}
	return out
}
