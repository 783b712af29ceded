package compare

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nbreview/nbreview/internal/align"
)

func TestMemo_AlignLines(t *testing.T) {
	m := NewMemo(0)
	base := []string{"a", "b", "c"}
	variant := []string{"a", "x", "c", "d"}

	first := m.AlignLines(base, variant)
	second := m.AlignLines(base, variant)

	assert.Equal(t, align.AlignLines(base, variant), first)
	assert.Equal(t, first, second)
	hits, misses := m.Stats()
	assert.EqualValues(t, 1, hits)
	assert.EqualValues(t, 1, misses)

	other := m.AlignLines(variant, base)
	assert.Equal(t, align.AlignLines(variant, base), other)
	_, misses = m.Stats()
	assert.EqualValues(t, 2, misses)
}

func TestMemo_AlignCells(t *testing.T) {
	m := NewMemo(0)
	base := []align.Cell{{Key: "a", Position: 0}, {Key: "b", Position: 1}}
	other := []align.Cell{{Key: "b", Position: 0}, {Key: "c", Position: 1}}

	assert.Equal(t, align.AlignCells(base, other), m.AlignCells(base, other))
	assert.Equal(t, align.AlignCells(base, other), m.AlignCells(base, other))

	hits, misses := m.Stats()
	assert.EqualValues(t, 1, hits)
	assert.EqualValues(t, 1, misses)
}

func TestMemo_ResetsWhenFull(t *testing.T) {
	m := NewMemo(2)
	inputs := [][]string{{"a"}, {"b"}, {"c"}, {"a"}}

	for _, in := range inputs {
		assert.Equal(t, align.AlignLines(in, nil), m.AlignLines(in, nil))
	}

	// {"a"} was evicted by the reset when {"c"} was stored.
	hits, misses := m.Stats()
	assert.EqualValues(t, 0, hits)
	assert.EqualValues(t, 4, misses)
	assert.LessOrEqual(t, m.entries, 2)
}

func TestMemo_Concurrent(t *testing.T) {
	m := NewMemo(0)
	base := []string{"x", "y", "z"}
	variant := []string{"x", "z", "w"}
	want := align.AlignLines(base, variant)

	var wg sync.WaitGroup
	results := make([]align.LineAlignment, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = m.AlignLines(base, variant)
		}()
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
	hits, misses := m.Stats()
	assert.EqualValues(t, len(results), hits+misses)
}
