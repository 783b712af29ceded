package compare

import (
	"fmt"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/mitchellh/hashstructure/v2"
	"golang.org/x/sync/singleflight"

	"github.com/nbreview/nbreview/internal/align"
)

// DefaultMemoEntries is the default capacity of a Memo.
const DefaultMemoEntries = 4096

// Memo caches alignment results by input. Alignment is pure, so a cached result is always valid for equal inputs. Concurrent requests for the same inputs are
// collapsed into one computation.
//
// Results are shared between callers and must be treated as read-only.
type Memo struct {
	maxEntries int

	mu      sync.Mutex
	lines   map[uint64][]lineEntry
	cells   map[uint64][]cellEntry
	entries int

	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

type lineEntry struct {
	base, variant []string
	result        align.LineAlignment
}

type cellEntry struct {
	base, other []align.Cell
	result      align.CellAlignment
}

// NewMemo returns a Memo holding at most maxEntries results (DefaultMemoEntries if maxEntries <= 0). When full, the whole cache is dropped.
func NewMemo(maxEntries int) *Memo {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoEntries
	}
	return &Memo{
		maxEntries: maxEntries,
		lines:      map[uint64][]lineEntry{},
		cells:      map[uint64][]cellEntry{},
	}
}

// AlignLines is align.AlignLines, memoized.
func (m *Memo) AlignLines(base, variant []string) align.LineAlignment {
	h := hashOf(struct{ Base, Variant []string }{base, variant})

	if la, ok := m.lookupLines(h, base, variant); ok {
		m.hits.Add(1)
		return la
	}

	v, _, _ := m.group.Do("l"+strconv.FormatUint(h, 16), func() (any, error) {
		la := align.AlignLines(base, variant)
		m.storeLines(h, lineEntry{base: base, variant: variant, result: la})
		return lineEntry{base: base, variant: variant, result: la}, nil
	})
	m.misses.Add(1)

	e := v.(lineEntry)
	if !slices.Equal(e.base, base) || !slices.Equal(e.variant, variant) {
		// A colliding key shared a flight with different inputs.
		return align.AlignLines(base, variant)
	}
	return e.result
}

// AlignCells is align.AlignCells, memoized.
func (m *Memo) AlignCells(base, other []align.Cell) align.CellAlignment {
	h := hashOf(struct{ Base, Other []align.Cell }{base, other})

	if ca, ok := m.lookupCells(h, base, other); ok {
		m.hits.Add(1)
		return ca
	}

	v, _, _ := m.group.Do("c"+strconv.FormatUint(h, 16), func() (any, error) {
		ca := align.AlignCells(base, other)
		m.storeCells(h, cellEntry{base: base, other: other, result: ca})
		return cellEntry{base: base, other: other, result: ca}, nil
	})
	m.misses.Add(1)

	e := v.(cellEntry)
	if !slices.Equal(e.base, base) || !slices.Equal(e.other, other) {
		return align.AlignCells(base, other)
	}
	return e.result
}

// Stats returns the number of cache hits and misses so far.
func (m *Memo) Stats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}

func (m *Memo) lookupLines(h uint64, base, variant []string) (align.LineAlignment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.lines[h] {
		if slices.Equal(e.base, base) && slices.Equal(e.variant, variant) {
			return e.result, true
		}
	}
	return align.LineAlignment{}, false
}

func (m *Memo) lookupCells(h uint64, base, other []align.Cell) (align.CellAlignment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.cells[h] {
		if slices.Equal(e.base, base) && slices.Equal(e.other, other) {
			return e.result, true
		}
	}
	return align.CellAlignment{}, false
}

func (m *Memo) storeLines(h uint64, e lineEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.makeRoomLocked()
	m.lines[h] = append(m.lines[h], e)
	m.entries++
}

func (m *Memo) storeCells(h uint64, e cellEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.makeRoomLocked()
	m.cells[h] = append(m.cells[h], e)
	m.entries++
}

func (m *Memo) makeRoomLocked() {
	if m.entries < m.maxEntries {
		return
	}
	m.lines = map[uint64][]lineEntry{}
	m.cells = map[uint64][]cellEntry{}
	m.entries = 0
}

// hashOf hashes v with hashstructure. Inputs are plain strings, ints and slices, which hashstructure always supports.
func hashOf(v any) uint64 {
	h, err := hashstructure.Hash(v, hashstructure.FormatV2, nil)
	if err != nil {
		panic(fmt.Errorf("compare: hash: %w", err))
	}
	return h
}
