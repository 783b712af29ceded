package align

import (
	"fmt"
	"sort"
	"strconv"
)

// syntheticKeyPrefix prefixes keys of cells that have no description.
const syntheticKeyPrefix = "__idx_"

// SyntheticKey is the identity key of a cell with no human-readable description. It only matches the cell at the same position in the other notebook.
func SyntheticKey(position int) string {
	return syntheticKeyPrefix + strconv.Itoa(position)
}

// IsSyntheticKey reports whether key was produced by SyntheticKey.
func IsSyntheticKey(key string) bool {
	if len(key) <= len(syntheticKeyPrefix) || key[:len(syntheticKeyPrefix)] != syntheticKeyPrefix {
		return false
	}
	_, err := strconv.Atoi(key[len(syntheticKeyPrefix):])
	return err == nil
}

// Cell is the engine's view of a notebook cell: an identity key and its position in the notebook. Cells in different notebooks with equal keys are the same logical
// cell, whatever their contents.
type Cell struct {
	Key      string `json:"key"`
	Position int    `json:"position"`
}

// CellMatch pairs base cell BasePos with other cell OtherPos. Both are indices into CellAlignment.Base and CellAlignment.Other.
type CellMatch struct {
	BasePos  int `json:"basePos"`
	OtherPos int `json:"otherPos"`
}

// CellAlignment is a base-anchored alignment of two cell lists.
//
// Base and Other are the inputs sorted by Position; every index in the alignment refers to them. Counterpart[i] is the index of the Other cell matched to Base[i],
// or -1. InsertsAt[p] lists, in order, the Other cells with no counterpart that are shown just before Base[p] (p == len(Base) for a trailing run).
//
// Invariants:
//   - Matches are strictly increasing in both BasePos and OtherPos.
//   - Walking p = 0..len(Base), emitting InsertsAt[p] then Counterpart[p] (if not -1), yields 0..len(Other)-1 in order.
type CellAlignment struct {
	Base        []Cell        `json:"base"`
	Other       []Cell        `json:"other"`
	Matches     []CellMatch   `json:"matches"`
	Counterpart []int         `json:"counterpart"`
	InsertsAt   map[int][]int `json:"insertsAt,omitempty"`
}

// AlignCells aligns other against base by key with a longest-common-subsequence over keys. Inputs are sorted by Position first (callers need not pre-sort).
//
// Backtracking takes the diagonal whenever the keys at (i-1, j-1) are equal, otherwise it moves toward the larger of dp[i-1][j] and dp[i][j-1], preferring to
// consume a base cell on ties. Duplicate keys within one list are allowed; they simply compete for the same matches.
func AlignCells(base, other []Cell) CellAlignment {
	b := sortedCells(base)
	o := sortedCells(other)
	m, n := len(b), len(o)

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if b[i-1].Key == o[j-1].Key {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	var matches []CellMatch
	for i, j := m, n; i > 0 && j > 0; {
		switch {
		case b[i-1].Key == o[j-1].Key:
			matches = append(matches, CellMatch{BasePos: i - 1, OtherPos: j - 1})
			i--
			j--
		case dp[i-1][j] >= dp[i][j-1]:
			i--
		default:
			j--
		}
	}
	for l, r := 0, len(matches)-1; l < r; l, r = l+1, r-1 {
		matches[l], matches[r] = matches[r], matches[l]
	}

	ca := CellAlignment{
		Base:        b,
		Other:       o,
		Matches:     matches,
		Counterpart: make([]int, m),
	}
	for i := range ca.Counterpart {
		ca.Counterpart[i] = -1
	}

	next := 0 // next other index not yet placed
	anchor := func(p, upTo int) {
		for ; next < upTo; next++ {
			if ca.InsertsAt == nil {
				ca.InsertsAt = map[int][]int{}
			}
			ca.InsertsAt[p] = append(ca.InsertsAt[p], next)
		}
	}
	for _, mt := range matches {
		anchor(mt.BasePos, mt.OtherPos)
		ca.Counterpart[mt.BasePos] = mt.OtherPos
		next = mt.OtherPos + 1
	}
	anchor(m, n)

	if err := ca.validate(); err != nil {
		panic(fmt.Errorf("AlignCells: validate failed with %v", err))
	}
	return ca
}

// OtherOrder returns Other indices in walk order: InsertsAt[p] then Counterpart[p], for p = 0..len(Base).
func (ca CellAlignment) OtherOrder() []int {
	var out []int
	for p := 0; p <= len(ca.Base); p++ {
		out = append(out, ca.InsertsAt[p]...)
		if p < len(ca.Base) && ca.Counterpart[p] >= 0 {
			out = append(out, ca.Counterpart[p])
		}
	}
	return out
}

// Inserted returns the number of Other cells with no counterpart.
func (ca CellAlignment) Inserted() int {
	n := 0
	for _, idxs := range ca.InsertsAt {
		n += len(idxs)
	}
	return n
}

func (ca CellAlignment) validate() error {
	for k, mt := range ca.Matches {
		if ca.Base[mt.BasePos].Key != ca.Other[mt.OtherPos].Key {
			return fmt.Errorf("match[%d]: keys differ", k)
		}
		if k > 0 {
			prev := ca.Matches[k-1]
			if mt.BasePos <= prev.BasePos || mt.OtherPos <= prev.OtherPos {
				return fmt.Errorf("match[%d]: not strictly increasing", k)
			}
		}
	}
	for i, idx := range ca.OtherOrder() {
		if idx != i {
			return fmt.Errorf("walk order position %d holds other cell %d", i, idx)
		}
	}
	if got := len(ca.Matches) + ca.Inserted(); got != len(ca.Other) {
		return fmt.Errorf("alignment places %d of %d other cells", got, len(ca.Other))
	}
	return nil
}

func sortedCells(cells []Cell) []Cell {
	out := make([]Cell, len(cells))
	copy(out, cells)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}
