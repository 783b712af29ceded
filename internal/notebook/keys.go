package notebook

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/nbreview/nbreview/internal/align"
)

// DuplicateKeys returns the keys that more than one cell uses. Duplicates are legal for the aligner but make matching ambiguous: equal keys compete for the
// same counterpart.
func DuplicateKeys(cells []align.Cell) mapset.Set[string] {
	seen := mapset.NewThreadUnsafeSet[string]()
	dups := mapset.NewThreadUnsafeSet[string]()
	for _, c := range cells {
		if !seen.Add(c.Key) {
			dups.Add(c.Key)
		}
	}
	return dups
}

// KeyDiff returns the descriptive (non-synthetic) keys present only in base and only in other, each sorted.
func KeyDiff(base, other []align.Cell) (onlyBase, onlyOther []string) {
	b := describedKeys(base)
	o := describedKeys(other)
	onlyBase = b.Difference(o).ToSlice()
	onlyOther = o.Difference(b).ToSlice()
	sort.Strings(onlyBase)
	sort.Strings(onlyOther)
	return onlyBase, onlyOther
}

// SortedKeys returns the elements of s in sorted order.
func SortedKeys(s mapset.Set[string]) []string {
	out := s.ToSlice()
	sort.Strings(out)
	return out
}

func describedKeys(cells []align.Cell) mapset.Set[string] {
	s := mapset.NewThreadUnsafeSet[string]()
	for _, c := range cells {
		if !align.IsSyntheticKey(c.Key) {
			s.Add(c.Key)
		}
	}
	return s
}
