package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignLines_ChangeInMiddle(t *testing.T) {
	la := AlignLines([]string{"a", "b", "c"}, []string{"a", "x", "c"})

	require.Equal(t, []BaseRow{
		{Status: StatusEqual, BaseText: "a", Text: "a", LineNumber: 1},
		{Status: StatusChange, BaseText: "b", Text: "x", LineNumber: 2},
		{Status: StatusEqual, BaseText: "c", Text: "c", LineNumber: 3},
	}, la.BaseRows)
	assert.Empty(t, la.InsertsAt)
}

func TestAlignLines_TrailingInsertion(t *testing.T) {
	la := AlignLines([]string{"a", "b"}, []string{"a", "b", "c", "d"})

	require.Len(t, la.BaseRows, 2)
	assert.Equal(t, StatusEqual, la.BaseRows[0].Status)
	assert.Equal(t, StatusEqual, la.BaseRows[1].Status)
	require.Equal(t, map[int][]InsertedLine{
		2: {{Text: "c", LineNumber: 3}, {Text: "d", LineNumber: 4}},
	}, la.InsertsAt)
}

func TestAlignLines_LeadingInsertion(t *testing.T) {
	la := AlignLines([]string{"b"}, []string{"a", "b"})

	require.Equal(t, []BaseRow{{Status: StatusEqual, BaseText: "b", Text: "b", LineNumber: 2}}, la.BaseRows)
	require.Equal(t, map[int][]InsertedLine{0: {{Text: "a", LineNumber: 1}}}, la.InsertsAt)
}

func TestAlignLines_ChangeBlockAddedLonger(t *testing.T) {
	// Removed [b c] against added [x y z w]: the first two pair up, the last two are insertions after base line 3.
	la := AlignLines([]string{"a", "b", "c", "d"}, []string{"a", "x", "y", "z", "w", "d"})

	require.Equal(t, []BaseRow{
		{Status: StatusEqual, BaseText: "a", Text: "a", LineNumber: 1},
		{Status: StatusChange, BaseText: "b", Text: "x", LineNumber: 2},
		{Status: StatusChange, BaseText: "c", Text: "y", LineNumber: 3},
		{Status: StatusEqual, BaseText: "d", Text: "d", LineNumber: 6},
	}, la.BaseRows)
	require.Equal(t, map[int][]InsertedLine{
		3: {{Text: "z", LineNumber: 4}, {Text: "w", LineNumber: 5}},
	}, la.InsertsAt)
}

func TestAlignLines_ChangeBlockRemovedLonger(t *testing.T) {
	la := AlignLines([]string{"a", "b", "c", "d", "e"}, []string{"a", "x", "e"})

	require.Equal(t, []BaseRow{
		{Status: StatusEqual, BaseText: "a", Text: "a", LineNumber: 1},
		{Status: StatusChange, BaseText: "b", Text: "x", LineNumber: 2},
		{Status: StatusDelete, BaseText: "c"},
		{Status: StatusDelete, BaseText: "d"},
		{Status: StatusEqual, BaseText: "e", Text: "e", LineNumber: 3},
	}, la.BaseRows)
	assert.Empty(t, la.InsertsAt)
}

func TestAlignLines_StandaloneDelete(t *testing.T) {
	la := AlignLines([]string{"a", "b", "c"}, []string{"a", "c"})

	require.Equal(t, []BaseRow{
		{Status: StatusEqual, BaseText: "a", Text: "a", LineNumber: 1},
		{Status: StatusDelete, BaseText: "b"},
		{Status: StatusEqual, BaseText: "c", Text: "c", LineNumber: 2},
	}, la.BaseRows)
	assert.False(t, la.BaseRows[1].HasVariant())
	assert.Empty(t, la.InsertsAt)
}

func TestAlignLines_Degenerate(t *testing.T) {
	t.Run("both empty", func(t *testing.T) {
		la := AlignLines(nil, nil)
		assert.Empty(t, la.BaseRows)
		assert.Empty(t, la.InsertsAt)
	})

	t.Run("empty variant", func(t *testing.T) {
		la := AlignLines([]string{"a", "b", "c"}, nil)
		require.Len(t, la.BaseRows, 3)
		for _, r := range la.BaseRows {
			assert.Equal(t, StatusDelete, r.Status)
			assert.Equal(t, 0, r.LineNumber)
		}
		assert.Empty(t, la.InsertsAt)
	})

	t.Run("empty base", func(t *testing.T) {
		la := AlignLines(nil, []string{"x", "y", "z"})
		assert.Empty(t, la.BaseRows)
		require.Equal(t, map[int][]InsertedLine{
			0: {{Text: "x", LineNumber: 1}, {Text: "y", LineNumber: 2}, {Text: "z", LineNumber: 3}},
		}, la.InsertsAt)
	})

	t.Run("identical", func(t *testing.T) {
		s := []string{"import os", "", "print(os.getcwd())", ""}
		la := AlignLines(s, s)
		require.Len(t, la.BaseRows, len(s))
		for i, r := range la.BaseRows {
			assert.Equal(t, StatusEqual, r.Status)
			assert.Equal(t, i+1, r.LineNumber)
		}
		assert.Empty(t, la.InsertsAt)
		assert.True(t, la.Stats().Identical())
	})
}

func TestAlignLines_DuplicateLines(t *testing.T) {
	base := []string{"", "x = 1", "", "x = 1", ""}
	variant := []string{"x = 1", "", "", "x = 2", "x = 1"}

	la := AlignLines(base, variant)

	require.Len(t, la.BaseRows, len(base))
	assert.Equal(t, variant, la.Variant())
}

func TestAlignLines_Stats(t *testing.T) {
	la := AlignLines([]string{"a", "b", "c", "d"}, []string{"a", "x", "d", "e", "f"})

	assert.Equal(t, Stats{Equal: 2, Changed: 1, Deleted: 1, Added: 2}, la.Stats())
}

func TestAlignLines_Inserts(t *testing.T) {
	la := AlignLines([]string{"b", "d"}, []string{"a", "b", "c", "d", "e"})

	batches := la.Inserts()
	require.Len(t, batches, 3)
	assert.Equal(t, 0, batches[0].Position)
	assert.Equal(t, 1, batches[1].Position)
	assert.Equal(t, 2, batches[2].Position)
	assert.Equal(t, "c", batches[1].Lines[0].Text)
	assert.Equal(t, 3, batches[1].Lines[0].LineNumber)
}

// TestAlignLines_Invariants checks every pair of sequences over a small alphabet, which covers all chunk shapes the diff can produce at that size.
func TestAlignLines_Invariants(t *testing.T) {
	seqs := allSequences([]string{"a", "b", "c"}, 4)

	for _, base := range seqs {
		for _, variant := range seqs {
			la := AlignLines(base, variant)

			require.Len(t, la.BaseRows, len(base))
			require.Equal(t, variant, la.Variant(), "base=%v variant=%v", base, variant)

			var numbers []int
			la.walkVariant(func(_ string, n int) { numbers = append(numbers, n) })
			for i, n := range numbers {
				require.Equal(t, i+1, n, "base=%v variant=%v", base, variant)
			}

			st := la.Stats()
			require.Equal(t, len(base), st.Equal+st.Changed+st.Deleted)
			require.Equal(t, len(variant), st.Equal+st.Changed+st.Added)

			require.Equal(t, la, AlignLines(base, variant))
		}

		same := AlignLines(base, base)
		require.True(t, same.Stats().Identical(), "base=%v", base)
		require.Empty(t, same.InsertsAt)
	}
}

func TestAlignLines_EqualRowsAreLongestCommonSubsequence(t *testing.T) {
	seqs := allSequences([]string{"a", "b"}, 5)

	for _, base := range seqs {
		for _, variant := range seqs {
			la := AlignLines(base, variant)
			require.Equal(t, lcsLength(base, variant), la.Stats().Equal, "base=%v variant=%v", base, variant)
		}
	}
}

func TestLineEncoder_SkipsSurrogates(t *testing.T) {
	enc := newLineEncoder()
	enc.next = surrogateMin - 1

	r := enc.encode([]string{"one", "two"})

	assert.Equal(t, rune(surrogateMin-1), r[0])
	assert.Equal(t, rune(surrogateMax+1), r[1])
	assert.Equal(t, []string{"one", "two"}, enc.decode(string(r)))
}

func allSequences(alphabet []string, maxLen int) [][]string {
	out := [][]string{nil}
	prev := [][]string{nil}
	for n := 1; n <= maxLen; n++ {
		var next [][]string
		for _, p := range prev {
			for _, a := range alphabet {
				s := make([]string, 0, n)
				s = append(s, p...)
				s = append(s, a)
				next = append(next, s)
			}
		}
		out = append(out, next...)
		prev = next
	}
	return out
}

func lcsLength(a, b []string) int {
	dp := make([][]int, len(a)+1)
	for i := range dp {
		dp[i] = make([]int, len(b)+1)
	}
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}
	return dp[len(a)][len(b)]
}
