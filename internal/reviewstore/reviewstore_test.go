package reviewstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sub", "reviews.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestAddListLatest(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	first, err := s.Add(ctx, Mark{Comparison: "c1", CellKey: "Load", Verdict: "needs-work", Note: "missing header=None", Reviewer: "ta"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, VerdictNeedsWork, first.Verdict)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC), first.CreatedAt)

	_, err = s.Add(ctx, Mark{Comparison: "c1", CellKey: "Plot", Verdict: VerdictOK})
	require.NoError(t, err)
	second, err := s.Add(ctx, Mark{Comparison: "c1", CellKey: "Load", Verdict: " OK "})
	require.NoError(t, err)
	_, err = s.Add(ctx, Mark{Comparison: "other", CellKey: "Load", Verdict: VerdictSkip})
	require.NoError(t, err)

	marks, err := s.List(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, marks, 3)
	assert.Equal(t, first, marks[0])
	assert.Equal(t, []string{"Load", "Plot", "Load"}, []string{marks[0].CellKey, marks[1].CellKey, marks[2].CellKey})

	latest, err := s.Latest(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, second, latest["Load"])
	assert.Equal(t, VerdictOK, latest["Plot"].Verdict)

	none, err := s.List(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAdd_Invalid(t *testing.T) {
	s, _ := openTemp(t)
	cases := []Mark{
		{CellKey: "x", Verdict: VerdictOK},
		{Comparison: "c", Verdict: VerdictOK},
		{Comparison: "c", CellKey: " ", Verdict: VerdictOK},
		{Comparison: "c", CellKey: "x", Verdict: "great"},
	}
	for _, m := range cases {
		_, err := s.Add(context.Background(), m)
		assert.True(t, errors.Is(err, ErrInvalidMark), "mark=%+v err=%v", m, err)
	}
}

func TestReopenKeepsMarks(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reviews.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	added, err := s.Add(ctx, Mark{ID: "fixed", Comparison: "c", CellKey: "k", Verdict: VerdictOK, CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 6, time.FixedZone("X", 3600))})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	marks, err := s.List(ctx, "c")
	require.NoError(t, err)
	require.Len(t, marks, 1)
	assert.Equal(t, added, marks[0])
	assert.Equal(t, time.UTC, marks[0].CreatedAt.Location())

	_, err = s.Add(ctx, Mark{ID: "fixed", Comparison: "c", CellKey: "k", Verdict: VerdictOK})
	assert.Error(t, err)
}

func TestComparisonID(t *testing.T) {
	id := ComparisonID(0, "a.ipynb", "b.ipynb")

	assert.Len(t, id, 16)
	assert.Equal(t, id, ComparisonID(0, "./a.ipynb", "b.ipynb"))
	assert.NotEqual(t, id, ComparisonID(1, "a.ipynb", "b.ipynb"))
	assert.NotEqual(t, id, ComparisonID(0, "b.ipynb", "a.ipynb"))
	assert.NotEqual(t, id, ComparisonID(0, "a.ipynb", "b.ipynb", "c.ipynb"))
}

func TestParseVerdict(t *testing.T) {
	v, err := ParseVerdict("Needs-Work")
	require.NoError(t, err)
	assert.Equal(t, VerdictNeedsWork, v)

	_, err = ParseVerdict("")
	assert.ErrorIs(t, err, ErrInvalidMark)
}
