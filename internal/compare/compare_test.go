package compare

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbreview/nbreview/internal/align"
	"github.com/nbreview/nbreview/internal/notebook"
)

// cellSpec is (description, source).
type cellSpec [2]string

func makeNotebook(path string, specs ...cellSpec) *notebook.Notebook {
	nb := &notebook.Notebook{Path: path, Language: "python"}
	for i, s := range specs {
		nb.Cells = append(nb.Cells, notebook.CodeCell{CellCommon: notebook.CellCommon{Index: i, Description: s[0], Source: s[1]}})
	}
	return nb
}

func rowKeys(r *Report, nbIndex int) []string {
	var out []string
	for _, row := range r.Rows {
		if ref := row.Cells[nbIndex]; ref != nil {
			out = append(out, ref.Key)
		} else {
			out = append(out, "")
		}
	}
	return out
}

func TestCompare_TwoNotebooks(t *testing.T) {
	base := makeNotebook("base.ipynb", cellSpec{"Load", "a\nb"}, cellSpec{"Clean", "c"}, cellSpec{"Plot", "p"})
	other := makeNotebook("s.ipynb", cellSpec{"Load", "a\nB"}, cellSpec{"Plot", "p"}, cellSpec{"Extra", "x"})

	r, err := New(DefaultLimits).Compare(context.Background(), []*notebook.Notebook{base, other}, 0)
	require.NoError(t, err)

	require.Len(t, r.Rows, 4)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, []string{"Load", "Clean", "Plot", ""}, rowKeys(r, 0))
	assert.Equal(t, []string{"Load", "", "Plot", "Extra"}, rowKeys(r, 1))
	assert.Equal(t, []RowKind{RowMatched, RowBaseOnly, RowMatched, RowInserted}, []RowKind{r.Rows[0].Kind, r.Rows[1].Kind, r.Rows[2].Kind, r.Rows[3].Kind})
	assert.Equal(t, []bool{true, true, false, true}, []bool{r.Rows[0].Changed, r.Rows[1].Changed, r.Rows[2].Changed, r.Rows[3].Changed})
	assert.Equal(t, 3, r.Rows[3].Position)

	load := r.Rows[0]
	require.NotNil(t, load.Lines)
	assert.Nil(t, load.ThreeWay)
	require.Len(t, load.Lines.BaseRows, 2)
	assert.Equal(t, align.StatusEqual, load.Lines.BaseRows[0].Status)
	assert.Equal(t, align.StatusChange, load.Lines.BaseRows[1].Status)
	assert.Equal(t, "B", load.Lines.BaseRows[1].Text)

	clean := r.Rows[1]
	require.NotNil(t, clean.Lines)
	assert.Equal(t, align.StatusDelete, clean.Lines.BaseRows[0].Status)

	extra := r.Rows[3]
	require.NotNil(t, extra.Lines)
	assert.Empty(t, extra.Lines.BaseRows)
	assert.Equal(t, []string{"x"}, extra.Lines.Variant())

	assert.Equal(t, Summary{Matched: 2, Unchanged: 1, BaseOnly: 1, Inserted: 1}, r.Summary)

	require.Len(t, r.Notebooks, 2)
	assert.Equal(t, "base", r.Notebooks[0].Role)
	assert.Equal(t, "B", r.Notebooks[1].Role)
	assert.Equal(t, []string{"Clean"}, r.Notebooks[1].MissingSteps)
	assert.Equal(t, []string{"Extra"}, r.Notebooks[1].ExtraSteps)
	assert.Empty(t, r.Notebooks[0].MissingSteps)
	assert.Empty(t, r.Warnings)
	assert.Equal(t, []int{1}, r.Others())
}

func TestCompare_ThreeNotebooks(t *testing.T) {
	base := makeNotebook("base.ipynb", cellSpec{"Load", "a"}, cellSpec{"Plot", "p"})
	b := makeNotebook("b.ipynb", cellSpec{"Load", "a"}, cellSpec{"New", "n"}, cellSpec{"Plot", "p"})
	c := makeNotebook("c.ipynb", cellSpec{"Load", "a2"}, cellSpec{"Other", "o"}, cellSpec{"Plot", "p"})

	r, err := New(DefaultLimits).Compare(context.Background(), []*notebook.Notebook{base, b, c}, 0)
	require.NoError(t, err)

	require.Len(t, r.Rows, 3)
	assert.Equal(t, []string{"Load", "", "Plot"}, rowKeys(r, 0))
	assert.Equal(t, []string{"Load", "New", "Plot"}, rowKeys(r, 1))
	assert.Equal(t, []string{"Load", "Other", "Plot"}, rowKeys(r, 2))

	inserted := r.Rows[1]
	assert.Equal(t, RowInserted, inserted.Kind)
	assert.Equal(t, 1, inserted.Position)
	require.Len(t, inserted.ThreeWay, 1)
	assert.True(t, inserted.ThreeWay[0].Insertion)
	assert.Equal(t, "n", inserted.ThreeWay[0].B.Text)
	assert.Equal(t, "o", inserted.ThreeWay[0].C.Text)

	load := r.Rows[0]
	assert.Nil(t, load.Lines)
	require.Len(t, load.ThreeWay, 1)
	assert.Equal(t, align.ColumnChange, load.ThreeWay[0].Base.Status)
	assert.Equal(t, align.ColumnEqual, load.ThreeWay[0].B.Status)
	assert.Equal(t, align.ColumnChange, load.ThreeWay[0].C.Status)
	assert.True(t, load.Changed)

	assert.False(t, r.Rows[2].Changed)
	assert.Equal(t, Summary{Matched: 2, Unchanged: 1, Inserted: 1}, r.Summary)
}

func TestCompare_ZipsUnevenInsertions(t *testing.T) {
	base := makeNotebook("base.ipynb", cellSpec{"End", "e"})
	b := makeNotebook("b.ipynb", cellSpec{"X", "x"}, cellSpec{"Y", "y"}, cellSpec{"End", "e"})
	c := makeNotebook("c.ipynb", cellSpec{"Z", "z"}, cellSpec{"End", "e"})

	r, err := New(DefaultLimits).Compare(context.Background(), []*notebook.Notebook{base, b, c}, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "", "End"}, rowKeys(r, 0))
	assert.Equal(t, []string{"X", "Y", "End"}, rowKeys(r, 1))
	assert.Equal(t, []string{"Z", "", "End"}, rowKeys(r, 2))
}

func TestCompare_NonZeroBase(t *testing.T) {
	a := makeNotebook("a.ipynb", cellSpec{"Load", "a"})
	b := makeNotebook("b.ipynb", cellSpec{"Load", "a"}, cellSpec{"More", "m"})

	r, err := New(DefaultLimits).Compare(context.Background(), []*notebook.Notebook{a, b}, 1)
	require.NoError(t, err)

	assert.Equal(t, "B", r.Notebooks[0].Role)
	assert.Equal(t, "base", r.Notebooks[1].Role)
	assert.Equal(t, []int{0}, r.Others())
	assert.Equal(t, []RowKind{RowMatched, RowBaseOnly}, []RowKind{r.Rows[0].Kind, r.Rows[1].Kind})
	assert.Equal(t, []string{"More"}, r.Notebooks[0].MissingSteps)
}

func TestCompare_Errors(t *testing.T) {
	one := makeNotebook("a.ipynb", cellSpec{"", "x"}, cellSpec{"", "y"})

	_, err := New(DefaultLimits).Compare(context.Background(), []*notebook.Notebook{one}, 0)
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = New(DefaultLimits).Compare(context.Background(), []*notebook.Notebook{one, one, one, one}, 0)
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = New(DefaultLimits).Compare(context.Background(), []*notebook.Notebook{one, one}, 2)
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = New(DefaultLimits).Compare(context.Background(), []*notebook.Notebook{one, nil}, 0)
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = New(Limits{MaxCells: 1}).Compare(context.Background(), []*notebook.Notebook{one, one}, 0)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestCompare_MaxLinesSkips(t *testing.T) {
	base := makeNotebook("base.ipynb", cellSpec{"Big", "1\n2\n3"}, cellSpec{"Small", "s"})
	other := makeNotebook("s.ipynb", cellSpec{"Big", "1\n2\n3"}, cellSpec{"Small", "t"})

	r, err := New(Limits{MaxLines: 2}).Compare(context.Background(), []*notebook.Notebook{base, other}, 0)
	require.NoError(t, err)

	require.Len(t, r.Rows, 2)
	assert.True(t, r.Rows[0].Skipped)
	assert.Nil(t, r.Rows[0].Lines)
	assert.False(t, r.Rows[0].Changed)
	assert.False(t, r.Rows[1].Skipped)
	assert.True(t, r.Rows[1].Changed)
	assert.Equal(t, 1, r.Summary.Skipped)
}

func TestCompare_Canceled(t *testing.T) {
	base := makeNotebook("base.ipynb", cellSpec{"", "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultLimits).Compare(ctx, []*notebook.Notebook{base, base}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompare_Warnings(t *testing.T) {
	base := makeNotebook("base.ipynb", cellSpec{"Step", "a"}, cellSpec{"Step", "b"})
	other := makeNotebook("s.ipynb", cellSpec{"", "a"}, cellSpec{"", "b"})

	r, err := New(DefaultLimits).Compare(context.Background(), []*notebook.Notebook{base, other}, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"base.ipynb: duplicate cell descriptions are matched ambiguously: Step",
		"s.ipynb: no cell descriptions; cells are matched by position",
	}, r.Warnings)
}

func TestCompare_EmptyNotebooks(t *testing.T) {
	empty := makeNotebook("e.ipynb")

	r, err := New(DefaultLimits).Compare(context.Background(), []*notebook.Notebook{empty, empty}, 0)
	require.NoError(t, err)

	assert.Empty(t, r.Rows)
	assert.Equal(t, Summary{}, r.Summary)
	assert.Empty(t, r.Warnings)
}

func TestCompare_SharedMemo(t *testing.T) {
	base := makeNotebook("base.ipynb", cellSpec{"A", "x\ny"}, cellSpec{"B", "z"})
	other := makeNotebook("s.ipynb", cellSpec{"A", "x\nY"}, cellSpec{"B", "z"})
	c := New(Limits{Parallelism: 1})

	first, err := c.Compare(context.Background(), []*notebook.Notebook{base, other}, 0)
	require.NoError(t, err)
	_, misses := c.Memo.Stats()

	second, err := c.Compare(context.Background(), []*notebook.Notebook{base, other}, 0)
	require.NoError(t, err)

	hits, misses2 := c.Memo.Stats()
	assert.Equal(t, misses, misses2)
	assert.Equal(t, misses, hits)
	assert.NotEqual(t, first.ID, second.ID)
	first.ID, second.ID = "", ""
	assert.Equal(t, first, second)
}
