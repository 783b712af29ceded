package align

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_TrailingInsertionInOneVariant(t *testing.T) {
	rows := Reconcile([]string{"x"}, []string{"x", "y"}, []string{"x"})

	require.Len(t, rows, 2)

	assert.False(t, rows[0].Insertion)
	assert.Equal(t, Column{Present: true, LineNumber: 1, Text: "x", Status: ColumnEqual}, rows[0].Base)
	assert.Equal(t, Column{Present: true, LineNumber: 1, Text: "x", Status: ColumnEqual}, rows[0].B)
	assert.Equal(t, Column{Present: true, LineNumber: 1, Text: "x", Status: ColumnEqual}, rows[0].C)

	assert.True(t, rows[1].Insertion)
	assert.Equal(t, 1, rows[1].Position)
	assert.Equal(t, Column{Status: ColumnEmpty}, rows[1].Base)
	assert.Equal(t, Column{Present: true, LineNumber: 2, Text: "y", Status: ColumnInsert}, rows[1].B)
	assert.Equal(t, Column{Status: ColumnEmpty}, rows[1].C)
}

func TestReconcile_NoOp(t *testing.T) {
	base := []string{"def f(x):", "    return x", ""}

	rows := Reconcile(base, base, base)

	require.Len(t, rows, len(base))
	for i, r := range rows {
		assert.False(t, r.Insertion)
		assert.Equal(t, i, r.Position)
		assert.Equal(t, ColumnEqual, r.Base.Status)
		assert.Equal(t, ColumnEqual, r.B.Status)
		assert.Equal(t, ColumnEqual, r.C.Status)
	}
}

func TestReconcile_ZipsInsertionsAtSharedPosition(t *testing.T) {
	rows := Reconcile([]string{"x"}, []string{"x", "y1", "y2"}, []string{"x", "z1"})

	require.Len(t, rows, 3)
	assert.Equal(t, ColumnEqual, rows[0].Base.Status)

	assert.True(t, rows[1].Insertion)
	assert.Equal(t, "y1", rows[1].B.Text)
	assert.Equal(t, ColumnInsert, rows[1].B.Status)
	assert.Equal(t, "z1", rows[1].C.Text)
	assert.Equal(t, ColumnInsert, rows[1].C.Status)

	assert.True(t, rows[2].Insertion)
	assert.Equal(t, "y2", rows[2].B.Text)
	assert.Equal(t, 3, rows[2].B.LineNumber)
	assert.Equal(t, Column{Status: ColumnEmpty}, rows[2].C)
}

func TestReconcile_ChangeInEitherVariantMarksBase(t *testing.T) {
	cases := []struct {
		name   string
		b      []string
		c      []string
		wantB  ColumnStatus
		wantC  ColumnStatus
		wantBs ColumnStatus
	}{
		{name: "change in B", b: []string{"q"}, c: []string{"a"}, wantB: ColumnChange, wantC: ColumnEqual, wantBs: ColumnChange},
		{name: "change in C", b: []string{"a"}, c: []string{"q"}, wantB: ColumnEqual, wantC: ColumnChange, wantBs: ColumnChange},
		{name: "delete in B", b: nil, c: []string{"a"}, wantB: ColumnDelete, wantC: ColumnEqual, wantBs: ColumnChange},
		{name: "both changed", b: []string{"q"}, c: []string{"r"}, wantB: ColumnChange, wantC: ColumnChange, wantBs: ColumnChange},
		{name: "both equal", b: []string{"a"}, c: []string{"a"}, wantB: ColumnEqual, wantC: ColumnEqual, wantBs: ColumnEqual},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows := Reconcile([]string{"a"}, tc.b, tc.c)
			require.Len(t, rows, 1)
			assert.Equal(t, tc.wantB, rows[0].B.Status)
			assert.Equal(t, tc.wantC, rows[0].C.Status)
			assert.Equal(t, tc.wantBs, rows[0].Base.Status)
		})
	}
}

func TestReconcile_EmptyBase(t *testing.T) {
	rows := Reconcile(nil, []string{"a", "b"}, []string{"c"})

	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.True(t, r.Insertion)
		assert.Equal(t, 0, r.Position)
	}
	assert.Equal(t, "a", rows[0].B.Text)
	assert.Equal(t, "c", rows[0].C.Text)
	assert.Equal(t, "b", rows[1].B.Text)
	assert.Equal(t, ColumnEmpty, rows[1].C.Status)
}

// TestReconcile_Invariants checks that every base line and every variant line appears exactly once, in order, in the reconciled stream.
func TestReconcile_Invariants(t *testing.T) {
	seqs := allSequences([]string{"a", "b"}, 3)

	for _, base := range seqs {
		for _, b := range seqs {
			for _, c := range seqs {
				rows := Reconcile(base, b, c)

				var gotBase, gotB, gotC []string
				insertionRows := 0
				for _, r := range rows {
					if r.Base.Present {
						gotBase = append(gotBase, r.Base.Text)
					}
					if r.B.Present {
						gotB = append(gotB, r.B.Text)
					}
					if r.C.Present {
						gotC = append(gotC, r.C.Text)
					}
					if r.Insertion {
						insertionRows++
						require.False(t, r.Base.Present)
						require.True(t, r.B.Present || r.C.Present)
					}
				}
				require.Equal(t, base, gotBase)
				require.Equal(t, b, gotB)
				require.Equal(t, c, gotC)
				require.Equal(t, len(base), len(rows)-insertionRows)
			}
		}
	}
}

func TestReconcileAlignments_MatchesReconcile(t *testing.T) {
	base := []string{"a", "b", "c"}
	b := []string{"a", "x", "c", "d"}
	c := []string{"b", "c"}

	got := ReconcileAlignments(base, AlignLines(base, b), AlignLines(base, c))

	assert.Equal(t, Reconcile(base, b, c), got)
}

func TestResolveCellStatus(t *testing.T) {
	s := func(v string) *string { return &v }

	assert.Equal(t, ColumnInsert, resolveCellStatus(nil, s("x"), true))
	assert.Equal(t, ColumnEmpty, resolveCellStatus(nil, nil, true))
	assert.Equal(t, ColumnDelete, resolveCellStatus(s("x"), nil, false))
	assert.Equal(t, ColumnInsert, resolveCellStatus(nil, s("x"), false))
	assert.Equal(t, ColumnEqual, resolveCellStatus(s("x"), s("x"), false))
	assert.Equal(t, ColumnChange, resolveCellStatus(s("x"), s("y"), false))
}

func TestThreeWayRow_JSON(t *testing.T) {
	rows := Reconcile([]string{"x"}, []string{"y"}, nil)

	b, err := json.Marshal(rows[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"position": 0,
		"insertion": false,
		"base": {"present": true, "lineNumber": 1, "text": "x", "status": "change"},
		"b": {"present": true, "lineNumber": 1, "text": "y", "status": "change"},
		"c": {"present": false, "status": "delete"}
	}`, string(b))
}
