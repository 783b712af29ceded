package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLines(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "a", want: []string{"a"}},
		{in: "a\n", want: []string{"a"}},
		{in: "a\nb", want: []string{"a", "b"}},
		{in: "a\r\nb\r\n", want: []string{"a", "b"}},
		{in: "a\rb\rc", want: []string{"a", "b", "c"}},
		{in: "a\n\n", want: []string{"a", ""}},
		{in: "\n", want: []string{""}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SplitLines(tc.in), "in=%q", tc.in)
	}
}

func TestNormalizeEOL(t *testing.T) {
	assert.Equal(t, "a\nb\nc\n\n", NormalizeEOL("a\r\nb\rc\r\r\n"))
	assert.Equal(t, "plain", NormalizeEOL("plain"))
}

func TestLineCount(t *testing.T) {
	assert.Equal(t, 0, LineCount(""))
	assert.Equal(t, 0, LineCount("\n\n"))
	assert.Equal(t, 2, LineCount("a\nb\n\n\n"))
	assert.Equal(t, 3, LineCount("a\r\n\r\nb"))
}
