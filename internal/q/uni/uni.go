// Package uni measures and fits text into monospace terminal columns. Widths are summed per grapheme cluster, so a combining sequence or emoji is never split
// when text is truncated.
package uni

import (
	"strings"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Options control width calculation. A nil *Options assumes a non-East Asian locale.
type Options struct {
	EastAsianWidth   bool // treat ambiguous East Asian code points as 2 wide; use for CJK locales
	TreatEmojiAsWide bool // only considered if EastAsianWidth
}

// Width returns the number of terminal cells s occupies. s should not contain control characters (see Sanitize).
func Width(s string, opts *Options) int {
	cond := conditionFromOptions(opts)
	w := 0
	iter := graphemes.FromString(s)
	for iter.Next() {
		w += cond.StringWidth(iter.Value())
	}
	return w
}

// Truncate returns the longest prefix of s, by whole grapheme clusters, that fits in width cells. If s had to be cut, the prefix ends with Ellipsis and the
// result fits in width. Truncate returns "" if width <= 0.
func Truncate(s string, width int, opts *Options) string {
	if width <= 0 {
		return ""
	}
	if Width(s, opts) <= width {
		return s
	}

	cond := conditionFromOptions(opts)
	budget := width - cond.StringWidth(Ellipsis)
	used := 0
	end := 0
	iter := graphemes.FromString(s)
	for iter.Next() {
		w := cond.StringWidth(iter.Value())
		if used+w > budget {
			break
		}
		used += w
		end = iter.End()
	}
	return s[:end] + Ellipsis
}

// Fit truncates s to width and right-pads it with spaces so that it occupies exactly width cells.
func Fit(s string, width int, opts *Options) string {
	s = Truncate(s, width, opts)
	if pad := width - Width(s, opts); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

// Sanitize makes one line of user text safe to print:
//   - If tabWidth > 0, tabs are expanded to the next multiple of tabWidth columns. Otherwise tabs are left as-is.
//   - Other control characters (including ESC, CR, and LF) are replaced with "\xXX".
//   - Invalid UTF-8 is replaced by U+FFFD.
func Sanitize(s string, tabWidth int) string {
	if s == "" {
		return ""
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}

	cond := conditionFromOptions(nil)
	var b strings.Builder
	b.Grow(len(s))
	col := 0

	iter := graphemes.FromString(s)
	for iter.Next() {
		cluster := iter.Value()
		r, _ := utf8.DecodeRuneInString(cluster)
		switch {
		case r == '\t' && tabWidth > 0:
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case r == '\t':
			b.WriteByte('\t')
			col++
		case isControl(r):
			// A control character may begin a cluster (ex: CR LF); escape each rune of it.
			for _, cr := range cluster {
				if isControl(cr) {
					b.WriteString(escape(byte(cr)))
					col += 4
				} else {
					b.WriteRune(cr)
					col += cond.RuneWidth(cr)
				}
			}
		default:
			b.WriteString(cluster)
			col += cond.StringWidth(cluster)
		}
	}
	return b.String()
}

const hexDigits = "0123456789ABCDEF"

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7F
}

func escape(c byte) string {
	return string([]byte{'\\', 'x', hexDigits[c>>4], hexDigits[c&0x0F]})
}

func conditionFromOptions(opts *Options) *runewidth.Condition {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	cond.StrictEmojiNeutral = true

	if opts == nil {
		return cond
	}

	cond.EastAsianWidth = opts.EastAsianWidth
	if opts.EastAsianWidth && opts.TreatEmojiAsWide {
		cond.StrictEmojiNeutral = false
	}

	return cond
}
