package align

import "strings"

// eol is the only line separator after normalization.
const eol = "\n"

// NormalizeEOL rewrites CRLF and lone CR to LF.
func NormalizeEOL(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", eol)
	return strings.ReplaceAll(s, "\r", eol)
}

// SplitLines normalizes line endings in s and splits it into lines without their terminators. The empty element produced by a final newline is dropped, so "a\nb\n"
// and "a\nb" both yield ["a", "b"]. "" yields nil.
func SplitLines(s string) []string {
	s = NormalizeEOL(s)
	if s == "" {
		return nil
	}
	lines := strings.Split(s, eol)
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// LineCount returns the number of lines in s, ignoring all trailing empty lines.
func LineCount(s string) int {
	lines := SplitLines(s)
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return len(lines)
}
