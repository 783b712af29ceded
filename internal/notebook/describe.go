package notebook

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// stepCommentRegexp matches a scaffold comment that labels a code cell, ex: "# Step 2: Clean the data" or "# Exercise 1.3 - Plot".
var stepCommentRegexp = regexp.MustCompile(`(?i)^#+\s*((?:step|task|exercise|part|description)\b.*\S)\s*$`)

// Describe returns a cell's description, trying in order:
//  1. metadata "description" or "nbreview.description" (a non-empty string);
//  2. markdown cells: the text of the first heading;
//  3. code cells: a leading scaffold comment such as "# Step 1: Load the data".
//
// It returns "" when none applies. metadata may be the zero gjson.Result.
func Describe(kind Kind, source string, metadata gjson.Result) string {
	for _, path := range []string{"description", "nbreview.description"} {
		if v := metadata.Get(path); v.Type == gjson.String {
			if d := strings.TrimSpace(v.String()); d != "" {
				return d
			}
		}
	}
	switch kind {
	case KindMarkdown:
		return markdownHeading(source)
	case KindCode:
		return stepComment(source)
	}
	return ""
}

func markdownHeading(source string) string {
	src := []byte(source)
	root := goldmark.New().Parser().Parse(text.NewReader(src))
	if root == nil {
		return ""
	}
	var out string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		out = headingText(src, h)
		if out == "" {
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkStop, nil
	})
	return out
}

func headingText(src []byte, h *ast.Heading) string {
	lines := h.Lines()
	if lines == nil || lines.Len() == 0 {
		return ""
	}
	var b bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if seg.Stop <= seg.Start || seg.Stop > len(src) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.Write(bytes.TrimSpace(src[seg.Start:seg.Stop]))
	}
	s := strings.TrimSpace(b.String())
	s = strings.TrimLeft(s, "#")
	s = strings.TrimRight(strings.TrimSpace(s), "#")
	return strings.TrimSpace(s)
}

func stepComment(source string) string {
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || IsSeparatorLine(line) {
			continue
		}
		if m := stepCommentRegexp.FindStringSubmatch(line); m != nil {
			return m[1]
		}
		return ""
	}
	return ""
}
