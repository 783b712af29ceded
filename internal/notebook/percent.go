package notebook

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/nbreview/nbreview/internal/align"
)

// ParsePercent reads a py:percent script: cells start at "# %%" marker lines, and "# %% [markdown]" starts a markdown cell whose lines are commented out with "# ".
// Text before the first marker becomes a code cell unless it is blank. A marker's title, if any, is the cell's description.
func ParsePercent(text string, path string) *Notebook {
	nb := &Notebook{Path: path, Language: "python"}

	type pending struct {
		title    string
		markdown bool
		lines    []string
		marked   bool
	}
	cur := pending{}

	flush := func() {
		if !cur.marked && strings.TrimSpace(strings.Join(cur.lines, "")) == "" {
			return
		}
		lines := trimBlankTail(cur.lines)
		kind := KindCode
		if cur.markdown {
			kind = KindMarkdown
			lines = uncommentMarkdown(lines)
		}
		common := CellCommon{Index: len(nb.Cells), Source: strings.Join(lines, "\n")}
		if cur.title != "" {
			common.Description = cur.title
		} else {
			common.Description = Describe(kind, common.Source, gjson.Result{})
		}
		if kind == KindMarkdown {
			nb.Cells = append(nb.Cells, MarkdownCell{CellCommon: common})
		} else {
			nb.Cells = append(nb.Cells, CodeCell{CellCommon: common})
		}
	}

	for _, line := range align.SplitLines(text) {
		if title, md, ok := percentMarker(line); ok {
			flush()
			cur = pending{title: title, markdown: md, marked: true}
			continue
		}
		cur.lines = append(cur.lines, line)
	}
	flush()
	return nb
}

func trimBlankTail(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func uncommentMarkdown(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "# "):
			out[i] = line[2:]
		case strings.HasPrefix(line, "#"):
			out[i] = line[1:]
		default:
			out[i] = line
		}
	}
	return out
}
