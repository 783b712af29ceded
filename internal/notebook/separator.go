package notebook

import (
	"regexp"
	"strings"
)

// separatorRegexp matches comment lines that only delimit code: "# %%", "# -----", "#####", "# === Setup ===", "// ----".
var separatorRegexp = regexp.MustCompile(`^(?:#|//)\s*(?:%%.*|[-=*#~_]{3,}(?:.*[-=*#~_]{3,})?)$`)

// IsSeparatorLine reports whether line is an injected separator comment. Renderers dim these lines; they are compared like any other line.
func IsSeparatorLine(line string) bool {
	return separatorRegexp.MatchString(strings.TrimSpace(line))
}

// percentMarker reports whether line starts a py:percent cell, returning the marker's title and whether the cell is markdown.
func percentMarker(line string) (title string, markdown bool, ok bool) {
	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, "# %%") {
		return "", false, false
	}
	rest := strings.TrimSpace(t[len("# %%"):])
	for _, tag := range []string{"[markdown]", "[md]"} {
		if i := strings.Index(rest, tag); i >= 0 {
			markdown = true
			rest = rest[:i] + rest[i+len(tag):]
		}
	}
	if i := strings.Index(rest, "[raw]"); i >= 0 {
		rest = rest[:i] + rest[i+len("[raw]"):]
	}
	return strings.TrimSpace(rest), markdown, true
}
