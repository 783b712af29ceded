package notebook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/nbreview/nbreview/internal/align"
)

// Load reads and parses the notebook at path. Files ending in ".py" are read as py:percent scripts; everything else as nbformat JSON.
func Load(path string) (*Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load notebook: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".py") {
		text, err := decodeText(data)
		if err != nil {
			return nil, fmt.Errorf("load notebook %s: %w", path, err)
		}
		return ParsePercent(text, path), nil
	}
	return Parse(data, path)
}

// Parse reads nbformat JSON. UTF-8 (with or without BOM) and BOM-marked UTF-16 are accepted.
//
// Cell "source" may be a string or an array of strings (nbformat allows both); a missing source is empty. Unknown cell types are imported as RawCell.
func Parse(data []byte, path string) (*Notebook, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %v", path, ErrNotNotebook, err)
	}
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("parse %s: %w: invalid JSON", path, ErrNotNotebook)
	}
	root := gjson.Parse(text)
	cells := root.Get("cells")
	if !cells.IsArray() {
		return nil, fmt.Errorf("parse %s: %w: missing cells array", path, ErrNotNotebook)
	}

	nb := &Notebook{Path: path, Language: notebookLanguage(root)}
	for i, raw := range cells.Array() {
		common := CellCommon{
			Index:  i,
			Source: align.NormalizeEOL(joinSource(raw.Get("source"))),
		}
		kind := cellKind(raw.Get("cell_type").String())
		common.Description = Describe(kind, common.Source, raw.Get("metadata"))

		switch kind {
		case KindCode:
			cell := CodeCell{CellCommon: common}
			if ec := raw.Get("execution_count"); ec.Type == gjson.Number {
				n := int(ec.Int())
				cell.ExecutionCount = &n
			}
			nb.Cells = append(nb.Cells, cell)
		case KindMarkdown:
			nb.Cells = append(nb.Cells, MarkdownCell{CellCommon: common})
		default:
			nb.Cells = append(nb.Cells, RawCell{CellCommon: common})
		}
	}
	return nb, nil
}

func cellKind(cellType string) Kind {
	switch cellType {
	case "code":
		return KindCode
	case "markdown":
		return KindMarkdown
	default:
		return KindRaw
	}
}

func joinSource(src gjson.Result) string {
	if !src.IsArray() {
		return src.String()
	}
	var b strings.Builder
	src.ForEach(func(_, line gjson.Result) bool {
		b.WriteString(line.String())
		return true
	})
	return b.String()
}

func notebookLanguage(root gjson.Result) string {
	for _, path := range []string{"metadata.language_info.name", "metadata.kernelspec.language"} {
		if v := strings.TrimSpace(root.Get(path).String()); v != "" {
			return strings.ToLower(v)
		}
	}
	return ""
}

// decodeText converts data to a UTF-8 string, honoring a UTF-8 or UTF-16 BOM.
func decodeText(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
