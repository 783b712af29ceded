package render

import (
	"encoding/json"
	"io"

	"github.com/sanity-io/litter"
)

// JSON writes v as indented JSON. HTML characters are not escaped, so source code stays readable.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// Dump writes a Go-syntax debug dump of v.
func Dump(w io.Writer, v any) error {
	opts := litter.Options{
		HidePrivateFields: true,
		StripPackageNames: true,
	}
	_, err := io.WriteString(w, opts.Sdump(v)+"\n")
	return err
}
