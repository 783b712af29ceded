package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

type flagKind uint8

const (
	flagBool flagKind = iota + 1
	flagString
	flagInt
	flagChoice
)

// FlagSet is a typed flag registry for a command.
type FlagSet struct {
	defs []*flagDef
}

type flagDef struct {
	name      string
	shorthand rune
	usage     string
	kind      flagKind
	choices   []string // flagChoice only
	defText   string
	changed   bool

	boolPtr   *bool
	stringPtr *string
	intPtr    *int
}

func newFlagSet() *FlagSet {
	return &FlagSet{}
}

// Bool defines a boolean flag. "--name" alone sets it to true; "--name=false" clears it.
func (fs *FlagSet) Bool(name string, shorthand rune, def bool, usage string) *bool {
	p := &def
	fs.add(&flagDef{name: name, shorthand: shorthand, usage: usage, kind: flagBool, boolPtr: p})
	return p
}

// String defines a string flag.
func (fs *FlagSet) String(name string, shorthand rune, def string, usage string) *string {
	p := &def
	fs.add(&flagDef{name: name, shorthand: shorthand, usage: usage, kind: flagString, stringPtr: p})
	return p
}

// Int defines an integer flag.
func (fs *FlagSet) Int(name string, shorthand rune, def int, usage string) *int {
	p := &def
	fs.add(&flagDef{name: name, shorthand: shorthand, usage: usage, kind: flagInt, intPtr: p})
	return p
}

// Choice defines a string flag restricted to choices. def must be one of them.
func (fs *FlagSet) Choice(name string, shorthand rune, def string, choices []string, usage string) *string {
	if !slices.Contains(choices, def) {
		panic(fmt.Sprintf("cli: default %q of --%s is not a choice", def, name))
	}
	p := &def
	fs.add(&flagDef{name: name, shorthand: shorthand, usage: usage, kind: flagChoice, choices: choices, stringPtr: p})
	return p
}

// Changed reports whether the named flag was set on the command line.
func (fs *FlagSet) Changed(name string) bool {
	if d := fs.lookup(name); d != nil {
		return d.changed
	}
	return false
}

func (fs *FlagSet) add(d *flagDef) {
	if d.name == "" {
		panic("cli: flag name must be non-empty")
	}
	for _, other := range fs.defs {
		if other.name == d.name || (d.shorthand != 0 && other.shorthand == d.shorthand) {
			panic("cli: duplicate flag --" + d.name)
		}
	}
	d.defText = d.defaultValue()
	fs.defs = append(fs.defs, d)
}

func (fs *FlagSet) lookup(name string) *flagDef {
	if fs == nil {
		return nil
	}
	for _, d := range fs.defs {
		if d.name == name {
			return d
		}
	}
	return nil
}

// activeFlags returns the flags usable with c: persistent flags of c and its ancestors plus c's local flags.
func (c *Command) activeFlags() []*flagDef {
	var defs []*flagDef
	for _, cmd := range c.lineage() {
		if cmd.persistentFlags != nil {
			defs = append(defs, cmd.persistentFlags.defs...)
		}
	}
	if c.localFlags != nil {
		defs = append(defs, c.localFlags.defs...)
	}
	return defs
}

func findFlag(defs []*flagDef, name string, shorthand rune) *flagDef {
	for _, d := range defs {
		if (name != "" && d.name == name) || (shorthand != 0 && d.shorthand == shorthand) {
			return d
		}
	}
	return nil
}

func (d *flagDef) set(raw string) error {
	switch d.kind {
	case flagBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("not a boolean: %q", raw)
		}
		*d.boolPtr = v
	case flagString:
		*d.stringPtr = raw
	case flagInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("not an integer: %q", raw)
		}
		*d.intPtr = v
	case flagChoice:
		if !slices.Contains(d.choices, raw) {
			return fmt.Errorf("must be one of %s, got %q", strings.Join(d.choices, ", "), raw)
		}
		*d.stringPtr = raw
	}
	d.changed = true
	return nil
}

func (d *flagDef) display() string {
	if d.shorthand != 0 {
		return fmt.Sprintf("-%c/--%s", d.shorthand, d.name)
	}
	return "--" + d.name
}

// valueHint is the placeholder shown after the flag in help, "" for booleans.
func (d *flagDef) valueHint() string {
	switch d.kind {
	case flagString:
		return "string"
	case flagInt:
		return "int"
	case flagChoice:
		return strings.Join(d.choices, "|")
	}
	return ""
}

func (d *flagDef) defaultValue() string {
	switch d.kind {
	case flagInt:
		if *d.intPtr != 0 {
			return strconv.Itoa(*d.intPtr)
		}
	case flagString, flagChoice:
		return *d.stringPtr
	}
	return ""
}
