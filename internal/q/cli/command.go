// Package cli is a small command-tree framework: commands with subcommands, typed flags, generated help, and exit codes.
//
// Flags may appear anywhere after the command that defines them. Persistent flags are inherited by every descendant. "--" ends flag parsing.
package cli

// RunFunc is a command handler.
type RunFunc func(c *Context) error

// ArgsFunc validates positional args. It should return a UsageError for user-facing usage mistakes.
type ArgsFunc func(args []string) error

// Command is one node of a command tree.
type Command struct {
	Name    string // token that selects this command
	Short   string // one-line description shown in the parent's help
	Long    string
	Usage   string // positional args synopsis, e.g. "BASE OTHER [OTHER]"
	Example string

	Args ArgsFunc // optional
	Run  RunFunc  // nil for pure command groups

	parent          *Command
	children        []*Command
	localFlags      *FlagSet
	persistentFlags *FlagSet
}

// AddCommand attaches children to c. It panics on nil, unnamed, duplicate, or already-attached children.
func (c *Command) AddCommand(children ...*Command) {
	for _, child := range children {
		switch {
		case child == nil:
			panic("cli: AddCommand called with nil child")
		case child.Name == "":
			panic("cli: AddCommand called with unnamed child")
		case child.parent != nil:
			panic("cli: " + child.Name + " already has a parent")
		case c.child(child.Name) != nil:
			panic("cli: duplicate command " + child.Name)
		}
		child.parent = c
		c.children = append(c.children, child)
	}
}

// Commands returns the direct children of c in the order they were added.
func (c *Command) Commands() []*Command {
	return append([]*Command(nil), c.children...)
}

// Flags returns c's local flags.
func (c *Command) Flags() *FlagSet {
	if c.localFlags == nil {
		c.localFlags = newFlagSet()
	}
	return c.localFlags
}

// PersistentFlags returns the flags c shares with all of its descendants.
func (c *Command) PersistentFlags() *FlagSet {
	if c.persistentFlags == nil {
		c.persistentFlags = newFlagSet()
	}
	return c.persistentFlags
}

// FullName is the space-joined path of command names from the root to c.
func (c *Command) FullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.FullName() + " " + c.Name
}

func (c *Command) child(name string) *Command {
	for _, ch := range c.children {
		if ch.Name == name {
			return ch
		}
	}
	return nil
}

// lineage returns the commands from the root down to c.
func (c *Command) lineage() []*Command {
	var out []*Command
	for cur := c; cur != nil; cur = cur.parent {
		out = append([]*Command{cur}, out...)
	}
	return out
}
