package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

func writeHelp(w io.Writer, cmd *Command) {
	if cmd.Short != "" {
		fmt.Fprintf(w, "%s - %s\n", cmd.FullName(), cmd.Short)
	} else {
		fmt.Fprintln(w, cmd.FullName())
	}
	if cmd.Long != "" {
		fmt.Fprintf(w, "\n%s\n", strings.TrimRight(cmd.Long, "\n"))
	}

	fmt.Fprintf(w, "\nUsage:\n  %s\n", usageLine(cmd))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(cmd.children) > 0 {
		fmt.Fprintln(w, "\nCommands:")
		for _, child := range cmd.children {
			fmt.Fprintf(tw, "  %s\t%s\n", child.Name, child.Short)
		}
		tw.Flush()
	}

	if defs := cmd.activeFlags(); len(defs) > 0 {
		fmt.Fprintln(w, "\nFlags:")
		for _, d := range defs {
			fmt.Fprintf(tw, "  %s\t%s\n", flagNames(d), flagUsage(d))
		}
		tw.Flush()
	}

	if cmd.Example != "" {
		fmt.Fprintln(w, "\nExample:")
		for _, line := range strings.Split(strings.TrimRight(cmd.Example, "\n"), "\n") {
			if line == "" {
				fmt.Fprintln(w)
				continue
			}
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

func usageLine(cmd *Command) string {
	parts := []string{cmd.FullName()}
	if len(cmd.activeFlags()) > 0 {
		parts = append(parts, "[flags]")
	}
	if len(cmd.children) > 0 && cmd.Run == nil {
		parts = append(parts, "<command>")
	}
	if cmd.Usage != "" {
		parts = append(parts, cmd.Usage)
	}
	return strings.Join(parts, " ")
}

func flagNames(d *flagDef) string {
	names := "    --" + d.name
	if d.shorthand != 0 {
		names = fmt.Sprintf("-%c, --%s", d.shorthand, d.name)
	}
	if hint := d.valueHint(); hint != "" {
		names += " <" + hint + ">"
	}
	return names
}

func flagUsage(d *flagDef) string {
	usage := strings.TrimSpace(d.usage)
	if d.defText != "" {
		usage += fmt.Sprintf(" (default %s)", d.defText)
	}
	return strings.TrimSpace(usage)
}
