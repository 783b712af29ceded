package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nbreview/nbreview/internal/align"
	"github.com/nbreview/nbreview/internal/config"
	qcli "github.com/nbreview/nbreview/internal/q/cli"
	"github.com/nbreview/nbreview/internal/render"
	"github.com/nbreview/nbreview/internal/reviewstore"
)

func newReviewCommand(withConfig configRunner) *qcli.Command {
	review := &qcli.Command{
		Name:  "review",
		Short: "Record and list verdicts on compared cells",
		Long: `A comparison is named by the review id printed by "nbreview compare", or by passing the
same notebook paths (and --base) that were compared.`,
	}

	add := &qcli.Command{
		Name:    "add",
		Short:   "Record a verdict on one cell",
		Usage:   "[NOTEBOOK NOTEBOOK [NOTEBOOK]]",
		Example: `nbreview review add --cell "Step 2: Clean" --verdict needs-work --note "drops NaNs too early" reference.ipynb alice.ipynb`,
		Args:    optionalNotebooks,
	}
	addID := addComparisonFlags(add)
	cell := add.Flags().String("cell", 'c', "", "Cell key (its description, or \"#N\" for an undescribed cell)")
	verdict := add.Flags().String("verdict", 'v', "", "ok, needs-work, or skip")
	note := add.Flags().String("note", 'n', "", "Free-form note")
	reviewer := add.Flags().String("reviewer", 'r', "", "Reviewer name (default: reviewer setting)")

	add.Run = withConfig(func(c *qcli.Context, cfg *config.Config) error {
		id, err := addID.resolve(c.Args)
		if err != nil {
			return err
		}
		who := *reviewer
		if who == "" {
			who = cfg.Reviewer
		}

		store, err := reviewstore.Open(c.Context, cfg.ReviewDB)
		if err != nil {
			return err
		}
		defer store.Close()

		m, err := store.Add(c.Context, reviewstore.Mark{Comparison: id, CellKey: cellKey(*cell), Reviewer: who, Verdict: reviewstore.Verdict(*verdict), Note: *note})
		if errors.Is(err, reviewstore.ErrInvalidMark) {
			return qcli.Usagef("%v", err)
		} else if err != nil {
			return err
		}
		_, err = fmt.Fprintf(c.Out, "%s %s %q\n", m.ID, m.Verdict, displayCellKey(m.CellKey))
		return err
	})

	list := &qcli.Command{
		Name:  "list",
		Short: "List the verdicts recorded for a comparison",
		Usage: "[NOTEBOOK NOTEBOOK [NOTEBOOK]]",
		Args:  optionalNotebooks,
	}
	listID := addComparisonFlags(list)
	latest := list.Flags().Bool("latest", 'l', false, "Only show the newest verdict of each cell")
	format := list.Flags().Choice("format", 'f', formatText, []string{formatText, formatJSON}, "Output format")

	list.Run = withConfig(func(c *qcli.Context, cfg *config.Config) error {
		id, err := listID.resolve(c.Args)
		if err != nil {
			return err
		}

		store, err := reviewstore.Open(c.Context, cfg.ReviewDB)
		if err != nil {
			return err
		}
		defer store.Close()

		marks, err := store.List(c.Context, id)
		if err != nil {
			return err
		}
		if *latest {
			marks = newestPerCell(marks)
		}
		if *format == formatJSON {
			if marks == nil {
				marks = []reviewstore.Mark{}
			}
			return render.JSON(c.Out, marks)
		}
		return writeMarks(c, marks)
	})

	review.AddCommand(add, list)
	return review
}

func optionalNotebooks(args []string) error {
	if len(args) == 0 {
		return nil
	}
	return qcli.RangeArgs(2, 3)(args)
}

// comparisonFlags name a comparison either directly or by its notebook paths.
type comparisonFlags struct {
	id   *string
	base *int
}

func addComparisonFlags(cmd *qcli.Command) comparisonFlags {
	return comparisonFlags{
		id:   cmd.Flags().String("comparison", 'i', "", "Review id printed by compare"),
		base: cmd.Flags().Int("base", 'b', 0, "Index of the base notebook among the args"),
	}
}

func (f comparisonFlags) resolve(paths []string) (string, error) {
	id := strings.TrimSpace(*f.id)
	switch {
	case id != "" && len(paths) > 0:
		return "", qcli.Usagef("give either --comparison or notebook paths, not both")
	case id != "":
		return id, nil
	case len(paths) == 0:
		return "", qcli.Usagef("missing --comparison or notebook paths")
	case *f.base < 0 || *f.base >= len(paths):
		return "", qcli.Usagef("--base must be between 0 and %d, got %d", len(paths)-1, *f.base)
	}
	return reviewstore.ComparisonID(*f.base, paths...), nil
}

// newestPerCell keeps the newest mark of each cell, in order of each cell's first mark.
func newestPerCell(marks []reviewstore.Mark) []reviewstore.Mark {
	index := map[string]int{}
	var out []reviewstore.Mark
	for _, m := range marks {
		if i, ok := index[m.CellKey]; ok {
			out[i] = m
			continue
		}
		index[m.CellKey] = len(out)
		out = append(out, m)
	}
	return out
}

func writeMarks(c *qcli.Context, marks []reviewstore.Mark) error {
	if len(marks) == 0 {
		_, err := fmt.Fprintln(c.Out, "no verdicts recorded")
		return err
	}
	tw := tabwriter.NewWriter(c.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tCELL\tVERDICT\tREVIEWER\tNOTE")
	for _, m := range marks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.CreatedAt.Local().Format(time.DateTime), displayCellKey(m.CellKey), m.Verdict, m.Reviewer, m.Note)
	}
	return tw.Flush()
}

// cellKey maps "#N" to the key of the undescribed cell at index N. Other keys are descriptions and pass through.
func cellKey(arg string) string {
	arg = strings.TrimSpace(arg)
	if rest, ok := strings.CutPrefix(arg, "#"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 0 {
			return align.SyntheticKey(n)
		}
	}
	return arg
}

func displayCellKey(key string) string {
	if align.IsSyntheticKey(key) {
		return "#" + strings.TrimLeftFunc(key, func(r rune) bool { return r < '0' || r > '9' })
	}
	return key
}
