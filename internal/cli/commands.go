package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nbreview/nbreview/internal/align"
	"github.com/nbreview/nbreview/internal/compare"
	"github.com/nbreview/nbreview/internal/config"
	"github.com/nbreview/nbreview/internal/notebook"
	qcli "github.com/nbreview/nbreview/internal/q/cli"
	"github.com/nbreview/nbreview/internal/render"
	"github.com/nbreview/nbreview/internal/reviewstore"
	"github.com/nbreview/nbreview/internal/simplelogger"
)

// Output formats.
const (
	formatText    = "text"
	formatJSON    = "json"
	formatDump    = "dump"
	formatUnified = "unified"
)

func newRootCommand() *qcli.Command {
	cfgState := &configState{}

	root := &qcli.Command{
		Name:  "nbreview",
		Short: "Compare notebook submissions against a reference, cell by cell and line by line.",
		Long: `Cells are matched by their description: metadata "description", a markdown heading, or a
scaffold comment like "# Step 2: Clean". Cells without one are matched by position.`,
	}
	output := addOutputFlags(root)

	// withConfig loads the configuration and applies the output flags before next runs.
	withConfig := func(next func(c *qcli.Context, cfg *config.Config) error) qcli.RunFunc {
		return func(c *qcli.Context) error {
			cfg, err := cfgState.get()
			if err != nil {
				return qcli.ExitError{Code: 1, Err: err}
			}
			if err := output.apply(cfg); err != nil {
				return err
			}
			return next(c, cfg)
		}
	}

	root.AddCommand(
		newCompareCommand(withConfig),
		newCellsCommand(withConfig),
		newLinesCommand(withConfig),
		newReviewCommand(withConfig),
		&qcli.Command{
			Name:  "config",
			Short: "Print the effective configuration and where each setting came from",
			Args:  qcli.NoArgs,
			Run: withConfig(func(c *qcli.Context, cfg *config.Config) error {
				return render.JSON(c.Out, cfg)
			}),
		},
		&qcli.Command{
			Name:  "version",
			Short: "Print the version",
			Args:  qcli.NoArgs,
			Run: func(c *qcli.Context) error {
				_, err := fmt.Fprintf(c.Out, "nbreview %s\n", Version)
				return err
			},
		},
	)
	return root
}

type configRunner func(next func(c *qcli.Context, cfg *config.Config) error) qcli.RunFunc

func newCompareCommand(withConfig configRunner) *qcli.Command {
	cmd := &qcli.Command{
		Name:  "compare",
		Short: "Compare two or three notebooks",
		Long: `Compares each notebook against the base notebook. With three notebooks, both are shown
side by side against the base, and a base line is marked changed when either differs.`,
		Usage: "NOTEBOOK NOTEBOOK [NOTEBOOK]",
		Example: `nbreview compare reference.ipynb alice.ipynb
nbreview compare --base 1 alice.ipynb reference.ipynb bob.ipynb
nbreview compare --format json reference.ipynb alice.py`,
		Args: qcli.RangeArgs(2, 3),
	}
	base := cmd.Flags().Int("base", 'b', 0, "Index of the base notebook among the args")
	format := cmd.Flags().Choice("format", 'f', formatText, []string{formatText, formatJSON, formatDump}, "Output format")
	showUnchanged := cmd.Flags().Bool("show-unchanged", 'u', false, "Print the lines of unchanged cells")

	cmd.Run = withConfig(func(c *qcli.Context, cfg *config.Config) error {
		if cmd.Flags().Changed("show-unchanged") {
			cfg.ShowUnchanged = *showUnchanged
		}
		report, err := compareFiles(c, cfg, c.Args, *base)
		if err != nil {
			return err
		}

		switch *format {
		case formatJSON:
			return render.JSON(c.Out, report)
		case formatDump:
			return render.Dump(c.Out, report)
		}
		if err := render.Text(c.Out, report, renderOptions(cfg, c.Out)); err != nil {
			return err
		}
		_, err = fmt.Fprintf(c.Out, "review id: %s\n", reviewstore.ComparisonID(*base, c.Args...))
		return err
	})
	return cmd
}

func newCellsCommand(withConfig configRunner) *qcli.Command {
	cmd := &qcli.Command{
		Name:  "cells",
		Short: "Show how the cells of two or three notebooks are matched, without line detail",
		Usage: "NOTEBOOK NOTEBOOK [NOTEBOOK]",
		Args:  qcli.RangeArgs(2, 3),
	}
	base := cmd.Flags().Int("base", 'b', 0, "Index of the base notebook among the args")

	cmd.Run = withConfig(func(c *qcli.Context, cfg *config.Config) error {
		report, err := compareFiles(c, cfg, c.Args, *base)
		if err != nil {
			return err
		}
		return render.Outline(c.Out, report, renderOptions(cfg, c.Out))
	})
	return cmd
}

// compareFiles loads the notebooks at paths and compares them against paths[base].
func compareFiles(c *qcli.Context, cfg *config.Config, paths []string, base int) (*compare.Report, error) {
	if base < 0 || base >= len(paths) {
		return nil, qcli.Usagef("--base must be between 0 and %d, got %d", len(paths)-1, base)
	}
	notebooks := make([]*notebook.Notebook, len(paths))
	for i, path := range paths {
		nb, err := notebook.Load(path)
		if err != nil {
			return nil, err
		}
		notebooks[i] = nb
	}

	report, err := compare.New(limits(cfg)).Compare(c.Context, notebooks, base)
	if err != nil {
		if errors.Is(err, compare.ErrTooLarge) {
			return nil, fmt.Errorf("%w (raise max_cells or NBREVIEW_MAX_CELLS to compare anyway)", err)
		}
		return nil, err
	}
	for _, w := range report.Warnings {
		simplelogger.Log("warning: %s", w)
	}
	return report, nil
}

func newLinesCommand(withConfig configRunner) *qcli.Command {
	cmd := &qcli.Command{
		Name:  "lines",
		Short: "Align plain text files line by line against a base file",
		Usage: "BASE VARIANT [VARIANT]",
		Example: `nbreview lines solution.py attempt.py
nbreview lines --format unified solution.py attempt.py`,
		Args: qcli.RangeArgs(2, 3),
	}
	format := cmd.Flags().Choice("format", 'f', formatText, []string{formatText, formatUnified, formatJSON}, "Output format (unified needs exactly one variant)")

	cmd.Run = withConfig(func(c *qcli.Context, cfg *config.Config) error {
		if *format == formatUnified && len(c.Args) != 2 {
			return qcli.Usagef("--format unified needs exactly one variant, got %d", len(c.Args)-1)
		}
		seqs := make([][]string, len(c.Args))
		for i, path := range c.Args {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			seqs[i] = align.SplitLines(align.NormalizeEOL(string(data)))
		}
		opts := renderOptions(cfg, c.Out)

		if len(seqs) == 3 {
			rows := align.Reconcile(seqs[0], seqs[1], seqs[2])
			if *format == formatJSON {
				return render.JSON(c.Out, rows)
			}
			return render.ThreeWayLines(c.Out, rows, opts)
		}

		la := align.AlignLines(seqs[0], seqs[1])
		switch *format {
		case formatJSON:
			return render.JSON(c.Out, la)
		case formatUnified:
			return render.Unified(c.Out, la, filepath.ToSlash(c.Args[0]), filepath.ToSlash(c.Args[1]), cfg.ContextLines, opts.Color)
		}
		return render.PairLines(c.Out, la, opts)
	})
	return cmd
}
