package cli

import (
	"io"
	"os"
	"sync"

	"github.com/nbreview/nbreview/internal/compare"
	"github.com/nbreview/nbreview/internal/config"
	qcli "github.com/nbreview/nbreview/internal/q/cli"
	"github.com/nbreview/nbreview/internal/render"
)

// loadConfig is replaced in tests to isolate them from the user's files and environment.
var loadConfig = config.Load

type configState struct {
	once sync.Once
	cfg  *config.Config
	err  error
}

func (s *configState) get() (*config.Config, error) {
	s.once.Do(func() {
		s.cfg, s.err = loadConfig()
	})
	return s.cfg, s.err
}

// outputFlags are the root's persistent flags that override output settings from the configuration.
type outputFlags struct {
	fs    *qcli.FlagSet
	width *int
	color *string
}

func addOutputFlags(root *qcli.Command) *outputFlags {
	fs := root.PersistentFlags()
	return &outputFlags{
		fs:    fs,
		width: fs.Int("width", 'w', 0, "Output width in columns (0 means the terminal width)"),
		color: fs.Choice("color", 0, config.ColorAuto, []string{config.ColorAuto, config.ColorAlways, config.ColorNever}, "When to color output"),
	}
}

// apply overwrites cfg's settings with the flags that were given on the command line.
func (f *outputFlags) apply(cfg *config.Config) error {
	if f.fs.Changed("width") {
		cfg.Width = *f.width
	}
	if f.fs.Changed("color") {
		cfg.Color = *f.color
	}
	if err := cfg.Validate(); err != nil {
		return qcli.Usagef("%v", err)
	}
	return nil
}

// renderOptions resolves cfg for output to w. Width and color auto-detection only apply when w is a file.
func renderOptions(cfg *config.Config, w io.Writer) render.Options {
	f, _ := w.(*os.File)
	return render.Options{
		Width:         cfg.OutputWidth(f),
		Color:         cfg.UseColor(f),
		TabWidth:      cfg.TabWidth,
		ShowUnchanged: cfg.ShowUnchanged,
	}
}

func limits(cfg *config.Config) compare.Limits {
	return compare.Limits{MaxCells: cfg.MaxCells, MaxLines: cfg.MaxLines, Parallelism: cfg.Parallelism}
}
