package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"

	"mcplot/internal"
	"mcplot/internal/logger"
	"mcplot/internal/plotter"
	"mcplot/internal/viewer"
)

type options struct {
	noqt       bool
	logScale   bool
	list       bool
	configFile string
	outputDir  string
	format     string
	logLevel   string
}

func newFlagSet(opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.BoolVarP(&opts.noqt, "noqt", "n", false, "plot simulation headless and exit")
	fs.BoolVarP(&opts.logScale, "logscale", "l", false, "enables log scale as default")
	fs.StringVar(&opts.configFile, "config", "", "configuration file")
	fs.StringVarP(&opts.outputDir, "output", "o", "", "directory plots are written to, default: next to the simulation file")
	fs.StringVar(&opts.format, "format", "", "image format for plots: png, svg, pdf, eps, jpeg or tiff")
	fs.StringVar(&opts.logLevel, "loglevel", "", "log level: debug, info, warn or error")
	fs.BoolVar(&opts.list, "list", false, "list the plottable series and exit")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [simulation]\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "simulation: simulation file (.sim), monitor file (.dat), directory, or none (current dir)")
		fmt.Fprintln(os.Stderr)
		fs.PrintDefaults()
	}
	return fs
}

// config loads the config file, if one was given, and applies the flags the
// user set on top of it.
func (opts *options) config(fs *flag.FlagSet) (*internal.Config, error) {
	cfg := internal.DefaultConfig()
	if len(opts.configFile) > 0 {
		var err error
		if cfg, err = internal.LoadConfig(opts.configFile); err != nil {
			return nil, err
		}
	}
	if fs.Changed("output") {
		cfg.OutputDir = opts.outputDir
	}
	if fs.Changed("format") {
		cfg.Format = opts.format
	}
	if fs.Changed("loglevel") {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, nil
}

func main() {
	var opts options
	fs := newFlagSet(&opts)
	fs.Parse(os.Args[1:])

	cfg, err := opts.config(fs)
	if err != nil {
		fail(err)
	}
	if err := logger.Init(cfg.LogLevel, os.Stderr); err != nil {
		fail(err)
	}

	launcher := &internal.Launcher{
		NoQt:     opts.noqt,
		LogScale: opts.logScale,
		List:     opts.list,
		Stdout:   os.Stdout,
		NewPlotter: func(path string, noqt, logScale bool) (internal.Plotter, error) {
			return plotter.New(path, noqt, logScale, cfg.PlotOptions())
		},
		NewViewer: func() (internal.Viewer, error) {
			return viewer.New(), nil
		},
	}

	err = launcher.Run(fs.Args())
	switch {
	case err == nil:
	case errors.Is(err, internal.ErrSimNotFound):
		// Already reported, not a failure.
	default:
		fail(err)
	}
}

func fail(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}
