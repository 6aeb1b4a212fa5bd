package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"mcplot/internal/logger"
	"mcplot/internal/mccode"
)

// DefaultSimFile is the manifest name McCode writes into a result directory.
const DefaultSimFile = "mccode.sim"

var (
	ErrSimNotFound = errors.New("Sim file not found")
	ErrNoSeries    = errors.New("no plottable series found")
)

// Plotter is the facade over one parsed simulation result.
type Plotter interface {
	DataKeys() []string
	Plot(key string) (string, error)
	Monitor(key string) (*mccode.Monitor, bool)
	SetLogScale(enabled bool)
	OutputDir() string
}

// Viewer takes over an interactive session until the user closes it.
type Viewer interface {
	Run(p Plotter, logScale bool) error
}

// Launcher resolves the simulation reference, builds the plot facade and hands
// it either to the headless plotter or to the viewer. The viewer is only
// created when it is actually needed.
type Launcher struct {
	NoQt     bool
	LogScale bool
	List     bool
	Stdout   io.Writer

	NewPlotter func(path string, noqt, logScale bool) (Plotter, error)
	NewViewer  func() (Viewer, error)
}

// ResolveSimulation applies the lookup rules for the positional arguments:
// only the first one is used, none means mccode.sim in the working directory,
// and a directory means the mccode.sim inside it.
func ResolveSimulation(args []string) (string, error) {
	simulation := DefaultSimFile
	if len(args) > 0 {
		simulation = args[0]
	}
	logger.Debugf("simulation file/dir: %s", simulation)

	if fi, err := os.Stat(simulation); err == nil && fi.IsDir() {
		abs, err := filepath.Abs(filepath.Join(simulation, DefaultSimFile))
		if err != nil {
			return "", errors.Wrap(err, "resolve simulation directory")
		}
		simulation = abs
	}

	fi, err := os.Stat(simulation)
	if err != nil || !fi.Mode().IsRegular() {
		return "", ErrSimNotFound
	}
	return simulation, nil
}

func (l *Launcher) Run(args []string) error {
	out := l.Stdout
	if out == nil {
		out = os.Stdout
	}

	simulation, err := ResolveSimulation(args)
	if err != nil {
		if errors.Is(err, ErrSimNotFound) {
			fmt.Fprintln(out, err)
		}
		return err
	}

	var plotter Plotter
	if filepath.Ext(simulation) == ".sim" {
		fmt.Fprintf(out, "Using sim file: %s\n", simulation)
		plotter, err = l.NewPlotter(simulation, l.NoQt, l.LogScale)
	} else {
		datFile := simulation
		fmt.Fprintln(out, "Plot single monitor")
		plotter, err = l.NewPlotter(datFile, l.NoQt, l.LogScale)
	}
	if err != nil {
		return err
	}

	if l.List {
		printKeys(out, plotter)
		return nil
	}

	if l.NoQt {
		keys := plotter.DataKeys()
		if len(keys) == 0 {
			return ErrNoSeries
		}
		file, err := plotter.Plot(keys[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Plot written to %s\n", file)
		return nil
	}

	fmt.Fprintln(out, "Loading viewer...")
	viewer, err := l.NewViewer()
	if err != nil {
		return errors.Wrap(err, "failed to load viewer")
	}
	return viewer.Run(plotter, l.LogScale)
}

func printKeys(out io.Writer, p Plotter) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"#", "Series", "Type", "Title", "I", "I_err", "N"})
	for i, key := range p.DataKeys() {
		m, ok := p.Monitor(key)
		if !ok {
			t.AppendRow(table.Row{i, key, "", "all monitors", "", "", ""})
			continue
		}
		intensity, e, n := m.Intensity()
		t.AppendRow(table.Row{
			i,
			key,
			m.Kind.String(),
			m.Title,
			fmt.Sprintf("%g", intensity),
			fmt.Sprintf("%g", e),
			fmt.Sprintf("%g", n),
		})
	}
	t.Render()
}
