// Package plotter parses a McCode result and renders its series as image files
// with gonum/plot.
package plotter

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/plot/vg"

	"mcplot/internal/logger"
	"mcplot/internal/mccode"
)

// OverviewKey names the series that tiles every monitor of a manifest into
// one image. It is always the first key of a manifest.
const OverviewKey = "< overview >"

// Options control how images are rendered and where they are written.
type Options struct {
	OutputDir string  // defaults to the directory of the source file
	Format    string  // png, svg, pdf, eps, jpg or tif
	Width     float64 // inches
	Height    float64 // inches
	Palette   string  // heat or rainbow
}

func DefaultOptions() Options {
	return Options{
		Format:  "png",
		Width:   6,
		Height:  4.5,
		Palette: "heat",
	}
}

var formats = map[string]bool{
	"png": true, "svg": true, "pdf": true, "eps": true, "jpg": true, "jpeg": true, "tif": true, "tiff": true,
}

// Plotter owns the series parsed from one simulation reference.
type Plotter struct {
	source   string
	noqt     bool
	logScale bool
	opts     Options

	sim      *mccode.Simulation
	keys     []string
	monitors map[string]*mccode.Monitor
}

// New parses path, which is either a .sim manifest or a single monitor file.
// noqt records that the caller runs without the interactive viewer.
func New(path string, noqt, logScale bool, opts Options) (*Plotter, error) {
	def := DefaultOptions()
	if opts.Format == "" {
		opts.Format = def.Format
	}
	opts.Format = strings.ToLower(opts.Format)
	if !formats[opts.Format] {
		return nil, errors.Errorf("unsupported image format %q", opts.Format)
	}
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.Palette == "" {
		opts.Palette = def.Palette
	}
	if _, err := newPalette(opts.Palette); err != nil {
		return nil, err
	}

	p := &Plotter{
		source:   path,
		noqt:     noqt,
		logScale: logScale,
		opts:     opts,
		monitors: map[string]*mccode.Monitor{},
	}
	if filepath.Ext(path) == ".sim" {
		sim, err := mccode.ParseSim(path)
		if err != nil {
			return nil, err
		}
		p.sim = sim
		if len(sim.Monitors) > 0 {
			p.keys = append(p.keys, OverviewKey)
		}
		for _, m := range sim.Monitors {
			p.addMonitor(m)
		}
	} else {
		m, err := mccode.ParseDat(path)
		if err != nil {
			return nil, err
		}
		p.addMonitor(m)
	}
	logger.Logger.WithField("source", path).WithField("series", len(p.keys)).Debug("simulation loaded")
	return p, nil
}

func (p *Plotter) addMonitor(m *mccode.Monitor) {
	key := m.Key()
	if _, dup := p.monitors[key]; dup {
		logger.Warnf("duplicate monitor %s ignored", key)
		return
	}
	p.monitors[key] = m
	p.keys = append(p.keys, key)
}

// DataKeys returns the series names in display order.
func (p *Plotter) DataKeys() []string {
	return append([]string(nil), p.keys...)
}

// Monitor returns the monitor listed under key. The overview key has none.
func (p *Plotter) Monitor(key string) (*mccode.Monitor, bool) {
	m, ok := p.monitors[key]
	return m, ok
}

// Simulation returns the parsed manifest, or nil for a single monitor file.
func (p *Plotter) Simulation() *mccode.Simulation {
	return p.sim
}

func (p *Plotter) Source() string {
	return p.source
}

func (p *Plotter) NoQt() bool {
	return p.noqt
}

func (p *Plotter) SetLogScale(enabled bool) {
	p.logScale = enabled
}

func (p *Plotter) LogScale() bool {
	return p.logScale
}

// OutputDir is where rendered images are written.
func (p *Plotter) OutputDir() string {
	if p.opts.OutputDir != "" {
		return p.opts.OutputDir
	}
	return filepath.Dir(p.source)
}

// Plot renders the series in the configured format and returns the path of
// the written image.
func (p *Plotter) Plot(key string) (string, error) {
	return p.Save(key, p.opts.Format)
}

// Save renders the series as an image of the given format.
func (p *Plotter) Save(key, format string) (string, error) {
	format = strings.ToLower(format)
	if !formats[format] {
		return "", errors.Errorf("unsupported image format %q", format)
	}
	if key != OverviewKey {
		if _, ok := p.monitors[key]; !ok {
			return "", errors.Errorf("unknown series %q", key)
		}
	}
	if err := os.MkdirAll(p.OutputDir(), 0755); err != nil {
		return "", errors.Wrap(err, "create output directory")
	}
	out := filepath.Join(p.OutputDir(), p.fileName(key, format))

	var err error
	if key == OverviewKey {
		err = p.saveOverview(out, format)
	} else {
		err = p.saveMonitor(p.monitors[key], out)
	}
	if err != nil {
		return "", errors.Wrapf(err, "plot %s", key)
	}
	logger.Logger.WithField("series", key).WithField("file", out).Debug("plot written")
	return out, nil
}

func (p *Plotter) fileName(key, format string) string {
	stem := "overview"
	if key != OverviewKey {
		stem = strings.TrimSuffix(key, filepath.Ext(key))
		stem = strings.Map(func(r rune) rune {
			switch r {
			case '/', '\\', ' ', ':':
				return '_'
			}
			return r
		}, stem)
	}
	if p.logScale {
		stem += "_log"
	}
	return stem + "." + format
}

func (p *Plotter) size() (vg.Length, vg.Length) {
	return vg.Length(p.opts.Width) * vg.Inch, vg.Length(p.opts.Height) * vg.Inch
}

func (p *Plotter) saveMonitor(m *mccode.Monitor, out string) error {
	pl, err := p.build(m)
	if err != nil {
		return err
	}
	w, h := p.size()
	return pl.Save(w, h, out)
}

// overviewGrid returns a near-square tiling for n plots.
func overviewGrid(n int) (rows, cols int) {
	if n <= 0 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = (n + cols - 1) / cols
	return rows, cols
}
