package plotter

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	_ "gonum.org/v1/plot/vg/vgeps"
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgpdf"
	_ "gonum.org/v1/plot/vg/vgsvg"

	"mcplot/internal/logger"
	"mcplot/internal/mccode"
)

const paletteColors = 64

func newPalette(name string) (palette.Palette, error) {
	switch name {
	case "heat":
		return palette.Heat(paletteColors, 1), nil
	case "rainbow":
		return palette.Rainbow(paletteColors, palette.Blue, palette.Red, 1, 1, 1), nil
	}
	return nil, errors.Errorf("unknown palette %q", name)
}

// build lays out a single monitor.
func (p *Plotter) build(m *mccode.Monitor) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = m.Title
	if pl.Title.Text == "" {
		pl.Title.Text = m.Key()
	}
	pl.X.Label.Text = m.XLabel
	pl.Y.Label.Text = m.YLabel

	var err error
	switch m.Kind {
	case mccode.Kind1D:
		err = p.addSeries(pl, m.X, m.I, m.Err)
	case mccode.Kind2D:
		err = p.addHeatMap(pl, m)
	default:
		i, e, _ := m.Intensity()
		pl.X.Label.Text = m.Component
		pl.Y.Label.Text = "Intensity"
		err = p.addSeries(pl, []float64{0}, []float64{i}, []float64{e})
	}
	if err != nil {
		return nil, errors.Wrap(err, m.Key())
	}
	return pl, nil
}

type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// addSeries draws a line with error bars. Points with a non-finite
// coordinate are skipped and a non-finite error draws no bar. In log mode only
// positive intensities are drawn and error bars are clipped above zero.
func (p *Plotter) addSeries(pl *plot.Plot, x, y, yerr []float64) error {
	xys := make(plotter.XYs, 0, len(x))
	errs := make(plotter.YErrors, 0, len(x))
	skipped := 0
	for i := range x {
		if !finite(x[i]) || !finite(y[i]) {
			skipped++
			continue
		}
		if p.logScale && y[i] <= 0 {
			continue
		}
		var e float64
		if i < len(yerr) && finite(yerr[i]) {
			e = math.Abs(yerr[i])
		}
		low := e
		if p.logScale && low >= y[i] {
			low = y[i] * 0.999
		}
		xys = append(xys, plotter.XY{X: x[i], Y: y[i]})
		errs = append(errs, struct{ Low, High float64 }{Low: low, High: e})
	}
	if skipped > 0 {
		logger.Debugf("skipped %d non-finite points", skipped)
	}
	if len(xys) == 0 {
		if p.logScale && len(x) > skipped {
			logger.Warnf("no positive values, falling back to linear scale")
			saved := p.logScale
			p.logScale = false
			defer func() { p.logScale = saved }()
			return p.addSeries(pl, x, y, yerr)
		}
		return errors.New("no data points")
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	bars, err := plotter.NewYErrorBars(errorPoints{XYs: xys, YErrors: errs})
	if err != nil {
		return err
	}
	pl.Add(line, bars)
	if len(xys) == 1 {
		points, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		pl.Add(points)
	}
	if p.logScale {
		pl.Y.Scale = plot.LogScale{}
		pl.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	pl.Add(plotter.NewGrid())
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// grid adapts a monitor matrix to plotter.GridXYZ. Cell centres are spread
// evenly over the monitor's xylimits.
type grid struct {
	z                      [][]float64
	xmin, xmax, ymin, ymax float64
}

func (g grid) Dims() (c, r int) {
	return len(g.z[0]), len(g.z)
}

func (g grid) Z(c, r int) float64 {
	return g.z[r][c]
}

func (g grid) X(c int) float64 {
	cols, _ := g.Dims()
	return g.xmin + (float64(c)+0.5)*(g.xmax-g.xmin)/float64(cols)
}

func (g grid) Y(r int) float64 {
	_, rows := g.Dims()
	return g.ymin + (float64(r)+0.5)*(g.ymax-g.ymin)/float64(rows)
}

func (p *Plotter) addHeatMap(pl *plot.Plot, m *mccode.Monitor) error {
	if len(m.Grid) == 0 || len(m.Grid[0]) == 0 {
		return errors.New("empty matrix")
	}
	g := grid{z: m.Grid}
	rows, cols := len(m.Grid), len(m.Grid[0])
	if len(m.Limits) == 4 && m.Limits[1] > m.Limits[0] && m.Limits[3] > m.Limits[2] {
		g.xmin, g.xmax, g.ymin, g.ymax = m.Limits[0], m.Limits[1], m.Limits[2], m.Limits[3]
	} else {
		g.xmax, g.ymax = float64(cols), float64(rows)
	}
	logged := false
	if p.logScale {
		g.z, logged = logMatrix(m.Grid)
	}

	pal, err := newPalette(p.opts.Palette)
	if err != nil {
		return err
	}
	hm := plotter.NewHeatMap(g, pal)
	flat := make([]float64, 0, rows*cols)
	for _, row := range g.z {
		flat = append(flat, row...)
	}
	hm.Min, hm.Max = floats.Min(flat), floats.Max(flat)
	if hm.Max <= hm.Min {
		hm.Max = hm.Min + 1
	}
	pl.Add(hm)
	if m.ZLabel != "" {
		pl.Title.Text += " [" + m.ZLabel + "]"
	}
	if logged {
		pl.Title.Text += " (log10)"
	}
	return nil
}

// logMatrix takes log10 of every cell. Cells that are not positive are set to
// the smallest positive value so the colour scale stays finite.
func logMatrix(z [][]float64) ([][]float64, bool) {
	minPositive := math.Inf(1)
	for _, row := range z {
		for _, v := range row {
			if v > 0 && v < minPositive {
				minPositive = v
			}
		}
	}
	if math.IsInf(minPositive, 1) {
		logger.Warnf("no positive values, falling back to linear scale")
		return z, false
	}
	floor := math.Log10(minPositive)
	out := make([][]float64, len(z))
	for r, row := range z {
		out[r] = make([]float64, len(row))
		for c, v := range row {
			if v > 0 {
				out[r][c] = math.Log10(v)
			} else {
				out[r][c] = floor
			}
		}
	}
	return out, true
}

// saveOverview tiles every monitor into one image.
func (p *Plotter) saveOverview(out, format string) error {
	var plots []*plot.Plot
	for _, key := range p.keys {
		m, ok := p.monitors[key]
		if !ok {
			continue
		}
		pl, err := p.build(m)
		if err != nil {
			return err
		}
		plots = append(plots, pl)
	}
	if len(plots) == 0 {
		return errors.New("no monitors to plot")
	}

	rows, cols := overviewGrid(len(plots))
	w, h := p.size()
	canvasW, canvasH := w*vg.Length(cols)/2, h*vg.Length(rows)/2
	if cols == 1 {
		canvasW = w
	}
	if rows == 1 {
		canvasH = h
	}
	c, err := draw.NewFormattedCanvas(canvasW, canvasH, format)
	if err != nil {
		return err
	}
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(2),
		PadBottom: vg.Points(2),
		PadLeft:   vg.Points(2),
		PadRight:  vg.Points(2),
	}
	dc := draw.New(c)
	for i, pl := range plots {
		pl.Draw(tiles.At(dc, i%cols, i/cols))
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
