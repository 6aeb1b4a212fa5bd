// Package viewer is the interactive terminal front end. It lists the series of
// a parsed simulation, shows the headers and intensity distribution of the
// selected one, and renders images through the plot facade on demand.
package viewer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"gonum.org/v1/gonum/floats"

	"mcplot/internal"
	"mcplot/internal/logger"
	"mcplot/internal/mccode"
	"mcplot/internal/widget"
)

const (
	histogramBins  = 10
	histogramWidth = 30
	logPaneHeight  = 6

	intensityColumn = 3
)

type Viewer struct {
	app          *tview.Application
	monitorTable *widget.SortedTable
	detailText   *tview.TextView
	logText      *tview.TextView
	statusText   *tview.TextView

	plotter  internal.Plotter
	logScale bool
	message  string
	freeFunc func(path string) uint64
}

func New() *Viewer {
	return &Viewer{freeFunc: diskSpaceAvailable}
}

// Run blocks until the user quits. Log output goes to the log pane while the
// viewer runs and back to its previous destination afterwards.
func (v *Viewer) Run(p internal.Plotter, logScale bool) error {
	v.setup(p, logScale)
	restore := logger.Redirect(v.logText)
	defer restore()
	logger.Infof("viewer started with %d series", len(p.DataKeys()))
	return v.app.Run()
}

func (v *Viewer) setup(p internal.Plotter, logScale bool) {
	v.plotter = p
	v.logScale = logScale
	v.plotter.SetLogScale(logScale)
	if v.freeFunc == nil {
		v.freeFunc = diskSpaceAvailable
	}
	v.setupUI()
	v.drawMonitorTable()
	if keys := p.DataKeys(); len(keys) > 0 {
		v.monitorTable.Select(keys[0])
		v.selectMonitor(keys[0])
	}
	v.drawStatus()
}

func (v *Viewer) setupUI() {
	tview.Styles.PrimitiveBackgroundColor = tcell.ColorDefault

	v.monitorTable = widget.NewSortedTable()
	v.monitorTable.SetSelectable(true)
	v.monitorTable.SetBorder(true)
	v.monitorTable.SetTitleAlign(tview.AlignLeft)
	v.monitorTable.SetSelectedStyle(tcell.StyleDefault.Attributes(tcell.AttrReverse))
	v.monitorTable.SetSelectionChangedFunc(v.selectMonitor)
	v.monitorTable.SetSelectedFunc(v.plot)
	v.monitorTable.SetupFromType(monitorData{})

	v.detailText = tview.NewTextView()
	v.detailText.SetBorder(true).SetTitle(" Details ").SetTitleAlign(tview.AlignLeft)

	v.logText = tview.NewTextView()
	v.logText.SetBorder(true).SetTitle(" Log ").SetTitleAlign(tview.AlignLeft)
	v.logText.ScrollToEnd()

	v.statusText = tview.NewTextView()

	help := tview.NewTextView().
		SetText(" Enter/p: plot  s: plot all  l: toggle log scale  i: sort by intensity  o: series order  q: quit")
	help.SetTextColor(tcell.ColorYellow)

	mainPanel := tview.NewFlex()
	mainPanel.SetDirection(tview.FlexRow)
	mainPanel.AddItem(v.monitorTable, 0, 1, true)
	mainPanel.AddItem(v.detailText, 0, 1, false)
	mainPanel.AddItem(v.logText, logPaneHeight, 0, false)
	mainPanel.AddItem(v.statusText, 1, 0, false)
	mainPanel.AddItem(help, 1, 0, false)

	v.app = tview.NewApplication()
	v.app.SetRoot(mainPanel, true)
	v.app.EnableMouse(true)
	v.app.SetInputCapture(v.handleKey)
}

func (v *Viewer) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		v.app.Stop()
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q':
			v.app.Stop()
			return nil
		case 'l':
			v.toggleLogScale()
			return nil
		case 'p':
			v.plot(v.monitorTable.GetSelection())
			return nil
		case 's':
			v.plotAll()
			return nil
		case 'i':
			v.sortByIntensity()
			return nil
		case 'o':
			v.restoreOrder()
			return nil
		}
	}
	return event
}

func (v *Viewer) toggleLogScale() {
	v.logScale = !v.logScale
	v.plotter.SetLogScale(v.logScale)
	v.message = fmt.Sprintf("log scale %s", onOff(v.logScale))
	v.drawStatus()
}

func (v *Viewer) plot(key string) {
	if key == "" {
		return
	}
	file, err := v.plotter.Plot(key)
	if err != nil {
		logger.Errorf("plot %s: %s", key, err)
		v.message = fmt.Sprintf("error: %s", err)
	} else {
		v.message = fmt.Sprintf("wrote %s", file)
	}
	v.drawStatus()
}

func (v *Viewer) plotAll() {
	written := 0
	for _, key := range v.plotter.DataKeys() {
		if _, err := v.plotter.Plot(key); err != nil {
			logger.Errorf("plot %s: %s", key, err)
			v.message = fmt.Sprintf("error: %s", err)
			v.drawStatus()
			return
		}
		written++
	}
	v.message = fmt.Sprintf("wrote %d plots", written)
	v.drawStatus()
}

func (v *Viewer) sortByIntensity() {
	v.monitorTable.SortBy(intensityColumn, true).Redraw()
	v.message = "sorted by intensity"
	v.drawStatus()
}

// restoreOrder rebuilds the table in the order the series were loaded.
func (v *Viewer) restoreOrder() {
	selected := v.monitorTable.GetSelection()
	v.monitorTable.Clear().SortBy(-1, false)
	v.drawMonitorTable()
	v.monitorTable.Redraw()
	v.monitorTable.Select(selected)
	v.message = "series order"
	v.drawStatus()
}

func (v *Viewer) drawStatus() {
	dir := v.plotter.OutputDir()
	status := fmt.Sprintf(" log scale: %s | output: %s (%s free)", onOff(v.logScale), dir, SpaceString(v.freeFunc(dir)))
	if v.message != "" {
		status += " | " + v.message
	}
	v.statusText.SetText(status)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Monitors

type monitorData struct {
	Key       string  `header:"Series"`
	Type      string  `header:"Type"`
	Title     string  `header:"Title"`
	Intensity float64 `header:"I"      data-align:"right"`
	Error     float64 `header:"I_err"  data-align:"right"`
	Events    float64 `header:"N"      data-align:"right"`
	order     int
}

func (md *monitorData) Strings() []string {
	if md.Type == "" {
		return []string{md.Key, "", md.Title, "", "", ""}
	}
	return []string{
		md.Key,
		md.Type,
		md.Title,
		fmt.Sprintf("%.4g", md.Intensity),
		fmt.Sprintf("%.4g", md.Error),
		fmt.Sprintf("%.0f", md.Events),
	}
}

func (md *monitorData) LessThan(other widget.SortableRow, column int) bool {
	o := other.(*monitorData)
	switch column {
	case 0:
		return md.Key < o.Key
	case 1:
		return md.Type < o.Type
	case 2:
		return md.Title < o.Title
	case 3:
		return md.Intensity < o.Intensity
	case 4:
		return md.Error < o.Error
	case 5:
		return md.Events < o.Events
	}
	return md.order < o.order
}

func makeMonitorData(order int, key string, m *mccode.Monitor) *monitorData {
	md := &monitorData{Key: key, order: order}
	if m == nil {
		md.Title = "all monitors"
		return md
	}
	md.Type = m.Kind.String()
	md.Title = m.Title
	md.Intensity, md.Error, md.Events = m.Intensity()
	return md
}

func (v *Viewer) drawMonitorTable() {
	keys := v.plotter.DataKeys()
	for i, key := range keys {
		m, _ := v.plotter.Monitor(key)
		v.monitorTable.SetRowData(key, makeMonitorData(i, key, m))
	}
	v.monitorTable.SetTitle(fmt.Sprintf(" Series [%d] ", len(keys)))
}

func (v *Viewer) selectMonitor(key string) {
	v.detailText.SetTitle(fmt.Sprintf(" Details (%s) ", tview.Escape(key)))
	m, ok := v.plotter.Monitor(key)
	if !ok {
		v.detailText.SetText(describeOverview(v.plotter))
		return
	}
	v.detailText.SetText(describe(m))
	v.detailText.ScrollToBeginning()
}

func describeOverview(p internal.Plotter) string {
	var b strings.Builder
	b.WriteString("All monitors on one page:\n")
	for _, key := range p.DataKeys() {
		if m, ok := p.Monitor(key); ok {
			fmt.Fprintf(&b, "  %-24s %s\n", key, m.Title)
		}
	}
	return b.String()
}

func describe(m *mccode.Monitor) string {
	var b strings.Builder
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%-11s %s\n", name+":", value)
		}
	}
	field("Component", m.Component)
	field("Title", m.Title)
	field("Type", m.Type)
	field("File", m.Filename)
	field("X label", m.XLabel)
	field("Y label", m.YLabel)
	field("Z label", m.ZLabel)
	if len(m.Limits) > 0 {
		field("Limits", strings.Trim(fmt.Sprint(m.Limits), "[]"))
	}
	field("Statistics", m.Statistics)
	field("Signal", m.Signal)
	field("Params", strings.Join(m.Params, " "))

	if hist := intensityHistogram(m.Samples()); hist != "" {
		b.WriteString("\nIntensity distribution:\n")
		b.WriteString(hist)
	}
	return b.String()
}

// intensityHistogram renders the distribution of values as text bars. Fewer
// than two distinct values have no distribution to show.
func intensityHistogram(values []float64) string {
	if len(values) < 2 || floats.Min(values) == floats.Max(values) {
		return ""
	}
	var buf bytes.Buffer
	if err := histogram.Fprint(&buf, histogram.Hist(histogramBins, values), histogram.Linear(histogramWidth)); err != nil {
		logger.Warnf("histogram: %s", err)
		return ""
	}
	return buf.String()
}
