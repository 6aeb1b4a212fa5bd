// Package mccode reads the plaintext McCode result formats: the mccode.sim
// manifest written at the end of a run and the per-monitor .dat files it
// references.
package mccode

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Kind int

const (
	Kind0D Kind = iota
	Kind1D
	Kind2D
)

func (k Kind) String() string {
	switch k {
	case Kind0D:
		return "0D"
	case Kind1D:
		return "1D"
	case Kind2D:
		return "2D"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Monitor is one plottable data series with its header metadata.
type Monitor struct {
	Component  string
	Title      string
	Filename   string
	Type       string
	Kind       Kind
	Dims       []int
	XLabel     string
	YLabel     string
	ZLabel     string
	XVar       string
	YVar       string
	Limits     []float64 // xlimits for 1D, xylimits for 2D
	Values     []float64 // I, I_err, N
	Statistics string
	Signal     string
	Variables  []string
	Params     []string
	Header     map[string]string

	// 1D columns
	X   []float64
	I   []float64
	Err []float64
	N   []float64

	// 2D matrices, one slice per row
	Grid    [][]float64
	GridErr [][]float64
	GridN   [][]float64
}

func newMonitor() *Monitor {
	return &Monitor{Header: map[string]string{}}
}

// Key is the name the monitor is listed under: its output filename, or the
// component name for monitors that have no file of their own.
func (m *Monitor) Key() string {
	if m.Filename != "" {
		return m.Filename
	}
	return m.Component
}

// Intensity returns the total intensity, its error and the event count from
// the values header.
func (m *Monitor) Intensity() (i, err, n float64) {
	if len(m.Values) > 0 {
		i = m.Values[0]
	}
	if len(m.Values) > 1 {
		err = m.Values[1]
	}
	if len(m.Values) > 2 {
		n = m.Values[2]
	}
	return
}

// Samples returns every finite intensity value in the monitor's data block,
// flattened.
func (m *Monitor) Samples() []float64 {
	var values []float64
	switch m.Kind {
	case Kind1D:
		values = m.I
	case Kind2D:
		for _, row := range m.Grid {
			values = append(values, row...)
		}
	default:
		if len(m.Values) > 0 {
			values = m.Values[:1]
		}
	}
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func (m *Monitor) setHeader(key, value string) error {
	key = strings.ToLower(key)
	if _, ok := m.Header[key]; !ok || key != "param" {
		m.Header[key] = value
	}
	var err error
	switch key {
	case "component":
		m.Component = value
	case "title":
		m.Title = unquote(value)
	case "filename":
		m.Filename = filepath.ToSlash(value)
	case "type":
		m.Type = value
		m.Kind, m.Dims, err = ParseType(value)
	case "xlabel":
		m.XLabel = unquote(value)
	case "ylabel":
		m.YLabel = unquote(value)
	case "zlabel":
		m.ZLabel = unquote(value)
	case "xvar":
		m.XVar = value
	case "yvar":
		m.YVar = value
	case "xlimits", "xylimits":
		m.Limits, err = ParseFloats(value)
	case "values":
		m.Values, err = ParseFloats(value)
	case "statistics":
		m.Statistics = value
	case "signal":
		m.Signal = value
	case "variables":
		m.Variables = strings.Fields(value)
	case "param":
		m.Params = append(m.Params, value)
	}
	return errors.Wrapf(err, "header %s", key)
}

var typeRegex = regexp.MustCompile(`^array_([0-2])d(?:\(([^)]*)\))?$`)

// ParseType decodes a type header such as "array_1d(20)" or
// "array_2d(90, 40)" into the monitor kind and its dimensions.
func ParseType(s string) (Kind, []int, error) {
	match := typeRegex.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return Kind0D, nil, errors.Errorf("unsupported type %q", s)
	}
	kind := Kind(match[1][0] - '0')
	if match[2] == "" {
		if kind != Kind0D {
			return kind, nil, errors.Errorf("type %q lacks dimensions", s)
		}
		return kind, nil, nil
	}
	var dims []int
	for _, f := range strings.Split(match[2], ",") {
		d, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || d < 0 {
			return kind, nil, errors.Errorf("bad dimension %q in type %q", f, s)
		}
		dims = append(dims, d)
	}
	if kind != Kind0D && len(dims) != int(kind) {
		return kind, nil, errors.Errorf("type %q needs %d dimensions", s, int(kind))
	}
	return kind, dims, nil
}

// ParseFloats splits a whitespace separated list of numbers.
func ParseFloats(s string) ([]float64, error) {
	fields := strings.Fields(s)
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Errorf("bad number %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}

// splitHeader splits "key: value". Keys never contain spaces.
func splitHeader(s string) (string, string, bool) {
	idx := strings.Index(s, ":")
	if idx <= 0 {
		return "", "", false
	}
	key := strings.TrimSpace(s[:idx])
	if strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return key, strings.TrimSpace(s[idx+1:]), true
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `'"`)
}
