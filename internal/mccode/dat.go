package mccode

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"mcplot/internal/logger"
)

const maxLineSize = 64 * 1024 * 1024

type section int

const (
	sectionBody section = iota
	sectionData
	sectionErrors
	sectionEvents
)

// ParseDat reads a single monitor file.
func ParseDat(path string) (*Monitor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open monitor file")
	}
	defer f.Close()

	m, err := ReadDat(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if m.Filename == "" {
		m.Filename = filepath.Base(path)
	}
	logger.Logger.WithField("file", path).WithField("type", m.Type).Debug("monitor parsed")
	return m, nil
}

// ReadDat decodes a monitor in the "McCode with text headers" format: "# key:
// value" header lines followed by whitespace separated numbers. 2D monitors
// carry three matrices introduced by "# Data", "# Errors" and "# Events".
func ReadDat(r io.Reader) (*Monitor, error) {
	m := newMonitor()
	rows := map[section][][]float64{}
	current := sectionBody

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			content := strings.TrimSpace(line[1:])
			switch {
			case strings.HasPrefix(content, "Data "):
				current = sectionData
			case strings.HasPrefix(content, "Errors "):
				current = sectionErrors
			case strings.HasPrefix(content, "Events "):
				current = sectionEvents
			default:
				if key, value, ok := splitHeader(content); ok {
					if err := m.setHeader(key, value); err != nil {
						return nil, errors.Wrapf(err, "line %d", lineNo)
					}
				}
			}
			continue
		}
		row, err := ParseFloats(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		rows[current] = append(rows[current], row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read")
	}
	if m.Type == "" {
		return nil, errors.New("missing type header")
	}

	switch m.Kind {
	case Kind1D:
		if err := m.fillColumns(rows[sectionBody]); err != nil {
			return nil, err
		}
	case Kind2D:
		var err error
		if m.Grid, err = m.matrix("Data", rows[sectionData]); err != nil {
			return nil, err
		}
		if m.GridErr, err = m.matrix("Errors", rows[sectionErrors]); err != nil {
			return nil, err
		}
		if m.GridN, err = m.matrix("Events", rows[sectionEvents]); err != nil {
			return nil, err
		}
		if m.Grid == nil {
			return nil, errors.New("2D monitor without a Data block")
		}
	}
	return m, nil
}

func (m *Monitor) fillColumns(rows [][]float64) error {
	if n := m.Dims[0]; n > 0 && len(rows) != n {
		return errors.Errorf("expected %d rows, found %d", n, len(rows))
	}
	for i, row := range rows {
		if len(row) < 2 {
			return errors.Errorf("row %d has %d columns, need at least 2", i+1, len(row))
		}
		m.X = append(m.X, row[0])
		m.I = append(m.I, row[1])
		if len(row) > 2 {
			m.Err = append(m.Err, row[2])
		} else {
			m.Err = append(m.Err, 0)
		}
		if len(row) > 3 {
			m.N = append(m.N, row[3])
		} else {
			m.N = append(m.N, 0)
		}
	}
	return nil
}

// matrix validates a 2D block. The declared dimensions fix the number of
// cells; rows must all have the same width.
func (m *Monitor) matrix(name string, rows [][]float64) ([][]float64, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return nil, errors.Errorf("%s row %d has %d values, expected %d", name, i+1, len(row), width)
		}
	}
	if want := m.Dims[0] * m.Dims[1]; want > 0 && width*len(rows) != want {
		return nil, errors.Errorf("%s block has %dx%d values, type declares %dx%d", name, width, len(rows), m.Dims[0], m.Dims[1])
	}
	return rows, nil
}
