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

// Simulation is a parsed mccode.sim manifest together with the monitors it
// references, in manifest order.
type Simulation struct {
	Path       string
	Instrument string
	Directory  string
	Ncount     string
	Seed       string
	Params     []string
	Header     map[string]string
	Monitors   []*Monitor
}

// ParseSim reads a manifest and loads every monitor file listed in its data
// blocks. Monitor files are resolved relative to the manifest's directory.
func ParseSim(path string) (*Simulation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open sim file")
	}
	defer f.Close()

	sim, err := ReadSim(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	sim.Path = path

	dir := filepath.Dir(path)
	for i, block := range sim.Monitors {
		if block.Filename == "" {
			continue
		}
		m, err := ParseDat(filepath.Join(dir, filepath.FromSlash(block.Filename)))
		if err != nil {
			return nil, errors.Wrapf(err, "monitor %s", block.Key())
		}
		m.Filename = block.Filename
		if m.Component == "" {
			m.Component = block.Component
		}
		sim.Monitors[i] = m
	}
	logger.Logger.WithField("file", path).WithField("monitors", len(sim.Monitors)).Debug("sim parsed")
	return sim, nil
}

// ReadSim decodes the manifest's instrument, simulation and data blocks. The
// returned monitors only carry the headers found in the manifest.
func ReadSim(r io.Reader) (*Simulation, error) {
	sim := &Simulation{Header: map[string]string{}}
	var block string
	var mon *Monitor

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "begin ") {
			if block != "" {
				return nil, errors.Errorf("line %d: begin inside %s block", lineNo, block)
			}
			name, arg := line[len("begin "):], ""
			if idx := strings.Index(name, ":"); idx >= 0 {
				name, arg = name[:idx], strings.TrimSpace(name[idx+1:])
			}
			block = strings.TrimSpace(name)
			switch block {
			case "instrument":
				sim.Instrument = arg
			case "simulation":
				sim.Directory = arg
			case "data":
				mon = newMonitor()
			}
			continue
		}
		if strings.HasPrefix(line, "end ") {
			name := strings.TrimSpace(line[len("end "):])
			if name != block {
				return nil, errors.Errorf("line %d: end %s closes %q block", lineNo, name, block)
			}
			if block == "data" {
				sim.Monitors = append(sim.Monitors, mon)
				mon = nil
			}
			block = ""
			continue
		}
		key, value, ok := splitHeader(line)
		if !ok {
			continue
		}
		if block == "data" {
			if err := mon.setHeader(key, value); err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			continue
		}
		sim.setHeader(key, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read")
	}
	if block != "" {
		return nil, errors.Errorf("unterminated %s block", block)
	}
	return sim, nil
}

func (sim *Simulation) setHeader(key, value string) {
	key = strings.ToLower(key)
	switch key {
	case "ncount":
		sim.Ncount = value
	case "seed":
		sim.Seed = value
	case "param":
		sim.Params = append(sim.Params, value)
		return
	}
	sim.Header[key] = value
}
