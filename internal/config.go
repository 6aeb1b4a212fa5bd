package internal

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"mcplot/internal/plotter"
)

// Config holds the options that may be kept in a JSON file instead of being
// passed on every run. Command line flags take precedence.
type Config struct {
	OutputDir string
	Format    string
	Width     float64
	Height    float64
	Palette   string
	LogLevel  string
}

func DefaultConfig() *Config {
	opts := plotter.DefaultOptions()
	return &Config{
		Format:   opts.Format,
		Width:    opts.Width,
		Height:   opts.Height,
		Palette:  opts.Palette,
		LogLevel: "info",
	}
}

// LoadConfig reads path over the defaults. Fields missing from the file keep
// their default value.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open config file [%s]", path)
	}
	defer f.Close()

	decoder := json.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to process config file [%s]", path)
	}
	return cfg, nil
}

// PlotOptions converts the config into renderer options.
func (cfg *Config) PlotOptions() plotter.Options {
	return plotter.Options{
		OutputDir: cfg.OutputDir,
		Format:    cfg.Format,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Palette:   cfg.Palette,
	}
}
