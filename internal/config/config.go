package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dfbb/wfcgen/internal/wfc"
)

type Config struct {
	LogLevel     string   `yaml:"loglevel"`
	LogFile      string   `yaml:"logfile"`
	SampleDir    string   `yaml:"sample_dir"`
	ResultDir    string   `yaml:"result_dir"`
	RunHistoryDB string   `yaml:"run_history_db"`
	Samples      []Sample `yaml:"samples"`
}

// Sample describes one generation problem. Zero values mean "use the
// default"; Load fills them in.
type Sample struct {
	Name        string `yaml:"name"`
	Size        int    `yaml:"size"`   // square output edge, default 48
	Width       int    `yaml:"width"`  // overrides Size
	Height      int    `yaml:"height"` // overrides Size
	N           int    `yaml:"n"`      // pattern edge, default 3
	Periodic    bool   `yaml:"periodic"`
	PeriodicIn  *bool  `yaml:"periodic_input"` // default true
	Symmetry    int    `yaml:"symmetry"`       // 1..8, default 8
	Ground      bool   `yaml:"ground"`
	Heuristic   string `yaml:"heuristic"` // Entropy | MRV | Scanline
	Screenshots int    `yaml:"screenshots"`
}

// Defaults returns a Config populated with all default values.
func Defaults() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		LogLevel:  "warn",
		SampleDir: "samples",
		ResultDir: "results",
	}
}

// Load reads the YAML config at path on top of the defaults and normalizes
// every sample entry.
func Load(path string) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	for i := range cfg.Samples {
		cfg.Samples[i].normalize()
	}
	return cfg, nil
}

// Save writes cfg to path in YAML format, creating parent directories as
// needed. It is called on startup to persist any default values that were
// missing from the existing file.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// normalize fills zero-valued fields with the sample defaults.
func (s *Sample) normalize() {
	if s.Size == 0 {
		s.Size = 48
	}
	if s.Width == 0 {
		s.Width = s.Size
	}
	if s.Height == 0 {
		s.Height = s.Size
	}
	if s.N == 0 {
		s.N = 3
	}
	if s.PeriodicIn == nil {
		t := true
		s.PeriodicIn = &t
	}
	if s.Symmetry == 0 {
		s.Symmetry = 8
	}
	if s.Symmetry < 1 {
		s.Symmetry = 1
	}
	if s.Symmetry > 8 {
		s.Symmetry = 8
	}
	if s.Heuristic == "" {
		s.Heuristic = "Entropy"
	}
	if s.Screenshots == 0 {
		s.Screenshots = 2
	}
}

// InputPeriodic reports whether the exemplar should be treated as toric.
func (s *Sample) InputPeriodic() bool {
	return s.PeriodicIn == nil || *s.PeriodicIn
}

// Options converts the sample entry to solver options for an exemplar of
// the given dimensions. The symmetry count s maps to the transform mask
// (1<<s)-1, selecting the first s dihedral transforms.
func (s *Sample) Options(iw, ih int) (wfc.Options, error) {
	h, err := wfc.ParseHeuristic(s.Heuristic)
	if err != nil {
		return wfc.Options{}, err
	}
	return wfc.Options{
		PeriodicInput:  s.InputPeriodic(),
		PeriodicOutput: s.Periodic,
		InputWidth:     iw,
		InputHeight:    ih,
		OutputWidth:    s.Width,
		OutputHeight:   s.Height,
		N:              s.N,
		Symmetry:       uint8(1<<s.Symmetry - 1),
		Heuristic:      h,
		Ground:         s.Ground,
	}, nil
}
