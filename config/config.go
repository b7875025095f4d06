// Package config defines the YAML-driven configuration for a simulation
// run: tick size, spawn behavior, and adaptive signal control.
package config

// Config is the top-level configuration document, loaded with
// yaml.UnmarshalStrict so unknown keys are rejected rather than
// silently ignored.
type Config struct {
	Clock  ClockConfig  `yaml:"clock"`
	Spawn  SpawnConfig  `yaml:"spawn"`
	Signal SignalConfig `yaml:"signal"`
	Seed   uint64       `yaml:"seed"`
}

// ClockConfig controls the fixed simulation step size.
type ClockConfig struct {
	DT float64 `yaml:"dt"`
}

// SpawnConfig controls the periodic random-vehicle spawn loop and its
// per-direction weighting. Weights is keyed by the single-letter
// direction names used throughout the line protocol (n, e, s).
type SpawnConfig struct {
	Enabled       bool               `yaml:"enabled"`
	IntervalTicks int                `yaml:"interval_ticks"`
	Weights       map[string]float64 `yaml:"weights"`
}

// SignalConfig sets the initial adaptive-retune mode.
type SignalConfig struct {
	Adaptive bool `yaml:"adaptive"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Clock: ClockConfig{DT: 0.1},
		Spawn: SpawnConfig{Enabled: true, IntervalTicks: 20},
		Signal: SignalConfig{Adaptive: false},
	}
}
