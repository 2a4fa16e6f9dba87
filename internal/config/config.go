// Package config carries run parameters from files and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSteps  = 2000
	DefaultSample = 10
	DefaultKp     = 10.0
	DefaultKd     = 1.0
	DefaultAmp    = 0.5
	DefaultFreq   = 1.0
)

// Env holds process settings read from RIGIDSIM_* variables.
type Env struct {
	DataDir string `env:"RIGIDSIM_DATA" envDefault:".rigidsim"`
	Verbose bool   `env:"RIGIDSIM_VERBOSE" envDefault:"false"`
}

// FromEnv loads process settings from the environment.
func FromEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// DBPath is the run database location inside the data directory.
func (e Env) DBPath() string {
	return filepath.Join(e.DataDir, "runs.db")
}

// Run describes one simulation run: which scene, how long, and which
// policy drives the actuators.
type Run struct {
	Scene     string  `yaml:"scene"`
	SceneFile string  `yaml:"scene_file,omitempty"`
	Preset    string  `yaml:"preset,omitempty"`
	Steps     int     `yaml:"steps"`
	Timestep  float64 `yaml:"timestep,omitempty"`
	Sample    int     `yaml:"sample"`
	Policy    Policy  `yaml:"policy"`
}

// Policy selects and tunes the actuation policy for a run.
type Policy struct {
	Kind    string    `yaml:"kind"`
	Kp      float64   `yaml:"kp,omitempty"`
	Kd      float64   `yaml:"kd,omitempty"`
	Targets []float64 `yaml:"targets,flow,omitempty"`
	Amp     float64   `yaml:"amp,omitempty"`
	Freq    float64   `yaml:"freq,omitempty"`
}

func DefaultRun() *Run {
	return &Run{
		Scene:  "pendulum",
		Steps:  DefaultSteps,
		Sample: DefaultSample,
		Policy: Policy{
			Kind: "none",
			Kp:   DefaultKp,
			Kd:   DefaultKd,
			Amp:  DefaultAmp,
			Freq: DefaultFreq,
		},
	}
}

// LoadRun reads a run description, filling unset fields with defaults.
func LoadRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultRun()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func SaveRun(path string, cfg *Run) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
