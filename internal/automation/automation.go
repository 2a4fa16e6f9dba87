// Package automation executes scripted sequences of simulation runs
// described in YAML scenario files.
package automation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/positional"
	"github.com/san-kum/rigidsim/internal/rollout"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/store"
)

// Scenario is a named batch of runs executed in order.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun describes a single rollout within a scenario. Zero values
// fall back to the package defaults in config.
type ScenarioRun struct {
	Scene    string        `yaml:"scene"`
	Preset   string        `yaml:"preset,omitempty"`
	Steps    int           `yaml:"steps,omitempty"`
	Sample   int           `yaml:"sample,omitempty"`
	Timestep float64       `yaml:"timestep,omitempty"`
	Policy   config.Policy `yaml:"policy,omitempty"`
	Seed     int64         `yaml:"seed,omitempty"`
	Jitter   float64       `yaml:"jitter,omitempty"`
}

// Summary records the outcome of one scenario run.
type Summary struct {
	Scene   string
	RunID   int64
	Steps   int
	Metrics map[string]float64
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if s.Name == "" {
		return nil, errors.New("scenario has no name")
	}
	if len(s.Runs) == 0 {
		return nil, errors.New("scenario has no runs")
	}
	for i, r := range s.Runs {
		if r.Scene == "" {
			return nil, fmt.Errorf("run %d has no scene", i)
		}
	}
	return &s, nil
}

// Execute runs every entry of the scenario in order, persisting each
// trajectory to db when db is non-nil. The first failing run aborts the
// scenario and returns the summaries collected so far.
func (s *Scenario) Execute(ctx context.Context, db *store.Store, log *zap.SugaredLogger) ([]Summary, error) {
	summaries := make([]Summary, 0, len(s.Runs))

	for i := range s.Runs {
		sum, err := s.executeRun(ctx, &s.Runs[i], db, log)
		if err != nil {
			return summaries, fmt.Errorf("run %d (%s): %w", i, s.Runs[i].Scene, err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

func (s *Scenario) executeRun(ctx context.Context, r *ScenarioRun, db *store.Store, log *zap.SugaredLogger) (Summary, error) {
	sc, err := resolve(r)
	if err != nil {
		return Summary{}, err
	}
	if r.Timestep > 0 {
		sc.Sys.Opts.Timestep = r.Timestep
	}
	if r.Jitter > 0 {
		rng := rand.New(rand.NewSource(r.Seed))
		for i := range sc.Q {
			sc.Q[i] += (rng.Float64()*2 - 1) * r.Jitter
		}
	}

	policy, err := policyFor(sc, r.Policy)
	if err != nil {
		return Summary{}, err
	}
	st, err := positional.Init(sc.Sys, sc.Q, sc.QD)
	if err != nil {
		return Summary{}, err
	}

	steps := r.Steps
	if steps <= 0 {
		steps = config.DefaultSteps
	}
	sample := r.Sample
	if sample <= 0 {
		sample = config.DefaultSample
	}

	runner := rollout.New(sc.Sys, policy)
	runner.Log = log
	runner.AddMetric(metrics.NewEnergy(sc.Sys))
	runner.AddMetric(metrics.NewEnergyDrift(sc.Sys))
	runner.AddMetric(metrics.NewStability(100))
	runner.AddMetric(metrics.NewMaxPenetration(sc.Sys))
	runner.AddMetric(metrics.NewJointDrift(sc.Sys))
	runner.AddMetric(metrics.NewControlEffort())

	res, err := runner.Run(ctx, st, rollout.Config{Steps: steps, SampleEvery: sample})
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Scene: sc.Name, Steps: res.StepsTaken, Metrics: res.Metrics}
	if db != nil {
		id, err := db.SaveRun(ctx, sc.Name, sc.Sys.Opts.Timestep, res)
		if err != nil {
			return Summary{}, fmt.Errorf("save run: %w", err)
		}
		sum.RunID = id
	}
	return sum, nil
}

func resolve(r *ScenarioRun) (*scene.Scene, error) {
	if r.Preset != "" {
		p := scene.GetPreset(r.Scene, r.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %s for scene %s", r.Preset, r.Scene)
		}
		return p.Resolve()
	}
	return scene.Get(r.Scene)
}

func policyFor(sc *scene.Scene, p config.Policy) (rollout.Policy, error) {
	switch p.Kind {
	case "", "none":
		return nil, nil
	case "pd":
		kp, kd := p.Kp, p.Kd
		if kp == 0 {
			kp = config.DefaultKp
		}
		if kd == 0 {
			kd = config.DefaultKd
		}
		return rollout.NewPD(sc.Sys, kp, kd, p.Targets), nil
	case "sine":
		amp, freq := p.Amp, p.Freq
		if amp == 0 {
			amp = config.DefaultAmp
		}
		if freq == 0 {
			freq = config.DefaultFreq
		}
		return rollout.NewSine(sc.Sys, amp, freq), nil
	default:
		return nil, fmt.Errorf("unknown policy: %s", p.Kind)
	}
}
