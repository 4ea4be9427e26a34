package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/san-kum/ballbox/internal/config"
	"github.com/san-kum/ballbox/internal/metrics"
	"github.com/san-kum/ballbox/internal/sandbox"
	"github.com/san-kum/ballbox/internal/snapshot"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownAction = errors.New("automation: unknown action")
	ErrUnknownParam  = errors.New("automation: unknown parameter")
)

// Scenario is a scripted sandbox session: a fresh scene plus input events
// replayed at fixed steps.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Preset      string  `yaml:"preset"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Seed        int64   `yaml:"seed"`
	Dt          float64 `yaml:"dt"`
	Steps       int     `yaml:"steps"`
	Events      []Event `yaml:"events"`
}

// Event is applied before the step numbered At (zero-based).
type Event struct {
	At     int     `yaml:"at"`
	Action string  `yaml:"action"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Button string  `yaml:"button"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type Result struct {
	Readings []metrics.Reading
	Metrics  map[string]float64
	Final    *snapshot.Snapshot
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

func newMetrics() []metrics.Metric {
	return []metrics.Metric{metrics.NewMeanEnergy(), metrics.NewEnergyDrift(), metrics.NewStability()}
}

// RunScenario plays sc against a sandbox built from base with the scenario's
// preset applied.
func RunScenario(ctx context.Context, sc *Scenario, base config.SandboxConfig) (*Result, error) {
	cfg := config.DefaultConfig()
	cfg.Sandbox = base
	if sc.Preset != "" && !cfg.Apply(sc.Preset) {
		return nil, fmt.Errorf("automation: unknown preset %q", sc.Preset)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("automation: %w", err)
	}
	w, h := sc.Width, sc.Height
	if w <= 0 || h <= 0 {
		w, h = cfg.Sandbox.Width, cfg.Sandbox.Height
	}
	dt := sc.Dt
	if dt <= 0 {
		dt = 1.0 / 60
	}

	sb, err := sandbox.New(cfg.Sandbox, w, h, sc.Seed)
	if err != nil {
		return nil, err
	}
	sb.Populate()

	events := append([]Event(nil), sc.Events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].At < events[j].At })

	ms := newMetrics()
	res := &Result{Readings: make([]metrics.Reading, 0, sc.Steps), Metrics: make(map[string]float64)}
	next := 0
	for i := 0; i < sc.Steps; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		for next < len(events) && events[next].At <= i {
			if err := apply(sb, events[next]); err != nil {
				return res, fmt.Errorf("event %d: %w", next+1, err)
			}
			next++
		}
		sb.Step(dt)
		r := sb.Reading()
		for _, m := range ms {
			m.Observe(r)
		}
		res.Readings = append(res.Readings, r)
	}
	for _, m := range ms {
		res.Metrics[m.Name()] = m.Value()
	}
	res.Final = sb.Snapshot()
	return res, nil
}

func apply(sb *sandbox.Sandbox, e Event) error {
	switch e.Action {
	case "press":
		button := sandbox.ButtonLeft
		if e.Button == "right" {
			button = sandbox.ButtonRight
		}
		sb.Press(e.X, e.Y, button)
	case "move":
		sb.Move(e.X, e.Y)
	case "release":
		sb.Release()
	case "resize":
		sb.Resize(e.Width, e.Height)
	case "reset":
		sb.Reset()
	case "system_info":
		sb.ToggleSystemInfo()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, e.Action)
	}
	return nil
}

// params names the sandbox settings a sweep can vary.
var params = map[string]func(*config.SandboxConfig, float64){
	"damper_k":     func(s *config.SandboxConfig, v float64) { s.DamperK = v },
	"box_k":        func(s *config.SandboxConfig, v float64) { s.BoxK = v },
	"attraction_k": func(s *config.SandboxConfig, v float64) { s.AttractionK = v },
	"collision_k":  func(s *config.SandboxConfig, v float64) { s.CollisionK = v },
	"relaxation":   func(s *config.SandboxConfig, v float64) { s.Relaxation = int(v) },
	"fill_ratio":   func(s *config.SandboxConfig, v float64) { s.FillRatio = v },
}

func ParamNames() []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParameterSweep varies one setting over an evenly spaced range.
type ParameterSweep struct {
	Param    string
	Min, Max float64
	NumSteps int
	Steps    int
	Dt       float64
	Seed     int64
}

type SweepResult struct {
	ParamValue float64
	MeanEnergy float64
	Drift      float64
	Stable     bool
}

// RunSweep runs one sandbox per value concurrently. Every run starts from the
// same seed, so only the swept setting differs.
func RunSweep(ctx context.Context, sweep *ParameterSweep, base config.SandboxConfig) ([]SweepResult, error) {
	set, ok := params[sweep.Param]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownParam, sweep.Param, ParamNames())
	}
	n := max(sweep.NumSteps, 1)
	step := 0.0
	if n > 1 {
		step = (sweep.Max - sweep.Min) / float64(n-1)
	}

	results := make([]SweepResult, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			v := sweep.Min + float64(idx)*step
			cfg := base
			set(&cfg, v)
			res, err := RunScenario(ctx, &Scenario{Seed: sweep.Seed, Dt: sweep.Dt, Steps: sweep.Steps}, cfg)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx] = SweepResult{
				ParamValue: v,
				MeanEnergy: res.Metrics["mean_energy"],
				Drift:      res.Metrics["energy_drift"],
				Stable:     res.Metrics["stability"] == 1,
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

type MonteCarloConfig struct {
	NumTrials int
	Steps     int
	Dt        float64
	Seed      int64
}

type MonteCarloResult struct {
	TrialID     int
	Seed        int64
	Balls       int
	FinalEnergy float64
	// Stable is false when any reading held a non-finite body.
	Stable bool
}

// RunMonteCarlo repeats the default session over consecutive seeds.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, base config.SandboxConfig) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, cfg.NumTrials)
	errs := make([]error, cfg.NumTrials)
	var wg sync.WaitGroup
	for trial := 0; trial < cfg.NumTrials; trial++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			seed := cfg.Seed + int64(idx)
			res, err := RunScenario(ctx, &Scenario{Seed: seed, Dt: cfg.Dt, Steps: cfg.Steps}, base)
			if err != nil {
				errs[idx] = err
				return
			}
			final := 0.0
			if len(res.Readings) > 0 {
				final = res.Readings[len(res.Readings)-1].Total()
			}
			results[idx] = MonteCarloResult{
				TrialID:     idx,
				Seed:        seed,
				Balls:       len(res.Final.Points),
				FinalEnergy: final,
				Stable:      res.Metrics["stability"] == 1,
			}
		}(trial)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
