// Package tuning loads the run parameters from YAML. All values are fixed
// for a run; there is no hot-reload.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	SidewalkLength int `yaml:"sidewalk_length"`
	SidewalkWidth  int `yaml:"sidewalk_width"`

	TransProb     float64 `yaml:"trans_prob"`
	InfectedShare float64 `yaml:"infected_share"`

	Interarrivals int `yaml:"interarrivals"`
	ArrivalsMin   int `yaml:"arrivals_min"`
	ArrivalsMax   int `yaml:"arrivals_max"`

	TickRateHz int `yaml:"tick_rate_hz"`
	RunTicks   int `yaml:"run_ticks"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		SidewalkLength:  200,
		SidewalkWidth:   10,
		TransProb:       0.1,
		InfectedShare:   0.1,
		Interarrivals:   3,
		ArrivalsMin:     1,
		ArrivalsMax:     3,
		TickRateHz:      10,
		RunTicks:        1000,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.SidewalkLength < 2 {
		return fmt.Errorf("sidewalk_length must be at least 2, got %d", t.SidewalkLength)
	}
	if t.SidewalkWidth < 1 {
		return fmt.Errorf("sidewalk_width must be at least 1, got %d", t.SidewalkWidth)
	}
	if t.TransProb < 0 || t.TransProb > 1 {
		return fmt.Errorf("trans_prob must be in [0,1], got %v", t.TransProb)
	}
	if t.InfectedShare < 0 || t.InfectedShare > 1 {
		return fmt.Errorf("infected_share must be in [0,1], got %v", t.InfectedShare)
	}
	if t.Interarrivals < 1 {
		return fmt.Errorf("interarrivals must be at least 1, got %d", t.Interarrivals)
	}
	if t.ArrivalsMin < 1 || t.ArrivalsMax < t.ArrivalsMin {
		return fmt.Errorf("arrivals bounds invalid: min=%d max=%d", t.ArrivalsMin, t.ArrivalsMax)
	}
	if t.TickRateHz < 1 {
		return fmt.Errorf("tick_rate_hz must be at least 1, got %d", t.TickRateHz)
	}
	if t.RunTicks < 0 {
		return fmt.Errorf("run_ticks must not be negative, got %d", t.RunTicks)
	}
	return nil
}
