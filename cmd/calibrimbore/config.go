package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// runConfig is the YAML run file consumed by the compose command.
type runConfig struct {
	Target struct {
		Name   string `yaml:"name"`
		File   string `yaml:"file"`
		System string `yaml:"system"`
	} `yaml:"target"`

	Reference []struct {
		Name   string `yaml:"name"`
		File   string `yaml:"file"`
		System string `yaml:"system"`
	} `yaml:"reference"`

	// Vega points at a reference spectrum file, required when any
	// bandpass is Vega calibrated.
	Vega string `yaml:"vega"`

	Library struct {
		Count    int     `yaml:"count"`
		TempMin  float64 `yaml:"temp_min"`
		TempMax  float64 `yaml:"temp_max"`
		GridLo   float64 `yaml:"grid_lo"`
		GridHi   float64 `yaml:"grid_hi"`
		GridStep float64 `yaml:"grid_step"`
	} `yaml:"library"`

	Fit struct {
		Window      []float64 `yaml:"window"`
		ColorBands  []string  `yaml:"color_bands"`
		ColorCoeff  float64   `yaml:"color_coeff"`
		NonNegative bool      `yaml:"non_negative"`
	} `yaml:"fit"`

	Output string `yaml:"output"`
}

func loadRunConfig(path string) (*runConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &runConfig{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, cfg.validate()
}

func (c *runConfig) applyDefaults() {
	if c.Library.Count == 0 {
		c.Library.Count = 40
	}
	if c.Library.TempMin == 0 {
		c.Library.TempMin = 3000
	}
	if c.Library.TempMax == 0 {
		c.Library.TempMax = 12000
	}
	if c.Library.GridLo == 0 {
		c.Library.GridLo = 3000
	}
	if c.Library.GridHi == 0 {
		c.Library.GridHi = 11000
	}
	if c.Library.GridStep == 0 {
		c.Library.GridStep = 10
	}
}

func (c *runConfig) validate() error {
	if c.Target.Name == "" || c.Target.File == "" {
		return fmt.Errorf("run file: target name and file are required")
	}
	if len(c.Reference) == 0 {
		return fmt.Errorf("run file: at least one reference band is required")
	}
	for _, ref := range c.Reference {
		if ref.Name == "" || ref.File == "" {
			return fmt.Errorf("run file: reference band name and file are required")
		}
	}
	if len(c.Fit.Window) != 0 && len(c.Fit.Window) != 2 {
		return fmt.Errorf("run file: fit window must be [lo, hi]")
	}
	if len(c.Fit.ColorBands) != 0 && len(c.Fit.ColorBands) != 2 {
		return fmt.Errorf("run file: color_bands must name two bands")
	}
	return nil
}
