package main

import (
	"github.com/pthm-cable/predprey/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name string
	Path string // config key, for logs
	Min  float64
	Max  float64

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector is the ordered set of tuned parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the energy-balance parameters searched by tune.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{
				Name: "prey_energy_gain", Path: "prey.energy_gain", Min: 0.2, Max: 3.0,
				get: func(c *config.Config) float64 { return c.Prey.EnergyGain },
				set: func(c *config.Config, v float64) { c.Prey.EnergyGain = v },
			},
			{
				Name: "pred_energy_gain", Path: "predator.energy_gain", Min: 10, Max: 150,
				get: func(c *config.Config) float64 { return c.Predator.EnergyGain },
				set: func(c *config.Config, v float64) { c.Predator.EnergyGain = v },
			},
			{
				Name: "resource_regen_rate", Path: "resource.regen_rate", Min: 0.02, Max: 1.0,
				get: func(c *config.Config) float64 { return c.Resource.RegenRate },
				set: func(c *config.Config, v float64) { c.Resource.RegenRate = v },
			},
			{
				Name: "pred_base_cost", Path: "predator.base_cost", Min: 0.02, Max: 0.5,
				get: func(c *config.Config) float64 { return c.Predator.BaseCost },
				set: func(c *config.Config, v float64) { c.Predator.BaseCost = v },
			},
			{
				Name: "prey_move_cost", Path: "prey.move_cost", Min: 0.05, Max: 1.5,
				get: func(c *config.Config) float64 { return c.Prey.MoveCost },
				set: func(c *config.Config, v float64) { c.Prey.MoveCost = v },
			},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Extract reads the current parameter values from cfg.
func (pv *ParamVector) Extract(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}

// Normalize maps raw values onto [0,1].
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return out
}

// Denormalize maps [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return out
}

// Clamp bounds every value to its spec range.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return out
}

// Apply returns a copy of base with the clamped values written in.
func (pv *ParamVector) Apply(base *config.Config, values []float64) (*config.Config, error) {
	cfg := base.Clone()
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
	if err := cfg.Refresh(); err != nil {
		return nil, err
	}
	return cfg, nil
}
