package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	// Population counts at window end
	PreyCount int `csv:"prey"`
	PredCount int `csv:"pred"`

	// Events during window
	PreyBirths   int     `csv:"prey_births"`
	PredBirths   int     `csv:"pred_births"`
	PreyEaten    int     `csv:"prey_eaten"`
	PreyStarved  int     `csv:"prey_starved"`
	PredStarved  int     `csv:"pred_starved"`
	Kills        int     `csv:"kills"`
	Mutations    int     `csv:"mutations"`
	WeightsMut   int     `csv:"weights_mutated"`
	Foraged      float64 `csv:"foraged"`
	PreyInjected int     `csv:"prey_injected"`
	PredInjected int     `csv:"pred_injected"`

	// Energy distribution (sampled at window end)
	PreyEnergyMean float64 `csv:"prey_energy_mean"`
	PreyEnergyP10  float64 `csv:"prey_energy_p10"`
	PreyEnergyP50  float64 `csv:"prey_energy_p50"`
	PreyEnergyP90  float64 `csv:"prey_energy_p90"`

	PredEnergyMean float64 `csv:"pred_energy_mean"`
	PredEnergyP10  float64 `csv:"pred_energy_p10"`
	PredEnergyP50  float64 `csv:"pred_energy_p50"`
	PredEnergyP90  float64 `csv:"pred_energy_p90"`

	// Heritable prey sensing
	PreyFOVAngleMean float64 `csv:"prey_fov_angle_mean"`
	PreyFOVAngleStd  float64 `csv:"prey_fov_angle_std"`
	PreyFOVDistMean  float64 `csv:"prey_fov_dist_mean"`
	PreyFOVDistStd   float64 `csv:"prey_fov_dist_std"`

	ResourceTotal float64 `csv:"resource_total"`
	MaxGeneration int     `csv:"max_generation"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeEnergyStats calculates mean and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// ComputeMeanStd returns the mean and sample standard deviation.
// The deviation is 0 for fewer than two values.
func ComputeMeanStd(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.MeanStdDev(values, nil)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"prey", s.PreyCount,
		"pred", s.PredCount,
		"prey_births", s.PreyBirths,
		"pred_births", s.PredBirths,
		"prey_eaten", s.PreyEaten,
		"prey_starved", s.PreyStarved,
		"pred_starved", s.PredStarved,
		"kills", s.Kills,
		"mutations", s.Mutations,
		"weights_mutated", s.WeightsMut,
		"foraged", s.Foraged,
		"prey_injected", s.PreyInjected,
		"pred_injected", s.PredInjected,
		"prey_energy_mean", s.PreyEnergyMean,
		"prey_energy_p50", s.PreyEnergyP50,
		"pred_energy_mean", s.PredEnergyMean,
		"pred_energy_p50", s.PredEnergyP50,
		"prey_fov_angle_mean", s.PreyFOVAngleMean,
		"prey_fov_dist_mean", s.PreyFOVDistMean,
		"resource_total", s.ResourceTotal,
		"max_generation", s.MaxGeneration,
	)
}
