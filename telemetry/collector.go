// Package telemetry provides ecosystem health tracking, bookmarking, and snapshots.
package telemetry

import "github.com/pthm-cable/predprey/components"

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks     int32
	windowStartTick int32

	// Event counters for current window
	preyBirths   int
	predBirths   int
	preyEaten    int
	preyStarved  int
	predStarved  int
	kills        int
	mutations    int
	weightsMut   int // controller weights changed across mutated births
	foraged      float64
	preyInjected int
	predInjected int
}

// NewCollector creates a new stats collector that flushes every windowTicks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int32(windowTicks)}
}

// RecordBirth records a birth event and how many controller weights the
// offspring's mutation changed.
func (c *Collector) RecordBirth(kind components.Kind, mutated bool, weightsChanged int) {
	if kind == components.KindPrey {
		c.preyBirths++
	} else {
		c.predBirths++
	}
	if mutated {
		c.mutations++
		c.weightsMut += weightsChanged
	}
}

// RecordDeath records a death event by cause.
func (c *Collector) RecordDeath(kind components.Kind, fate components.Fate) {
	switch {
	case kind == components.KindPrey && fate == components.FateEaten:
		c.preyEaten++
	case kind == components.KindPrey:
		c.preyStarved++
	default:
		c.predStarved++
	}
}

// RecordKill records a kill.
func (c *Collector) RecordKill() {
	c.kills++
}

// RecordForage adds foraging gain to the window total.
func (c *Collector) RecordForage(amount float64) {
	c.foraged += amount
}

// RecordInjection records agents added by a population floor rule or a
// spawn command.
func (c *Collector) RecordInjection(kind components.Kind, n int) {
	if kind == components.KindPrey {
		c.preyInjected += n
	} else {
		c.predInjected += n
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Sample is the population state the caller measures at window end.
type Sample struct {
	PreyCount, PredCount       int
	PreyEnergies, PredEnergies []float64
	PreyFOVAngles              []float64
	PreyFOVDistances           []float64
	ResourceTotal              float64
	MaxGeneration              int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s Sample) WindowStats {
	preyMean, preyP10, preyP50, preyP90 := ComputeEnergyStats(s.PreyEnergies)
	predMean, predP10, predP50, predP90 := ComputeEnergyStats(s.PredEnergies)
	angleMean, angleStd := ComputeMeanStd(s.PreyFOVAngles)
	distMean, distStd := ComputeMeanStd(s.PreyFOVDistances)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		PreyCount: s.PreyCount,
		PredCount: s.PredCount,

		PreyBirths:   c.preyBirths,
		PredBirths:   c.predBirths,
		PreyEaten:    c.preyEaten,
		PreyStarved:  c.preyStarved,
		PredStarved:  c.predStarved,
		Kills:        c.kills,
		Mutations:    c.mutations,
		WeightsMut:   c.weightsMut,
		Foraged:      c.foraged,
		PreyInjected: c.preyInjected,
		PredInjected: c.predInjected,

		PreyEnergyMean: preyMean,
		PreyEnergyP10:  preyP10,
		PreyEnergyP50:  preyP50,
		PreyEnergyP90:  preyP90,

		PredEnergyMean: predMean,
		PredEnergyP10:  predP10,
		PredEnergyP50:  predP50,
		PredEnergyP90:  predP90,

		PreyFOVAngleMean: angleMean,
		PreyFOVAngleStd:  angleStd,
		PreyFOVDistMean:  distMean,
		PreyFOVDistStd:   distStd,

		ResourceTotal: s.ResourceTotal,
		MaxGeneration: s.MaxGeneration,
	}

	// Reset for next window
	*c = Collector{windowTicks: c.windowTicks, windowStartTick: currentTick}

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowTicks
}
