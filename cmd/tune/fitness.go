package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/predprey/config"
	"github.com/pthm-cable/predprey/game"
	"github.com/pthm-cable/predprey/telemetry"
)

// FitnessEvaluator runs headless simulations and scores coexistence.
type FitnessEvaluator struct {
	params   *ParamVector
	maxTicks int32
	seeds    []int64
	base     *config.Config

	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastMean       float64
}

// NewFitnessEvaluator creates an evaluator over the given seeds.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, base *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		base:        withoutInjection(base),
		bestFitness: math.Inf(1),
	}
}

// withoutInjection disables the population floor so that an extinction
// ends the run instead of being papered over by a fresh cohort.
func withoutInjection(cfg *config.Config) *config.Config {
	cp := cfg.Clone()
	cp.Population.PredatorCohort = 0
	cp.Population.PreyCohort = 0
	return cp
}

// BestHallOfFame returns the hall of fame of the best seed of the best
// evaluation so far.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastMeanTicks returns the mean coexistence of the most recent evaluation.
func (fe *FitnessEvaluator) LastMeanTicks() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMean
}

type seedResult struct {
	ticks      int32
	hallOfFame *telemetry.HallOfFame
	err        error
}

// Evaluate returns the negative mean coexistence ticks for raw parameter
// values x (lower is better). Seeds run in parallel.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg, err := fe.params.Apply(fe.base, x)
	if err != nil {
		return 0
	}

	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = runSimulation(cfg, s, fe.maxTicks)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	var best *seedResult
	for i := range results {
		r := &results[i]
		if r.err != nil {
			continue
		}
		total += float64(r.ticks)
		if best == nil || r.ticks > best.ticks {
			best = r
		}
	}

	mean := total / float64(len(fe.seeds))
	fitness := -mean

	fe.mu.Lock()
	fe.lastMean = mean
	if fitness < fe.bestFitness && best != nil {
		fe.bestFitness = fitness
		fe.bestHallOfFame = best.hallOfFame
	}
	fe.mu.Unlock()

	return fitness
}

// runSimulation steps one world until a species dies out or maxTicks is
// reached and reports how long both coexisted.
func runSimulation(cfg *config.Config, seed int64, maxTicks int32) seedResult {
	g, err := game.New(cfg, game.Options{Seed: seed})
	if err != nil {
		return seedResult{err: err}
	}
	defer g.Close()

	for g.Tick() < maxTicks {
		if g.PreyCount() == 0 || g.PredatorCount() == 0 {
			break
		}
		g.Step()
	}

	return seedResult{ticks: g.Tick(), hallOfFame: g.HallOfFame()}
}
