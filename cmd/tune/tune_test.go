package main

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/predprey/config"
)

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	base := config.MustLoad("")

	raw := pv.Clamp(pv.Extract(base))
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, back[i], raw[i])
		}
	}
}

func TestDefaultsInsideBounds(t *testing.T) {
	pv := NewParamVector()
	raw := pv.Extract(config.MustLoad(""))
	for i, spec := range pv.Specs {
		if raw[i] < spec.Min || raw[i] > spec.Max {
			t.Errorf("%s default %v outside [%v, %v]", spec.Name, raw[i], spec.Min, spec.Max)
		}
	}
}

func TestApplyClampsAndCopies(t *testing.T) {
	pv := NewParamVector()
	base := config.MustLoad("")
	before := pv.Extract(base)

	values := make([]float64, pv.Dim())
	for i := range values {
		values[i] = 1e9
	}
	cfg, err := pv.Apply(base, values)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got := pv.Extract(cfg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Max {
			t.Errorf("%s = %v, want clamp to %v", spec.Name, got[i], spec.Max)
		}
	}
	after := pv.Extract(base)
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("base %s modified: %v -> %v", pv.Specs[i].Name, before[i], after[i])
		}
	}
}

func TestRunSimulationStopsOnExtinction(t *testing.T) {
	cfg := config.MustLoad("").Clone()
	cfg.Population.InitialPredators = 0
	cfg.Population.PredatorCohort = 0
	if err := cfg.Refresh(); err != nil {
		t.Fatal(err)
	}

	r := runSimulation(cfg, 1, 1000)
	if r.err != nil {
		t.Fatal(r.err)
	}
	if r.ticks != 0 {
		t.Errorf("ticks = %d, want 0 with no predators", r.ticks)
	}
}

func TestEvaluateCapsAtMaxTicks(t *testing.T) {
	pv := NewParamVector()
	base := config.MustLoad("")
	fe := NewFitnessEvaluator(pv, 5, []int64{1, 2}, base)

	fitness := fe.Evaluate(pv.Extract(base))
	if fitness != -5 {
		t.Errorf("fitness = %v, want -5", fitness)
	}
	if fe.LastMeanTicks() != 5 {
		t.Errorf("LastMeanTicks = %v, want 5", fe.LastMeanTicks())
	}
	if fe.BestHallOfFame() == nil {
		t.Error("BestHallOfFame should be recorded")
	}
	if base.Population.PreyCohort == 0 {
		t.Error("base config should keep its prey cohort")
	}
	if fe.base.Population.PreyCohort != 0 || fe.base.Population.PredatorCohort != 0 {
		t.Error("evaluator should disable cohort injection")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m00s"},
		{65 * time.Second, "1m05s"},
		{3*time.Hour + 2*time.Minute + 1500*time.Millisecond, "3h02m02s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
