package telemetry

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/neural"
)

func TestHallOfFameEntryCriteria(t *testing.T) {
	tests := []struct {
		name  string
		kind  components.Kind
		stats LifetimeStats
		want  bool
	}{
		{"parent", components.KindPrey, LifetimeStats{DeathTick: 10, Children: 1}, true},
		{"short childless", components.KindPrey, LifetimeStats{DeathTick: 10}, false},
		{"long forager", components.KindPrey, LifetimeStats{DeathTick: 600, TotalForaged: 150}, true},
		{"long idle prey", components.KindPrey, LifetimeStats{DeathTick: 600}, false},
		{"long hunter", components.KindPredator, LifetimeStats{DeathTick: 600, Kills: 2}, true},
		{"long idle predator", components.KindPredator, LifetimeStats{DeathTick: 600}, false},
	}

	w := neural.NewController(rand.New(rand.NewSource(1)), 2).MarshalWeights()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hof := NewHallOfFame(4, rand.New(rand.NewSource(1)))
			stats := tt.stats
			if got := hof.Consider(tt.kind, 1, w, components.Traits{}, &stats); got != tt.want {
				t.Errorf("Consider = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHallOfFameCapacityAndOrder(t *testing.T) {
	hof := NewHallOfFame(3, rand.New(rand.NewSource(7)))
	w := neural.NewController(rand.New(rand.NewSource(1)), 2).MarshalWeights()

	for i := 1; i <= 6; i++ {
		hof.Consider(components.KindPredator, uint32(i), w, components.Traits{},
			&LifetimeStats{DeathTick: 10, Children: i})
	}

	if got := hof.Size(components.KindPredator); got != 3 {
		t.Fatalf("size = %d, want 3", got)
	}
	if hof.Size(components.KindPrey) != 0 {
		t.Error("prey hall should be untouched")
	}

	want := fitness(components.KindPredator, &LifetimeStats{DeathTick: 10, Children: 6})
	if hof.TopFitness(components.KindPredator) != want {
		t.Errorf("top fitness = %v, want %v", hof.TopFitness(components.KindPredator), want)
	}

	for i := 0; i < 20; i++ {
		e := hof.Sample(components.KindPredator)
		if e == nil || e.Children < 4 {
			t.Fatalf("sampled evicted entry %+v", e)
		}
	}
}

func TestHallOfFameNilAndEmpty(t *testing.T) {
	var hof *HallOfFame
	if hof.Sample(components.KindPrey) != nil || hof.Size(components.KindPrey) != 0 {
		t.Error("nil hall should be empty")
	}
	if hof.Consider(components.KindPrey, 1, neural.Weights{}, components.Traits{}, &LifetimeStats{Children: 3}) {
		t.Error("nil hall should not accept entries")
	}

	disabled := NewHallOfFame(0, rand.New(rand.NewSource(1)))
	if disabled.Consider(components.KindPrey, 1, neural.Weights{}, components.Traits{}, &LifetimeStats{Children: 3}) {
		t.Error("zero-capacity hall should not accept entries")
	}
}

func TestLifetimeTracker(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Register(1, 100, 3)
	lt.RecordKill(1)
	lt.RecordChild(1)
	lt.RecordForage(1, 2.5)
	lt.UpdateEnergy(1, 40)
	lt.UpdateEnergy(1, 30)
	lt.RecordKill(99) // unknown ids are ignored

	s := lt.Get(1)
	if s.Kills != 1 || s.Children != 1 || s.TotalForaged != 2.5 || s.PeakEnergy != 40 {
		t.Errorf("stats = %+v", s)
	}
	if s.SurvivalTicks(150) != 50 {
		t.Errorf("survival while alive = %d", s.SurvivalTicks(150))
	}

	removed := lt.Remove(1, 400)
	if removed.SurvivalTicks(999) != 300 {
		t.Errorf("survival after death = %d", removed.SurvivalTicks(999))
	}
	if lt.Count() != 0 || lt.Remove(1, 500) != nil {
		t.Error("agent should be gone")
	}
}
