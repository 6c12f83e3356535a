package systems

import (
	"testing"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/config"
)

func TestSpendEnergy(t *testing.T) {
	sp := config.SpeciesConfig{BaseCost: 0.1, MoveCost: 0.5}

	tests := []struct {
		name     string
		energy   float64
		velocity float64
		want     float64
	}{
		{"idle", 10, 0, 9.9},
		{"moving", 10, 1, 9.4},
		{"clamped at zero", 0.2, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			en := components.Energy{Value: tt.energy, Alive: true}
			SpendEnergy(&en, components.Motion{Velocity: tt.velocity}, sp)
			if diff := en.Value - tt.want; diff > 1e-12 || diff < -1e-12 {
				t.Errorf("energy = %v, want %v", en.Value, tt.want)
			}
			if en.Value < 0 {
				t.Error("energy went negative")
			}
		})
	}
}

func TestForageCapsAtMaxEnergy(t *testing.T) {
	sp := config.SpeciesConfig{MaxEnergy: 100, EnergyGain: 5}
	cell := &ResourceCell{MaxEnergy: 50, Energy: 50}

	en := components.Energy{Value: 98, Alive: true}
	gained := Forage(&en, cell, sp)
	if gained != 2 || en.Value != 100 {
		t.Errorf("gained %v to %v, want 2 to 100", gained, en.Value)
	}
	if cell.Energy != 48 {
		t.Errorf("cell energy = %v, want 48", cell.Energy)
	}

	en.Value = 10
	cell.Energy = 1
	if gained := Forage(&en, cell, sp); gained != 1 || cell.Energy != 0 {
		t.Errorf("depleted cell: gained %v, cell %v", gained, cell.Energy)
	}
}

func TestFeed(t *testing.T) {
	sp := config.SpeciesConfig{MaxEnergy: 1000, EnergyGain: 60}
	pred := components.Energy{Value: 100, Alive: true}
	prey := components.Energy{Value: 30, Alive: true}

	if gained := Feed(&pred, &prey, sp); gained != 60 {
		t.Errorf("gained = %v, want 60", gained)
	}
	if pred.Value != 160 {
		t.Errorf("predator energy = %v, want 160", pred.Value)
	}
	if prey.Alive || prey.Fate != components.FateEaten {
		t.Errorf("prey should be eaten: %+v", prey)
	}

	// A tombstoned prey cannot be eaten twice.
	if gained := Feed(&pred, &prey, sp); gained != 0 {
		t.Errorf("second feed gained %v", gained)
	}

	pred.Value = 990
	prey = components.Energy{Value: 1, Alive: true}
	Feed(&pred, &prey, sp)
	if pred.Value != 1000 {
		t.Errorf("predator energy = %v, want cap 1000", pred.Value)
	}
}

func TestCheckStarved(t *testing.T) {
	en := components.Energy{Value: 0, Alive: true}
	if !CheckStarved(&en) {
		t.Fatal("expected starvation at zero energy")
	}
	if en.Alive || en.Fate != components.FateStarved {
		t.Errorf("unexpected state %+v", en)
	}
	if CheckStarved(&en) {
		t.Error("already dead agent should not starve again")
	}

	en = components.Energy{Value: 0.01, Alive: true}
	if CheckStarved(&en) {
		t.Error("positive energy should not starve")
	}
}
