package systems

import (
	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/config"
)

// SpendEnergy deducts the per-tick metabolic cost for moving at the
// agent's current velocity. Energy never goes below zero. Returns the
// amount actually deducted.
func SpendEnergy(energy *components.Energy, m components.Motion, sp config.SpeciesConfig) float64 {
	if !energy.Alive {
		return 0
	}
	cost := min(MovementCost(sp, m.Velocity), energy.Value)
	energy.Value -= cost
	return cost
}

// Forage takes up to the species energy gain from the resource cell and adds
// it to the agent, capped at max energy. Only what the agent can hold is
// taken from the cell. Returns the energy gained.
func Forage(energy *components.Energy, cell *ResourceCell, sp config.SpeciesConfig) float64 {
	if !energy.Alive {
		return 0
	}
	room := sp.MaxEnergy - energy.Value
	gained := cell.Consume(min(sp.EnergyGain, room))
	energy.Value += gained
	return gained
}

// Feed credits a predator with the fixed kill reward, capped at max energy,
// and tombstones the prey. Returns the energy gained, or 0 if either side
// is no longer alive.
func Feed(predator, prey *components.Energy, sp config.SpeciesConfig) float64 {
	if !predator.Alive || !prey.Alive {
		return 0
	}
	prey.Alive = false
	prey.Fate = components.FateEaten

	before := predator.Value
	predator.Value = min(predator.Value+sp.EnergyGain, sp.MaxEnergy)
	return predator.Value - before
}

// CheckStarved tombstones an agent whose energy has reached zero.
// Returns true if the agent died on this call.
func CheckStarved(energy *components.Energy) bool {
	if !energy.Alive || energy.Value > 0 {
		return false
	}
	energy.Value = 0
	energy.Alive = false
	energy.Fate = components.FateStarved
	return true
}
