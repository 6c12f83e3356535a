package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/predprey/components"
)

// nearReproduction is the fraction of the reproduction threshold at which
// an agent is flagged for display.
const nearReproduction = 0.9

// AgentView is the read-only state of one agent as drawn by a viewer.
type AgentView struct {
	ID               uint32          `json:"id"`
	Kind             components.Kind `json:"kind"`
	X                float64         `json:"x"`
	Y                float64         `json:"y"`
	Direction        float64         `json:"direction"`
	Color            components.RGB  `json:"color"`
	Energy           float64         `json:"energy"`
	NearReproduction bool            `json:"near_reproduction"`
}

// Frame is everything a viewer needs to draw one tick.
type Frame struct {
	Tick      int32       `json:"tick"`
	Width     float64     `json:"width"`
	Height    float64     `json:"height"`
	GridCols  int         `json:"grid_cols"`
	GridRows  int         `json:"grid_rows"`
	Prey      int         `json:"prey"`
	Predators int         `json:"predators"`
	Agents    []AgentView `json:"agents"`
	Resources []float64   `json:"resources"` // row-major cell energies
}

// Snapshot captures the current tick for a viewer. It must be called from
// the goroutine that runs Step; the returned Frame shares no memory with the
// simulation.
func (g *Game) Snapshot() Frame {
	return Frame{
		Tick:      g.tick,
		Width:     g.cfg.World.Width,
		Height:    g.cfg.World.Height,
		GridCols:  g.cfg.World.GridCols,
		GridRows:  g.cfg.World.GridRows,
		Prey:      g.numPrey,
		Predators: g.numPred,
		Agents:    g.Agents(),
		Resources: g.resourceField.EnergiesInto(nil),
	}
}

// Agents returns a view of every living agent.
func (g *Game) Agents() []AgentView {
	views := make([]AgentView, 0, g.numPrey+g.numPred)

	query := g.entityFilter.Query()
	for query.Next() {
		pos, motion, energy, org, traits := query.Get()

		if !energy.Alive {
			continue
		}

		sp := g.species(org.Kind)
		views = append(views, AgentView{
			ID:               org.ID,
			Kind:             org.Kind,
			X:                pos.X,
			Y:                pos.Y,
			Direction:        motion.Direction,
			Color:            traits.Color,
			Energy:           energy.Value,
			NearReproduction: energy.Value >= sp.EnergyToReproduce*nearReproduction,
		})
	}

	return views
}

// SpawnAgent places a fresh agent at (x, y) facing direction, with the
// species' initial energy and a random controller. For scenarios and
// tools; must not be called concurrently with Step.
func (g *Game) SpawnAgent(kind components.Kind, x, y, direction float64) ecs.Entity {
	return g.spawnAgent(agentSpec{
		kind:      kind,
		x:         x,
		y:         y,
		direction: direction,
		energy:    g.species(kind).InitialEnergy,
	})
}

// SetEnergy overrides an agent's energy. Returns false if e is gone.
func (g *Game) SetEnergy(e ecs.Entity, value float64) bool {
	if !g.world.Alive(e) {
		return false
	}
	g.energyMap.Get(e).Value = value
	return true
}

// SetVelocity overrides an agent's velocity. Returns false if e is gone.
func (g *Game) SetVelocity(e ecs.Entity, value float64) bool {
	if !g.world.Alive(e) {
		return false
	}
	g.motionMap.Get(e).Velocity = value
	return true
}

// IsAlive reports whether e is still in the world.
func (g *Game) IsAlive(e ecs.Entity) bool {
	return g.world.Alive(e)
}
