package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/config"
	"github.com/pthm-cable/predprey/systems"
	"github.com/pthm-cable/predprey/telemetry"
)

// Step advances the simulation by one tick.
//
// Queued commands are applied first. The spatial grid is then rebuilt from
// the positions at tick start, resources regenerate, and every living agent
// runs its species update. Agents that die during the pass are tombstoned
// and removed by compaction once the pass ends; births are queued and
// spawned after compaction, so offspring first act on the next tick.
// Population floor rules and telemetry close the tick.
func (g *Game) Step() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseCommands)
	g.applyCommands()

	g.perfCollector.StartPhase(telemetry.PhaseSpatialGrid)
	g.updateSpatialGrid()

	g.perfCollector.StartPhase(telemetry.PhaseResourceField)
	g.resourceField.Regenerate()

	g.perfCollector.StartPhase(telemetry.PhaseAgents)
	g.updateAgents()

	g.perfCollector.StartPhase(telemetry.PhaseCompaction)
	g.cleanupDead()

	g.perfCollector.StartPhase(telemetry.PhaseBirths)
	g.spawnBirths()

	g.perfCollector.StartPhase(telemetry.PhasePopulation)
	g.applyPopulationRules()

	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// updateSpatialGrid rebuilds the spatial index.
func (g *Game) updateSpatialGrid() {
	g.spatialGrid.Clear()

	query := g.entityFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, _, energy, org, _ := query.Get()

		if energy.Alive {
			g.spatialGrid.Insert(entity, org.Kind, pos.X, pos.Y)
		}
	}
}

// updateAgents runs every living agent's species update in storage order.
func (g *Game) updateAgents() {
	query := g.entityFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, motion, energy, org, traits := query.Get()

		// Eaten earlier in this pass
		if !energy.Alive {
			continue
		}

		org.Age++
		if org.ReproCooldown > 0 {
			org.ReproCooldown--
		}

		if org.Kind == components.KindPredator {
			g.updatePredator(entity, pos, motion, energy, org, traits)
		} else {
			g.updatePrey(entity, pos, motion, energy, org, traits)
		}
	}
}

// updatePrey: sense predators, decide, pay movement, move, forage,
// reproduce, avoid other prey, then check for starvation.
func (g *Game) updatePrey(entity ecs.Entity, pos *components.Position, motion *components.Motion,
	energy *components.Energy, org *components.Organism, traits *components.Traits) {
	sp := g.cfg.Prey

	percept := g.sense(entity, pos, motion, org.Kind, *traits)
	g.decide(org.ID, percept, motion, energy, sp)

	systems.SpendEnergy(energy, *motion, sp)
	g.move(pos, motion, org, sp, 1)

	cell := g.resourceField.CellAt(pos.X, pos.Y)
	if gained := systems.Forage(energy, cell, sp); gained > 0 {
		g.collector.RecordForage(gained)
		g.lifetimeTracker.RecordForage(org.ID, gained)
	}

	g.tryReproduce(pos, motion, energy, org, traits, sp)
	g.avoidCollision(entity, pos, motion, org, sp)

	systems.CheckStarved(energy)
}

// updatePredator: pay metabolism, sense prey, capture the nearest prey in
// reach, decide, move (slowed while eating), avoid other predators,
// reproduce, then check for starvation.
func (g *Game) updatePredator(entity ecs.Entity, pos *components.Position, motion *components.Motion,
	energy *components.Energy, org *components.Organism, traits *components.Traits) {
	sp := g.cfg.Predator

	systems.SpendEnergy(energy, *motion, sp)

	percept := g.sense(entity, pos, motion, org.Kind, *traits)
	g.capture(entity, pos, energy, org, sp)
	g.decide(org.ID, percept, motion, energy, sp)

	speedFactor := 1.0
	if org.EatingCooldown > 0 {
		org.EatingCooldown--
		speedFactor = sp.EatingSpeedFactor
	}
	g.move(pos, motion, org, sp, speedFactor)
	g.avoidCollision(entity, pos, motion, org, sp)

	g.tryReproduce(pos, motion, energy, org, traits, sp)

	systems.CheckStarved(energy)
}

// sense finds the nearest visible agent of the opposite species within the
// 3x3 grid block.
func (g *Game) sense(entity ecs.Entity, pos *components.Position, motion *components.Motion,
	kind components.Kind, traits components.Traits) systems.Percept {
	g.neighbors = g.spatialGrid.QueryBlockInto(g.neighbors[:0], pos.X, pos.Y, traits.FOVDistance,
		kind.Opposite(), entity, g.posMap)
	return systems.NearestVisible(g.neighbors, motion.Direction, traits, g.energyMap)
}

// decide feeds the percept through the agent's controller and applies the
// resulting turn and speed.
func (g *Game) decide(id uint32, percept systems.Percept, motion *components.Motion,
	energy *components.Energy, sp config.SpeciesConfig) {
	brain, ok := g.brains[id]
	if !ok {
		return
	}
	out := brain.Forward(percept.Inputs(g.cfg.Derived.MaxDistance, energy.Value, sp.MaxEnergy))
	systems.Steer(motion, out[0], out[1], sp)
}

// move advances the agent and refreshes its cached grid cell.
func (g *Game) move(pos *components.Position, motion *components.Motion, org *components.Organism,
	sp config.SpeciesConfig, speedFactor float64) {
	systems.Move(pos, motion, sp, speedFactor, g.bounds)
	cell := g.spatialGrid.CellOf(pos.X, pos.Y)
	org.Col, org.Row = cell.Col, cell.Row
}

// capture lets a predator eat the closest living prey within capture
// radius. Field of view does not apply.
func (g *Game) capture(entity ecs.Entity, pos *components.Position, energy *components.Energy,
	org *components.Organism, sp config.SpeciesConfig) {
	if sp.CaptureRadius <= 0 || !energy.Alive {
		return
	}

	g.neighbors = g.spatialGrid.QueryBlockInto(g.neighbors[:0], pos.X, pos.Y, sp.CaptureRadius,
		components.KindPrey, entity, g.posMap)
	target, ok := systems.Nearest(g.neighbors, g.energyMap)
	if !ok {
		return
	}

	preyEnergy := g.energyMap.Get(target.E)
	systems.Feed(energy, preyEnergy, sp)
	if preyEnergy.Alive {
		return
	}

	org.EatingCooldown = sp.EatingCooldown
	g.collector.RecordKill()
	g.lifetimeTracker.RecordKill(org.ID)
	g.lifetimeTracker.UpdateEnergy(org.ID, energy.Value)
}

// avoidCollision reverses the agent's heading and takes one extra step when
// another living agent of its species is within collision radius.
// Only the agent being updated turns around. An agent never writes another
// agent's heading, so the other party reacts on its own update if it is
// still in range then.
func (g *Game) avoidCollision(entity ecs.Entity, pos *components.Position, motion *components.Motion,
	org *components.Organism, sp config.SpeciesConfig) {
	if !g.cfg.Collision.Enabled || sp.CollisionRadius <= 0 {
		return
	}

	if g.cfg.Collision.BruteForce {
		g.neighbors = g.spatialGrid.QueryAllInto(g.neighbors[:0], pos.X, pos.Y, sp.CollisionRadius,
			org.Kind, entity, g.posMap)
	} else {
		g.neighbors = g.spatialGrid.QueryBlockInto(g.neighbors[:0], pos.X, pos.Y, sp.CollisionRadius,
			org.Kind, entity, g.posMap)
	}
	if _, ok := systems.Nearest(g.neighbors, g.energyMap); !ok {
		return
	}

	systems.Reverse(motion)
	g.move(pos, motion, org, sp, 1)
}

// tryReproduce halves the parent's energy and queues an offspring holding
// the other half. Caps count births already queued this tick.
func (g *Game) tryReproduce(pos *components.Position, motion *components.Motion, energy *components.Energy,
	org *components.Organism, traits *components.Traits, sp config.SpeciesConfig) {
	if !energy.Alive || !systems.CanReproduce(energy.Value, org, sp) {
		return
	}
	if limit := g.populationCap(org.Kind); limit > 0 && g.count(org.Kind)+g.pending[org.Kind] >= limit {
		return
	}
	parentBrain, ok := g.brains[org.ID]
	if !ok {
		return
	}

	energy.Value /= 2
	org.ReproCooldown = sp.ReproductionCooldown

	inh := systems.Inherit(g.rng, parentBrain, *traits, org.Kind, g.cfg.Mutation)
	x, y := systems.OffspringPosition(g.rng, pos.X, pos.Y, sp.OffspringJitter, g.bounds)

	g.births = append(g.births, birth{
		agent: agentSpec{
			kind:       org.Kind,
			x:          x,
			y:          y,
			direction:  motion.Direction,
			velocity:   motion.Velocity,
			energy:     energy.Value,
			cooldown:   sp.ReproductionCooldown,
			brain:      inh.Brain,
			traits:     inh.Traits,
			generation: org.Generation + 1,
			parentID:   org.ID,
		},
		mutated:        inh.Mutated,
		weightsChanged: inh.Changed,
	})
	g.pending[org.Kind]++
}

// populationCap returns the configured maximum for kind; 0 means unlimited.
func (g *Game) populationCap(kind components.Kind) int {
	if kind == components.KindPredator {
		return g.cfg.Population.MaxPredators
	}
	return g.cfg.Population.MaxPrey
}
