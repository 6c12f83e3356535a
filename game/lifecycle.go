package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/predprey/components"
)

// birth is an offspring queued during the agent pass.
type birth struct {
	agent          agentSpec
	mutated        bool
	weightsChanged int
}

// spawnBirths materialises the offspring queued during the agent pass.
func (g *Game) spawnBirths() {
	for _, b := range g.births {
		g.spawnAgent(b.agent)
		g.collector.RecordBirth(b.agent.kind, b.mutated, b.weightsChanged)
		g.lifetimeTracker.RecordChild(b.agent.parentID)
	}
	g.births = g.births[:0]
	g.pending = [2]int{}
}

// cleanupDead removes tombstoned entities and their controllers.
func (g *Game) cleanupDead() {
	// First pass: collect dead entities (must complete before modifying)
	type deadInfo struct {
		entity ecs.Entity
		id     uint32
		kind   components.Kind
		fate   components.Fate
		traits components.Traits
	}
	var toRemove []deadInfo

	query := g.entityFilter.Query()
	for query.Next() {
		_, _, energy, org, traits := query.Get()

		if !energy.Alive {
			toRemove = append(toRemove, deadInfo{
				entity: query.Entity(),
				id:     org.ID,
				kind:   org.Kind,
				fate:   energy.Fate,
				traits: *traits,
			})
		}
	}

	// Second pass: remove entities (query iteration complete)
	for _, dead := range toRemove {
		g.collector.RecordDeath(dead.kind, dead.fate)

		// Evaluate for hall of fame before dropping the controller
		stats := g.lifetimeTracker.Remove(dead.id, g.tick)
		if brain, ok := g.brains[dead.id]; ok && stats != nil {
			g.hallOfFame.Consider(dead.kind, dead.id, brain.MarshalWeights(), dead.traits, stats)
		}

		g.world.RemoveEntity(dead.entity)
		delete(g.brains, dead.id)

		if dead.kind == components.KindPrey {
			g.numPrey--
		} else {
			g.numPred--
		}
	}
}

// applyPopulationRules injects cohorts to keep either species from being
// lost for good. Predators return when they are extinct and prey have
// flourished; prey are rescued when both populations have collapsed.
func (g *Game) applyPopulationRules() {
	pop := g.cfg.Population

	if g.numPred == 0 && g.numPrey >= pop.PredatorSpawnThreshold && pop.PredatorCohort > 0 {
		g.injectCohort(components.KindPredator, pop.PredatorCohort, "predators_extinct")
	}

	if g.numPred <= pop.PreyRescueMaxPredators && g.numPrey <= pop.PreyRescueThreshold && pop.PreyCohort > 0 {
		g.injectCohort(components.KindPrey, pop.PreyCohort, "prey_collapse")
	}
}

// injectCohort spawns n agents of kind at random positions. Controllers are
// drawn from the hall of fame when it holds proven agents of that species.
func (g *Game) injectCohort(kind components.Kind, n int, reason string) {
	before := g.count(kind)
	seeded := 0
	for i := 0; i < n; i++ {
		entry := g.hallOfFame.Sample(kind)
		if entry != nil {
			seeded++
		}
		g.spawnRandom(kind, entry)
	}
	g.collector.RecordInjection(kind, n)

	slog.Info("population_injection",
		"tick", g.tick,
		"kind", kind.String(),
		"reason", reason,
		"population_before", before,
		"count", n,
		"hall_seeded", seeded,
	)
}

// removeAll deletes every agent and its bookkeeping.
func (g *Game) removeAll() {
	var all []ecs.Entity
	query := g.entityFilter.Query()
	for query.Next() {
		all = append(all, query.Entity())
	}
	for _, e := range all {
		g.world.RemoveEntity(e)
	}

	clear(g.brains)
	g.lifetimeTracker.Clear()
	g.births = g.births[:0]
	g.pending = [2]int{}
	g.numPrey = 0
	g.numPred = 0
}
