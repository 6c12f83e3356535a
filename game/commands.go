package game

import (
	"log/slog"

	"github.com/pthm-cable/predprey/components"
)

// Command is an external request applied at the next tick boundary.
type Command interface {
	apply(g *Game)
}

// AddPrey spawns N prey at random positions.
type AddPrey struct{ N int }

// AddPredators spawns N predators at random positions.
type AddPredators struct{ N int }

// Reset removes every agent and reseeds the initial population. The
// resource field keeps its state.
type Reset struct{}

func (c AddPrey) apply(g *Game)      { g.addAgents(components.KindPrey, c.N) }
func (c AddPredators) apply(g *Game) { g.addAgents(components.KindPredator, c.N) }

func (Reset) apply(g *Game) {
	prey, pred := g.numPrey, g.numPred
	g.removeAll()
	g.spawnInitialPopulation()
	slog.Info("population_reset",
		"tick", g.tick,
		"removed_prey", prey,
		"removed_predators", pred,
		"prey", g.numPrey,
		"predators", g.numPred,
	)
}

// Submit queues a command for the next tick. Safe to call from any
// goroutine. Returns false if the queue is full and the command was dropped.
func (g *Game) Submit(cmd Command) bool {
	select {
	case g.cmds <- cmd:
		return true
	default:
		return false
	}
}

// applyCommands drains the queue without blocking.
func (g *Game) applyCommands() {
	for {
		select {
		case cmd := <-g.cmds:
			cmd.apply(g)
		default:
			return
		}
	}
}

func (g *Game) addAgents(kind components.Kind, n int) {
	if n <= 0 {
		return
	}
	for i := 0; i < n; i++ {
		g.spawnRandom(kind, nil)
	}
	g.collector.RecordInjection(kind, n)
	slog.Info("command_applied",
		"tick", g.tick,
		"kind", kind.String(),
		"count", n,
	)
}
