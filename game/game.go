// Package game drives the predator-prey simulation: it owns the ECS world,
// the spatial grid and the resource field, and advances them one tick at a
// time.
package game

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/config"
	"github.com/pthm-cable/predprey/neural"
	"github.com/pthm-cable/predprey/systems"
	"github.com/pthm-cable/predprey/telemetry"
)

// commandBuffer is how many commands may wait for the next tick boundary.
const commandBuffer = 64

// Options configures a simulation instance.
type Options struct {
	Seed        int64
	RunID       string
	LogStats    bool   // log window stats, perf and bookmarks via slog
	OutputDir   string // CSV and JSON output; empty disables
	SnapshotDir string // snapshot on every bookmark; empty disables
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand
	seed  int64
	runID string

	entityMapper *ecs.Map5[
		components.Position,
		components.Motion,
		components.Energy,
		components.Organism,
		components.Traits,
	]
	entityFilter *ecs.Filter5[
		components.Position,
		components.Motion,
		components.Energy,
		components.Organism,
		components.Traits,
	]

	// Individual component mappers for lookups
	posMap    *ecs.Map1[components.Position]
	motionMap *ecs.Map1[components.Motion]
	energyMap *ecs.Map1[components.Energy]
	orgMap    *ecs.Map1[components.Organism]

	// Controllers, keyed by Organism.ID
	brains map[uint32]*neural.Controller

	spatialGrid   *systems.SpatialGrid
	resourceField *systems.ResourceField
	bounds        systems.Bounds

	// Per-tick scratch
	neighbors []systems.Neighbor
	births    []birth
	pending   [2]int // queued births per kind

	cmds chan Command

	// State
	tick    int32
	nextID  uint32
	numPrey int
	numPred int

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	lifetimeTracker  *telemetry.LifetimeTracker
	hallOfFame       *telemetry.HallOfFame
	outputManager    *telemetry.OutputManager
	logStats         bool
	snapshotDir      string
}

// New creates a simulation from a loaded config and seeds the initial
// population. An invalid config is rejected.
func New(cfg *config.Config, opts Options) (*Game, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalid)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(opts.Seed))

	g := &Game{
		cfg:   cfg,
		world: world,
		rng:   rng,
		seed:  opts.Seed,
		runID: opts.RunID,
		entityMapper: ecs.NewMap5[
			components.Position,
			components.Motion,
			components.Energy,
			components.Organism,
			components.Traits,
		](world),
		entityFilter: ecs.NewFilter5[
			components.Position,
			components.Motion,
			components.Energy,
			components.Organism,
			components.Traits,
		](world),
		posMap:    ecs.NewMap1[components.Position](world),
		motionMap: ecs.NewMap1[components.Motion](world),
		energyMap: ecs.NewMap1[components.Energy](world),
		orgMap:    ecs.NewMap1[components.Organism](world),
		brains:    make(map[uint32]*neural.Controller),
		spatialGrid: systems.NewSpatialGrid(
			cfg.World.Width, cfg.World.Height,
			cfg.World.GridCols, cfg.World.GridRows,
		),
		resourceField: systems.NewResourceField(cfg, opts.Seed),
		bounds:        systems.Bounds{Width: cfg.World.Width, Height: cfg.World.Height},
		neighbors:     make([]systems.Neighbor, 0, 64),
		cmds:          make(chan Command, commandBuffer),

		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistory),
		lifetimeTracker:  telemetry.NewLifetimeTracker(),
		hallOfFame:       telemetry.NewHallOfFame(cfg.Population.HallOfFameSize, rng),
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, err
	}
	info := telemetry.RunInfo{RunID: opts.RunID, Seed: opts.Seed, StartedAt: time.Now().UTC()}
	if err := om.WriteRunInfo(info); err != nil {
		om.Close()
		return nil, err
	}

	g.spawnInitialPopulation()

	slog.Info("simulation_started",
		"run_id", g.runID,
		"seed", g.seed,
		"prey", g.numPrey,
		"predators", g.numPred,
		"grid", fmt.Sprintf("%dx%d", cfg.World.GridCols, cfg.World.GridRows),
	)

	return g, nil
}

// spawnInitialPopulation creates the starting agents at random positions.
func (g *Game) spawnInitialPopulation() {
	pop := g.cfg.Population
	for i := 0; i < pop.InitialPrey; i++ {
		g.spawnRandom(components.KindPrey, nil)
	}
	for i := 0; i < pop.InitialPredators; i++ {
		g.spawnRandom(components.KindPredator, nil)
	}
}

// spawnRandom places a fresh agent uniformly in the world. A non-nil seed
// entry supplies its controller and traits.
func (g *Game) spawnRandom(kind components.Kind, seed *telemetry.HallEntry) ecs.Entity {
	x := g.rng.Float64() * g.cfg.World.Width
	y := g.rng.Float64() * g.cfg.World.Height
	dir := g.rng.Float64() * 2 * math.Pi
	sp := g.species(kind)

	a := agentSpec{
		kind:      kind,
		x:         x,
		y:         y,
		direction: dir,
		energy:    sp.InitialEnergy,
	}

	if seed != nil {
		if brain, err := neural.FromWeights(seed.Weights); err == nil {
			inh := systems.Inherit(g.rng, brain, seed.Traits, kind, g.cfg.Mutation)
			a.brain, a.traits = inh.Brain, inh.Traits
		} else {
			slog.Warn("hall_of_fame_bad_weights", "kind", kind.String(), "error", err)
		}
	}

	return g.spawnAgent(a)
}

// agentSpec describes an agent about to be created.
type agentSpec struct {
	kind      components.Kind
	x, y      float64
	direction float64
	velocity  float64
	energy    float64
	cooldown  int

	// Zero values mean a fresh random controller and species-default traits.
	brain  *neural.Controller
	traits components.Traits

	generation int
	parentID   uint32
}

// spawnAgent creates a new entity with its controller and bookkeeping.
// Must not be called while a query is iterating.
func (g *Game) spawnAgent(a agentSpec) ecs.Entity {
	sp := g.species(a.kind)

	id := g.nextID
	g.nextID++

	brain := a.brain
	if brain == nil {
		brain = neural.NewController(g.rng, g.cfg.Neural.HiddenSize)
	}
	traits := a.traits
	if traits == (components.Traits{}) {
		traits = components.Traits{
			Color:       systems.RandomColor(g.rng, a.kind),
			FOVAngle:    sp.FOVAngle,
			FOVDistance: sp.FOVDistance,
		}
	}

	cell := g.spatialGrid.CellOf(a.x, a.y)
	pos := components.Position{X: a.x, Y: a.y}
	motion := components.Motion{Direction: a.direction, Velocity: a.velocity}
	energy := components.Energy{Value: math.Min(a.energy, sp.MaxEnergy), Alive: true}
	org := components.Organism{
		ID:            id,
		Kind:          a.kind,
		Col:           cell.Col,
		Row:           cell.Row,
		ReproCooldown: a.cooldown,
		Generation:    a.generation,
		ParentID:      a.parentID,
	}

	g.brains[id] = brain
	entity := g.entityMapper.NewEntity(&pos, &motion, &energy, &org, &traits)

	g.lifetimeTracker.Register(id, g.tick, a.generation)

	if a.kind == components.KindPrey {
		g.numPrey++
	} else {
		g.numPred++
	}

	return entity
}

// species returns the tunables for kind.
func (g *Game) species(kind components.Kind) config.SpeciesConfig {
	if kind == components.KindPredator {
		return g.cfg.Predator
	}
	return g.cfg.Prey
}

// count returns the number of stored agents of kind, tombstones included.
func (g *Game) count(kind components.Kind) int {
	if kind == components.KindPredator {
		return g.numPred
	}
	return g.numPrey
}

// Config returns the configuration the simulation was built with.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// PreyCount returns the number of prey in the world.
func (g *Game) PreyCount() int {
	return g.numPrey
}

// PredatorCount returns the number of predators in the world.
func (g *Game) PredatorCount() int {
	return g.numPred
}

// RunID returns the run identifier passed in Options.
func (g *Game) RunID() string {
	return g.runID
}

// HallOfFame returns the controllers retained from successful agents.
func (g *Game) HallOfFame() *telemetry.HallOfFame {
	return g.hallOfFame
}

// Close flushes the hall of fame and closes output files.
func (g *Game) Close() error {
	if err := g.outputManager.WriteHallOfFame(g.hallOfFame); err != nil {
		slog.Error("failed to write hall of fame", "error", err)
	}
	return g.outputManager.Close()
}
