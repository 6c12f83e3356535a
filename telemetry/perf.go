package telemetry

import (
	"log/slog"
	"math"
	"time"
)

// Phase identifies one timed section of the simulation step.
type Phase int

// Step phases in execution order.
const (
	PhaseCommands Phase = iota
	PhaseSpatialGrid
	PhaseResourceField
	PhaseAgents
	PhaseCompaction
	PhaseBirths
	PhasePopulation
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{
	"commands", "spatial_grid", "resource_field", "agents",
	"compaction", "births", "population", "telemetry",
}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// tickTiming is the breakdown of a single tick.
type tickTiming struct {
	total  time.Duration
	phases [numPhases]time.Duration
	seen   [numPhases]bool
}

// PerfCollector keeps a ring of the last windowSize tick timings.
type PerfCollector struct {
	ring  []tickTiming
	next  int
	count int

	cur        tickTiming
	tickStart  time.Time
	phaseStart time.Time
	active     Phase // -1 between ticks
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		ring:   make([]tickTiming, windowSize),
		active: -1,
	}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.cur = tickTiming{}
	p.active = -1
}

// StartPhase closes the running phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.active = phase
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.active < 0 || p.active >= numPhases {
		return
	}
	p.cur.phases[p.active] += now.Sub(p.phaseStart)
	p.cur.seen[p.active] = true
}

// EndTick closes the running phase and stores the tick in the ring.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.active = -1
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
}

// PerfStats aggregates the ticks currently in the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	PhaseAvg map[Phase]time.Duration
	PhasePct map[Phase]float64 // share of the average tick, 0-100

	TicksPerSecond float64
}

// Stats summarises the window. Only phases that ran appear in the maps.
func (p *PerfCollector) Stats() PerfStats {
	out := PerfStats{
		PhaseAvg: make(map[Phase]time.Duration),
		PhasePct: make(map[Phase]float64),
	}
	if p.count == 0 {
		return out
	}

	var total time.Duration
	var sums [numPhases]time.Duration
	var seen [numPhases]bool
	for i, t := range p.ring[:p.count] {
		total += t.total
		if i == 0 || t.total < out.MinTickDuration {
			out.MinTickDuration = t.total
		}
		out.MaxTickDuration = max(out.MaxTickDuration, t.total)
		for ph := range numPhases {
			sums[ph] += t.phases[ph]
			seen[ph] = seen[ph] || t.seen[ph]
		}
	}

	n := time.Duration(p.count)
	out.AvgTickDuration = total / n
	for ph := range numPhases {
		if !seen[ph] {
			continue
		}
		avg := sums[ph] / n
		out.PhaseAvg[ph] = avg
		if out.AvgTickDuration > 0 {
			out.PhasePct[ph] = 100 * float64(avg) / float64(out.AvgTickDuration)
		}
	}
	if out.AvgTickDuration > 0 {
		out.TicksPerSecond = float64(time.Second) / float64(out.AvgTickDuration)
	}

	return out
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}

	for ph := range numPhases {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, ph.String()+"_pct", math.Round(pct*10)/10)
		}
	}

	slog.Info("perf", attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd        int32   `csv:"window_end"`
	AvgTickUS        int64   `csv:"avg_tick_us"`
	MinTickUS        int64   `csv:"min_tick_us"`
	MaxTickUS        int64   `csv:"max_tick_us"`
	TicksPerSec      float64 `csv:"ticks_per_sec"`
	CommandsPct      float64 `csv:"commands_pct"`
	SpatialGridPct   float64 `csv:"spatial_grid_pct"`
	ResourceFieldPct float64 `csv:"resource_field_pct"`
	AgentsPct        float64 `csv:"agents_pct"`
	CompactionPct    float64 `csv:"compaction_pct"`
	BirthsPct        float64 `csv:"births_pct"`
	PopulationPct    float64 `csv:"population_pct"`
	TelemetryPct     float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:        windowEnd,
		AvgTickUS:        s.AvgTickDuration.Microseconds(),
		MinTickUS:        s.MinTickDuration.Microseconds(),
		MaxTickUS:        s.MaxTickDuration.Microseconds(),
		TicksPerSec:      s.TicksPerSecond,
		CommandsPct:      s.PhasePct[PhaseCommands],
		SpatialGridPct:   s.PhasePct[PhaseSpatialGrid],
		ResourceFieldPct: s.PhasePct[PhaseResourceField],
		AgentsPct:        s.PhasePct[PhaseAgents],
		CompactionPct:    s.PhasePct[PhaseCompaction],
		BirthsPct:        s.PhasePct[PhaseBirths],
		PopulationPct:    s.PhasePct[PhasePopulation],
		TelemetryPct:     s.PhasePct[PhaseTelemetry],
	}
}
