package telemetry

// LifetimeStats tracks per-agent statistics over its lifetime.
type LifetimeStats struct {
	BirthTick  int32 `json:"birth_tick"`
	DeathTick  int32 `json:"death_tick,omitempty"`
	Generation int   `json:"generation"`

	// Hunting (predators)
	Kills int `json:"kills,omitempty"`

	// Reproduction
	Children int `json:"children"`

	// Energy
	PeakEnergy   float64 `json:"peak_energy"`
	TotalForaged float64 `json:"total_foraged,omitempty"` // prey only: cumulative energy gained from foraging
}

// SurvivalTicks returns how long the agent lived, up to tick if still alive.
func (ls *LifetimeStats) SurvivalTicks(tick int32) int32 {
	end := ls.DeathTick
	if end == 0 {
		end = tick
	}
	return end - ls.BirthTick
}

// LifetimeTracker manages per-agent lifetime statistics keyed by agent ID.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new agent.
func (lt *LifetimeTracker) Register(id uint32, birthTick int32, generation int) {
	lt.stats[id] = &LifetimeStats{
		BirthTick:  birthTick,
		Generation: generation,
	}
}

// Get returns the lifetime stats for an agent, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes an agent's stats and returns them, stamped with the death tick.
func (lt *LifetimeTracker) Remove(id uint32, deathTick int32) *LifetimeStats {
	s := lt.stats[id]
	delete(lt.stats, id)
	if s != nil {
		s.DeathTick = deathTick
	}
	return s
}

// RecordKill increments kill count.
func (lt *LifetimeTracker) RecordKill(id uint32) {
	if s := lt.stats[id]; s != nil {
		s.Kills++
	}
}

// RecordChild increments children count.
func (lt *LifetimeTracker) RecordChild(parentID uint32) {
	if s := lt.stats[parentID]; s != nil {
		s.Children++
	}
}

// RecordForage adds foraging gain to cumulative total.
func (lt *LifetimeTracker) RecordForage(id uint32, amount float64) {
	if s := lt.stats[id]; s != nil {
		s.TotalForaged += amount
	}
}

// UpdateEnergy tracks peak energy.
func (lt *LifetimeTracker) UpdateEnergy(id uint32, energy float64) {
	if s := lt.stats[id]; s != nil && energy > s.PeakEnergy {
		s.PeakEnergy = energy
	}
}

// Count returns the number of tracked agents.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// Clear drops all tracked agents.
func (lt *LifetimeTracker) Clear() {
	clear(lt.stats)
}
