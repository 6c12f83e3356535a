package telemetry

import (
	"encoding/json"
	"math/rand"
	"sort"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/neural"
)

// Hall of fame entry criteria and fitness weights.
const (
	hallMinChildren    = 1
	hallMinSurvival    = 500 // ticks
	hallMinKills       = 1
	hallMinForaged     = 100
	hallChildrenWeight = 10.0
	hallSurvivalWeight = 0.01
	hallKillsWeight    = 5.0
	hallForageWeight   = 0.02
	hallTournamentSize = 3
	numHallKinds       = 2
)

// HallEntry represents a successful agent's controller and fitness.
type HallEntry struct {
	Weights  neural.Weights
	Traits   components.Traits
	Fitness  float64
	AgentID  uint32
	Children int
	Kills    int
	Survival int32
	Foraged  float64
}

// HallOfFame stores proven controllers for reseeding population injections.
// There is one hall per species.
type HallOfFame struct {
	halls   [numHallKinds][]HallEntry
	maxSize int
	rng     *rand.Rand
}

// NewHallOfFame creates a hall of fame with the given capacity per species.
func NewHallOfFame(maxSize int, rng *rand.Rand) *HallOfFame {
	return &HallOfFame{
		maxSize: maxSize,
		rng:     rng,
	}
}

// Consider evaluates a dead agent for hall of fame entry.
// Returns true if the agent was added.
func (hof *HallOfFame) Consider(kind components.Kind, id uint32, weights neural.Weights, traits components.Traits, stats *LifetimeStats) bool {
	if hof == nil || hof.maxSize <= 0 || stats == nil {
		return false
	}
	if !meetsEntryCriteria(kind, stats) {
		return false
	}

	entry := HallEntry{
		Weights:  weights,
		Traits:   traits,
		Fitness:  fitness(kind, stats),
		AgentID:  id,
		Children: stats.Children,
		Kills:    stats.Kills,
		Survival: stats.SurvivalTicks(stats.DeathTick),
		Foraged:  stats.TotalForaged,
	}

	hall := &hof.halls[kind]
	*hall = hof.insertEntry(*hall, entry)
	return true
}

func meetsEntryCriteria(kind components.Kind, stats *LifetimeStats) bool {
	// Primary criterion: reproduced at least once
	if stats.Children >= hallMinChildren {
		return true
	}

	// Secondary criterion: survived long enough AND achieved something
	if stats.SurvivalTicks(stats.DeathTick) >= hallMinSurvival {
		if kind == components.KindPredator {
			return stats.Kills >= hallMinKills
		}
		return stats.TotalForaged >= hallMinForaged
	}

	return false
}

func fitness(kind components.Kind, stats *LifetimeStats) float64 {
	f := float64(stats.Children) * hallChildrenWeight
	f += float64(stats.SurvivalTicks(stats.DeathTick)) * hallSurvivalWeight
	if kind == components.KindPredator {
		f += float64(stats.Kills) * hallKillsWeight
	} else {
		f += stats.TotalForaged * hallForageWeight
	}
	return f
}

// insertEntry adds an entry to the hall, maintaining sorted order by fitness.
// If the hall is full, the lowest-fitness entry is removed.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) []HallEntry {
	// Find insertion point (sorted descending by fitness)
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Fitness < entry.Fitness
	})

	// If hall is full and entry would be last (lowest), skip it
	if len(hall) >= hof.maxSize && idx >= hof.maxSize {
		return hall
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry

	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}

	return hall
}

// Sample selects an entry using tournament selection.
// Returns nil if the hall for kind is empty.
func (hof *HallOfFame) Sample(kind components.Kind) *HallEntry {
	if hof == nil {
		return nil
	}
	hall := hof.halls[kind]
	if len(hall) == 0 {
		return nil
	}

	var best *HallEntry
	for i := 0; i < hallTournamentSize && i < len(hall); i++ {
		candidate := &hall[hof.rng.Intn(len(hall))]
		if best == nil || candidate.Fitness > best.Fitness {
			best = candidate
		}
	}

	entry := *best
	return &entry
}

// Size returns the number of entries for a species.
func (hof *HallOfFame) Size(kind components.Kind) int {
	if hof == nil {
		return 0
	}
	return len(hof.halls[kind])
}

// TopFitness returns the highest fitness in the hall for a species,
// or 0 if it is empty.
func (hof *HallOfFame) TopFitness(kind components.Kind) float64 {
	if hof.Size(kind) == 0 {
		return 0
	}
	return hof.halls[kind][0].Fitness
}

type hallEntryJSON struct {
	AgentID     uint32         `json:"agent_id"`
	Fitness     float64        `json:"fitness"`
	Children    int            `json:"children"`
	Kills       int            `json:"kills"`
	Survival    int32          `json:"survival_ticks"`
	Foraged     float64        `json:"foraged"`
	FOVAngle    float64        `json:"fov_angle"`
	FOVDistance float64        `json:"fov_distance"`
	Weights     neural.Weights `json:"brain"`
}

// MarshalJSON serializes the hall of fame keyed by species name.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	export := make(map[string][]hallEntryJSON, numHallKinds)
	for k, hall := range hof.halls {
		entries := make([]hallEntryJSON, len(hall))
		for i, e := range hall {
			entries[i] = hallEntryJSON{
				AgentID:     e.AgentID,
				Fitness:     e.Fitness,
				Children:    e.Children,
				Kills:       e.Kills,
				Survival:    e.Survival,
				Foraged:     e.Foraged,
				FOVAngle:    e.Traits.FOVAngle,
				FOVDistance: e.Traits.FOVDistance,
				Weights:     e.Weights,
			}
		}
		export[components.Kind(k).String()] = entries
	}
	return json.MarshalIndent(export, "", "  ")
}
