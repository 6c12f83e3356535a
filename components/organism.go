package components

import "fmt"

// Kind tags the species variant of an agent.
type Kind uint8

const (
	KindPrey Kind = iota
	KindPredator
)

// String returns the lowercase species name.
func (k Kind) String() string {
	switch k {
	case KindPrey:
		return "prey"
	case KindPredator:
		return "predator"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name, so JSON carries "prey"/"predator".
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "prey":
		*k = KindPrey
	case "predator":
		*k = KindPredator
	default:
		return fmt.Errorf("unknown kind %q", text)
	}
	return nil
}

// Opposite returns the species an agent of kind k senses.
func (k Kind) Opposite() Kind {
	if k == KindPrey {
		return KindPredator
	}
	return KindPrey
}

// Fate records why an agent left the Alive state.
type Fate uint8

const (
	FateAlive Fate = iota
	FateEaten
	FateStarved
)

// String returns the fate name used in logs and telemetry.
func (f Fate) String() string {
	switch f {
	case FateAlive:
		return "alive"
	case FateEaten:
		return "eaten"
	case FateStarved:
		return "starved"
	default:
		return "unknown"
	}
}

// Energy tracks an agent's energy and lifecycle state.
// An entity with Alive=false is a tombstone: still stored until the
// end-of-tick compaction, but ignored by every system.
type Energy struct {
	Value float64
	Alive bool
	Fate  Fate
}

// Organism bundles identity, cached grid cell, and cooldowns.
type Organism struct {
	ID             uint32
	Kind           Kind
	Col, Row       int // spatial grid cell, recomputed every move
	ReproCooldown  int // ticks until reproduction is allowed
	EatingCooldown int // ticks of reduced speed after a kill (predators)
	Age            int // ticks alive
	Generation     int
	ParentID       uint32
}
