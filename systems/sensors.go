package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/neural"
)

// Percept is what an agent sees of the opposite species in one tick.
type Percept struct {
	Target   ecs.Entity
	Found    bool
	Distance float64 // absolute distance to the target
	Angle    float64 // |heading - bearing| in [0, Pi]
}

// Inputs builds the controller input vector
// [normalized distance, normalized angle, normalized energy].
// With no target, distance is 1 and angle 0.
func (p Percept) Inputs(maxDistance, energy, maxEnergy float64) [neural.NumInputs]float64 {
	dist, angle := 1.0, 0.0
	if p.Found {
		dist = clamp(p.Distance/maxDistance, 0, 1)
		angle = p.Angle / math.Pi
	}
	return [neural.NumInputs]float64{dist, angle, clamp(energy/maxEnergy, 0, 1)}
}

// Visible reports whether a target at bearing and distance lies inside the
// field of view. fovAngle is the full cone width; 2*Pi or more sees all around.
func Visible(heading, bearing, dist, fovAngle, fovDistance float64) bool {
	if dist > fovDistance {
		return false
	}
	if fovAngle >= 2*math.Pi {
		return true
	}
	return AngleDiff(heading, bearing) <= fovAngle/2
}

// NearestVisible picks the closest living neighbor inside the field of view.
// Entities tombstoned earlier in the tick are skipped.
func NearestVisible(
	neighbors []Neighbor,
	heading float64,
	traits components.Traits,
	energyMap *ecs.Map1[components.Energy],
) Percept {
	var best Percept
	bestSq := math.Inf(1)

	for _, n := range neighbors {
		if n.DistSq >= bestSq || !isAlive(n.E, energyMap) {
			continue
		}
		dist := math.Sqrt(n.DistSq)
		bearing := math.Atan2(n.DY, n.DX)
		if !Visible(heading, bearing, dist, traits.FOVAngle, traits.FOVDistance) {
			continue
		}
		bestSq = n.DistSq
		best = Percept{
			Target:   n.E,
			Found:    true,
			Distance: dist,
			Angle:    AngleDiff(heading, bearing),
		}
	}

	return best
}

// Nearest returns the closest living neighbor regardless of field of view.
func Nearest(neighbors []Neighbor, energyMap *ecs.Map1[components.Energy]) (Neighbor, bool) {
	var best Neighbor
	found := false
	for _, n := range neighbors {
		if found && n.DistSq >= best.DistSq {
			continue
		}
		if !isAlive(n.E, energyMap) {
			continue
		}
		best = n
		found = true
	}
	return best, found
}

func isAlive(e ecs.Entity, energyMap *ecs.Map1[components.Energy]) bool {
	en := energyMap.Get(e)
	return en != nil && en.Alive
}
