package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/config"
	"github.com/pthm-cable/predprey/neural"
)

// Inheritance is what an offspring receives from its parent.
type Inheritance struct {
	Brain   *neural.Controller
	Traits  components.Traits
	Mutated bool
	Changed int // controller weights changed by mutation
}

// CanReproduce reports whether an agent meets its species' energy threshold
// and its cooldown has elapsed.
func CanReproduce(energy float64, org *components.Organism, sp config.SpeciesConfig) bool {
	return org.ReproCooldown <= 0 && energy >= sp.EnergyToReproduce
}

// Inherit clones the parent's controller and traits. With probability
// mc.Chance the offspring mutates: controller weights get per-weight
// Bernoulli mutation, each color channel takes a bounded random step, and
// prey additionally random-walk their field of view.
func Inherit(rng *rand.Rand, parent *neural.Controller, traits components.Traits, kind components.Kind, mc config.MutationConfig) Inheritance {
	inh := Inheritance{
		Brain:  parent.Clone(),
		Traits: traits,
	}
	if rng.Float64() >= mc.Chance {
		return inh
	}

	inh.Mutated = true
	inh.Changed = inh.Brain.Mutate(rng, mc.WeightRate, mc.WeightStep)
	inh.Traits.Color = mutateColor(rng, traits.Color, mc.ColorStep)

	if kind == components.KindPrey {
		inh.Traits.FOVAngle = clamp(
			traits.FOVAngle+(rng.Float64()*2-1)*mc.FOVAngleStep,
			mc.MinFOVAngle, 2*math.Pi,
		)
		inh.Traits.FOVDistance = clamp(
			traits.FOVDistance+(rng.Float64()*2-1)*mc.FOVDistanceStep,
			mc.MinFOVDistance, mc.MaxFOVDistance,
		)
	}

	return inh
}

func mutateColor(rng *rand.Rand, c components.RGB, step int) components.RGB {
	return components.RGB{
		R: walkChannel(rng, c.R, step),
		G: walkChannel(rng, c.G, step),
		B: walkChannel(rng, c.B, step),
	}
}

func walkChannel(rng *rand.Rand, v uint8, step int) uint8 {
	if step <= 0 {
		return v
	}
	n := int(v) + rng.Intn(2*step+1) - step
	return uint8(clampInt(n, 0, 255))
}

// OffspringPosition jitters a parent position by up to jitter on each axis
// and clamps the result into bounds.
func OffspringPosition(rng *rand.Rand, x, y, jitter float64, b Bounds) (float64, float64) {
	x += (rng.Float64()*2 - 1) * jitter
	y += (rng.Float64()*2 - 1) * jitter
	return clamp(x, 0, b.Width), clamp(y, 0, b.Height)
}

// RandomColor returns a starting color for a fresh agent of the given kind.
// Prey start greenish, predators reddish.
func RandomColor(rng *rand.Rand, kind components.Kind) components.RGB {
	lo := func(n int) uint8 { return uint8(rng.Intn(n)) }
	hi := func() uint8 { return uint8(180 + rng.Intn(76)) }
	if kind == components.KindPredator {
		return components.RGB{R: hi(), G: lo(80), B: lo(80)}
	}
	return components.RGB{R: lo(80), G: hi(), B: lo(120)}
}
