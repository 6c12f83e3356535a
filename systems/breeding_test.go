package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/config"
	"github.com/pthm-cable/predprey/neural"
)

func TestCanReproduce(t *testing.T) {
	sp := config.SpeciesConfig{EnergyToReproduce: 500}

	tests := []struct {
		name     string
		energy   float64
		cooldown int
		want     bool
	}{
		{"ready", 500, 0, true},
		{"below threshold", 499, 0, false},
		{"cooling down", 800, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			org := &components.Organism{ReproCooldown: tt.cooldown}
			if got := CanReproduce(tt.energy, org, sp); got != tt.want {
				t.Errorf("CanReproduce = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInheritWithoutMutation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	parent := neural.NewController(rng, 5)
	traits := components.Traits{Color: components.RGB{R: 10, G: 200, B: 30}, FOVAngle: 2 * math.Pi, FOVDistance: 30}
	mc := config.MustLoad("").Mutation
	mc.Chance = 0

	inh := Inherit(rng, parent, traits, components.KindPrey, mc)
	if inh.Mutated || inh.Changed != 0 {
		t.Errorf("unexpected mutation: %+v", inh)
	}
	if inh.Traits != traits {
		t.Errorf("traits = %+v, want %+v", inh.Traits, traits)
	}
	if inh.Brain == parent {
		t.Fatal("offspring must not share the parent's controller")
	}
	in := [neural.NumInputs]float64{0.3, 0.3, 0.3}
	if inh.Brain.Forward(in) != parent.Forward(in) {
		t.Error("unmutated clone should behave identically")
	}
}

func TestInheritMutationLeavesParent(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	parent := neural.NewController(rng, 5)
	before := parent.MarshalWeights()

	mc := config.MustLoad("").Mutation
	mc.Chance = 1
	mc.WeightRate = 1

	traits := components.Traits{Color: components.RGB{R: 128, G: 128, B: 128}, FOVAngle: math.Pi, FOVDistance: 30}
	for i := 0; i < 200; i++ {
		inh := Inherit(rng, parent, traits, components.KindPrey, mc)
		if !inh.Mutated {
			t.Fatal("expected mutation at chance 1")
		}
		checkTraitBounds(t, inh.Traits, traits, mc)
	}

	after := parent.MarshalWeights()
	for i := range before.InToHidden {
		if before.InToHidden[i] != after.InToHidden[i] {
			t.Fatal("parent weights changed by offspring mutation")
		}
	}
}

func checkTraitBounds(t *testing.T, got, parent components.Traits, mc config.MutationConfig) {
	t.Helper()
	step := func(a, b uint8) int {
		d := int(a) - int(b)
		if d < 0 {
			d = -d
		}
		return d
	}
	if step(got.Color.R, parent.Color.R) > mc.ColorStep ||
		step(got.Color.G, parent.Color.G) > mc.ColorStep ||
		step(got.Color.B, parent.Color.B) > mc.ColorStep {
		t.Errorf("color step too large: %+v -> %+v", parent.Color, got.Color)
	}
	if got.FOVAngle < mc.MinFOVAngle || got.FOVAngle > 2*math.Pi {
		t.Errorf("fov angle %v out of [%v, 2pi]", got.FOVAngle, mc.MinFOVAngle)
	}
	if got.FOVDistance < mc.MinFOVDistance || got.FOVDistance > mc.MaxFOVDistance {
		t.Errorf("fov distance %v out of [%v, %v]", got.FOVDistance, mc.MinFOVDistance, mc.MaxFOVDistance)
	}
}

func TestInheritFOVAngleFloor(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	parent := neural.NewController(rng, 5)
	mc := config.MustLoad("").Mutation
	mc.Chance = 1
	mc.MinFOVAngle = 0.2
	mc.FOVAngleStep = 1.0 // larger than the floor

	traits := components.Traits{FOVAngle: 0.25, FOVDistance: 20}
	sawFloor := false
	for i := 0; i < 200; i++ {
		got := Inherit(rng, parent, traits, components.KindPrey, mc).Traits.FOVAngle
		if got < mc.MinFOVAngle {
			t.Fatalf("fov angle %v below floor %v", got, mc.MinFOVAngle)
		}
		if got == mc.MinFOVAngle {
			sawFloor = true
		}
	}
	if !sawFloor {
		t.Error("expected some offspring clamped to the floor")
	}
}

func TestInheritPredatorKeepsFOV(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	parent := neural.NewController(rng, 5)
	mc := config.MustLoad("").Mutation
	mc.Chance = 1

	traits := components.Traits{FOVAngle: math.Pi / 2, FOVDistance: 40}
	inh := Inherit(rng, parent, traits, components.KindPredator, mc)
	if inh.Traits.FOVAngle != traits.FOVAngle || inh.Traits.FOVDistance != traits.FOVDistance {
		t.Errorf("predator field of view should not mutate: %+v", inh.Traits)
	}
}

func TestWalkChannelBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 1000; i++ {
		lo := walkChannel(rng, 0, 12)
		hi := walkChannel(rng, 255, 12)
		if lo > 12 || hi < 243 {
			t.Fatalf("walk out of range: lo=%d hi=%d", lo, hi)
		}
	}
	if walkChannel(rng, 77, 0) != 77 {
		t.Error("zero step should leave the channel unchanged")
	}
}

func TestOffspringPosition(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	b := Bounds{800, 600}
	for i := 0; i < 1000; i++ {
		x, y := OffspringPosition(rng, 5, 595, 20, b)
		if x < 0 || x > 25 || y < 575 || y > 600 {
			t.Fatalf("offspring at (%v, %v) outside jitter/bounds", x, y)
		}
	}
}
