package neural

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"
)

func TestNewController(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	c := NewController(rng, 5)

	r, h := c.InToHidden.Dims()
	if r != NumInputs || h != 5 {
		t.Errorf("InToHidden dims = %dx%d, want %dx5", r, h, NumInputs)
	}
	h2, o := c.HiddenToOut.Dims()
	if h2 != 5 || o != NumOutputs {
		t.Errorf("HiddenToOut dims = %dx%d, want 5x%d", h2, o, NumOutputs)
	}
	if c.HiddenSize() != 5 {
		t.Errorf("HiddenSize = %d, want 5", c.HiddenSize())
	}

	w := c.MarshalWeights()
	for _, v := range append(w.InToHidden, w.HiddenToOut...) {
		if v < -1 || v > 1 {
			t.Errorf("initial weight out of [-1,1]: %f", v)
		}
	}
}

func TestForwardRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	tests := []struct {
		name   string
		inputs [NumInputs]float64
	}{
		{"zeros", [NumInputs]float64{0, 0, 0}},
		{"ones", [NumInputs]float64{1, 1, 1}},
		{"mixed", [NumInputs]float64{0.3, -0.8, 0.5}},
		{"no target", [NumInputs]float64{1, 0, 0.05}},
	}

	for i := 0; i < 20; i++ {
		c := NewController(rng, 5)
		for _, tt := range tests {
			out := c.Forward(tt.inputs)
			for k, v := range out {
				if v <= 0 || v >= 1 {
					t.Errorf("%s: output %d out of (0,1): %f", tt.name, k, v)
				}
			}
		}
	}
}

func TestForwardZeroInputsIsHalf(t *testing.T) {
	// With no biases, zero input gives sigmoid(0) at the hidden layer,
	// so the output depends only on the second layer.
	c := NewController(rand.New(rand.NewSource(1)), 3)
	c.HiddenToOut.Zero()

	out := c.Forward([NumInputs]float64{})
	for k, v := range out {
		if math.Abs(v-0.5) > 1e-12 {
			t.Errorf("output %d = %f, want 0.5", k, v)
		}
	}
}

func TestForwardDeterministic(t *testing.T) {
	c := NewController(rand.New(rand.NewSource(42)), 5)
	in := [NumInputs]float64{0.2, 0.4, 0.6}

	a := c.Forward(in)
	b := c.Forward(in)
	if a != b {
		t.Errorf("Forward is not deterministic: %v vs %v", a, b)
	}
}

func TestMutate(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		wantAll bool
	}{
		{"rate zero", 0, false},
		{"rate one", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			c := NewController(rng, 5)
			before := c.MarshalWeights()

			changed := c.Mutate(rng, tt.rate, 0.1)
			after := c.MarshalWeights()

			total := len(before.InToHidden) + len(before.HiddenToOut)
			if tt.wantAll && changed != total {
				t.Errorf("changed = %d, want %d", changed, total)
			}
			if !tt.wantAll && changed != 0 {
				t.Errorf("changed = %d, want 0", changed)
			}

			prev := append(before.InToHidden, before.HiddenToOut...)
			next := append(after.InToHidden, after.HiddenToOut...)
			for i := range prev {
				d := math.Abs(next[i] - prev[i])
				if d > 0.1+1e-12 {
					t.Errorf("weight %d moved by %f, max 0.1", i, d)
				}
				if !tt.wantAll && d != 0 {
					t.Errorf("weight %d changed at rate 0", i)
				}
			}
		})
	}
}

func TestCloneIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	original := NewController(rng, 5)
	clone := original.Clone()

	in := [NumInputs]float64{0.1, 0.2, 0.3}
	if original.Forward(in) != clone.Forward(in) {
		t.Fatal("clone produces different output")
	}

	clone.Mutate(rng, 1, 0.5)
	if original.Forward(in) == clone.Forward(in) {
		t.Error("mutating clone changed original")
	}

	orig := original.InToHidden.At(0, 0)
	clone.InToHidden.Set(0, 0, orig+1)
	if original.InToHidden.At(0, 0) != orig {
		t.Error("clone shares storage with original")
	}
}

func TestWeightsRoundTrip(t *testing.T) {
	c := NewController(rand.New(rand.NewSource(3)), 4)

	data, err := json.Marshal(c.MarshalWeights())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var w Weights
	if err := json.Unmarshal(data, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored, err := FromWeights(w)
	if err != nil {
		t.Fatalf("FromWeights: %v", err)
	}
	in := [NumInputs]float64{0.9, -0.1, 0.4}
	if c.Forward(in) != restored.Forward(in) {
		t.Error("restored network differs from original")
	}
}

func TestFromWeightsRejectsBadShape(t *testing.T) {
	tests := []struct {
		name string
		w    Weights
	}{
		{"zero hidden", Weights{Hidden: 0}},
		{"short input layer", Weights{Hidden: 2, InToHidden: make([]float64, 5), HiddenToOut: make([]float64, 4)}},
		{"short output layer", Weights{Hidden: 2, InToHidden: make([]float64, 6), HiddenToOut: make([]float64, 3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromWeights(tt.w); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func BenchmarkForward(b *testing.B) {
	c := NewController(rand.New(rand.NewSource(42)), 5)
	in := [NumInputs]float64{0.5, 0.1, 0.7}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Forward(in)
	}
}
