// Package neural provides the feed-forward controllers that steer agents.
package neural

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Network I/O dimensions. The hidden layer size is configurable.
const (
	NumInputs  = 3 // normalized distance, normalized angle, normalized energy
	NumOutputs = 2 // turn, speed
)

// Controller is a single-hidden-layer feed-forward network without biases.
// Both layers squash through a logistic sigmoid, so outputs lie in (0, 1).
// A Controller is owned by exactly one agent; offspring get a Clone.
type Controller struct {
	InToHidden  *mat.Dense // NumInputs x hidden
	HiddenToOut *mat.Dense // hidden x NumOutputs
}

// NewController creates a network with every weight drawn from uniform(-1, 1).
func NewController(rng *rand.Rand, hidden int) *Controller {
	c := &Controller{
		InToHidden:  mat.NewDense(NumInputs, hidden, nil),
		HiddenToOut: mat.NewDense(hidden, NumOutputs, nil),
	}
	randomize(c.InToHidden, rng)
	randomize(c.HiddenToOut, rng)
	return c
}

func randomize(m *mat.Dense, rng *rand.Rand) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, rng.Float64()*2-1)
		}
	}
}

// HiddenSize returns the number of hidden units.
func (c *Controller) HiddenSize() int {
	_, h := c.InToHidden.Dims()
	return h
}

// Forward computes the network output. Each output lies in (0, 1).
func (c *Controller) Forward(inputs [NumInputs]float64) [NumOutputs]float64 {
	in := mat.NewDense(1, NumInputs, inputs[:])

	var sum, hidden mat.Dense
	sum.Mul(in, c.InToHidden)
	hidden.Apply(sigmoidAt, &sum)

	var outSum, out mat.Dense
	outSum.Mul(&hidden, c.HiddenToOut)
	out.Apply(sigmoidAt, &outSum)

	return [NumOutputs]float64{out.At(0, 0), out.At(0, 1)}
}

func sigmoidAt(_, _ int, v float64) float64 {
	return Sigmoid(v)
}

// Sigmoid is the logistic function 1 / (1 + e^-x).
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Mutate applies per-weight Bernoulli mutation: each weight independently,
// with probability rate, is replaced by weight + uniform(-step, step).
// Returns the number of weights changed.
func (c *Controller) Mutate(rng *rand.Rand, rate, step float64) int {
	return mutateDense(c.InToHidden, rng, rate, step) +
		mutateDense(c.HiddenToOut, rng, rate, step)
}

func mutateDense(m *mat.Dense, rng *rand.Rand, rate, step float64) int {
	raw := m.RawMatrix()
	changed := 0
	for i := 0; i < raw.Rows; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
		for j := range row {
			if rng.Float64() < rate {
				row[j] += (rng.Float64()*2 - 1) * step
				changed++
			}
		}
	}
	return changed
}

// Clone creates a deep copy of the network. The copy shares no storage
// with the original.
func (c *Controller) Clone() *Controller {
	return &Controller{
		InToHidden:  mat.DenseCopyOf(c.InToHidden),
		HiddenToOut: mat.DenseCopyOf(c.HiddenToOut),
	}
}

// Weights holds flattened, row-major network weights for serialization.
type Weights struct {
	Hidden      int       `json:"hidden"`
	InToHidden  []float64 `json:"in_to_hidden"`  // [NumInputs * Hidden]
	HiddenToOut []float64 `json:"hidden_to_out"` // [Hidden * NumOutputs]
}

// MarshalWeights flattens the network weights for JSON serialization.
func (c *Controller) MarshalWeights() Weights {
	h := c.HiddenSize()
	w := Weights{
		Hidden:      h,
		InToHidden:  make([]float64, 0, NumInputs*h),
		HiddenToOut: make([]float64, 0, h*NumOutputs),
	}
	for i := 0; i < NumInputs; i++ {
		w.InToHidden = append(w.InToHidden, mat.Row(nil, i, c.InToHidden)...)
	}
	for i := 0; i < h; i++ {
		w.HiddenToOut = append(w.HiddenToOut, mat.Row(nil, i, c.HiddenToOut)...)
	}
	return w
}

// FromWeights restores a controller from its flattened form.
func FromWeights(w Weights) (*Controller, error) {
	if w.Hidden < 1 {
		return nil, fmt.Errorf("hidden size must be positive, got %d", w.Hidden)
	}
	if len(w.InToHidden) != NumInputs*w.Hidden {
		return nil, fmt.Errorf("in_to_hidden: expected %d weights, got %d", NumInputs*w.Hidden, len(w.InToHidden))
	}
	if len(w.HiddenToOut) != w.Hidden*NumOutputs {
		return nil, fmt.Errorf("hidden_to_out: expected %d weights, got %d", w.Hidden*NumOutputs, len(w.HiddenToOut))
	}

	in := make([]float64, len(w.InToHidden))
	copy(in, w.InToHidden)
	out := make([]float64, len(w.HiddenToOut))
	copy(out, w.HiddenToOut)

	return &Controller{
		InToHidden:  mat.NewDense(NumInputs, w.Hidden, in),
		HiddenToOut: mat.NewDense(w.Hidden, NumOutputs, out),
	}, nil
}
