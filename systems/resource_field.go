package systems

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/predprey/config"
)

// ResourceCell is one energy-bearing grid square prey forage from.
// 0 <= Energy <= MaxEnergy holds at all times.
type ResourceCell struct {
	MaxEnergy float64
	Energy    float64
	RegenRate float64
}

// Consume removes up to amount from the cell and returns what was taken,
// which is min(Energy, amount). Non-positive amounts take nothing.
func (c *ResourceCell) Consume(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	taken := min(c.Energy, amount)
	c.Energy -= taken
	return taken
}

// Regenerate adds RegenRate to the cell, capped at MaxEnergy.
func (c *ResourceCell) Regenerate() {
	c.Energy = min(c.Energy+c.RegenRate, c.MaxEnergy)
}

// ResourceField is a fixed grid of ResourceCells aligned with the spatial
// partition. Cells are never created or destroyed after construction.
type ResourceField struct {
	cols, rows int
	cellW      float64
	cellH      float64
	cells      []ResourceCell
}

// NewResourceField creates a field matching the world grid. Cell capacity is
// shaped by simplex noise according to cfg.Resource.Patchiness: 0 gives every
// cell the full max_energy, 1 scales each cell's capacity by the noise value.
func NewResourceField(cfg *config.Config, seed int64) *ResourceField {
	cols, rows := cfg.World.GridCols, cfg.World.GridRows
	rc := cfg.Resource

	rf := &ResourceField{
		cols:  cols,
		rows:  rows,
		cellW: cfg.Derived.CellWidth,
		cellH: cfg.Derived.CellHeight,
		cells: make([]ResourceCell, cols*rows),
	}

	noise := opensimplex.NewNormalized(seed)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			n := noise.Eval2(float64(col)*rc.NoiseScale, float64(row)*rc.NoiseScale)
			capacity := rc.MaxEnergy * (1 - rc.Patchiness + rc.Patchiness*n)
			rf.cells[row*cols+col] = ResourceCell{
				MaxEnergy: capacity,
				Energy:    capacity * rc.InitialFill,
				RegenRate: rc.RegenRate,
			}
		}
	}

	return rf
}

// GridSize returns the field resolution.
func (rf *ResourceField) GridSize() (cols, rows int) {
	return rf.cols, rf.rows
}

// Cell returns the cell at grid coordinate c. c must be in bounds.
func (rf *ResourceField) Cell(c Cell) *ResourceCell {
	return &rf.cells[c.Row*rf.cols+c.Col]
}

// CellAt returns the cell containing world position (x, y), clamped to the
// grid edges.
func (rf *ResourceField) CellAt(x, y float64) *ResourceCell {
	col := clampInt(int(x/rf.cellW), 0, rf.cols-1)
	row := clampInt(int(y/rf.cellH), 0, rf.rows-1)
	return &rf.cells[row*rf.cols+col]
}

// Regenerate regenerates every cell once. Called once per tick regardless of
// agent activity.
func (rf *ResourceField) Regenerate() {
	for i := range rf.cells {
		rf.cells[i].Regenerate()
	}
}

// Total returns the energy currently stored across all cells.
func (rf *ResourceField) Total() float64 {
	var sum float64
	for i := range rf.cells {
		sum += rf.cells[i].Energy
	}
	return sum
}

// EnergiesInto writes every cell's current energy into dst in row-major
// order and returns it. dst is grown if needed.
func (rf *ResourceField) EnergiesInto(dst []float64) []float64 {
	dst = dst[:0]
	for i := range rf.cells {
		dst = append(dst, rf.cells[i].Energy)
	}
	return dst
}
