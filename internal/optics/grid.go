package optics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Grid is the square sampling window shared by a beam and everything bound to it.
// Coordinates span [-L/2, L/2) with step dx = L/N and are never modified after NewGrid.
type Grid struct {
	size         int
	physicalSize float64
	dx           float64
	coords       []float64
}

func NewGrid(size int, physicalSize float64) (Grid, error) {
	if size <= 0 {
		return Grid{}, fmt.Errorf("%w: got %d", ErrInvalidGridSize, size)
	}
	if !(physicalSize > 0) || math.IsInf(physicalSize, 0) {
		return Grid{}, fmt.Errorf("%w: got %g", ErrInvalidPhysicalSize, physicalSize)
	}
	g := Grid{
		size:         size,
		physicalSize: physicalSize,
		dx:           physicalSize / float64(size),
		coords:       make([]float64, size),
	}
	if size > 1 {
		floats.Span(g.coords, -physicalSize/2, physicalSize/2-g.dx)
	} else {
		g.coords[0] = -physicalSize / 2
	}
	return g, nil
}

func (g Grid) Size() int             { return g.size }
func (g Grid) PhysicalSize() float64 { return g.physicalSize }
func (g Grid) Dx() float64           { return g.dx }

// Center is the index whose coordinate is nearest to zero: exactly zero for even
// sizes, -dx/2 for odd ones.
func (g Grid) Center() int { return g.size / 2 }

func (g Grid) Coord(i int) float64 { return g.coords[i] }

func (g Grid) Coords() []float64 {
	c := make([]float64, len(g.coords))
	copy(c, g.coords)
	return c
}

// RadiusSquared returns x² + y² at row i (y) and column j (x).
func (g Grid) RadiusSquared(i, j int) float64 {
	return g.coords[j]*g.coords[j] + g.coords[i]*g.coords[i]
}

// X returns the mesh of x coordinates, X[i][j] = x[j].
func (g Grid) X() [][]float64 {
	mesh := make([][]float64, g.size)
	for i := range mesh {
		mesh[i] = g.Coords()
	}
	return mesh
}

// Y returns the mesh of y coordinates, Y[i][j] = y[i].
func (g Grid) Y() [][]float64 {
	mesh := make([][]float64, g.size)
	for i := range mesh {
		mesh[i] = make([]float64, g.size)
		for j := range mesh[i] {
			mesh[i][j] = g.coords[i]
		}
	}
	return mesh
}

