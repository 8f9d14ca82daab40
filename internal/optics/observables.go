package optics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Power is the sum of |E|² over the grid.
func (b *Beam) Power() float64 {
	var power float64
	for _, row := range b.Intensity() {
		power += floats.Sum(row)
	}
	return power
}

func (b *Beam) PeakIntensity() float64 {
	peak := 0.
	for _, row := range b.Intensity() {
		peak = math.Max(peak, floats.Max(row))
	}
	return peak
}

// ProfileRow returns the intensity along row i.
func (b *Beam) ProfileRow(i int) []float64 {
	row := make([]float64, b.grid.size)
	for j, e := range b.field[i] {
		row[j] = real(e)*real(e) + imag(e)*imag(e)
	}
	return row
}

// Centroid returns the intensity-weighted center. A dark beam reports (0, 0).
func (b *Beam) Centroid() (x, y float64) {
	intensity := b.Intensity()
	var total float64
	for i, row := range intensity {
		rowSum := floats.Sum(row)
		total += rowSum
		y += rowSum * b.grid.coords[i]
		x += floats.Dot(row, b.grid.coords)
	}
	if total == 0 {
		return 0, 0
	}
	return x / total, y / total
}

// Radius returns the second-moment beam radius sqrt(2<r²>) about the centroid,
// which is w0 for A·exp(-r²/w0²).
func (b *Beam) Radius() float64 {
	intensity := b.Intensity()
	cx, cy := b.Centroid()
	var total, moment float64
	for i, row := range intensity {
		dy := b.grid.coords[i] - cy
		for j, v := range row {
			dx := b.grid.coords[j] - cx
			moment += v * (dx*dx + dy*dy)
			total += v
		}
	}
	if total == 0 {
		return 0
	}
	return math.Sqrt(2 * moment / total)
}
