package optics

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Beam is a scalar monochromatic field sampled on a square grid.
// The beam exclusively owns its field; wavelength and grid are fixed at construction.
type Beam struct {
	wavelength float64
	grid       Grid
	field      [][]complex128
}

func NewBeam(wavelength float64, size int, physicalSize float64) (*Beam, error) {
	if !(wavelength > 0) || math.IsInf(wavelength, 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidWavelength, wavelength)
	}
	grid, err := NewGrid(size, physicalSize)
	if err != nil {
		return nil, err
	}
	return &Beam{
		wavelength: wavelength,
		grid:       grid,
		field:      newField(size),
	}, nil
}

func newField(size int) [][]complex128 {
	field := make([][]complex128, size)
	for i := range field {
		field[i] = make([]complex128, size)
	}
	return field
}

func (b *Beam) Wavelength() float64   { return b.wavelength }
func (b *Beam) Grid() Grid            { return b.grid }
func (b *Beam) Size() int             { return b.grid.size }
func (b *Beam) PhysicalSize() float64 { return b.grid.physicalSize }

// Wavenumber returns k = 2π/λ.
func (b *Beam) Wavenumber() float64 { return 2 * math.Pi / b.wavelength }

// InitializeGaussian replaces the field with a TEM00 profile A·exp(-r²/w0²) of zero phase.
func (b *Beam) InitializeGaussian(waist, amplitude float64) error {
	if !(waist > 0) || math.IsInf(waist, 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidWaist, waist)
	}
	inverseWaistSquared := 1. / (waist * waist)
	for i := range b.field {
		for j := range b.field[i] {
			b.field[i][j] = complex(amplitude*math.Exp(-b.grid.RadiusSquared(i, j)*inverseWaistSquared), 0)
		}
	}
	return nil
}

func (b *Beam) At(i, j int) complex128 { return b.field[i][j] }

// Field returns a copy of the complex field.
func (b *Beam) Field() [][]complex128 {
	return copyField(b.field)
}

// SetField copies field into the beam.
func (b *Beam) SetField(field [][]complex128) error {
	if len(field) != b.grid.size {
		return fmt.Errorf("%w: %d rows, want %d", ErrShapeMismatch, len(field), b.grid.size)
	}
	for i := range field {
		if len(field[i]) != b.grid.size {
			return fmt.Errorf("%w: row %d has %d samples, want %d", ErrShapeMismatch, i, len(field[i]), b.grid.size)
		}
	}
	b.field = copyField(field)
	return nil
}

func (b *Beam) Clone() *Beam {
	return &Beam{
		wavelength: b.wavelength,
		grid:       b.grid,
		field:      copyField(b.field),
	}
}

// Intensity returns |E|² computed from the current field.
func (b *Beam) Intensity() [][]float64 {
	intensity := make([][]float64, len(b.field))
	for i := range b.field {
		intensity[i] = make([]float64, len(b.field[i]))
		for j, e := range b.field[i] {
			intensity[i][j] = real(e)*real(e) + imag(e)*imag(e)
		}
	}
	return intensity
}

// Phase returns arg(E) in (-π, π].
func (b *Beam) Phase() [][]float64 {
	phase := make([][]float64, len(b.field))
	for i := range b.field {
		phase[i] = make([]float64, len(b.field[i]))
		for j, e := range b.field[i] {
			phase[i][j] = cmplx.Phase(e)
			if phase[i][j] == -math.Pi {
				phase[i][j] = math.Pi
			}
		}
	}
	return phase
}

func copyField(field [][]complex128) [][]complex128 {
	c := make([][]complex128, len(field))
	for i := range field {
		c[i] = make([]complex128, len(field[i]))
		copy(c[i], field[i])
	}
	return c
}
