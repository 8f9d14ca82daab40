package optics

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Lens is an ideal thin lens: a pure quadratic phase mask.
type Lens struct {
	focalLength float64
}

func NewLens(focalLength float64) (*Lens, error) {
	if focalLength == 0 || math.IsNaN(focalLength) || math.IsInf(focalLength, 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidFocalLength, focalLength)
	}
	return &Lens{focalLength: focalLength}, nil
}

func (l *Lens) FocalLength() float64 { return l.focalLength }

// Apply multiplies the field by exp(-i·k/(2f)·(x²+y²)).
func (l *Lens) Apply(b *Beam) {
	curvature := -b.Wavenumber() / (2 * l.focalLength)
	for i := range b.field {
		for j := range b.field[i] {
			b.field[i][j] *= cmplx.Exp(complex(0, curvature*b.grid.RadiusSquared(i, j)))
		}
	}
}

func (l *Lens) element() {}

func (l *Lens) String() string {
	return fmt.Sprintf("lens f=%g m", l.focalLength)
}
