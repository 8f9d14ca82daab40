package optics

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Propagator advances a beam through free space with the angular-spectrum method.
//
// Wavelength and grid are captured by value when the propagator is bound, and the
// spatial-frequency tables derived from them are computed once. A Beam has no
// setters for either, so the tables stay valid for the propagator's lifetime.
type Propagator struct {
	beam       *Beam
	wavelength float64
	grid       Grid

	k0 float64
	k  []float64 // angular spatial frequencies, DFT ordering
	kz [][]complex128
}

func NewPropagator(b *Beam) (*Propagator, error) {
	if b == nil {
		return nil, ErrNilBeam
	}
	p := &Propagator{
		beam:       b,
		wavelength: b.wavelength,
		grid:       b.grid,
		k0:         2 * math.Pi / b.wavelength,
		k:          SpatialFrequencies(b.grid.size, b.grid.dx),
	}
	p.kz = make([][]complex128, len(p.k))
	for i, ky := range p.k {
		p.kz[i] = make([]complex128, len(p.k))
		for j, kx := range p.k {
			p.kz[i][j] = LongitudinalWavenumber(p.k0, kx, ky)
		}
	}
	return p, nil
}

// SpatialFrequencies returns 2π times the DFT sample frequencies for n samples
// spaced d apart: 0, positive frequencies, then negative ones, as the FFT lays them out.
func SpatialFrequencies(n int, d float64) []float64 {
	k := make([]float64, n)
	scale := 2 * math.Pi / (float64(n) * d)
	for i := range k {
		if i < (n+1)/2 {
			k[i] = float64(i) * scale
		} else {
			k[i] = float64(i-n) * scale
		}
	}
	return k
}

// LongitudinalWavenumber returns sqrt(k0² - kx² - ky²). A negative radicand yields a
// purely imaginary value with non-negative imaginary part.
func LongitudinalWavenumber(k0, kx, ky float64) complex128 {
	radicand := k0*k0 - kx*kx - ky*ky
	if radicand >= 0 {
		return complex(math.Sqrt(radicand), 0)
	}
	return complex(0, math.Sqrt(-radicand))
}

func (p *Propagator) Beam() *Beam         { return p.beam }
func (p *Propagator) Wavelength() float64 { return p.wavelength }
func (p *Propagator) Grid() Grid          { return p.grid }

func (p *Propagator) KZ(i, j int) complex128 { return p.kz[i][j] }

func (p *Propagator) Frequencies() []float64 {
	k := make([]float64, len(p.k))
	copy(k, p.k)
	return k
}

// transfer is exp(i·kz·z). Evanescent components decay for z > 0 and grow for z < 0.
func (p *Propagator) transfer(i, j int, z float64) complex128 {
	return cmplx.Exp(1i * p.kz[i][j] * complex(z, 0))
}

// TransferFunction returns H(kx, ky) = exp(i·kz·z) for distance z in DFT ordering.
func (p *Propagator) TransferFunction(z float64) [][]complex128 {
	h := make([][]complex128, len(p.kz))
	for i := range p.kz {
		h[i] = make([]complex128, len(p.kz[i]))
		for j := range p.kz[i] {
			h[i][j] = p.transfer(i, j, z)
		}
	}
	return h
}

// Propagate moves the bound beam by z meters; negative z propagates backwards.
func (p *Propagator) Propagate(z float64) {
	spectrum := fft.FFT2(p.beam.field)
	for i := range spectrum {
		for j := range spectrum[i] {
			spectrum[i][j] *= p.transfer(i, j, z)
		}
	}
	p.beam.field = fft.IFFT2(spectrum)
}
