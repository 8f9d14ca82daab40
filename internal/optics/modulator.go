package optics

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/wildstyl3r/openbeam/internal/utils"
)

// Modulator is a balanced two-arm interferometer. It keeps no state: arm phases
// are supplied on every call.
type Modulator struct{}

func NewModulator() *Modulator { return &Modulator{} }

// Coefficient is the uniform transmission 0.5·(e^{iφ1} + e^{iφ2}).
func (m *Modulator) Coefficient(phaseArm1, phaseArm2 float64) complex128 {
	return 0.5 * (cmplx.Exp(complex(0, phaseArm1)) + cmplx.Exp(complex(0, phaseArm2)))
}

func (m *Modulator) Apply(b *Beam, phaseArm1, phaseArm2 float64) {
	t := m.Coefficient(phaseArm1, phaseArm2)
	for i := range b.field {
		for j := range b.field[i] {
			b.field[i][j] *= t
		}
	}
}

// PeakTransmission is cos²(Δφ/2), the intensity transmission for an arm phase difference.
func (m *Modulator) PeakTransmission(phaseDifference float64) float64 {
	c := math.Cos(phaseDifference / 2)
	return c * c
}

// PhaseForTransmission returns the phase difference in [0, π] that transmits t.
func (m *Modulator) PhaseForTransmission(t float64) (float64, error) {
	if !(t >= 0 && t <= 1) {
		return 0, fmt.Errorf("%w: got %g", ErrInvalidTransmission, t)
	}
	// cos² falls monotonically on [0, π]
	below, above := utils.BinarySearch(func(phi float64) bool {
		return m.PeakTransmission(phi) <= t
	}, 0, math.Pi, 1e-12)
	return (below + above) * 0.5, nil
}

// ModulatorSetting binds arm phases to a modulator so it can act as an Element.
type ModulatorSetting struct {
	Modulator *Modulator
	PhaseArm1 float64
	PhaseArm2 float64
}

func (s ModulatorSetting) Apply(b *Beam) {
	s.Modulator.Apply(b, s.PhaseArm1, s.PhaseArm2)
}

func (s ModulatorSetting) element() {}

func (s ModulatorSetting) String() string {
	return fmt.Sprintf("modulator φ1=%g rad φ2=%g rad", s.PhaseArm1, s.PhaseArm2)
}
