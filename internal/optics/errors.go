package optics

import "errors"

var (
	ErrInvalidWavelength   = errors.New("optics: wavelength must be positive and finite")
	ErrInvalidGridSize     = errors.New("optics: grid size must be positive")
	ErrInvalidPhysicalSize = errors.New("optics: physical window size must be positive and finite")
	ErrInvalidWaist        = errors.New("optics: gaussian waist must be positive and finite")
	ErrInvalidFocalLength  = errors.New("optics: focal length must be non-zero and finite")
	ErrInvalidTransmission = errors.New("optics: transmission must lie in [0, 1]")
	ErrShapeMismatch       = errors.New("optics: field shape does not match the beam grid")
	ErrNilBeam             = errors.New("optics: propagator needs a beam")
)
