package optics

// Element is a thin optical element that transforms a beam's field in place.
// The set of elements is closed: *Lens and ModulatorSetting.
type Element interface {
	Apply(b *Beam)
	element()
}
