package optics

import "fmt"

// Step is either a free-space propagation (Element == nil) or an element application.
type Step struct {
	Distance float64
	Element  Element
}

func PropagateBy(distance float64) Step { return Step{Distance: distance} }

func ApplyElement(e Element) Step { return Step{Element: e} }

func (s Step) String() string {
	if s.Element == nil {
		return fmt.Sprintf("propagate %g m", s.Distance)
	}
	if stringer, ok := s.Element.(fmt.Stringer); ok {
		return stringer.String()
	}
	return fmt.Sprintf("%T", s.Element)
}

// Pipeline is an ordered optical system.
type Pipeline []Step

// Run executes the steps in order on the propagator's beam. observe, if not nil,
// sees the beam after every step.
func (pl Pipeline) Run(p *Propagator, observe func(index int, s Step, b *Beam)) {
	for index, step := range pl {
		if step.Element == nil {
			p.Propagate(step.Distance)
		} else {
			step.Element.Apply(p.beam)
		}
		if observe != nil {
			observe(index, step, p.beam)
		}
	}
}

// Length is the total signed propagation distance.
func (pl Pipeline) Length() (z float64) {
	for _, step := range pl {
		if step.Element == nil {
			z += step.Distance
		}
	}
	return
}
