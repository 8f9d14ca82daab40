package model

import (
	"fmt"
	"log"
	"math"

	"github.com/wildstyl3r/openbeam/internal/config"
	"github.com/wildstyl3r/openbeam/internal/optics"
	"github.com/wildstyl3r/openbeam/internal/utils"
)

// StepRecord is the state of the beam after one pipeline step.
type StepRecord struct {
	Index  int
	Label  string
	Z      float64 // propagated distance so far
	Power  float64
	Peak   float64
	Radius float64
}

type SweepPoint struct {
	PhaseArm1    float64
	PhaseArm2    float64
	Peak         float64
	Transmission float64 // output peak over input peak
	Theory       float64
}

type ScanPoint struct {
	Distance float64
	Peak     float64
	Radius   float64
}

// Model is one optical experiment: a Gaussian source followed by a pipeline.
type Model struct {
	Parameters config.ExperimentParameters

	Beam       *optics.Beam
	Pipeline   optics.Pipeline
	propagator *optics.Propagator
	modulator  *optics.Modulator
	lastLens   int // pipeline index of the last lens, -1 without one

	Records     []StepRecord
	Sweep       []SweepPoint
	FocalScan   []ScanPoint
	BestFocus   float64
	TargetPhase float64
}

func NewModel(parameters config.ExperimentParameters) (*Model, error) {
	beam, err := optics.NewBeam(parameters.Wavelength, parameters.GridSize, parameters.PhysicalSize)
	if err != nil {
		return nil, err
	}
	propagator, err := optics.NewPropagator(beam)
	if err != nil {
		return nil, err
	}
	m := &Model{
		Parameters: parameters,
		Beam:       beam,
		propagator: propagator,
		modulator:  optics.NewModulator(),
		lastLens:   -1,
	}
	if err := m.source(); err != nil {
		return nil, err
	}
	if m.Pipeline, err = m.buildPipeline(); err != nil {
		return nil, err
	}
	for i, step := range m.Pipeline {
		if _, isLens := step.Element.(*optics.Lens); isLens {
			m.lastLens = i
		}
	}
	if m.Parameters.Verbose() {
		log.Printf("grid %d x %d, dx = %g m, %d steps", beam.Size(), beam.Size(), beam.Grid().Dx(), len(m.Pipeline))
	}
	return m, nil
}

func (m *Model) source() error {
	return m.Beam.InitializeGaussian(m.Parameters.Waist, m.Parameters.Amplitude)
}

func (m *Model) buildPipeline() (optics.Pipeline, error) {
	p := m.Parameters
	switch p.Mode {
	case config.ModeDiffraction:
		return optics.Pipeline{optics.PropagateBy(p.Distance)}, nil
	case config.ModeFocusing:
		lens, err := optics.NewLens(p.FocalLength)
		if err != nil {
			return nil, err
		}
		return optics.Pipeline{
			optics.PropagateBy(p.LensDistance),
			optics.ApplyElement(lens),
			optics.PropagateBy(p.DetectorDistance),
		}, nil
	case config.ModeModulator:
		return optics.Pipeline{optics.ApplyElement(optics.ModulatorSetting{
			Modulator: m.modulator,
			PhaseArm1: p.PhaseArm1,
			PhaseArm2: p.PhaseArm2,
		})}, nil
	case config.ModePipeline:
		pipeline := make(optics.Pipeline, 0, len(p.Steps))
		for i, step := range p.Steps {
			switch step.Kind {
			case config.StepPropagate:
				pipeline = append(pipeline, optics.PropagateBy(step.Distance))
			case config.StepLens:
				lens, err := optics.NewLens(step.FocalLength)
				if err != nil {
					return nil, fmt.Errorf("step %d: %w", i, err)
				}
				pipeline = append(pipeline, optics.ApplyElement(lens))
			case config.StepModulator:
				pipeline = append(pipeline, optics.ApplyElement(optics.ModulatorSetting{
					Modulator: m.modulator,
					PhaseArm1: step.PhaseArm1,
					PhaseArm2: step.PhaseArm2,
				}))
			default:
				return nil, fmt.Errorf("step %d: unknown kind %q", i, step.Kind)
			}
		}
		return pipeline, nil
	}
	return nil, fmt.Errorf("unknown mode %q", p.Mode)
}

func newStepRecord(index int, label string, z float64, b *optics.Beam) StepRecord {
	return StepRecord{
		Index:  index,
		Label:  label,
		Z:      z,
		Power:  b.Power(),
		Peak:   b.PeakIntensity(),
		Radius: b.Radius(),
	}
}

// Run executes the experiment once. The beam is left in its final state.
func (m *Model) Run() error {
	if m.Parameters.Mode == config.ModeModulator {
		if err := m.runSweep(); err != nil {
			return err
		}
		if err := m.source(); err != nil {
			return err
		}
	}

	var z float64
	var scanStart *optics.Beam
	if m.lastLens < 0 {
		scanStart = m.Beam.Clone()
	}
	m.Records = []StepRecord{newStepRecord(0, "source", 0, m.Beam)}
	m.Pipeline.Run(m.propagator, func(index int, s optics.Step, b *optics.Beam) {
		if s.Element == nil {
			z += s.Distance
		}
		record := newStepRecord(index+1, s.String(), z, b)
		m.Records = append(m.Records, record)
		if index == m.lastLens {
			scanStart = b.Clone()
		}
		if m.Parameters.Verbose() {
			log.Printf("%-32s z=%-10.4g power=%-12.6g peak=%-12.6g radius=%.4g", record.Label, record.Z, record.Power, record.Peak, record.Radius)
		}
	})

	if m.Parameters.ScanFocus {
		return m.scanFocus(scanStart)
	}
	return nil
}

func (m *Model) sweepSettings() ([][2]float64, error) {
	p := m.Parameters
	var settings [][2]float64
	if p.PhaseTable != "" {
		pairs, err := utils.ReadFloatPairs(p.PhaseTable)
		if err != nil {
			return nil, fmt.Errorf("phase table: %w", err)
		}
		for _, pair := range pairs {
			settings = append(settings, [2]float64{
				config.SI(pair[0], config.AngleUnit, p.InputUnits(), true),
				config.SI(pair[1], config.AngleUnit, p.InputUnits(), true),
			})
		}
		return settings, nil
	}
	for _, phi := range utils.Linspace(0, p.SweepTo, p.SweepPoints) {
		settings = append(settings, [2]float64{p.PhaseArm1, p.PhaseArm1 + phi})
	}
	return settings, nil
}

// runSweep reproduces the modulator transfer curve, each point on a fresh pulse.
func (m *Model) runSweep() error {
	settings, err := m.sweepSettings()
	if err != nil {
		return err
	}
	m.Sweep = make([]SweepPoint, 0, len(settings))
	transmissions := make([]float64, 0, len(settings))
	for _, phases := range settings {
		if err := m.source(); err != nil {
			return err
		}
		input := m.Beam.PeakIntensity()
		m.modulator.Apply(m.Beam, phases[0], phases[1])
		point := SweepPoint{
			PhaseArm1: phases[0],
			PhaseArm2: phases[1],
			Peak:      m.Beam.PeakIntensity(),
			Theory:    m.modulator.PeakTransmission(phases[1] - phases[0]),
		}
		if input > 0 {
			point.Transmission = point.Peak / input
		}
		m.Sweep = append(m.Sweep, point)
		transmissions = append(transmissions, point.Transmission)
	}
	if m.Parameters.TargetTransmission > 0 {
		if m.TargetPhase, err = m.modulator.PhaseForTransmission(m.Parameters.TargetTransmission); err != nil {
			return err
		}
	}
	if m.Parameters.Verbose() {
		log.Printf("sweep of %d points, mean transmission %.4f", len(m.Sweep), utils.Average(transmissions))
	}
	return nil
}

// scanFocus tabulates the beam behind start over [0, 2|f|] and refines the
// distance of maximum peak intensity around the best tabulated point.
func (m *Model) scanFocus(start *optics.Beam) error {
	probe := start.Clone()
	propagator, err := optics.NewPropagator(probe)
	if err != nil {
		return err
	}
	initial := start.Field()
	propagateTo := func(distance float64) (*optics.Beam, error) {
		if err := probe.SetField(initial); err != nil {
			return nil, err
		}
		propagator.Propagate(distance)
		return probe, nil
	}

	distances := utils.Linspace(0, 2*math.Abs(m.Parameters.FocalLength), m.Parameters.ScanPoints)
	peaks := make([]float64, len(distances))
	m.FocalScan = make([]ScanPoint, len(distances))
	for i, distance := range distances {
		b, err := propagateTo(distance)
		if err != nil {
			return err
		}
		peaks[i] = b.PeakIntensity()
		m.FocalScan[i] = ScanPoint{Distance: distance, Peak: peaks[i], Radius: b.Radius()}
	}

	best := utils.Argmax(peaks)
	left := distances[max(best-1, 0)]
	right := distances[min(best+1, len(distances)-1)]
	var searchErr error
	m.BestFocus = utils.TernarySearchMax(func(distance float64) float64 {
		b, err := propagateTo(distance)
		if err != nil {
			searchErr = err
			return 0
		}
		return b.PeakIntensity()
	}, left, right, m.Parameters.ScanPrecision)
	if searchErr != nil {
		return searchErr
	}
	if m.Parameters.Verbose() {
		log.Printf("best focus %.6g m behind the last lens", m.BestFocus)
	}
	return nil
}

