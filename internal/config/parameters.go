package config

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/wildstyl3r/openbeam/internal/constants"
)

const (
	ModeDiffraction = "diffraction"
	ModeFocusing    = "focusing"
	ModeModulator   = "modulator"
	ModePipeline    = "pipeline"

	StepPropagate = "propagate"
	StepLens      = "lens"
	StepModulator = "modulator"
)

var ErrNoExperiments = errors.New("no experiments provided")

type Config struct {
	OutputDir   string
	Experiments map[string]ExperimentParameters
	ExperimentParameters

	InputUnits  []string
	OutputUnits []string
}

func LoadConfig(configFileName string) (Config, toml.MetaData, error) {
	var config Config
	meta, err := toml.DecodeFile(configFileName+".toml", &config)
	if err != nil {
		return config, meta, err
	}

	var unitsConflict []string
	config.InputUnits, unitsConflict = checkUnits(config.InputUnits)
	if len(unitsConflict) > 0 {
		return config, meta, fmt.Errorf("found input unit conflict: %v", unitsConflict)
	}
	if len(config.OutputUnits) == 0 {
		config.OutputUnits = config.InputUnits
	}
	config.OutputUnits, unitsConflict = checkUnits(config.OutputUnits)
	if len(unitsConflict) > 0 {
		return config, meta, fmt.Errorf("found output unit conflict: %v", unitsConflict)
	}

	if len(config.Experiments) == 0 {
		return config, meta, ErrNoExperiments
	}
	return config, meta, nil
}

// StepParameters describes one entry of a pipeline experiment.
type StepParameters struct {
	Kind        string  // propagate, lens or modulator
	Distance    float64 // [length]
	FocalLength float64 // [length]
	PhaseArm1   float64 // [angle]
	PhaseArm2   float64 // [angle]
}

type ExperimentParameters struct {
	Mode string

	Wavelength   float64 // [length]
	GridSize     int
	PhysicalSize float64 // [length]
	Waist        float64 // [length]
	Amplitude    float64

	Distance float64 // [length]

	LensDistance     float64 // [length]
	FocalLength      float64 // [length]
	DetectorDistance float64 // [length]
	ScanFocus        bool
	ScanPoints       int
	ScanPrecision    float64 // [length]

	PhaseArm1          float64 // [angle]
	PhaseArm2          float64 // [angle]
	SweepTo            float64 // [angle]
	SweepPoints        int
	PhaseTable         string
	TargetTransmission float64

	Steps []StepParameters

	MakeDir bool

	_inputUnits  []string
	_outputUnits []string
	_verbose     bool
}

func (p *ExperimentParameters) InputUnits() []string {
	return p._inputUnits
}

func (p *ExperimentParameters) SetInputUnits(u []string) {
	p._inputUnits = u
}

func (p *ExperimentParameters) OutputUnits() []string {
	return p._outputUnits
}

func (p *ExperimentParameters) SetOutputUnits(u []string) {
	p._outputUnits = u
}

func (p *ExperimentParameters) Verbose() bool {
	return p._verbose
}

func (p *ExperimentParameters) SetVerbosity(verbose bool) {
	p._verbose = verbose
}

var defaultValues = map[string]any{ // in SI
	"Mode":          ModeDiffraction,
	"Wavelength":    constants.DefaultWavelength,
	"GridSize":      constants.DefaultGridSize,
	"PhysicalSize":  constants.DefaultPhysicalSize,
	"Waist":         constants.DefaultWaist,
	"Amplitude":     1.,
	"Distance":      0.1,  //[m]
	"LensDistance":  0.05, //[m]
	"ScanFocus":     false,
	"ScanPoints":    101,
	"ScanPrecision": 1e-5, //[m]
	"SweepTo":       2 * math.Pi,
	"SweepPoints":   20,
	"MakeDir":       false,
}

var defaultUnits = []string{"m", "rad"}

var fieldsAnd = map[string][]string{
	"ScanFocus": {"FocalLength"},
}

var modeRequirements = map[string][]string{
	ModeDiffraction: {},
	ModeFocusing:    {"FocalLength"},
	ModeModulator:   {},
	ModePipeline:    {"Steps"},
}

var calculableFields = map[string]func(*ExperimentParameters, []string) bool{
	// a detector left unplaced sits in the back focal plane
	"DetectorDistance": func(p *ExperimentParameters, defined []string) bool {
		if slices.Contains(defined, "FocalLength") {
			p.DetectorDistance = p.FocalLength
			return true
		}
		return false
	},
}

var LengthUnit = []UnitElement{{Class: Length, Power: 1}}
var AngleUnit = []UnitElement{{Class: Angle, Power: 1}}

var valueUnits = map[string][]UnitElement{
	"Wavelength":       LengthUnit,
	"PhysicalSize":     LengthUnit,
	"Waist":            LengthUnit,
	"Distance":         LengthUnit,
	"LensDistance":     LengthUnit,
	"FocalLength":      LengthUnit,
	"DetectorDistance": LengthUnit,
	"ScanPrecision":    LengthUnit,
	"PhaseArm1":        AngleUnit,
	"PhaseArm2":        AngleUnit,
	"SweepTo":          AngleUnit,
}

func (p *ExperimentParameters) toSI(parameterNames, units []string) {
	reflected := reflect.ValueOf(p).Elem()
	for _, name := range parameterNames {
		field := reflected.FieldByName(name)
		if field.CanFloat() {
			field.SetFloat(SI(field.Float(), valueUnits[name], units, true))
		}
	}
	if slices.Contains(parameterNames, "Steps") {
		p.Steps = slices.Clone(p.Steps)
		for i := range p.Steps {
			p.Steps[i].Distance = SI(p.Steps[i].Distance, LengthUnit, units, true)
			p.Steps[i].FocalLength = SI(p.Steps[i].FocalLength, LengthUnit, units, true)
			p.Steps[i].PhaseArm1 = SI(p.Steps[i].PhaseArm1, AngleUnit, units, true)
			p.Steps[i].PhaseArm2 = SI(p.Steps[i].PhaseArm2, AngleUnit, units, true)
		}
	}
}

/*
field value priority:
1. experiment table
2. top level of the file
3. calculated from other fields
4. default
values from the file are converted to SI with InputUnits, defaults are already SI
*/

func (p *ExperimentParameters) CheckAndUnify(name string, config *Config, meta *toml.MetaData) error {
	var defined []string

	local := reflect.ValueOf(p).Elem()
	global := reflect.ValueOf(&config.ExperimentParameters).Elem()
	localType := local.Type()
	for i := 0; i < local.NumField(); i++ {
		field := localType.Field(i)
		if !field.IsExported() {
			continue
		}
		switch {
		case meta.IsDefined("Experiments", name, field.Name):
			defined = append(defined, field.Name)
		case meta.IsDefined(field.Name):
			local.Field(i).Set(global.Field(i))
			defined = append(defined, field.Name)
		}
	}

	p.toSI(defined, config.InputUnits)

	for fieldName, calculate := range calculableFields {
		if !slices.Contains(defined, fieldName) && calculate(p, defined) {
			defined = append(defined, fieldName)
		}
	}

	for fieldName, value := range defaultValues {
		if !slices.Contains(defined, fieldName) {
			local.FieldByName(fieldName).Set(reflect.ValueOf(value))
		}
	}

	requirements, knownMode := modeRequirements[p.Mode]
	if !knownMode {
		return fmt.Errorf("experiment %s: unknown mode %q", name, p.Mode)
	}
	var missing []string
	for _, requirement := range requirements {
		if !slices.Contains(defined, requirement) {
			missing = append(missing, requirement)
		}
	}
	for field, fieldRequirements := range fieldsAnd {
		enabled := local.FieldByName(field)
		if enabled.Kind() == reflect.Bool && !enabled.Bool() {
			continue
		}
		for _, requirement := range fieldRequirements {
			if !slices.Contains(defined, requirement) && !slices.Contains(missing, requirement) {
				missing = append(missing, requirement)
			}
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("experiment %s: required fields not found: %s", name, strings.Join(missing, ", "))
	}

	p._inputUnits = config.InputUnits
	p._outputUnits = config.OutputUnits
	return p.validate(name)
}

func (p *ExperimentParameters) validate(name string) error {
	switch {
	case p.ScanFocus && p.ScanPoints < 2:
		return fmt.Errorf("experiment %s: ScanPoints must be at least 2, got %d", name, p.ScanPoints)
	case p.ScanFocus && !(p.ScanPrecision > 0):
		return fmt.Errorf("experiment %s: ScanPrecision must be positive", name)
	case p.SweepPoints < 1:
		return fmt.Errorf("experiment %s: SweepPoints must be positive, got %d", name, p.SweepPoints)
	case p.TargetTransmission < 0 || p.TargetTransmission > 1:
		return fmt.Errorf("experiment %s: TargetTransmission must lie in [0, 1], got %g", name, p.TargetTransmission)
	}
	for i, step := range p.Steps {
		switch step.Kind {
		case StepPropagate, StepLens, StepModulator:
		default:
			return fmt.Errorf("experiment %s: step %d has unknown kind %q", name, i, step.Kind)
		}
	}
	return nil
}
