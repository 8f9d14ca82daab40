package model

import (
	"encoding/csv"
	"errors"
	"flag"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/wildstyl3r/openbeam/internal/config"
	"github.com/wildstyl3r/openbeam/internal/optics"
)

func baseParameters(mode string) config.ExperimentParameters {
	p := config.ExperimentParameters{
		Mode:          mode,
		Wavelength:    1550e-9,
		GridSize:      64,
		PhysicalSize:  5e-3,
		Waist:         0.5e-3,
		Amplitude:     1,
		Distance:      0.1,
		LensDistance:  0.05,
		ScanPoints:    21,
		ScanPrecision: 1e-4,
		SweepTo:       2 * math.Pi,
		SweepPoints:   5,
	}
	p.SetOutputUnits([]string{"mm", "rad"})
	return p
}

func runModel(t *testing.T, p config.ExperimentParameters) *Model {
	t.Helper()
	m, err := NewModel(p)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return m
}

func TestNewModelRejectsInvalidParameters(t *testing.T) {
	p := baseParameters(config.ModeDiffraction)
	p.Wavelength = 0
	if _, err := NewModel(p); !errors.Is(err, optics.ErrInvalidWavelength) {
		t.Fatalf("expected ErrInvalidWavelength, got %v", err)
	}

	p = baseParameters(config.ModeFocusing)
	if _, err := NewModel(p); !errors.Is(err, optics.ErrInvalidFocalLength) {
		t.Fatalf("expected ErrInvalidFocalLength, got %v", err)
	}

	p = baseParameters(config.ModeDiffraction)
	p.Waist = -1
	if _, err := NewModel(p); !errors.Is(err, optics.ErrInvalidWaist) {
		t.Fatalf("expected ErrInvalidWaist, got %v", err)
	}
}

func TestDiffractionRecordsConservePower(t *testing.T) {
	m := runModel(t, baseParameters(config.ModeDiffraction))
	if len(m.Records) != 2 {
		t.Fatalf("records %+v", m.Records)
	}
	source, end := m.Records[0], m.Records[1]
	if end.Z != 0.1 || end.Index != 1 {
		t.Fatalf("final record %+v", end)
	}
	if math.Abs(end.Power-source.Power)/source.Power > 1e-10 {
		t.Fatalf("power %g -> %g", source.Power, end.Power)
	}
	if end.Radius <= source.Radius {
		t.Fatalf("beam did not diffract: radius %g -> %g", source.Radius, end.Radius)
	}
}

func TestFocusingScanFindsFocalPlane(t *testing.T) {
	p := baseParameters(config.ModeFocusing)
	p.GridSize = 256
	p.Waist = 1e-3
	p.FocalLength = 0.1
	p.DetectorDistance = 0.1
	p.ScanFocus = true
	m := runModel(t, p)

	if len(m.Records) != 4 || math.Abs(m.Records[3].Z-0.15) > 1e-15 {
		t.Fatalf("records %+v", m.Records)
	}
	if m.Records[3].Peak < 10*m.Records[0].Peak {
		t.Fatalf("no focusing at the detector: %g vs %g", m.Records[3].Peak, m.Records[0].Peak)
	}
	if len(m.FocalScan) != 21 || math.Abs(m.FocalScan[20].Distance-0.2) > 1e-15 {
		t.Fatalf("scan table %d points", len(m.FocalScan))
	}
	if math.Abs(m.BestFocus-0.1) > 5e-3 {
		t.Fatalf("best focus %g, want about 0.1", m.BestFocus)
	}
}

func TestFocalScanRestartsFromLensPlane(t *testing.T) {
	p := baseParameters(config.ModeFocusing)
	p.FocalLength = 0.1
	p.DetectorDistance = 0.1
	p.ScanFocus = true
	m := runModel(t, p)

	// records: source, propagate, lens, propagate to the detector
	afterLens, detector := m.Records[2], m.Records[3]
	if got := m.FocalScan[0].Peak; math.Abs(got-afterLens.Peak)/afterLens.Peak > 1e-9 {
		t.Fatalf("scan at 0 m: peak %g, want %g behind the lens", got, afterLens.Peak)
	}
	if got := m.FocalScan[10]; math.Abs(got.Distance-0.1) > 1e-12 || math.Abs(got.Peak-detector.Peak)/detector.Peak > 1e-9 {
		t.Fatalf("scan at %g m: peak %g, want %g at the detector", got.Distance, got.Peak, detector.Peak)
	}
}

func TestModulatorSweepFollowsCosineLaw(t *testing.T) {
	p := baseParameters(config.ModeModulator)
	p.PhaseArm2 = math.Pi
	p.TargetTransmission = 0.25
	m := runModel(t, p)

	want := []float64{1, 0.5, 0, 0.5, 1}
	if len(m.Sweep) != len(want) {
		t.Fatalf("sweep %+v", m.Sweep)
	}
	for i, point := range m.Sweep {
		if math.Abs(point.Transmission-want[i]) > 1e-9 || math.Abs(point.Theory-want[i]) > 1e-9 {
			t.Fatalf("point %d: %+v, want %g", i, point, want[i])
		}
	}
	if math.Abs(m.TargetPhase-2*math.Pi/3) > 1e-9 {
		t.Fatalf("target phase %g", m.TargetPhase)
	}
	// the final state is a fresh pulse through the configured arms: extinction
	if m.Beam.PeakIntensity() > 1e-20 {
		t.Fatalf("final peak %g", m.Beam.PeakIntensity())
	}
}

func TestModulatorPhaseTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arms.txt")
	if err := os.WriteFile(path, []byte("0 0\n0 180\n90 90\n"), 0600); err != nil {
		t.Fatal(err)
	}
	p := baseParameters(config.ModeModulator)
	p.PhaseTable = path
	p.SetInputUnits([]string{"m", "deg"})
	m := runModel(t, p)

	want := []float64{1, 0, 1}
	if len(m.Sweep) != 3 {
		t.Fatalf("sweep %+v", m.Sweep)
	}
	for i := range want {
		if math.Abs(m.Sweep[i].Transmission-want[i]) > 1e-9 {
			t.Fatalf("point %d: %+v", i, m.Sweep[i])
		}
	}
	if math.Abs(m.Sweep[2].PhaseArm1-math.Pi/2) > 1e-12 {
		t.Fatalf("table phases not converted: %g", m.Sweep[2].PhaseArm1)
	}
}

func TestPipelineModeFollowsSteps(t *testing.T) {
	p := baseParameters(config.ModePipeline)
	p.Steps = []config.StepParameters{
		{Kind: config.StepPropagate, Distance: 0.02},
		{Kind: config.StepLens, FocalLength: 0.5},
		{Kind: config.StepModulator, PhaseArm2: math.Pi / 2},
		{Kind: config.StepPropagate, Distance: 0.03},
	}
	m := runModel(t, p)
	if len(m.Records) != 5 {
		t.Fatalf("records %+v", m.Records)
	}
	if m.Records[2].Z != 0.02 || m.Records[2].Label != "lens f=0.5 m" {
		t.Fatalf("lens record %+v", m.Records[2])
	}
	if math.Abs(m.Records[3].Power-m.Records[2].Power/2) > 1e-9*m.Records[2].Power {
		t.Fatalf("modulator at quadrature should halve the power: %+v", m.Records[3])
	}

	p.Steps = []config.StepParameters{{Kind: config.StepLens}}
	if _, err := NewModel(p); !errors.Is(err, optics.ErrInvalidFocalLength) {
		t.Fatalf("expected ErrInvalidFocalLength, got %v", err)
	}
}

func TestExtractorSavesTables(t *testing.T) {
	p := baseParameters(config.ModeModulator)
	m := runModel(t, p)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	df := NewDataFlags(fs)
	if err := fs.Parse([]string{"-all"}); err != nil {
		t.Fatal(err)
	}
	df.SetOutputPath(t.TempDir())
	if err := NewDataExtractor(m).Save("mzi", df); err != nil {
		t.Fatal(err)
	}

	for _, suffix := range []string{"profile", "intensity", "phase", "steps", "sweep"} {
		if _, err := os.Stat(df.GetOutputPath() + "mzi_" + suffix + ".txt"); err != nil {
			t.Fatalf("missing %s table: %v", suffix, err)
		}
	}
	if _, err := os.Stat(df.GetOutputPath() + "mzi_focal_scan.txt"); err == nil {
		t.Fatalf("empty focal scan should not be written")
	}

	file, err := os.Open(df.GetOutputPath() + "mzi_profile.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if rows[0][0] != "x (mm)" || rows[0][2] != "phase (rad)" {
		t.Fatalf("header %v", rows[0])
	}
	if len(rows) != 1+p.GridSize {
		t.Fatalf("%d rows", len(rows))
	}
	if x, err := strconv.ParseFloat(rows[1][0], 64); err != nil || math.Abs(x+2.5) > 1e-12 {
		t.Fatalf("first coordinate %s, want -2.5 mm", rows[1][0])
	}

	intensity, err := os.Open(df.GetOutputPath() + "mzi_intensity.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer intensity.Close()
	reader := csv.NewReader(intensity)
	reader.FieldsPerRecord = -1
	mapRows, err := reader.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(mapRows) != 2+p.GridSize || len(mapRows[1]) != 1+p.GridSize {
		t.Fatalf("map shape %d x %d", len(mapRows), len(mapRows[1]))
	}
}

func TestSummaryRow(t *testing.T) {
	m := runModel(t, baseParameters(config.ModeDiffraction))
	row := NewDataExtractor(m).SummaryRow("free")
	header := SummaryHeader(m.Parameters.OutputUnits())
	if len(row) != len(header) {
		t.Fatalf("row %v does not match header %v", row, header)
	}
	if row[0] != "free" || row[1] != config.ModeDiffraction || row[2] != "100" {
		t.Fatalf("row %v", row)
	}
	if header[2] != "z (mm)" {
		t.Fatalf("header %v", header)
	}
}
