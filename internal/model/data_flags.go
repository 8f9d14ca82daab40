package model

import (
	"flag"
	"strings"

	"github.com/wildstyl3r/openbeam/internal/config"
)

type DataItem struct {
	saveFlag   *bool
	fileSuffix string
}

// SequentialDataItem is a table with one argument column and several value columns.
// Column names may contain {length} and {angle}, replaced by the output units.
type SequentialDataItem struct {
	DataItem
	columnNames []string
	values      func(*DataExtractor) (args []float64, values [][]float64, labels []string)
	xUnit       []config.UnitElement
	yUnits      [][]config.UnitElement // per value column, dimensionless when absent
}

type DataFlags struct {
	all         *bool
	sequentials map[string]SequentialDataItem
	outputPath  string
}

func NewDataFlags(fs *flag.FlagSet) DataFlags {
	return DataFlags{
		all: fs.Bool("all", false, "save every available table"),
		sequentials: map[string]SequentialDataItem{
			"Intensity profile": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("ip", true, "save intensity and phase along the central row"),
					fileSuffix: "profile",
				},
				columnNames: []string{"x ({length})", "I (a.u.)", "phase ({angle})"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					b := de.model.Beam
					row := b.Grid().Center()
					intensity := b.ProfileRow(row)
					phase := b.Phase()[row]
					for j := range intensity {
						args = append(args, b.Grid().Coord(j))
						values = append(values, []float64{intensity[j], phase[j]})
					}
					return args, values, nil
				},
				xUnit:  config.LengthUnit,
				yUnits: [][]config.UnitElement{nil, config.AngleUnit},
			},
			"Intensity map": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("im", false, "save the full intensity map"),
					fileSuffix: "intensity",
				},
				columnNames: []string{"y ({length}) \\ x ({length})"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					return de.mapTable(de.model.Beam.Intensity())
				},
				xUnit: config.LengthUnit,
			},
			"Phase map": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("pm", false, "save the full phase map"),
					fileSuffix: "phase",
				},
				columnNames: []string{"y ({length}) \\ x ({length})"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					args, values, labels = de.mapTable(de.model.Beam.Phase())
					for i := range values {
						for j := range values[i] {
							values[i][j] = config.SI(values[i][j], config.AngleUnit, de.model.Parameters.OutputUnits(), false)
						}
					}
					return args, values, labels
				},
				xUnit: config.LengthUnit,
			},
			"Step records": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("sr", true, "save beam observables after every step"),
					fileSuffix: "steps",
				},
				columnNames: []string{"step", "z ({length})", "power (a.u.)", "peak (a.u.)", "radius ({length})"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					for _, r := range de.model.Records {
						args = append(args, float64(r.Index))
						values = append(values, []float64{r.Z, r.Power, r.Peak, r.Radius})
					}
					return args, values, nil
				},
				yUnits: [][]config.UnitElement{config.LengthUnit, nil, nil, config.LengthUnit},
			},
			"Modulator sweep": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("ms", false, "save the modulator transfer curve"),
					fileSuffix: "sweep",
				},
				columnNames: []string{"phase difference ({angle})", "peak (a.u.)", "transmission", "cos^2 theory"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					for _, p := range de.model.Sweep {
						args = append(args, p.PhaseArm2-p.PhaseArm1)
						values = append(values, []float64{p.Peak, p.Transmission, p.Theory})
					}
					return args, values, nil
				},
				xUnit: config.AngleUnit,
			},
			"Focal scan": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("fs", false, "save peak intensity and radius behind the last lens"),
					fileSuffix: "focal_scan",
				},
				columnNames: []string{"distance ({length})", "peak (a.u.)", "radius ({length})"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					for _, p := range de.model.FocalScan {
						args = append(args, p.Distance)
						values = append(values, []float64{p.Peak, p.Radius})
					}
					return args, values, nil
				},
				xUnit:  config.LengthUnit,
				yUnits: [][]config.UnitElement{nil, config.LengthUnit},
			},
		},
	}
}

func (df *DataFlags) SetOutputPath(path string) {
	if path != "" && path[len(path)-1] != '/' {
		df.outputPath = path + "/"
	} else {
		df.outputPath = path
	}
}

func (df *DataFlags) GetOutputPath() string {
	return df.outputPath
}

func columnHeader(names []string, units []string) []string {
	r := strings.NewReplacer(
		"{length}", config.UnitName(config.Length, units),
		"{angle}", config.UnitName(config.Angle, units),
	)
	header := make([]string, len(names))
	for i := range names {
		header[i] = r.Replace(names[i])
	}
	return header
}
