package model

import (
	"encoding/csv"
	"fmt"
	"log"
	"strconv"

	"github.com/wildstyl3r/openbeam/internal/config"
	"github.com/wildstyl3r/openbeam/internal/utils"
)

type DataExtractor struct {
	model *Model
}

func NewDataExtractor(model *Model) *DataExtractor {
	return &DataExtractor{model: model}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// mapTable lays a grid quantity out with y as the argument column and the x
// coordinates, in output units, as labels.
func (de *DataExtractor) mapTable(data [][]float64) (args []float64, values [][]float64, labels []string) {
	grid := de.model.Beam.Grid()
	for i := range data {
		args = append(args, grid.Coord(i))
		values = append(values, data[i])
		labels = append(labels, formatFloat(config.SI(grid.Coord(i), config.LengthUnit, de.model.Parameters.OutputUnits(), false)))
	}
	return args, values, labels
}

func (de *DataExtractor) Save(name string, df DataFlags) error {
	units := de.model.Parameters.OutputUnits()
	for itemName, output := range df.sequentials {
		if !*output.saveFlag && !*df.all {
			continue
		}
		xColumnValues, yColumnValues, yLabels := output.values(de)
		if len(xColumnValues) == 0 {
			continue
		}
		rows := [][]string{columnHeader(output.columnNames, units)}
		if len(yLabels) > 0 {
			rows = append(rows, append([]string{""}, yLabels...))
		}
		for x := range xColumnValues {
			row := []string{formatFloat(config.SI(xColumnValues[x], output.xUnit, units, false))}
			for i, v := range yColumnValues[x] {
				var unit []config.UnitElement
				if i < len(output.yUnits) {
					unit = output.yUnits[i]
				}
				row = append(row, formatFloat(config.SI(v, unit, units, false)))
			}
			rows = append(rows, row)
		}

		file, err := utils.OpenFile(de.model.Parameters.MakeDir, df.outputPath, output.fileSuffix, name)
		if err != nil {
			return fmt.Errorf("unable to save %s: %w", itemName, err)
		}
		w := csv.NewWriter(file)
		err = w.WriteAll(rows)
		file.Close()
		if err != nil {
			return fmt.Errorf("error writing %s: %w", itemName, err)
		}
		if de.model.Parameters.Verbose() {
			log.Println(itemName + " saved")
		}
	}
	return nil
}

var SummaryColumns = []string{"experiment", "mode", "z ({length})", "power (a.u.)", "peak (a.u.)", "radius ({length})", "best focus ({length})", "target phase ({angle})"}

// SummaryHeader resolves SummaryColumns for the given output units.
func SummaryHeader(units []string) []string {
	return columnHeader(SummaryColumns, units)
}

// SummaryRow describes the final beam of the experiment in output units.
func (de *DataExtractor) SummaryRow(name string) []string {
	m := de.model
	units := m.Parameters.OutputUnits()
	length := func(v float64) string { return formatFloat(config.SI(v, config.LengthUnit, units, false)) }
	return []string{
		name,
		m.Parameters.Mode,
		length(m.Pipeline.Length()),
		formatFloat(m.Beam.Power()),
		formatFloat(m.Beam.PeakIntensity()),
		length(m.Beam.Radius()),
		length(m.BestFocus),
		formatFloat(config.SI(m.TargetPhase, config.AngleUnit, units, false)),
	}
}
