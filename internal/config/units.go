package config

import (
	"math"

	"github.com/wildstyl3r/openbeam/internal/utils"
)

var unitToSI = map[string]float64{
	"m":   1,    // [m]
	"cm":  1e-2, // [m]
	"mm":  1e-3, // [m]
	"um":  1e-6, // [m]
	"nm":  1e-9, // [m]
	"rad": 1,    // [rad]
	"deg": math.Pi / 180.,
}

type UnitClass int

const (
	Length UnitClass = iota
	Angle
)

var unitsInClass = map[UnitClass][]string{
	Length: {"nm", "um", "mm", "cm", "m"},
	Angle:  {"deg", "rad"},
}

var classesOfUnits = map[string]UnitClass{
	"m":   Length,
	"cm":  Length,
	"mm":  Length,
	"um":  Length,
	"nm":  Length,
	"rad": Angle,
	"deg": Angle,
}

type UnitElement = struct {
	Class UnitClass
	Power int
}

// UnitName returns the unit of class selected by units, as used in column headers.
func UnitName(class UnitClass, units []string) string {
	if unit := utils.Intersect(unitsInClass[class], units); unit != nil {
		return *unit
	}
	return "SI"
}

// checkUnits reports units that are unknown or repeat a class, and fills in
// defaults for classes the list does not mention.
func checkUnits(units []string) (extended, conflicts []string) {
	classes := map[UnitClass]struct{}{}
	for _, unit := range units {
		class, known := classesOfUnits[unit]
		if !known {
			conflicts = append(conflicts, unit)
			continue
		}
		if _, some := classes[class]; some {
			conflicts = append(conflicts, unit)
		} else {
			classes[class] = struct{}{}
		}
	}
	extended = append([]string{}, units...)
	for _, unit := range defaultUnits {
		if _, some := classes[classesOfUnits[unit]]; !some {
			extended = append(extended, unit)
		}
	}
	return
}

// SI converts v expressed in units to SI when direct is set, and from SI otherwise.
func SI(v float64, classes []UnitElement, units []string, direct bool) float64 {
	for i := range classes {
		uc := classes[i]
		unit := utils.Intersect(unitsInClass[uc.Class], units)
		if unit == nil {
			continue
		}
		absPower := utils.IntAbs(uc.Power)
		if direct == (uc.Power > 0) {
			for n := 0; n < absPower; n++ {
				v *= unitToSI[*unit]
			}
		} else {
			for n := 0; n < absPower; n++ {
				v /= unitToSI[*unit]
			}
		}
	}
	return v
}
