// Package units provides shared constants and conversion for model length units
package units

import "strings"

// Unit constants
const (
	Metres      = "m"
	Millimetres = "mm"
	Feet        = "ft"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Metres, Millimetres, Feet}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// ToMetres converts a length in the given units to metres.
// Classification always runs in metres.
func ToMetres(length float64, unit string) float64 {
	switch unit {
	case Millimetres:
		return length / 1000
	case Feet:
		return length * 0.3048
	case Metres:
		return length // no conversion needed
	default:
		return length // default to metres if unknown unit
	}
}

// FromMetres converts a length in metres to the given units.
func FromMetres(metres float64, unit string) float64 {
	switch unit {
	case Millimetres:
		return metres * 1000
	case Feet:
		return metres / 0.3048
	default:
		return metres
	}
}
