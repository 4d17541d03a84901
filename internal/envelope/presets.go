package envelope

import (
	"slices"
	"strings"
)

// Preset is a named U-value in W/m²K.
type Preset struct {
	Name   string  `json:"name"`
	UValue float64 `json:"u_value"`
}

// Climate holds design outdoor temperatures for a location, in °C.
type Climate struct {
	Name   string  `json:"name"`
	Winter float64 `json:"winter"`
	Summer float64 `json:"summer"`
}

// The tables below are read-only after init; accessors hand out copies.
var (
	wallPresets = []Preset{
		{"Uninsulated Brick", 2.0},
		{"Basic Insulation", 0.35},
		{"Double Insulation", 0.20},
		{"Passivhaus", 0.15},
		{"Custom", 0.3},
	}
	windowPresets = []Preset{
		{"Single", 5.0},
		{"Double", 1.4},
		{"Triple", 0.8},
		{"Custom", 1.4},
	}
	climatePresets = []Climate{
		{"London", 5.0, 22.0},
		{"Oslo", -5.0, 18.0},
		{"Barcelona", 10.0, 28.0},
		{"New York", -2.0, 25.0},
		{"Sydney", 12.0, 26.0},
		{"Custom", 5.0, 22.0},
	}
)

func WallPresets() []Preset     { return slices.Clone(wallPresets) }
func WindowPresets() []Preset   { return slices.Clone(windowPresets) }
func ClimatePresets() []Climate { return slices.Clone(climatePresets) }

// WallPreset looks up a wall U-value by name, ignoring case.
func WallPreset(name string) (float64, bool) {
	return lookupPreset(wallPresets, name)
}

// WindowPreset looks up a window U-value by name, ignoring case.
func WindowPreset(name string) (float64, bool) {
	return lookupPreset(windowPresets, name)
}

func ClimatePreset(name string) (Climate, bool) {
	name = strings.TrimSpace(name)
	for _, c := range climatePresets {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Climate{}, false
}

func lookupPreset(table []Preset, name string) (float64, bool) {
	name = strings.TrimSpace(name)
	for _, p := range table {
		if strings.EqualFold(p.Name, name) {
			return p.UValue, true
		}
	}
	return 0, false
}
