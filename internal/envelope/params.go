package envelope

import (
	"fmt"
	"math"
)

// DefaultInsulationConductivity is the assumed thermal conductivity of added
// insulation, in W/m·K.
const DefaultInsulationConductivity = 0.035

// Params holds the thermal inputs of one calculation.
type Params struct {
	WindowPercentage    float64 `json:"window_percentage" yaml:"window_percentage"`
	ExternalTemperature float64 `json:"external_temperature" yaml:"external_temperature"`
	DesiredTemperature  float64 `json:"desired_temperature" yaml:"desired_temperature"`
	WallUValue          float64 `json:"wall_u_value" yaml:"wall_u_value"`
	WindowUValue        float64 `json:"window_u_value" yaml:"window_u_value"`
	RoofUValue          float64 `json:"roof_u_value" yaml:"roof_u_value"`
	FloorUValue         float64 `json:"floor_u_value" yaml:"floor_u_value"`
	InternalGains       float64 `json:"internal_gains" yaml:"internal_gains"`
	SolarGains          float64 `json:"solar_gains" yaml:"solar_gains"`
	// TargetHeatLoss of 0 means analysis only.
	TargetHeatLoss float64 `json:"target_heat_loss" yaml:"target_heat_loss"`
	Optimize       bool    `json:"optimize" yaml:"optimize"`

	VerticalOffset         OffsetMode `json:"vertical_offset,omitempty" yaml:"vertical_offset,omitempty"`
	InsulationConductivity float64    `json:"insulation_conductivity,omitempty" yaml:"insulation_conductivity,omitempty"`
}

func DefaultParams() Params {
	return Params{
		WindowPercentage:       20.0,
		ExternalTemperature:    5.0,
		DesiredTemperature:     20.0,
		WallUValue:             0.3,
		WindowUValue:           1.4,
		RoofUValue:             0.2,
		FloorUValue:            0.25,
		InternalGains:          200.0,
		SolarGains:             0.0,
		TargetHeatLoss:         0.0,
		Optimize:               false,
		VerticalOffset:         OffsetTop,
		InsulationConductivity: DefaultInsulationConductivity,
	}
}

// Validate checks the window percentage only; every other scalar is taken as given.
func (p *Params) Validate() error {
	if math.IsNaN(p.WindowPercentage) || p.WindowPercentage < 0 || p.WindowPercentage > 100 {
		return fmt.Errorf("%w: got %g", ErrWindowPercentageOutOfRange, p.WindowPercentage)
	}
	return nil
}

// optimizing reports whether the optimization step runs.
func (p Params) optimizing() bool {
	return p.Optimize && p.TargetHeatLoss > 0
}

func (p Params) conductivity() float64 {
	if p.InsulationConductivity > 0 {
		return p.InsulationConductivity
	}
	return DefaultInsulationConductivity
}

func (p Params) offsetMode() OffsetMode {
	if p.VerticalOffset.Valid() {
		return p.VerticalOffset
	}
	return OffsetTop
}

// Get returns the value of the named scalar.
func (p Params) Get(name Param) (float64, error) {
	switch name {
	case ParamWindowPercentage:
		return p.WindowPercentage, nil
	case ParamExternalTemperature:
		return p.ExternalTemperature, nil
	case ParamDesiredTemperature:
		return p.DesiredTemperature, nil
	case ParamWallUValue:
		return p.WallUValue, nil
	case ParamWindowUValue:
		return p.WindowUValue, nil
	case ParamRoofUValue:
		return p.RoofUValue, nil
	case ParamFloorUValue:
		return p.FloorUValue, nil
	case ParamInternalGains:
		return p.InternalGains, nil
	case ParamSolarGains:
		return p.SolarGains, nil
	case ParamTargetHeatLoss:
		return p.TargetHeatLoss, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrInvalidParam, name)
	}
}

// Set assigns the named scalar. It does not validate the value.
func (p *Params) Set(name Param, v float64) error {
	switch name {
	case ParamWindowPercentage:
		p.WindowPercentage = v
	case ParamExternalTemperature:
		p.ExternalTemperature = v
	case ParamDesiredTemperature:
		p.DesiredTemperature = v
	case ParamWallUValue:
		p.WallUValue = v
	case ParamWindowUValue:
		p.WindowUValue = v
	case ParamRoofUValue:
		p.RoofUValue = v
	case ParamFloorUValue:
		p.FloorUValue = v
	case ParamInternalGains:
		p.InternalGains = v
	case ParamSolarGains:
		p.SolarGains = v
	case ParamTargetHeatLoss:
		p.TargetHeatLoss = v
	default:
		return fmt.Errorf("%w: %v", ErrInvalidParam, name)
	}
	return nil
}

func (p *Params) ApplyWallPreset(name string) error {
	u, ok := WallPreset(name)
	if !ok {
		return fmt.Errorf("%w: wall %q", ErrUnknownPreset, name)
	}
	p.WallUValue = u
	return nil
}

func (p *Params) ApplyWindowPreset(name string) error {
	u, ok := WindowPreset(name)
	if !ok {
		return fmt.Errorf("%w: window %q", ErrUnknownPreset, name)
	}
	p.WindowUValue = u
	return nil
}

// ApplyClimate sets the external temperature from a climate preset.
func (p *Params) ApplyClimate(name string, season Season) error {
	c, ok := ClimatePreset(name)
	if !ok {
		return fmt.Errorf("%w: climate %q", ErrUnknownPreset, name)
	}
	switch season {
	case SeasonWinter:
		p.ExternalTemperature = c.Winter
	case SeasonSummer:
		p.ExternalTemperature = c.Summer
	default:
		return fmt.Errorf("%w: %v", ErrInvalidSeason, season)
	}
	return nil
}
