package envelope

import (
	"fmt"
	"math"
)

// HighHeatLossPerM2 is the heat loss per floor area, in W/m², above which a
// warning is raised.
const HighHeatLossPerM2 = 100.0

// Calculate computes the heat loss of room under params and, when requested,
// the wall insulation needed to reach the target. It never returns a partial
// Result: on error the Result is zero.
func Calculate(room Room, params Params) (res Result, err error) {
	if err := room.Validate(); err != nil {
		return Result{}, err
	}
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = fmt.Errorf("%w: %v", ErrComputation, r)
		}
	}()

	res, err = compute(room, params)
	if err != nil {
		return Result{}, err
	}
	res.Report = Report(room, params, res)
	return res, nil
}

func compute(room Room, p Params) (Result, error) {
	g := measure(room, p.WindowPercentage)

	var res Result
	res.Geometry = g
	res.TemperatureDifference = math.Abs(p.DesiredTemperature - p.ExternalTemperature)
	res.Flow = flowDirection(p.DesiredTemperature, p.ExternalTemperature)

	dT := res.TemperatureDifference
	res.WallLoss = g.OpaqueWallArea * p.WallUValue * dT
	res.WindowLoss = g.WindowArea * p.WindowUValue * dT
	res.RoofLoss = g.RoofArea * p.RoofUValue * dT
	res.FloorLoss = g.FloorArea * p.FloorUValue * dT

	res.TotalHeatLoss = res.WallLoss + res.WindowLoss + res.RoofLoss + res.FloorLoss
	res.NetHeating = res.TotalHeatLoss - (p.InternalGains + p.SolarGains)
	res.HeatLossPerM2 = res.TotalHeatLoss / g.FloorArea

	if res.NetHeating < 0 {
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarningGainsExceedLosses,
			Message: fmt.Sprintf("gains exceed losses by %.0f W, cooling may be needed", -res.NetHeating),
		})
	}
	if res.HeatLossPerM2 > HighHeatLossPerM2 {
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarningHighHeatLossPerArea,
			Message: fmt.Sprintf("high heat loss per m² (%.1f W/m²), consider better insulation", res.HeatLossPerM2),
		})
	}

	if err := optimize(room, p, &res); err != nil {
		return Result{}, err
	}
	if err := checkFinite(res); err != nil {
		return Result{}, err
	}
	return res, nil
}

func measure(room Room, windowPercentage float64) Geometry {
	l, w, h := room.Length(), room.Width(), room.Height()

	var g Geometry
	g.FloorArea = l * w
	g.RoofArea = l * w
	g.WallArea = 2 * (l + w) * h
	g.WindowArea = g.WallArea * (windowPercentage / 100)
	g.OpaqueWallArea = g.WallArea - g.WindowArea
	g.Volume = l * w * h
	g.SurfaceToVolumeRatio = (g.WallArea + g.RoofArea + g.FloorArea) / g.Volume
	return g
}

func flowDirection(desired, external float64) FlowDirection {
	switch {
	case desired > external:
		return FlowHeating
	case desired < external:
		return FlowCooling
	default:
		return FlowNeutral
	}
}

func checkFinite(res Result) error {
	fields := []struct {
		name string
		v    float64
	}{
		{"floor area", res.FloorArea},
		{"wall area", res.WallArea},
		{"window area", res.WindowArea},
		{"volume", res.Volume},
		{"surface to volume ratio", res.SurfaceToVolumeRatio},
		{"wall loss", res.WallLoss},
		{"window loss", res.WindowLoss},
		{"roof loss", res.RoofLoss},
		{"floor loss", res.FloorLoss},
		{"total heat loss", res.TotalHeatLoss},
		{"net heating", res.NetHeating},
		{"heat loss per m²", res.HeatLossPerM2},
		{"recommended wall U-value", res.RecommendedWallU},
		{"additional insulation", res.AdditionalInsulation},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not finite (%v)", ErrComputation, f.name, f.v)
		}
	}
	return nil
}
