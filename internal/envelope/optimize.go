package envelope

import "fmt"

// optimize sizes the wall insulation needed to bring the total heat loss down
// to the target. Only the wall U-value is varied.
func optimize(room Room, p Params, res *Result) error {
	res.RecommendedWallU = p.WallUValue
	res.AdditionalInsulation = 0
	res.OptimizedRoom = room
	res.Outcome = OutcomeNotRequested

	if !p.optimizing() {
		return nil
	}

	targetWallLoss := p.TargetHeatLoss - res.WindowLoss - res.RoofLoss - res.FloorLoss
	if targetWallLoss <= 0 {
		res.Outcome = OutcomeUnachievable
		res.Warnings = append(res.Warnings, Warning{
			Code: WarningTargetUnachievable,
			Message: fmt.Sprintf("target of %.0f W not achievable by wall insulation alone: windows, roof and floor already lose %.0f W",
				p.TargetHeatLoss, res.WindowLoss+res.RoofLoss+res.FloorLoss),
		})
		return nil
	}

	divisor := res.OpaqueWallArea * res.TemperatureDifference
	if divisor == 0 {
		return fmt.Errorf("%w: division by zero (opaque wall area %g m², temperature difference %g K)",
			ErrComputation, res.OpaqueWallArea, res.TemperatureDifference)
	}
	recommended := targetWallLoss / divisor
	res.RecommendedWallU = recommended

	currentR := 1 / p.WallUValue
	targetR := 1 / recommended
	additionalR := targetR - currentR
	if additionalR <= 0 {
		res.Outcome = OutcomeAlreadyMet
		return nil
	}

	res.AdditionalInsulation = additionalR * p.conductivity() * 1000
	res.OptimizedRoom = room.Offset(res.AdditionalInsulation/1000, p.offsetMode())
	res.Outcome = OutcomeApplied
	return nil
}
