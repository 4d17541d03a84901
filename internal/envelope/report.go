package envelope

import (
	"fmt"
	"strings"
)

const reportLabelWidth = 26

// Report renders the human-readable summary of a calculation.
func Report(room Room, p Params, res Result) string {
	var b strings.Builder
	line := func(label, format string, args ...any) {
		fmt.Fprintf(&b, "  %-*s%s\n", reportLabelWidth, label+":", fmt.Sprintf(format, args...))
	}

	b.WriteString("Room Envelope Heat Loss Report\n")
	b.WriteString("==============================\n\n")

	b.WriteString("Geometry\n")
	line("Dimensions", "%.2f x %.2f x %.2f m", room.Length(), room.Width(), room.Height())
	line("Floor area", "%.2f m²", res.FloorArea)
	line("Wall area", "%.2f m²", res.WallArea)
	line("Window area", "%.2f m² (%.1f%% of walls)", res.WindowArea, p.WindowPercentage)
	line("Opaque wall area", "%.2f m²", res.OpaqueWallArea)
	line("Roof area", "%.2f m²", res.RoofArea)
	line("Volume", "%.2f m³", res.Volume)
	line("Surface/volume ratio", "%.3f", res.SurfaceToVolumeRatio)
	b.WriteString("\n")

	fmt.Fprintf(&b, "Heat loss (temperature difference %.1f K, %s)\n", res.TemperatureDifference, res.Flow)
	for _, s := range res.Losses() {
		line(s.Surface.Label(), "%.0f W (%.1f%%)", s.Loss, s.Share)
	}
	line("Total heat loss", "%.0f W", res.TotalHeatLoss)
	line("Internal gains", "%.0f W", p.InternalGains)
	line("Solar gains", "%.0f W", p.SolarGains)
	line("Net heating", "%.0f W", res.NetHeating)
	line("Heat loss per m²", "%.1f W/m²", res.HeatLossPerM2)
	b.WriteString("\n")

	b.WriteString("Optimization\n")
	switch res.Outcome {
	case OutcomeNotRequested:
		b.WriteString("  Set a target heat loss and enable optimize to get a wall insulation recommendation.\n")
	default:
		line("Target heat loss", "%.0f W", p.TargetHeatLoss)
		line("Current wall U-value", "%.3f W/m²K", p.WallUValue)
		switch res.Outcome {
		case OutcomeUnachievable:
			b.WriteString("  Target not achievable by wall insulation alone; improve windows, roof or floor.\n")
		case OutcomeAlreadyMet:
			line("Recommended wall U-value", "%.3f W/m²K", res.RecommendedWallU)
			b.WriteString("  Current walls already meet the target; no additional insulation needed.\n")
		case OutcomeApplied:
			line("Recommended wall U-value", "%.3f W/m²K", res.RecommendedWallU)
			line("Additional insulation", "%.0f mm", res.AdditionalInsulation)
			opt := res.OptimizedRoom
			line("Optimized dimensions", "%.2f x %.2f x %.2f m", opt.Length(), opt.Width(), opt.Height())
		}
	}

	if len(res.Warnings) > 0 {
		b.WriteString("\nWarnings\n")
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w.Message)
		}
	}
	return b.String()
}
