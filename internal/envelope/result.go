package envelope

import "fmt"

// WarningCode classifies a non-fatal advisory raised during a calculation.
type WarningCode int

const (
	WarningUnknown WarningCode = iota
	WarningGainsExceedLosses
	WarningHighHeatLossPerArea
	WarningTargetUnachievable
)

func (c WarningCode) String() string {
	switch c {
	case WarningGainsExceedLosses:
		return "gains_exceed_losses"
	case WarningHighHeatLossPerArea:
		return "high_heat_loss_per_area"
	case WarningTargetUnachievable:
		return "target_unachievable"
	default:
		return "unknown"
	}
}

type Warning struct {
	Code    WarningCode
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// Geometry holds the quantities derived from the room box. Areas are in m²,
// volume in m³.
type Geometry struct {
	FloorArea            float64
	WallArea             float64
	OpaqueWallArea       float64
	WindowArea           float64
	RoofArea             float64
	Volume               float64
	SurfaceToVolumeRatio float64
}

// Result is the full output of Calculate. Losses and gains are in W.
type Result struct {
	Geometry

	TemperatureDifference float64
	Flow                  FlowDirection

	WallLoss   float64
	WindowLoss float64
	RoofLoss   float64
	FloorLoss  float64

	TotalHeatLoss float64
	NetHeating    float64
	HeatLossPerM2 float64

	RecommendedWallU float64
	// AdditionalInsulation is the extra wall insulation thickness in mm.
	AdditionalInsulation float64
	OptimizedRoom        Room
	Outcome              Outcome

	Warnings []Warning
	Report   string
}

// SurfaceLoss is one line of the per-surface breakdown.
type SurfaceLoss struct {
	Surface Surface
	Area    float64
	Loss    float64
	// Share is the percentage of the total heat loss.
	Share float64
}

// Losses returns the breakdown in wall, window, roof, floor order.
func (r Result) Losses() []SurfaceLoss {
	out := []SurfaceLoss{
		{Surface: SurfaceWall, Area: r.OpaqueWallArea, Loss: r.WallLoss},
		{Surface: SurfaceWindow, Area: r.WindowArea, Loss: r.WindowLoss},
		{Surface: SurfaceRoof, Area: r.RoofArea, Loss: r.RoofLoss},
		{Surface: SurfaceFloor, Area: r.FloorArea, Loss: r.FloorLoss},
	}
	if r.TotalHeatLoss != 0 {
		for i := range out {
			out[i].Share = out[i].Loss / r.TotalHeatLoss * 100
		}
	}
	return out
}

// HasWarning reports whether a warning with the given code was raised.
func (r Result) HasWarning(code WarningCode) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
