package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Agrid-Dev/envelope/internal/envelope"
)

// Write renders one calculation in the requested format.
func Write(w io.Writer, f Format, id string, room envelope.Room, params envelope.Params, res envelope.Result) error {
	switch f {
	case FormatText:
		_, err := io.WriteString(w, res.Report)
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewDocument(id, room, params, res))
	case FormatCSV:
		return WriteCSV(w, room, params, res)
	case FormatPDF:
		return WritePDF(w, room, params, res)
	case FormatXLSX:
		return WriteXLSX(w, room, params, res)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidFormat, f)
	}
}

// row is one labelled quantity shared by the tabular encoders.
type row struct {
	Section string
	Name    string
	Value   float64
	Unit    string
	Prec    int
}

func rows(room envelope.Room, p envelope.Params, res envelope.Result) []row {
	out := []row{
		{"geometry", "length", room.Length(), "m", 2},
		{"geometry", "width", room.Width(), "m", 2},
		{"geometry", "height", room.Height(), "m", 2},
		{"geometry", "floor_area", res.FloorArea, "m2", 2},
		{"geometry", "wall_area", res.WallArea, "m2", 2},
		{"geometry", "window_area", res.WindowArea, "m2", 2},
		{"geometry", "opaque_wall_area", res.OpaqueWallArea, "m2", 2},
		{"geometry", "roof_area", res.RoofArea, "m2", 2},
		{"geometry", "volume", res.Volume, "m3", 2},
		{"geometry", "surface_to_volume_ratio", res.SurfaceToVolumeRatio, "1/m", 3},
		{"heat_loss", "temperature_difference", res.TemperatureDifference, "K", 1},
	}
	for _, l := range res.Losses() {
		out = append(out,
			row{"heat_loss", l.Surface.String() + "_loss", l.Loss, "W", 0},
			row{"heat_loss", l.Surface.String() + "_share", l.Share, "%", 1},
		)
	}
	out = append(out,
		row{"heat_loss", "total_heat_loss", res.TotalHeatLoss, "W", 0},
		row{"heat_loss", "internal_gains", p.InternalGains, "W", 0},
		row{"heat_loss", "solar_gains", p.SolarGains, "W", 0},
		row{"heat_loss", "net_heating", res.NetHeating, "W", 0},
		row{"heat_loss", "heat_loss_per_m2", res.HeatLossPerM2, "W/m2", 1},
		row{"optimization", "target_heat_loss", p.TargetHeatLoss, "W", 0},
		row{"optimization", "recommended_wall_u_value", res.RecommendedWallU, "W/m2K", 3},
		row{"optimization", "additional_insulation", res.AdditionalInsulation, "mm", 0},
		row{"optimization", "optimized_length", res.OptimizedRoom.Length(), "m", 2},
		row{"optimization", "optimized_width", res.OptimizedRoom.Width(), "m", 2},
		row{"optimization", "optimized_height", res.OptimizedRoom.Height(), "m", 2},
	)
	return out
}
