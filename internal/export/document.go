package export

import "github.com/Agrid-Dev/envelope/internal/envelope"

// Document is the wire form of one calculation, shared by the JSON encoders.
type Document struct {
	ID     string          `json:"id,omitempty"`
	Room   RoomDTO         `json:"room"`
	Params envelope.Params `json:"params"`
	Result ResultDTO       `json:"result"`
}

type RoomDTO struct {
	Center envelope.Point `json:"center"`
	Length float64        `json:"length"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
}

type SurfaceLossDTO struct {
	Surface string  `json:"surface"`
	Area    float64 `json:"area"`
	Loss    float64 `json:"loss"`
	Share   float64 `json:"share"`
}

type WarningDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ResultDTO struct {
	FloorArea             float64          `json:"floor_area"`
	WallArea              float64          `json:"wall_area"`
	OpaqueWallArea        float64          `json:"opaque_wall_area"`
	WindowArea            float64          `json:"window_area"`
	RoofArea              float64          `json:"roof_area"`
	Volume                float64          `json:"volume"`
	SurfaceToVolumeRatio  float64          `json:"surface_to_volume_ratio"`
	TemperatureDifference float64          `json:"temperature_difference"`
	Flow                  string           `json:"flow"`
	TotalHeatLoss         float64          `json:"total_heat_loss"`
	NetHeating            float64          `json:"net_heating"`
	WallLoss              float64          `json:"wall_loss"`
	WindowLoss            float64          `json:"window_loss"`
	RoofLoss              float64          `json:"roof_loss"`
	FloorLoss             float64          `json:"floor_loss"`
	HeatLossPerM2         float64          `json:"heat_loss_per_m2"`
	RecommendedWallU      float64          `json:"recommended_wall_u_value"`
	AdditionalInsulation  float64          `json:"additional_insulation_mm"`
	OptimizedRoom         RoomDTO          `json:"optimized_room"`
	Outcome               string           `json:"optimization_outcome"`
	Losses                []SurfaceLossDTO `json:"losses"`
	Warnings              []WarningDTO     `json:"warnings"`
	Report                string           `json:"report"`
}

func NewRoomDTO(r envelope.Room) RoomDTO {
	return RoomDTO{Center: r.Midpoint(), Length: r.Length(), Width: r.Width(), Height: r.Height()}
}

// Room rebuilds a centered box from its wire form.
func (d RoomDTO) Room() envelope.Room {
	return envelope.NewRoom(d.Center, d.Length, d.Width, d.Height)
}

func NewResultDTO(res envelope.Result) ResultDTO {
	dto := ResultDTO{
		FloorArea:             res.FloorArea,
		WallArea:              res.WallArea,
		OpaqueWallArea:        res.OpaqueWallArea,
		WindowArea:            res.WindowArea,
		RoofArea:              res.RoofArea,
		Volume:                res.Volume,
		SurfaceToVolumeRatio:  res.SurfaceToVolumeRatio,
		TemperatureDifference: res.TemperatureDifference,
		Flow:                  res.Flow.String(),
		TotalHeatLoss:         res.TotalHeatLoss,
		NetHeating:            res.NetHeating,
		WallLoss:              res.WallLoss,
		WindowLoss:            res.WindowLoss,
		RoofLoss:              res.RoofLoss,
		FloorLoss:             res.FloorLoss,
		HeatLossPerM2:         res.HeatLossPerM2,
		RecommendedWallU:      res.RecommendedWallU,
		AdditionalInsulation:  res.AdditionalInsulation,
		OptimizedRoom:         NewRoomDTO(res.OptimizedRoom),
		Outcome:               res.Outcome.String(),
		Warnings:              []WarningDTO{},
		Report:                res.Report,
	}
	for _, l := range res.Losses() {
		dto.Losses = append(dto.Losses, SurfaceLossDTO{
			Surface: l.Surface.String(),
			Area:    l.Area,
			Loss:    l.Loss,
			Share:   l.Share,
		})
	}
	for _, w := range res.Warnings {
		dto.Warnings = append(dto.Warnings, WarningDTO{Code: w.Code.String(), Message: w.Message})
	}
	return dto
}

func NewDocument(id string, room envelope.Room, params envelope.Params, res envelope.Result) Document {
	return Document{
		ID:     id,
		Room:   NewRoomDTO(room),
		Params: params,
		Result: NewResultDTO(res),
	}
}
