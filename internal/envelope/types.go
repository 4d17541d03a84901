package envelope

import (
	"fmt"
	"strings"
)

// Param names one scalar of Params.
type Param int

const (
	ParamUnknown Param = iota
	ParamWindowPercentage
	ParamExternalTemperature
	ParamDesiredTemperature
	ParamWallUValue
	ParamWindowUValue
	ParamRoofUValue
	ParamFloorUValue
	ParamInternalGains
	ParamSolarGains
	ParamTargetHeatLoss
)

var paramNames = [...]string{
	ParamWindowPercentage:    "window_percentage",
	ParamExternalTemperature: "external_temperature",
	ParamDesiredTemperature:  "desired_temperature",
	ParamWallUValue:          "wall_u_value",
	ParamWindowUValue:        "window_u_value",
	ParamRoofUValue:          "roof_u_value",
	ParamFloorUValue:         "floor_u_value",
	ParamInternalGains:       "internal_gains",
	ParamSolarGains:          "solar_gains",
	ParamTargetHeatLoss:      "target_heat_loss",
}

// AllParams lists every valid Param in declaration order.
func AllParams() []Param {
	out := make([]Param, 0, len(paramNames)-1)
	for p := ParamWindowPercentage; p <= ParamTargetHeatLoss; p++ {
		out = append(out, p)
	}
	return out
}

func (p Param) Valid() bool {
	return p >= ParamWindowPercentage && p <= ParamTargetHeatLoss
}

func (p Param) String() string {
	if !p.Valid() {
		return "unknown"
	}
	return paramNames[p]
}

func ParseParam(s string) (Param, error) {
	for _, p := range AllParams() {
		if paramNames[p] == s {
			return p, nil
		}
	}
	return ParamUnknown, fmt.Errorf("%w: %q", ErrInvalidParam, s)
}

// OffsetMode selects how the optimized room grows vertically.
type OffsetMode int

const (
	OffsetUnknown OffsetMode = iota
	// OffsetTop extends the top face only; the floor level is kept.
	OffsetTop
	// OffsetSymmetric extends the top and bottom faces alike.
	OffsetSymmetric
)

func (m OffsetMode) Valid() bool {
	return m == OffsetTop || m == OffsetSymmetric
}

func (m OffsetMode) String() string {
	switch m {
	case OffsetTop:
		return "top"
	case OffsetSymmetric:
		return "symmetric"
	default:
		return "unknown"
	}
}

func (m OffsetMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText accepts "top", "symmetric" or an empty string (unset).
func (m *OffsetMode) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*m = OffsetUnknown
		return nil
	}
	v, err := ParseOffsetMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func ParseOffsetMode(s string) (OffsetMode, error) {
	switch s {
	case "top":
		return OffsetTop, nil
	case "symmetric":
		return OffsetSymmetric, nil
	default:
		return OffsetUnknown, fmt.Errorf("%w: %q", ErrInvalidOffsetMode, s)
	}
}

// Surface is one element of the envelope.
type Surface int

const (
	SurfaceWall Surface = iota
	SurfaceWindow
	SurfaceRoof
	SurfaceFloor
)

func (s Surface) String() string {
	switch s {
	case SurfaceWall:
		return "wall"
	case SurfaceWindow:
		return "window"
	case SurfaceRoof:
		return "roof"
	case SurfaceFloor:
		return "floor"
	default:
		return "unknown"
	}
}

// Label is the capitalised plural used in reports.
func (s Surface) Label() string {
	switch s {
	case SurfaceWall:
		return "Walls"
	case SurfaceWindow:
		return "Windows"
	case SurfaceRoof:
		return "Roof"
	case SurfaceFloor:
		return "Floor"
	default:
		return "Unknown"
	}
}

// Season picks the winter or summer temperature of a climate preset.
type Season int

const (
	SeasonUnknown Season = iota
	SeasonWinter
	SeasonSummer
)

func (s Season) String() string {
	switch s {
	case SeasonWinter:
		return "winter"
	case SeasonSummer:
		return "summer"
	default:
		return "unknown"
	}
}

func ParseSeason(s string) (Season, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "winter":
		return SeasonWinter, nil
	case "summer":
		return SeasonSummer, nil
	default:
		return SeasonUnknown, fmt.Errorf("%w: %q", ErrInvalidSeason, s)
	}
}

// FlowDirection tells whether the room needs heating or cooling to hold the
// desired temperature. It does not change any computed loss.
type FlowDirection int

const (
	FlowNeutral FlowDirection = iota
	FlowHeating
	FlowCooling
)

func (f FlowDirection) String() string {
	switch f {
	case FlowHeating:
		return "heating"
	case FlowCooling:
		return "cooling"
	default:
		return "neutral"
	}
}

// Outcome of the insulation optimization step.
type Outcome int

const (
	OutcomeNotRequested Outcome = iota
	OutcomeApplied
	OutcomeAlreadyMet
	OutcomeUnachievable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeAlreadyMet:
		return "already_met"
	case OutcomeUnachievable:
		return "unachievable"
	default:
		return "not_requested"
	}
}
