package envelope

import (
	"fmt"
	"math"
)

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Interval is a closed range along one axis, relative to the room center.
type Interval struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

func (i Interval) Length() float64 {
	return i.Max - i.Min
}

func (i Interval) valid() bool {
	return !math.IsNaN(i.Min) && !math.IsNaN(i.Max) &&
		!math.IsInf(i.Min, 0) && !math.IsInf(i.Max, 0) &&
		i.Max > i.Min
}

// Room is an axis-aligned box. X spans the length, Y the width and Z the height.
type Room struct {
	Center Point    `json:"center" yaml:"center"`
	X      Interval `json:"x" yaml:"x"`
	Y      Interval `json:"y" yaml:"y"`
	Z      Interval `json:"z" yaml:"z"`
}

// NewRoom builds a box of the given edge lengths centered on center.
func NewRoom(center Point, length, width, height float64) Room {
	return Room{
		Center: center,
		X:      Interval{Min: -length / 2, Max: length / 2},
		Y:      Interval{Min: -width / 2, Max: width / 2},
		Z:      Interval{Min: -height / 2, Max: height / 2},
	}
}

func (r Room) Length() float64 { return r.X.Length() }
func (r Room) Width() float64  { return r.Y.Length() }
func (r Room) Height() float64 { return r.Z.Length() }

// Midpoint is the world-space center of the box. It differs from Center once
// the box has been offset unevenly.
func (r Room) Midpoint() Point {
	return Point{
		X: r.Center.X + (r.X.Min+r.X.Max)/2,
		Y: r.Center.Y + (r.Y.Min+r.Y.Max)/2,
		Z: r.Center.Z + (r.Z.Min+r.Z.Max)/2,
	}
}

// Validate rejects degenerate or non-finite boxes.
func (r Room) Validate() error {
	for _, axis := range []struct {
		name string
		iv   Interval
	}{{"length", r.X}, {"width", r.Y}, {"height", r.Z}} {
		if !axis.iv.valid() {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidRoom, axis.name, axis.iv.Length())
		}
	}
	return nil
}

// Offset returns a copy grown by d on both horizontal sides and vertically per mode.
func (r Room) Offset(d float64, mode OffsetMode) Room {
	out := r
	out.X = Interval{Min: r.X.Min - d, Max: r.X.Max + d}
	out.Y = Interval{Min: r.Y.Min - d, Max: r.Y.Max + d}
	out.Z.Max = r.Z.Max + d
	if mode == OffsetSymmetric {
		out.Z.Min = r.Z.Min - d
	}
	return out
}
