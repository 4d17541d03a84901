package envelope

import "testing"

func TestNewRoomDimensions(t *testing.T) {
	r := NewRoom(Point{X: 1, Y: 2, Z: 3}, 5, 4, 2.5)
	assertClose(t, "length", r.Length(), 5)
	assertClose(t, "width", r.Width(), 4)
	assertClose(t, "height", r.Height(), 2.5)
	if r.Center != (Point{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("center: got %+v", r.Center)
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestRoomValidate(t *testing.T) {
	cases := []struct {
		name string
		room Room
		ok   bool
	}{
		{"valid", NewRoom(Point{}, 1, 1, 1), true},
		{"zero value", Room{}, false},
		{"zero length", NewRoom(Point{}, 0, 1, 1), false},
		{"inverted interval", Room{X: Interval{1, 0}, Y: Interval{0, 1}, Z: Interval{0, 1}}, false},
		{"offset interval", Room{X: Interval{2, 7}, Y: Interval{0, 4}, Z: Interval{0, 2.5}}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.room.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok {
				assertErrorIs(t, err, ErrInvalidRoom)
			}
		})
	}
}

func TestRoomOffset(t *testing.T) {
	r := Room{X: Interval{0, 5}, Y: Interval{0, 4}, Z: Interval{0, 2.5}}

	top := r.Offset(0.5, OffsetTop)
	assertEqual(t, "x", top.X, Interval{-0.5, 5.5})
	assertEqual(t, "y", top.Y, Interval{-0.5, 4.5})
	assertEqual(t, "z", top.Z, Interval{0, 3})

	sym := r.Offset(0.5, OffsetSymmetric)
	assertEqual(t, "z", sym.Z, Interval{-0.5, 3})

	assertEqual(t, "input", r.Z, Interval{0, 2.5})
}

func TestRoomMidpoint(t *testing.T) {
	r := NewRoom(Point{X: 1, Y: 1, Z: 1}, 4, 4, 2)
	assertEqual(t, "centered", r.Midpoint(), Point{X: 1, Y: 1, Z: 1})

	top := r.Offset(0.5, OffsetTop)
	assertEqual(t, "top offset", top.Midpoint(), Point{X: 1, Y: 1, Z: 1.25})
}
