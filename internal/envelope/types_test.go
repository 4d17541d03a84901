package envelope

import "testing"

func assertEqual[T comparable](t *testing.T, name string, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: got %v, want %v", name, got, want)
	}
}

func TestParamValid(t *testing.T) {
	cases := []struct {
		p    Param
		want bool
	}{
		{ParamUnknown, false},
		{ParamWindowPercentage, true},
		{ParamTargetHeatLoss, true},
		{Param(999), false},
		{Param(-1), false},
	}

	for _, tc := range cases {
		if got := tc.p.Valid(); got != tc.want {
			t.Fatalf("Param(%d).Valid()=%v want %v", tc.p, got, tc.want)
		}
	}
}

func TestParseParam_RoundTripsEveryName(t *testing.T) {
	all := AllParams()
	if len(all) != 10 {
		t.Fatalf("expected 10 params, got %d", len(all))
	}
	for _, p := range all {
		got, err := ParseParam(p.String())
		if err != nil {
			t.Fatalf("ParseParam(%q) unexpected error: %v", p.String(), err)
		}
		assertEqual(t, p.String(), got, p)
	}
}

func TestParseParam_Invalid(t *testing.T) {
	for _, in := range []string{"", "nope", "unknown", "WALL_U_VALUE"} {
		got, err := ParseParam(in)
		assertErrorIs(t, err, ErrInvalidParam)
		assertEqual(t, "param", got, ParamUnknown)
	}
}

func TestParamsGetSet(t *testing.T) {
	p := DefaultParams()
	for i, name := range AllParams() {
		v := float64(i) + 0.5
		if err := p.Set(name, v); err != nil {
			t.Fatalf("Set(%v) unexpected error: %v", name, err)
		}
		got, err := p.Get(name)
		if err != nil {
			t.Fatalf("Get(%v) unexpected error: %v", name, err)
		}
		assertEqual(t, name.String(), got, v)
	}
	assertErrorIs(t, p.Set(ParamUnknown, 1), ErrInvalidParam)
	_, err := p.Get(Param(42))
	assertErrorIs(t, err, ErrInvalidParam)
}

func TestOffsetMode_Table(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    OffsetMode
		wantErr bool
	}{
		{"top", "top", OffsetTop, false},
		{"symmetric", "symmetric", OffsetSymmetric, false},
		{"invalid", "bottom", OffsetUnknown, true},
		{"empty", "", OffsetUnknown, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseOffsetMode(tc.in)
			if tc.wantErr {
				assertErrorIs(t, err, ErrInvalidOffsetMode)
			} else if err != nil {
				t.Fatalf("ParseOffsetMode(%q) unexpected error: %v", tc.in, err)
			}
			assertEqual(t, "mode", got, tc.want)
			if !tc.wantErr {
				assertEqual(t, "string", got.String(), tc.in)
			}
		})
	}
}

func TestOffsetModeUnmarshalText(t *testing.T) {
	var m OffsetMode
	if err := m.UnmarshalText([]byte("symmetric")); err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "mode", m, OffsetSymmetric)
	if err := m.UnmarshalText(nil); err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "mode", m, OffsetUnknown)
	assertErrorIs(t, m.UnmarshalText([]byte("sideways")), ErrInvalidOffsetMode)
}

func TestParseSeason(t *testing.T) {
	s, err := ParseSeason(" Winter ")
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "season", s, SeasonWinter)
	_, err = ParseSeason("autumn")
	assertErrorIs(t, err, ErrInvalidSeason)
}

func TestEnumStrings(t *testing.T) {
	assertEqual(t, "surface", SurfaceWindow.String(), "window")
	assertEqual(t, "label", SurfaceWall.Label(), "Walls")
	assertEqual(t, "flow", FlowCooling.String(), "cooling")
	assertEqual(t, "outcome", OutcomeAlreadyMet.String(), "already_met")
	assertEqual(t, "warning", WarningTargetUnachievable.String(), "target_unachievable")
	assertEqual(t, "unknown surface", Surface(9).String(), "unknown")
}
