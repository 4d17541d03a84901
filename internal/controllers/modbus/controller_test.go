package modbusctrl

import (
	"encoding/binary"
	"math"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/goburrow/modbus"

	"github.com/Agrid-Dev/envelope/internal/envelope"
	"github.com/Agrid-Dev/envelope/internal/estimator"
)

// fake service for tests
type spyEstimatorService struct {
	mu sync.Mutex
	s  estimator.Snapshot

	// record calls
	setOptimizeCalls   []bool
	setParamCalls      []envelope.Param
	setParamValues     []float64
	setDimensionCalls  []estimator.Dimension
	setDimensionValues []float64
}

func newSpy(t *testing.T) *spyEstimatorService {
	t.Helper()
	room := envelope.NewRoom(envelope.Point{}, 5, 4, 2.5)
	params := envelope.DefaultParams()
	res, err := envelope.Calculate(room, params)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	return &spyEstimatorService{s: estimator.Snapshot{ID: "s0", Room: room, Params: params, Result: res}}
}

func (f *spyEstimatorService) Get() estimator.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.s
}

func (f *spyEstimatorService) Evaluate(room envelope.Room, params envelope.Params) (envelope.Result, error) {
	return envelope.Calculate(room, params)
}

// recalc must be called with mu held.
func (f *spyEstimatorService) recalc(room envelope.Room, params envelope.Params) error {
	res, err := envelope.Calculate(room, params)
	if err != nil {
		return err
	}
	f.s.Room, f.s.Params, f.s.Result = room, params, res
	return nil
}

func (f *spyEstimatorService) SetRoom(room envelope.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recalc(room, f.s.Params)
}

func (f *spyEstimatorService) SetDimensions(l, w, h float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recalc(envelope.NewRoom(f.s.Room.Center, l, w, h), f.s.Params)
}

func (f *spyEstimatorService) SetDimension(d estimator.Dimension, v float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setDimensionCalls = append(f.setDimensionCalls, d)
	f.setDimensionValues = append(f.setDimensionValues, v)
	r := f.s.Room
	l, w, h := r.Length(), r.Width(), r.Height()
	switch d {
	case estimator.DimensionLength:
		l = v
	case estimator.DimensionWidth:
		w = v
	case estimator.DimensionHeight:
		h = v
	default:
		return estimator.ErrInvalidDimension
	}
	return f.recalc(envelope.NewRoom(r.Center, l, w, h), f.s.Params)
}

func (f *spyEstimatorService) SetParam(name envelope.Param, v float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setParamCalls = append(f.setParamCalls, name)
	f.setParamValues = append(f.setParamValues, v)
	p := f.s.Params
	if err := p.Set(name, v); err != nil {
		return err
	}
	return f.recalc(f.s.Room, p)
}

func (f *spyEstimatorService) SetOptimize(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setOptimizeCalls = append(f.setOptimizeCalls, on)
	p := f.s.Params
	p.Optimize = on
	return f.recalc(f.s.Room, p)
}

func findFreeTCPAddr(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("free port: %v", err)
	}
	a := l.Addr().String()
	_ = l.Close()
	return a
}

// startupDelay lets the listener come up before the client dials.
const startupDelay = 50 * time.Millisecond

func startController(t *testing.T, fs *spyEstimatorService) modbus.Client {
	t.Helper()
	addr := findFreeTCPAddr(t)

	ctrl, err := New(fs, Config{
		DeviceID: "dev",
		Addr:     addr,
		UnitID:   1,
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := t.Context()
	go func() {
		_ = ctrl.Run(ctx)
	}()

	time.Sleep(startupDelay)

	handler := modbus.NewTCPClientHandler(addr)
	if err := handler.Connect(); err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { _ = handler.Close() })
	return modbus.NewClient(handler)
}

func TestNewRequiresUnitID(t *testing.T) {
	if _, err := New(newSpy(t), Config{}, nil); err == nil {
		t.Fatal("expected error when UnitID missing")
	}
	c, err := New(newSpy(t), Config{UnitID: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.cfg.Addr != "127.0.0.1:1502" {
		t.Fatalf("expected default addr, got %q", c.cfg.Addr)
	}
}

func TestScaledEncoding(t *testing.T) {
	tests := []struct {
		name  string
		v     float64
		scale float64
		want  uint16
	}{
		{"dimension", 2.5, DimensionScale, 250},
		{"negative temperature", -5, TemperatureScale, uint16(0xFE0C)}, // -500
		{"u-value rounds", 0.3004, UValueScale, 300},
		{"clamps high", 1000, TemperatureScale, math.MaxInt16},
		{"clamps low", -1000, TemperatureScale, uint16(0x8000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := encodeScaled(tt.v, tt.scale); got != tt.want {
				t.Fatalf("encodeScaled(%v) = %#04x, want %#04x", tt.v, got, tt.want)
			}
		})
	}
	if got := decodeScaled(uint16(0xFE0C), TemperatureScale); got != -5 {
		t.Fatalf("decodeScaled = %v, want -5", got)
	}
}

func TestFloat32Words(t *testing.T) {
	hi, lo := encodeFloat32(486)
	if got := decodeFloat32(hi, lo); got != 486 {
		t.Fatalf("round trip = %v", got)
	}
	if hi != 0x43F3 || lo != 0x0000 {
		t.Fatalf("expected high word first, got %#04x %#04x", hi, lo)
	}
}

func TestModbusControllerReads(t *testing.T) {
	fs := newSpy(t)
	client := startController(t, fs)

	res, err := client.ReadHoldingRegisters(0, holdingCount)
	if err != nil {
		t.Fatalf("read holding: %v", err)
	}
	if len(res) != holdingCount*2 {
		t.Fatalf("expected %d bytes got %d", holdingCount*2, len(res))
	}
	get := func(i int) uint16 { return binary.BigEndian.Uint16(res[i*2 : i*2+2]) }
	want := map[int]uint16{
		HRLength:              500,
		HRWidth:               400,
		HRHeight:              250,
		HRWindowPercentage:    200,
		HRExternalTemperature: 500,
		HRDesiredTemperature:  2000,
		HRWallUValue:          300,
		HRWindowUValue:        1400,
		HRRoofUValue:          200,
		HRFloorUValue:         250,
		HRInternalGains:       200,
		HRSolarGains:          0,
		HRTargetHeatLoss:      0,
	}
	for addr, w := range want {
		if got := get(addr); got != w {
			t.Fatalf("holding %d = %d, want %d", addr, got, w)
		}
	}

	in, err := client.ReadInputRegisters(0, inputCount)
	if err != nil {
		t.Fatalf("read input: %v", err)
	}
	word := func(i int) uint16 { return binary.BigEndian.Uint16(in[i*2 : i*2+2]) }
	if got := decodeFloat32(word(IRTotalHeatLoss), word(IRTotalHeatLoss+1)); got != 486 {
		t.Fatalf("total heat loss = %v, want 486", got)
	}
	if got := decodeFloat32(word(IRNetHeating), word(IRNetHeating+1)); got != 286 {
		t.Fatalf("net heating = %v, want 286", got)
	}

	coils, err := client.ReadCoils(0, 1)
	if err != nil {
		t.Fatalf("read coils: %v", err)
	}
	if len(coils) != 1 || coils[0] != 0 {
		t.Fatalf("expected optimize off, got %v", coils)
	}

	if _, err := client.ReadHoldingRegisters(holdingCount, 1); err == nil {
		t.Fatal("expected error reading past the holding map")
	}
	if _, err := client.ReadInputRegisters(inputCount-1, 2); err == nil {
		t.Fatal("expected error reading past the input map")
	}
}

func TestModbusControllerWrites(t *testing.T) {
	fs := newSpy(t)
	client := startController(t, fs)

	// target heat loss 400 W
	if _, err := client.WriteSingleRegister(HRTargetHeatLoss, 400); err != nil {
		t.Fatalf("write register: %v", err)
	}
	fs.mu.Lock()
	if n := len(fs.setParamCalls); n == 0 || fs.setParamCalls[n-1] != envelope.ParamTargetHeatLoss || fs.setParamValues[n-1] != 400 {
		fs.mu.Unlock()
		t.Fatalf("SetParam(target_heat_loss, 400) not called")
	}
	fs.mu.Unlock()

	if _, err := client.WriteSingleCoil(0, 0xFF00); err != nil {
		t.Fatalf("write coil: %v", err)
	}
	fs.mu.Lock()
	if len(fs.setOptimizeCalls) == 0 || !fs.setOptimizeCalls[len(fs.setOptimizeCalls)-1] {
		fs.mu.Unlock()
		t.Fatalf("SetOptimize(true) not called")
	}
	fs.mu.Unlock()

	in, err := client.ReadInputRegisters(IRAdditionalInsulation, 2)
	if err != nil {
		t.Fatalf("read input: %v", err)
	}
	mm := decodeFloat32(binary.BigEndian.Uint16(in[0:2]), binary.BigEndian.Uint16(in[2:4]))
	if math.Abs(mm-132.0175) > 0.01 {
		t.Fatalf("additional insulation = %v, want ~132", mm)
	}

	// width 4.5 m keeps length and height
	if _, err := client.WriteSingleRegister(HRWidth, 450); err != nil {
		t.Fatalf("write width: %v", err)
	}
	fs.mu.Lock()
	if n := len(fs.setDimensionCalls); n == 0 || fs.setDimensionCalls[n-1] != estimator.DimensionWidth || fs.setDimensionValues[n-1] != 4.5 {
		fs.mu.Unlock()
		t.Fatalf("SetDimension(width, 4.5) not called, got %v %v", fs.setDimensionCalls, fs.setDimensionValues)
	}
	fs.mu.Unlock()

	room := fs.Get().Room
	if room.Length() != 5 || room.Width() != 4.5 || room.Height() != 2.5 {
		t.Fatalf("expected 5 x 4.5 x 2.5 room, got %v x %v x %v", room.Length(), room.Width(), room.Height())
	}
}

func TestModbusControllerWriteMultiple(t *testing.T) {
	fs := newSpy(t)
	client := startController(t, fs)

	// external -2.00 C, desired 21.00 C
	payload := make([]byte, 4)
	binary.BigEndian.PutUint16(payload[0:2], encodeScaled(-2, TemperatureScale))
	binary.BigEndian.PutUint16(payload[2:4], encodeScaled(21, TemperatureScale))
	if _, err := client.WriteMultipleRegisters(HRExternalTemperature, 2, payload); err != nil {
		t.Fatalf("write multiple: %v", err)
	}

	p := fs.Get().Params
	if p.ExternalTemperature != -2 || p.DesiredTemperature != 21 {
		t.Fatalf("expected -2/21, got %v/%v", p.ExternalTemperature, p.DesiredTemperature)
	}
}

func TestModbusControllerRejectsInvalidValues(t *testing.T) {
	fs := newSpy(t)
	client := startController(t, fs)

	// 150.0 %
	if _, err := client.WriteSingleRegister(HRWindowPercentage, 1500); err == nil {
		t.Fatal("expected window percentage out of range to be rejected")
	}
	if got := fs.Get().Params.WindowPercentage; got != 20 {
		t.Fatalf("window percentage changed to %v", got)
	}

	if _, err := client.WriteSingleRegister(holdingCount, 1); err == nil {
		t.Fatal("expected illegal address")
	}
	if _, err := client.WriteSingleCoil(1, 0xFF00); err == nil {
		t.Fatal("expected illegal coil address")
	}
}
