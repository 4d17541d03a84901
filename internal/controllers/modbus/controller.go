package modbusctrl

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	mbserver "github.com/tbrandon/mbserver"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/envelope/internal/envelope"
	"github.com/Agrid-Dev/envelope/internal/estimator"
	"github.com/Agrid-Dev/envelope/internal/ports"
)

// Config for the Modbus controller.
type Config struct {
	DeviceID string
	Addr     string
	UnitID   byte // UnitID (Modbus slave/unit ID). Use an integer 1..247.
}

type Controller struct {
	svc ports.EstimatorService
	cfg Config
	log *zap.Logger

	serv *mbserver.Server
}

// Holding register map. Every register is a signed 16-bit value divided by its scale.
const (
	HRLength = iota
	HRWidth
	HRHeight
	HRWindowPercentage
	HRExternalTemperature
	HRDesiredTemperature
	HRWallUValue
	HRWindowUValue
	HRRoofUValue
	HRFloorUValue
	HRInternalGains
	HRSolarGains
	HRTargetHeatLoss

	holdingCount
)

// Input register map. Each result occupies two registers holding a float32,
// high word first.
const (
	IRTotalHeatLoss = iota * 2
	IRNetHeating
	IRWallLoss
	IRWindowLoss
	IRRoofLoss
	IRFloorLoss
	IRSurfaceToVolume
	IRHeatLossPerM2
	IRRecommendedWallU
	IRAdditionalInsulation

	inputCount
)

const (
	DimensionScale   = 100
	PercentageScale  = 10
	TemperatureScale = 100
	UValueScale      = 1000
	PowerScale       = 1
)

type holdingReg struct {
	scale float64
	dim   estimator.Dimension // set for room dimensions
	param envelope.Param      // set for calculation parameters
}

var holdingRegs = [holdingCount]holdingReg{
	HRLength:              {scale: DimensionScale, dim: estimator.DimensionLength},
	HRWidth:               {scale: DimensionScale, dim: estimator.DimensionWidth},
	HRHeight:              {scale: DimensionScale, dim: estimator.DimensionHeight},
	HRWindowPercentage:    {scale: PercentageScale, param: envelope.ParamWindowPercentage},
	HRExternalTemperature: {scale: TemperatureScale, param: envelope.ParamExternalTemperature},
	HRDesiredTemperature:  {scale: TemperatureScale, param: envelope.ParamDesiredTemperature},
	HRWallUValue:          {scale: UValueScale, param: envelope.ParamWallUValue},
	HRWindowUValue:        {scale: UValueScale, param: envelope.ParamWindowUValue},
	HRRoofUValue:          {scale: UValueScale, param: envelope.ParamRoofUValue},
	HRFloorUValue:         {scale: UValueScale, param: envelope.ParamFloorUValue},
	HRInternalGains:       {scale: PowerScale, param: envelope.ParamInternalGains},
	HRSolarGains:          {scale: PowerScale, param: envelope.ParamSolarGains},
	HRTargetHeatLoss:      {scale: PowerScale, param: envelope.ParamTargetHeatLoss},
}

func New(svc ports.EstimatorService, cfg Config, logger *zap.Logger) (*Controller, error) {
	if cfg.UnitID == 0 {
		return nil, errors.New("modbus: UnitID is required (non-zero)")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:1502"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{svc: svc, cfg: cfg, log: logger.With(zap.String("controller", "modbus"))}, nil
}

// Run starts the Modbus server and registers handlers that apply writes immediately and
// answer reads from the current snapshot. It blocks until ctx is canceled.
func (c *Controller) Run(ctx context.Context) error {
	serv := mbserver.NewServer()
	c.serv = serv

	// Handlers are registered before the listener starts; mbserver reads the
	// handler table from its own goroutines.
	serv.RegisterFunctionHandler(1, c.readCoils)
	serv.RegisterFunctionHandler(3, c.readHoldingRegisters)
	serv.RegisterFunctionHandler(4, c.readInputRegisters)
	serv.RegisterFunctionHandler(5, c.writeSingleCoil)
	serv.RegisterFunctionHandler(6, c.writeSingleRegister)
	serv.RegisterFunctionHandler(16, c.writeMultipleRegisters)

	if err := serv.ListenTCP(c.cfg.Addr); err != nil {
		return fmt.Errorf("mbserver listen tcp %s: %w", c.cfg.Addr, err)
	}
	c.log.Info("modbus listening", zap.String("addr", c.cfg.Addr), zap.Uint8("unit_id", c.cfg.UnitID))

	<-ctx.Done()
	serv.Close()
	return ctx.Err()
}

// Read Coils (function 1). Coil 0 is the optimize flag.
func (c *Controller) readCoils(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	start, qty, exc := readRange(frame.GetData(), 2000)
	if exc != nil {
		return []byte{}, exc
	}
	if start != 0 || qty != 1 {
		return []byte{}, &mbserver.IllegalDataAddress
	}
	coil := byte(0)
	if c.svc.Get().Params.Optimize {
		coil = 0x01
	}
	return []byte{1, coil}, &mbserver.Success
}

// Read Holding Registers (function 3).
func (c *Controller) readHoldingRegisters(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	start, qty, exc := readRange(frame.GetData(), 125)
	if exc != nil {
		return []byte{}, exc
	}
	if start+qty > holdingCount {
		return []byte{}, &mbserver.IllegalDataAddress
	}
	snap := c.svc.Get()
	regs := make([]uint16, 0, qty)
	for addr := start; addr < start+qty; addr++ {
		regs = append(regs, encodeScaled(holdingValue(snap, addr), holdingRegs[addr].scale))
	}
	return registerResponse(regs), &mbserver.Success
}

// Read Input Registers (function 4). Ranges may start or end inside a float pair.
func (c *Controller) readInputRegisters(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	start, qty, exc := readRange(frame.GetData(), 125)
	if exc != nil {
		return []byte{}, exc
	}
	if start+qty > inputCount {
		return []byte{}, &mbserver.IllegalDataAddress
	}
	all := inputRegisters(c.svc.Get().Result)
	return registerResponse(all[start : start+qty]), &mbserver.Success
}

// Write Single Coil (function 5).
func (c *Controller) writeSingleCoil(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	data := frame.GetData()
	if len(data) < 4 {
		return []byte{}, &mbserver.IllegalDataValue
	}
	addr := binary.BigEndian.Uint16(data[0:2])
	value := binary.BigEndian.Uint16(data[2:4])
	if addr != 0 {
		return []byte{}, &mbserver.IllegalDataAddress
	}

	var on bool
	switch value {
	case 0x0000:
		on = false
	case 0xFF00:
		on = true
	default:
		return []byte{}, &mbserver.IllegalDataValue
	}
	if err := c.svc.SetOptimize(on); err != nil {
		c.log.Warn("optimize write rejected", zap.Error(err))
		return []byte{}, &mbserver.IllegalDataValue
	}

	// echo request (address + value)
	resp := make([]byte, 4)
	copy(resp, data[0:4])
	return resp, &mbserver.Success
}

// Write Single Register (function 6).
func (c *Controller) writeSingleRegister(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	data := frame.GetData()
	if len(data) < 4 {
		return []byte{}, &mbserver.IllegalDataValue
	}
	addr := int(binary.BigEndian.Uint16(data[0:2]))
	value := binary.BigEndian.Uint16(data[2:4])

	if exc := c.writeHolding(addr, value); exc != nil {
		return []byte{}, exc
	}
	resp := make([]byte, 4)
	copy(resp, data[0:4])
	return resp, &mbserver.Success
}

// Write Multiple Registers (function 16). Registers are applied in address
// order; a rejected value stops the write and earlier registers stay applied.
func (c *Controller) writeMultipleRegisters(_ *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	d := frame.GetData()
	if len(d) < 5 {
		return []byte{}, &mbserver.IllegalDataValue
	}
	start := binary.BigEndian.Uint16(d[0:2])
	quantity := binary.BigEndian.Uint16(d[2:4])
	byteCount := int(d[4])
	if byteCount != int(quantity)*2 || len(d) < 5+byteCount {
		return []byte{}, &mbserver.IllegalDataValue
	}
	if int(start)+int(quantity) > holdingCount {
		return []byte{}, &mbserver.IllegalDataAddress
	}
	for i := 0; i < int(quantity); i++ {
		val := binary.BigEndian.Uint16(d[5+i*2 : 5+i*2+2])
		if exc := c.writeHolding(int(start)+i, val); exc != nil {
			return []byte{}, exc
		}
	}

	resp := make([]byte, 4)
	binary.BigEndian.PutUint16(resp[0:2], start)
	binary.BigEndian.PutUint16(resp[2:4], quantity)
	return resp, &mbserver.Success
}

func (c *Controller) writeHolding(addr int, raw uint16) *mbserver.Exception {
	if addr < 0 || addr >= holdingCount {
		return &mbserver.IllegalDataAddress
	}
	reg := holdingRegs[addr]
	v := decodeScaled(raw, reg.scale)

	var err error
	if reg.dim != estimator.DimensionUnknown {
		err = c.svc.SetDimension(reg.dim, v)
	} else {
		err = c.svc.SetParam(reg.param, v)
	}
	if err != nil {
		c.log.Warn("register write rejected", zap.Int("address", addr), zap.Float64("value", v), zap.Error(err))
		return &mbserver.IllegalDataValue
	}
	return nil
}

func holdingValue(s estimator.Snapshot, addr int) float64 {
	switch addr {
	case HRLength:
		return s.Room.Length()
	case HRWidth:
		return s.Room.Width()
	case HRHeight:
		return s.Room.Height()
	}
	v, _ := s.Params.Get(holdingRegs[addr].param)
	return v
}

func inputRegisters(r envelope.Result) []uint16 {
	vals := [inputCount / 2]float64{
		IRTotalHeatLoss / 2:        r.TotalHeatLoss,
		IRNetHeating / 2:           r.NetHeating,
		IRWallLoss / 2:             r.WallLoss,
		IRWindowLoss / 2:           r.WindowLoss,
		IRRoofLoss / 2:             r.RoofLoss,
		IRFloorLoss / 2:            r.FloorLoss,
		IRSurfaceToVolume / 2:      r.SurfaceToVolumeRatio,
		IRHeatLossPerM2 / 2:        r.HeatLossPerM2,
		IRRecommendedWallU / 2:     r.RecommendedWallU,
		IRAdditionalInsulation / 2: r.AdditionalInsulation,
	}
	regs := make([]uint16, 0, inputCount)
	for _, v := range vals {
		hi, lo := encodeFloat32(v)
		regs = append(regs, hi, lo)
	}
	return regs
}

func readRange(data []byte, limit int) (start, qty int, exc *mbserver.Exception) {
	if len(data) < 4 {
		return 0, 0, &mbserver.IllegalDataValue
	}
	start = int(binary.BigEndian.Uint16(data[0:2]))
	qty = int(binary.BigEndian.Uint16(data[2:4]))
	if qty == 0 || qty > limit {
		return 0, 0, &mbserver.IllegalDataValue
	}
	return start, qty, nil
}

// registerResponse builds byte count + register bytes.
func registerResponse(regs []uint16) []byte {
	byteCount := len(regs) * 2
	resp := make([]byte, 1+byteCount)
	resp[0] = byte(byteCount)
	for i, r := range regs {
		binary.BigEndian.PutUint16(resp[1+i*2:1+i*2+2], r)
	}
	return resp
}

func encodeScaled(v, scale float64) uint16 {
	r := min(max(math.Round(v*scale), math.MinInt16), math.MaxInt16)
	return uint16(int16(r))
}

func decodeScaled(u uint16, scale float64) float64 {
	return float64(int16(u)) / scale
}

func encodeFloat32(v float64) (hi, lo uint16) {
	bits := math.Float32bits(float32(v))
	return uint16(bits >> 16), uint16(bits)
}

func decodeFloat32(hi, lo uint16) float64 {
	return float64(math.Float32frombits(uint32(hi)<<16 | uint32(lo)))
}
