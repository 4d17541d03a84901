package estimator

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/envelope/internal/envelope"
)

var ErrInvalidDimension = errors.New("invalid room dimension")

// Dimension names one edge of the room box.
type Dimension int

const (
	DimensionUnknown Dimension = iota
	DimensionLength
	DimensionWidth
	DimensionHeight
)

func (d Dimension) String() string {
	switch d {
	case DimensionLength:
		return "length"
	case DimensionWidth:
		return "width"
	case DimensionHeight:
		return "height"
	default:
		return "unknown"
	}
}

// Snapshot is the last successful calculation together with its inputs.
type Snapshot struct {
	ID           string
	Room         envelope.Room
	Params       envelope.Params
	Result       envelope.Result
	CalculatedAt time.Time
}

// Estimator keeps a current room and parameter set and recalculates on every
// change. A change whose calculation fails is rejected and the previous
// snapshot stays in place.
type Estimator struct {
	mu  sync.RWMutex
	s   Snapshot
	log *zap.Logger
	now func() time.Time
}

func New(room envelope.Room, params envelope.Params, logger *zap.Logger) (*Estimator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Estimator{log: logger, now: time.Now}
	s, err := e.calculate(room, params)
	if err != nil {
		return nil, err
	}
	e.s = s
	return e, nil
}

func (e *Estimator) Get() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.s
}

// Evaluate runs a one-off calculation without touching the current snapshot.
func (e *Estimator) Evaluate(room envelope.Room, params envelope.Params) (envelope.Result, error) {
	res, err := envelope.Calculate(room, params)
	if err != nil {
		e.log.Info("calculation rejected", zap.Error(err))
		return envelope.Result{}, err
	}
	e.logWarnings("", res)
	return res, nil
}

func (e *Estimator) SetRoom(room envelope.Room) error {
	return e.update(func(r *envelope.Room, _ *envelope.Params) error {
		*r = room
		return nil
	})
}

// SetDimensions resizes the current room around its center.
func (e *Estimator) SetDimensions(length, width, height float64) error {
	return e.update(func(r *envelope.Room, _ *envelope.Params) error {
		*r = envelope.NewRoom(r.Center, length, width, height)
		return nil
	})
}

// SetDimension changes one edge of the current room and keeps the other two.
// The read and the write happen under one lock.
func (e *Estimator) SetDimension(d Dimension, v float64) error {
	return e.update(func(r *envelope.Room, _ *envelope.Params) error {
		l, w, h := r.Length(), r.Width(), r.Height()
		switch d {
		case DimensionLength:
			l = v
		case DimensionWidth:
			w = v
		case DimensionHeight:
			h = v
		default:
			return fmt.Errorf("%w: %v", ErrInvalidDimension, d)
		}
		*r = envelope.NewRoom(r.Center, l, w, h)
		return nil
	})
}

func (e *Estimator) SetParam(name envelope.Param, v float64) error {
	return e.update(func(_ *envelope.Room, p *envelope.Params) error {
		return p.Set(name, v)
	})
}

func (e *Estimator) SetParams(params envelope.Params) error {
	return e.update(func(_ *envelope.Room, p *envelope.Params) error {
		*p = params
		return nil
	})
}

func (e *Estimator) SetOptimize(on bool) error {
	return e.update(func(_ *envelope.Room, p *envelope.Params) error {
		p.Optimize = on
		return nil
	})
}

func (e *Estimator) update(apply func(*envelope.Room, *envelope.Params) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	room, params := e.s.Room, e.s.Params
	if err := apply(&room, &params); err != nil {
		return err
	}
	s, err := e.calculate(room, params)
	if err != nil {
		return err
	}
	e.s = s
	return nil
}

func (e *Estimator) calculate(room envelope.Room, params envelope.Params) (Snapshot, error) {
	res, err := envelope.Calculate(room, params)
	if err != nil {
		e.log.Info("calculation rejected", zap.Error(err))
		return Snapshot{}, err
	}
	s := Snapshot{
		ID:           uuid.NewString(),
		Room:         room,
		Params:       params,
		Result:       res,
		CalculatedAt: e.now(),
	}
	e.log.Debug("calculation updated",
		zap.String("id", s.ID),
		zap.Float64("total_heat_loss", res.TotalHeatLoss),
		zap.Float64("net_heating", res.NetHeating),
		zap.String("outcome", res.Outcome.String()),
	)
	e.logWarnings(s.ID, res)
	return s, nil
}

func (e *Estimator) logWarnings(id string, res envelope.Result) {
	for _, w := range res.Warnings {
		e.log.Warn("envelope advisory",
			zap.String("id", id),
			zap.String("code", w.Code.String()),
			zap.String("message", w.Message),
		)
	}
}
