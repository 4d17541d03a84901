package testutil

import (
	"github.com/Agrid-Dev/envelope/internal/envelope"
	"github.com/Agrid-Dev/envelope/internal/estimator"
)

// FakeEstimatorService is a reusable fake implementing ports.EstimatorService.
// Put ONLY what multiple test packages need here.
type FakeEstimatorService struct {
	S estimator.Snapshot

	EvaluateCalled bool
	EvaluateRoom   envelope.Room
	EvaluateParams envelope.Params
	EvaluateErr    error

	SetRoomCalled bool
	SetRoomArg    envelope.Room
	SetRoomErr    error

	SetDimensionsCalled bool
	SetDimensionsArg    [3]float64
	SetDimensionsErr    error

	SetDimensionCalled bool
	SetDimensionName   estimator.Dimension
	SetDimensionValue  float64
	SetDimensionErr    error

	SetParamCalled bool
	SetParamName   envelope.Param
	SetParamValue  float64
	SetParamErr    error

	SetOptimizeCalled bool
	SetOptimizeArg    bool
	SetOptimizeErr    error
}

// NewFakeEstimatorService returns a fake holding the 5 x 4 x 2.5 m reference room.
func NewFakeEstimatorService() *FakeEstimatorService {
	room := envelope.NewRoom(envelope.Point{}, 5, 4, 2.5)
	params := envelope.DefaultParams()
	res, _ := envelope.Calculate(room, params)
	return &FakeEstimatorService{
		S: estimator.Snapshot{
			ID:     "snapshot-1",
			Room:   room,
			Params: params,
			Result: res,
		},
	}
}

func (f *FakeEstimatorService) Get() estimator.Snapshot { return f.S }

func (f *FakeEstimatorService) Evaluate(room envelope.Room, params envelope.Params) (envelope.Result, error) {
	f.EvaluateCalled = true
	f.EvaluateRoom = room
	f.EvaluateParams = params
	if f.EvaluateErr != nil {
		return envelope.Result{}, f.EvaluateErr
	}
	return envelope.Calculate(room, params)
}

func (f *FakeEstimatorService) SetRoom(room envelope.Room) error {
	f.SetRoomCalled = true
	f.SetRoomArg = room
	if f.SetRoomErr != nil {
		return f.SetRoomErr
	}
	f.S.Room = room
	return nil
}

func (f *FakeEstimatorService) SetDimensions(length, width, height float64) error {
	f.SetDimensionsCalled = true
	f.SetDimensionsArg = [3]float64{length, width, height}
	if f.SetDimensionsErr != nil {
		return f.SetDimensionsErr
	}
	f.S.Room = envelope.NewRoom(f.S.Room.Center, length, width, height)
	return nil
}

func (f *FakeEstimatorService) SetDimension(d estimator.Dimension, v float64) error {
	f.SetDimensionCalled = true
	f.SetDimensionName = d
	f.SetDimensionValue = v
	if f.SetDimensionErr != nil {
		return f.SetDimensionErr
	}
	r := f.S.Room
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
	f.S.Room = envelope.NewRoom(r.Center, l, w, h)
	return nil
}

func (f *FakeEstimatorService) SetParam(name envelope.Param, v float64) error {
	f.SetParamCalled = true
	f.SetParamName = name
	f.SetParamValue = v
	if f.SetParamErr != nil {
		return f.SetParamErr
	}
	return f.S.Params.Set(name, v)
}

func (f *FakeEstimatorService) SetOptimize(on bool) error {
	f.SetOptimizeCalled = true
	f.SetOptimizeArg = on
	if f.SetOptimizeErr != nil {
		return f.SetOptimizeErr
	}
	f.S.Params.Optimize = on
	return nil
}
