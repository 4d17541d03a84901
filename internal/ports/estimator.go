package ports

import (
	"github.com/Agrid-Dev/envelope/internal/envelope"
	"github.com/Agrid-Dev/envelope/internal/estimator"
)

// EstimatorService is the control-plane port used by controllers (HTTP/MQTT/Modbus).
type EstimatorService interface {
	Get() estimator.Snapshot
	Evaluate(envelope.Room, envelope.Params) (envelope.Result, error)
	SetRoom(envelope.Room) error
	SetDimensions(length, width, height float64) error
	SetDimension(estimator.Dimension, float64) error
	SetParam(envelope.Param, float64) error
	SetOptimize(bool) error
}
