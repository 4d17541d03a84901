package device

import "github.com/Agrid-Dev/envelope/internal/estimator"

// Device binds an estimator to the identity it is published under.
type Device struct {
	ID string
	E  *estimator.Estimator
}

func New(id string, e *estimator.Estimator) *Device {
	return &Device{ID: id, E: e}
}
