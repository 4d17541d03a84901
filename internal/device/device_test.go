package device

import (
	"testing"

	"github.com/Agrid-Dev/envelope/internal/estimator"
)

func TestNewDevice(t *testing.T) {
	id := "test-id"
	e := &estimator.Estimator{}
	d := New(id, e)

	if d.ID != id {
		t.Errorf("Expected device ID to be %s, got %s", id, d.ID)
	}
	if d.E != e {
		t.Errorf("Expected device to hold the given estimator")
	}
}
