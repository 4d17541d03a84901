package main

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Agrid-Dev/envelope/internal/envelope"
	"github.com/Agrid-Dev/envelope/internal/estimator"
)

func referenceRoom() envelope.Room {
	return envelope.NewRoom(envelope.Point{}, 5, 4, 2.5)
}

func TestSweepTargets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.csv")
	if err := SweepTargets(referenceRoom(), envelope.DefaultParams(), Sweep{From: 300, To: 600, Step: 10}, path); err != nil {
		t.Fatalf("SweepTargets() failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 32 {
		t.Fatalf("expected header + 31 rows, got %d", len(records))
	}

	tests := []struct {
		row        int
		target     string
		outcome    string
		insulation string
	}{
		{1, "300", "unachievable", "0.0"},
		{11, "400", "applied", "132.0"},
		{31, "600", "already_met", "0.0"},
	}
	for _, tt := range tests {
		r := records[tt.row]
		if r[0] != tt.target || r[1] != tt.outcome || r[3] != tt.insulation {
			t.Fatalf("row %d: got %v, want target=%s outcome=%s insulation=%s", tt.row, r, tt.target, tt.outcome, tt.insulation)
		}
	}
}

func TestSweepTargetsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.csv")
	if err := SweepTargets(referenceRoom(), envelope.DefaultParams(), Sweep{From: 300, To: 600}, path); err == nil {
		t.Fatal("expected error for zero step")
	}
	if err := SweepTargets(referenceRoom(), envelope.DefaultParams(), Sweep{From: 300, To: 400, Step: 10}, filepath.Join(t.TempDir(), "missing", "sweep.csv")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteSweepReportsWriteErrors(t *testing.T) {
	p := envelope.DefaultParams()
	p.Optimize = true
	est, err := estimator.New(referenceRoom(), p, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	err = writeSweep(failingWriter{}, est, Sweep{From: 300, To: 310, Step: 10})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected write error to surface, got %v", err)
	}
}
