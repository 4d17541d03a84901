package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Agrid-Dev/envelope/internal/envelope"
	"github.com/Agrid-Dev/envelope/internal/estimator"
)

type Sweep struct {
	From, To, Step float64
}

// SweepTargets recalculates the reference room for every target heat loss in
// the sweep and writes the insulation sizing to filename.
func SweepTargets(room envelope.Room, params envelope.Params, sweep Sweep, filename string) error {
	if sweep.Step <= 0 || sweep.To < sweep.From {
		return fmt.Errorf("invalid sweep %+v", sweep)
	}
	params.Optimize = true

	est, err := estimator.New(room, params, zap.NewNop())
	if err != nil {
		return fmt.Errorf("failed to create estimator: %v", err)
	}

	// Create CSV file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	if err := writeSweep(file, est, sweep); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close CSV file: %v", err)
	}
	return nil
}

func writeSweep(w io.Writer, est *estimator.Estimator, sweep Sweep) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Target", "Outcome", "RecommendedWallU", "InsulationMM", "OptimizedLength", "OptimizedWidth", "OptimizedHeight"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	steps := int((sweep.To-sweep.From)/sweep.Step) + 1
	for i := range steps {
		target := sweep.From + float64(i)*sweep.Step
		if err := est.SetParam(envelope.ParamTargetHeatLoss, target); err != nil {
			return fmt.Errorf("failed to update target: %v", err)
		}

		res := est.Get().Result
		opt := res.OptimizedRoom
		if err := writer.Write([]string{
			fmt.Sprintf("%.0f", target),
			res.Outcome.String(),
			fmt.Sprintf("%.4f", res.RecommendedWallU),
			fmt.Sprintf("%.1f", res.AdditionalInsulation),
			fmt.Sprintf("%.3f", opt.Length()),
			fmt.Sprintf("%.3f", opt.Width()),
			fmt.Sprintf("%.3f", opt.Height()),
		}); err != nil {
			return fmt.Errorf("failed to write CSV record: %v", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %v", err)
	}
	return nil
}

func main() {
	room := envelope.NewRoom(envelope.Point{}, 5, 4, 2.5)
	sweep := Sweep{From: 300, To: 600, Step: 10}
	if err := SweepTargets(room, envelope.DefaultParams(), sweep, "target_sweep.csv"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
