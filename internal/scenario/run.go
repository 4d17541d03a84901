package scenario

import (
	"context"
	"encoding/csv"
	"io"
	"runtime"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Agrid-Dev/envelope/internal/envelope"
)

// Outcome is the evaluation of one case. Err is set when the case could not
// be resolved or calculated; the other cases still run.
type Outcome struct {
	Name   string
	Room   envelope.Room
	Params envelope.Params
	Result envelope.Result
	Err    error
}

// Run evaluates every case with at most workers calculations in flight
// (GOMAXPROCS when workers <= 0). Outcomes keep the file order.
func Run(ctx context.Context, f File, workers int, logger *zap.Logger) ([]Outcome, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]Outcome, len(f.Cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range f.Cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o := Outcome{Name: f.Cases[i].Name}
			o.Room, o.Params, o.Err = f.Resolve(i)
			if o.Err == nil {
				o.Result, o.Err = envelope.Calculate(o.Room, o.Params)
			}
			if o.Err != nil {
				logger.Warn("case failed", zap.String("case", o.Name), zap.Error(o.Err))
			} else {
				logger.Debug("case evaluated",
					zap.String("case", o.Name),
					zap.Float64("total_heat_loss", o.Result.TotalHeatLoss),
					zap.String("outcome", o.Result.Outcome.String()),
				)
			}
			out[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteSummaryCSV writes one row per outcome.
func WriteSummaryCSV(w io.Writer, outcomes []Outcome) error {
	cw := csv.NewWriter(w)
	header := []string{
		"case", "total_heat_loss_w", "net_heating_w", "heat_loss_per_m2",
		"optimization_outcome", "recommended_wall_u", "additional_insulation_mm", "warnings", "error",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, o := range outcomes {
		if o.Err != nil {
			if err := cw.Write([]string{o.Name, "", "", "", "", "", "", "", o.Err.Error()}); err != nil {
				return err
			}
			continue
		}
		r := o.Result
		if err := cw.Write([]string{
			o.Name,
			strconv.FormatFloat(r.TotalHeatLoss, 'f', 0, 64),
			strconv.FormatFloat(r.NetHeating, 'f', 0, 64),
			strconv.FormatFloat(r.HeatLossPerM2, 'f', 1, 64),
			r.Outcome.String(),
			strconv.FormatFloat(r.RecommendedWallU, 'f', 3, 64),
			strconv.FormatFloat(r.AdditionalInsulation, 'f', 0, 64),
			strconv.Itoa(len(r.Warnings)),
			"",
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
