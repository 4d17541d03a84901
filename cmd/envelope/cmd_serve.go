package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Agrid-Dev/envelope/cmd/app"
	httpctrl "github.com/Agrid-Dev/envelope/internal/controllers/http"
	modbusctrl "github.com/Agrid-Dev/envelope/internal/controllers/modbus"
	mqttctrl "github.com/Agrid-Dev/envelope/internal/controllers/mqtt"
	"github.com/Agrid-Dev/envelope/internal/device"
	"github.com/Agrid-Dev/envelope/internal/estimator"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the estimator behind the HTTP, MQTT and Modbus controllers",
		Long: `Loads the room and envelope parameters from --config (and ENVELOPE_*
environment variables) and serves them on every enabled controller until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), c)
		},
	}
}

// runner is a controller started by serve.
type runner interface {
	Run(ctx context.Context) error
}

func runServe(ctx context.Context, c *cli) error {
	cfg, log := c.cfg, c.logger

	params, err := cfg.EnvelopeParams()
	if err != nil {
		return err
	}
	est, err := estimator.New(cfg.EnvelopeRoom(), params, log.Named("estimator"))
	if err != nil {
		return err
	}
	d := device.New(cfg.DeviceID, est)

	// All controllers are built before the first one starts.
	runners, err := buildControllers(cfg, d, log)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		g.Go(func() error { return r.Run(gctx) })
	}

	log.Info("envelope serving",
		zap.String("device_id", d.ID),
		zap.Bool("http", cfg.Controllers.HTTP.Enabled),
		zap.Bool("mqtt", cfg.Controllers.MQTT.Enabled),
		zap.Bool("modbus", cfg.Controllers.Modbus.Enabled),
	)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func buildControllers(cfg app.Config, d *device.Device, log *zap.Logger) ([]runner, error) {
	var runners []runner

	if hc := cfg.Controllers.HTTP; hc.Enabled {
		runners = append(runners, httpctrl.New(d.E, httpctrl.Config{
			Addr:           hc.Addr,
			DeviceID:       d.ID,
			CalculateRate:  hc.CalculateRate,
			CalculateBurst: hc.CalculateBurst,
		}, log.Named("http")))
	}

	if mc := cfg.Controllers.MQTT; mc.Enabled {
		ctrl, err := mqttctrl.New(d.E, mqttctrl.Config{
			DeviceID:        d.ID,
			BrokerURL:       mc.BrokerURL,
			ClientID:        mc.ClientID,
			BaseTopic:       mc.BaseTopic,
			QoS:             mc.QoS,
			RetainSnapshot:  mc.RetainSnapshot,
			PublishInterval: mc.PublishInterval,
			Username:        mc.Username,
			Password:        mc.Password,
		}, log.Named("mqtt"))
		if err != nil {
			return nil, err
		}
		runners = append(runners, ctrl)
	}

	if bc := cfg.Controllers.Modbus; bc.Enabled {
		ctrl, err := modbusctrl.New(d.E, modbusctrl.Config{
			DeviceID: d.ID,
			Addr:     bc.Addr,
			UnitID:   bc.UnitID,
		}, log.Named("modbus"))
		if err != nil {
			return nil, err
		}
		runners = append(runners, ctrl)
	}
	return runners, nil
}
