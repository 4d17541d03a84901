package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/envelope/internal/envelope"
	"github.com/Agrid-Dev/envelope/internal/export"
)

type calcOptions struct {
	length, width, height float64
	params                envelope.Params

	verticalOffset string
	wallPreset     string
	windowPreset   string
	climate        string
	season         string

	format string
	out    string
	id     string
}

func newCalcCmd(c *cli) *cobra.Command {
	o := calcOptions{params: envelope.DefaultParams()}

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate the heat loss of one room",
		Long: `Calculates heat loss for a single room and prints a report.

Example:
  envelope calc --length 5 --width 4 --height 2.5 --target-heat-loss 400 --optimize
  envelope calc --climate oslo --wall-preset passivhaus --format pdf --out room.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalc(cmd, c, o)
		},
	}

	d := envelope.DefaultParams()
	f := cmd.Flags()
	f.Float64Var(&o.length, "length", 5, "room length along X (m)")
	f.Float64Var(&o.width, "width", 4, "room width along Y (m)")
	f.Float64Var(&o.height, "height", 2.5, "room height along Z (m)")
	f.Float64Var(&o.params.WindowPercentage, "window-percentage", d.WindowPercentage, "window share of the wall area (%)")
	f.Float64Var(&o.params.ExternalTemperature, "external-temperature", d.ExternalTemperature, "outdoor design temperature (°C)")
	f.Float64Var(&o.params.DesiredTemperature, "desired-temperature", d.DesiredTemperature, "indoor set temperature (°C)")
	f.Float64Var(&o.params.WallUValue, "wall-u", d.WallUValue, "wall U-value (W/m²K)")
	f.Float64Var(&o.params.WindowUValue, "window-u", d.WindowUValue, "window U-value (W/m²K)")
	f.Float64Var(&o.params.RoofUValue, "roof-u", d.RoofUValue, "roof U-value (W/m²K)")
	f.Float64Var(&o.params.FloorUValue, "floor-u", d.FloorUValue, "floor U-value (W/m²K)")
	f.Float64Var(&o.params.InternalGains, "internal-gains", d.InternalGains, "internal gains (W)")
	f.Float64Var(&o.params.SolarGains, "solar-gains", d.SolarGains, "solar gains (W)")
	f.Float64Var(&o.params.TargetHeatLoss, "target-heat-loss", d.TargetHeatLoss, "target total heat loss (W), 0 for analysis only")
	f.BoolVar(&o.params.Optimize, "optimize", d.Optimize, "size wall insulation to reach the target")
	f.Float64Var(&o.params.InsulationConductivity, "insulation-conductivity", d.InsulationConductivity, "insulation thermal conductivity (W/mK)")
	f.StringVar(&o.verticalOffset, "vertical-offset", d.VerticalOffset.String(), "how insulation grows the room vertically: top|symmetric")
	f.StringVar(&o.wallPreset, "wall-preset", "", "wall construction preset (overrides --wall-u)")
	f.StringVar(&o.windowPreset, "window-preset", "", "window glazing preset (overrides --window-u)")
	f.StringVar(&o.climate, "climate", "", "climate preset (overrides --external-temperature)")
	f.StringVar(&o.season, "season", envelope.SeasonWinter.String(), "climate season: winter|summer")
	f.StringVar(&o.format, "format", "text", "output format: text|json|csv|pdf|xlsx")
	f.StringVarP(&o.out, "out", "o", "", "output file (default stdout)")
	f.StringVar(&o.id, "id", "", "calculation ID (default random)")
	return cmd
}

func (o calcOptions) resolve() (envelope.Room, envelope.Params, error) {
	p := o.params
	mode, err := envelope.ParseOffsetMode(o.verticalOffset)
	if err != nil {
		return envelope.Room{}, envelope.Params{}, err
	}
	p.VerticalOffset = mode

	if o.climate != "" {
		season, err := envelope.ParseSeason(o.season)
		if err != nil {
			return envelope.Room{}, envelope.Params{}, err
		}
		if err := p.ApplyClimate(o.climate, season); err != nil {
			return envelope.Room{}, envelope.Params{}, err
		}
	}
	if o.wallPreset != "" {
		if err := p.ApplyWallPreset(o.wallPreset); err != nil {
			return envelope.Room{}, envelope.Params{}, err
		}
	}
	if o.windowPreset != "" {
		if err := p.ApplyWindowPreset(o.windowPreset); err != nil {
			return envelope.Room{}, envelope.Params{}, err
		}
	}
	return envelope.NewRoom(envelope.Point{}, o.length, o.width, o.height), p, nil
}

func runCalc(cmd *cobra.Command, c *cli, o calcOptions) error {
	format, err := export.ParseFormat(o.format)
	if err != nil {
		return err
	}
	if (format == export.FormatPDF || format == export.FormatXLSX) && o.out == "" {
		return fmt.Errorf("format %s requires --out", format)
	}

	room, params, err := o.resolve()
	if err != nil {
		return err
	}
	res, err := envelope.Calculate(room, params)
	if err != nil {
		return err
	}

	id := o.id
	if id == "" {
		id = uuid.NewString()
	}
	c.logger.Debug("calculated",
		zap.String("id", id),
		zap.Float64("total_heat_loss", res.TotalHeatLoss),
		zap.String("outcome", res.Outcome.String()),
	)
	for _, w := range res.Warnings {
		c.logger.Warn("envelope advisory", zap.String("code", w.Code.String()), zap.String("message", w.Message))
	}

	w, closeOut, err := output(cmd.OutOrStdout(), o.out)
	if err != nil {
		return err
	}
	if err := export.Write(w, format, id, room, params, res); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}
