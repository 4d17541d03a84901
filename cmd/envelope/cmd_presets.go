package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Agrid-Dev/envelope/internal/envelope"
)

type presetList struct {
	Walls    []envelope.Preset  `json:"walls"`
	Windows  []envelope.Preset  `json:"windows"`
	Climates []envelope.Climate `json:"climates"`
}

func newPresetsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List wall, window and climate presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := presetList{
				Walls:    envelope.WallPresets(),
				Windows:  envelope.WindowPresets(),
				Climates: envelope.ClimatePresets(),
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(l)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WALL\tU (W/m²K)")
			for _, p := range l.Walls {
				fmt.Fprintf(tw, "%s\t%.2f\n", p.Name, p.UValue)
			}
			fmt.Fprintln(tw, "\nWINDOW\tU (W/m²K)")
			for _, p := range l.Windows {
				fmt.Fprintf(tw, "%s\t%.2f\n", p.Name, p.UValue)
			}
			fmt.Fprintln(tw, "\nCLIMATE\tWINTER (°C)\tSUMMER (°C)")
			for _, c := range l.Climates {
				fmt.Fprintf(tw, "%s\t%.1f\t%.1f\n", c.Name, c.Winter, c.Summer)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
