package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Agrid-Dev/envelope/internal/export"
	"github.com/Agrid-Dev/envelope/internal/scenario"
)

func newBatchCmd(c *cli) *cobra.Command {
	var (
		format  string
		out     string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "batch [scenario-file]",
		Short: "Evaluate every room of a YAML/JSON scenario file",
		Long: `Evaluates each case of a scenario file. Cases inherit the "defaults" block.
The command fails when any case fails, after writing every result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			outcomes, err := scenario.Run(cmd.Context(), f, workers, c.logger)
			if err != nil {
				return err
			}

			w, closeOut, err := output(cmd.OutOrStdout(), out)
			if err != nil {
				return err
			}
			if err := writeBatch(w, format, outcomes); err != nil {
				_ = closeOut()
				return err
			}
			if err := closeOut(); err != nil {
				return err
			}

			failed := 0
			for _, o := range outcomes {
				if o.Err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d cases failed", failed, len(outcomes))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text|json|csv")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel calculations (default GOMAXPROCS)")
	return cmd
}

type batchEntry struct {
	Name     string           `json:"name"`
	Error    string           `json:"error,omitempty"`
	Document *export.Document `json:"document,omitempty"`
}

func writeBatch(w io.Writer, format string, outcomes []scenario.Outcome) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	switch f {
	case export.FormatText:
		for i, o := range outcomes {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "=== %s ===\n", o.Name)
			if o.Err != nil {
				fmt.Fprintf(w, "error: %v\n", o.Err)
				continue
			}
			if _, err := io.WriteString(w, o.Result.Report); err != nil {
				return err
			}
		}
		return nil
	case export.FormatJSON:
		entries := make([]batchEntry, 0, len(outcomes))
		for _, o := range outcomes {
			e := batchEntry{Name: o.Name}
			if o.Err != nil {
				e.Error = o.Err.Error()
			} else {
				doc := export.NewDocument(o.Name, o.Room, o.Params, o.Result)
				e.Document = &doc
			}
			entries = append(entries, e)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case export.FormatCSV:
		return scenario.WriteSummaryCSV(w, outcomes)
	default:
		return fmt.Errorf("%w: %s not supported for batch", export.ErrInvalidFormat, f)
	}
}
