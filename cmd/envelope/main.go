package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/envelope/cmd/app"
)

// cli carries state shared by the subcommands.
type cli struct {
	verbose    bool
	configPath string

	cfg    app.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "envelope",
		Short: "Room envelope heat-loss estimator",
		Long: `envelope estimates steady-state heat loss through the walls, windows, roof
and floor of a rectangular room and sizes the extra wall insulation needed to
reach a target heat loss.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			logger, err := app.NewLogger(cfg.Log, c.verbose)
			if err != nil {
				return err
			}
			c.cfg, c.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "config.yaml", "path to config file (.yaml/.yml/.json)")

	root.AddCommand(
		newCalcCmd(c),
		newBatchCmd(c),
		newPresetsCmd(),
		newServeCmd(c),
	)
	return root
}

// output opens path for writing, or returns w when path is empty.
func output(w io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return w, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
