// FILE: main.go
// Program entrypoint for the backtest-core CLI.
//
// Subcommands:
//   run    Run a single deterministic backtest from a config document
//   sweep  Run a parameter sweep (optionally walk-forward) over a config
//
// Example:
//   backtest run --config configs/crossover.yaml
//   backtest sweep --config configs/crossover_sweep.yaml
package main

import (
	"fmt"
	"os"

	"github.com/chidi150c/backtest-core/internal/xlog"
	"github.com/spf13/cobra"
)

func main() {
	var logLevel string

	root := &cobra.Command{
		Use:   "backtest",
		Short: "Deterministic event-driven backtest core",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			xlog.SetLevel(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newRunCmd())
	root.AddCommand(newSweepCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
