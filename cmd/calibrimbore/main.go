// Command calibrimbore builds composite-filter calibrations and runs
// them over catalog sources.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagVerbose bool
	logger      *zap.Logger
)

func main() {
	root := &cobra.Command{
		Use:           "calibrimbore",
		Short:         "Composite-filter photometric calibration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if flagVerbose {
				logger, err = zap.NewDevelopment()
			} else {
				logger, err = zap.NewProduction()
			}
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newComposeCommand())
	root.AddCommand(newEstimateCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
