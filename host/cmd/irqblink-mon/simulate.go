package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"irqblink/host/monitor"
)

var (
	simOpts = struct {
		duration uint32
		presses  []uint
	}{}

	simulateCmd = &cobra.Command{
		Use:   "simulate",
		Short: "Run the firmware on a simulated board",
		Long:  "Boot the blinker on a host simulation of the board, click the button at the given times and decode the resulting diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := monitor.SimOptions{Duration: simOpts.duration}
			for _, p := range simOpts.presses {
				opts.Presses = append(opts.Presses, uint32(p))
			}

			out := cmd.OutOrStdout()
			m := newMonitor(out)
			res, err := monitor.Simulate(m, opts)
			if err != nil {
				return err
			}

			summary(out, m)
			fmt.Fprintf(out, "final rate=%d toggles=%d interrupts=%d\n", res.Rate, res.Toggles, res.Delivered)
			if res.Halted {
				return fmt.Errorf("firmware halted: %v", res.Reason)
			}
			return nil
		},
	}
)

func init() {
	simulateCmd.Flags().Uint32Var(&simOpts.duration, "duration", 5000, "Simulated run time in milliseconds")
	simulateCmd.Flags().UintSliceVar(&simOpts.presses, "press", nil, "Button click times in milliseconds")
}
