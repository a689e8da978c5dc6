package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <capture>",
	Short: "Decode a captured byte stream",
	Long:  "Decode a raw capture of the debug UART, such as one saved with cat /dev/ttyUSB0 > capture.bin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open capture: %w", err)
		}
		defer f.Close()

		out := cmd.OutOrStdout()
		m := newMonitor(out)
		if err := m.Run(context.Background(), f, false); err != nil {
			return err
		}
		summary(out, m)
		return nil
	},
}
