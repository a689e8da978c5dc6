package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"irqblink/host/serial"
)

var (
	watchOpts = struct {
		device  string
		baud    int
		timeout int
	}{}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Decode frames from a serial port",
		Long:  "Open the debug UART and print every diagnostic message until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := serial.DefaultConfig(watchOpts.device)
			cfg.Baud = watchOpts.baud
			cfg.ReadTimeout = watchOpts.timeout

			port, err := serial.Open(cfg)
			if err != nil {
				return err
			}
			defer port.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %s at %d baud (Ctrl+C to stop)\n", cfg.Device, cfg.Baud)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			m := newMonitor(out)
			err = m.Run(ctx, port, true)
			summary(out, m)
			return err
		},
	}
)

func init() {
	watchCmd.Flags().StringVarP(&watchOpts.device, "device", "d", "/dev/ttyUSB0", "Serial device")
	watchCmd.Flags().IntVarP(&watchOpts.baud, "baud", "b", serial.DefaultBaud, "Baud rate")
	watchCmd.Flags().IntVar(&watchOpts.timeout, "timeout", 100, "Read timeout in milliseconds")
}
