// irqblink-mon decodes the diagnostic stream of the blinker firmware.
//
// Usage:
//
//	irqblink-mon watch --device /dev/ttyUSB0
//	irqblink-mon decode capture.bin
//	irqblink-mon simulate --duration 5000 --press 1500,3200
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"irqblink/host/monitor"
)

var (
	statsFlag bool
	quietFlag bool

	rootCmd = &cobra.Command{
		Use:          "irqblink-mon",
		Short:        "Decode blinker diagnostics",
		Long:         "Decode the framed diagnostic stream of the interrupt driven blinker and check its toggle timing",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&statsFlag, "stats", true, "Print toggle interval statistics at the end")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Do not print individual messages")

	rootCmd.AddCommand(watchCmd, decodeCmd, simulateCmd)
}

// newMonitor creates a monitor that decodes with the built-in catalogue
// until the device sends its own
func newMonitor(out io.Writer) *monitor.Monitor {
	fallback, err := monitor.BuiltinCatalogue()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: built-in catalogue unusable: %v\n", err)
	}
	m := monitor.New(out, fallback)
	m.Quiet = quietFlag
	return m
}

func summary(out io.Writer, m *monitor.Monitor) {
	fmt.Fprintf(out, "\n%d messages, %d lost, %d corrupt, %d faults\n",
		m.Messages(), m.Lost(), m.Corrupt(), m.Faults())
	if statsFlag {
		m.Stats().Report(out)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
