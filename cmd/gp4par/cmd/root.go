package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gp4par",
	Short: "GreenPAK4 place-and-route",
	Long: `Fits a technology-mapped netlist onto a GreenPAK4 device: assigns every
netlist primitive to a physical site, allocates cross connections for every
matrix-crossing net, checks device-specific design rules, and reports the
resulting utilization and placement.

Examples:
  gp4par fit design.json                          # Fit with defaults
  gp4par fit design.json --constraints pins.par   # Fit with pin constraints`,
	Version: "0.2.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
