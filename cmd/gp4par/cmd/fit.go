package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePAR/pkg/constraints"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/fitter"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/greenpak4"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/netlist"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/par"
)

var (
	fitDevice      string
	fitTop         string
	fitConstraints string
	fitOutputHash  bool
)

var fitCmd = &cobra.Command{
	Use:   "fit <netlist.json>",
	Short: "Place and route a synthesized netlist",
	Long: `Reads a Yosys JSON netlist, fits it onto the selected device, and prints
utilization and placement reports. Exits nonzero if the design does not fit
or fails the post-PAR design rule checks.`,
	Args: cobra.ExactArgs(1),
	RunE: runFit,
}

func init() {
	rootCmd.AddCommand(fitCmd)

	fitCmd.Flags().StringVar(&fitDevice, "device", "slg46620", "target part")
	fitCmd.Flags().StringVar(&fitTop, "top", "", "top-level module (required if the design has several)")
	fitCmd.Flags().StringVar(&fitConstraints, "constraints", "", "constraint file with loc statements")
	fitCmd.Flags().BoolVar(&fitOutputHash, "output-hash", false, "print only the config digest on the last line (for scripting)")
}

func runFit(cmd *cobra.Command, args []string) error {
	part, err := parsePart(fitDevice)
	if err != nil {
		return err
	}
	dev, err := greenpak4.NewDevice(part)
	if err != nil {
		return err
	}

	nl, err := netlist.LoadFile(args[0], fitTop)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Printf("Loaded module %q: %d cells, %d nets\n",
			nl.Top.Name(), len(nl.Top.Cells), len(nl.Top.NetsSorted()))
	}

	if fitConstraints != "" {
		parser, err := constraints.NewParser()
		if err != nil {
			return err
		}
		f, err := parser.ParseFile(fitConstraints)
		if err != nil {
			return err
		}
		if err := constraints.Apply(f, nl.Top); err != nil {
			return err
		}
	}

	if err := fitter.Run(nl.Top, dev, fitter.Options{}); err != nil {
		// Internal faults mean the engine itself is broken; terminate
		// abruptly rather than pretend the output is usable.
		if errors.Is(err, par.ErrInternal) {
			fmt.Fprintf(os.Stderr, "INTERNAL ERROR: %v\n", err)
			os.Exit(-1)
		}
		return err
	}
	if fitOutputHash {
		fmt.Printf("%016x\n", dev.ConfigDigest())
	}
	return nil
}

func parsePart(name string) (greenpak4.Part, error) {
	switch strings.ToLower(name) {
	case "slg46620":
		return greenpak4.PartSLG46620, nil
	default:
		return 0, fmt.Errorf("unknown device %q", name)
	}
}
