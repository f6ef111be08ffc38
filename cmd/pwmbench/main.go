// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command pwmbench encodes serial transactions, measures synthetic waveforms
// and runs the PWM peripheral scenarios on the simulated bench.
//
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// set by ldflags
var buildVersion = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "pwmbench",
		Short: "PWM peripheral test bench",
		Long: `pwmbench drives a simulated 16 channel PWM peripheral over a bit-banged
serial interface and measures its outputs.`,
		Version:       buildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(encodeCmd())
	rootCmd.AddCommand(measureCmd())
	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "pwmbench", buildVersion)
		},
	}
}
