// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/db47h/pwmbench/spi"
	"github.com/spf13/cobra"
)

var (
	encAddr    int
	encData    int
	encRead    bool
	encPeriod  time.Duration
	encHalfBit time.Duration
	encSettle  int
	encAll     bool
)

func encodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the pin sequence of a transaction",
		Long: `Render one transaction into pin vectors and print the ticks where the pins
change. Pin vectors read ncs, sd (serial data) and sclk.

Examples:
  # write 0x80 to the duty register
  pwmbench encode --addr 4 --data 0x80

  # every tick, with a 1 MHz serial clock
  pwmbench encode --addr 4 --data 0x80 --half-bit 500ns --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEncode(cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&encAddr, "addr", "a", 0, "Register address (0-127)")
	cmd.Flags().IntVarP(&encData, "data", "d", 0, "Data byte (0-255)")
	cmd.Flags().BoolVarP(&encRead, "read", "r", false, "Encode a read instead of a write")
	cmd.Flags().DurationVar(&encPeriod, "period", spi.DefaultTiming.Period, "Reference clock period")
	cmd.Flags().DurationVar(&encHalfBit, "half-bit", 5*time.Microsecond, "Serial clock half period")
	cmd.Flags().IntVar(&encSettle, "settle", spi.DefaultTiming.Settle, "Settle time in ticks")
	cmd.Flags().BoolVar(&encAll, "all", false, "Print every tick instead of transitions only")

	return cmd
}

func runEncode(w io.Writer) error {
	dir := spi.Write
	if encRead {
		dir = spi.Read
	}
	tx, err := spi.NewTransaction(dir, encAddr, encData)
	if err != nil {
		return err
	}
	tm, err := spi.TimingFor(encPeriod, encHalfBit, encSettle)
	if err != nil {
		return err
	}
	seq, err := spi.Drive(tx, tm)
	if err != nil {
		return err
	}
	cmd, data := tx.Bytes()
	fmt.Fprintf(w, "%v: frame 0x%02x%02x, %d ticks, %v, sclk %.0f Hz\n", tx, cmd, data, len(seq), tm.Duration(), tm.SerialClock())
	if encAll {
		for i, v := range seq {
			fmt.Fprintf(w, "%6d %v\n", i, v)
		}
		return nil
	}
	for _, tr := range spi.Transitions(seq) {
		fmt.Fprintf(w, "%6d %v\n", tr.Tick, tr.Pins)
	}
	return nil
}
