// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/db47h/pwmbench/signal"
	"github.com/db47h/pwmbench/wave"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	msrMode   string
	msrPeriod time.Duration
	msrHigh   time.Duration
	msrStep   time.Duration
	msrPhase  time.Duration
	msrEdges  int
	msrBudget int
	msrRepeat int
)

func measureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Measure a synthetic square wave",
		Long: `Sample a square wave every --step and measure its duty cycle and frequency.

Examples:
  # 3 kHz, 50% duty, lenient averaging
  pwmbench measure --period 333.3us --high 166.65us

  # strict single cycle timing
  pwmbench measure --mode strict --period 1ms --high 250us

  # mean of 10 consecutive strict measurements
  pwmbench measure --mode strict --repeat 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMeasure(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&msrMode, "mode", "m", "averaging", "Measurement mode: averaging (lenient) or sync (strict)")
	cmd.Flags().DurationVar(&msrPeriod, "period", 1*time.Millisecond, "Signal period")
	cmd.Flags().DurationVar(&msrHigh, "high", 500*time.Microsecond, "Signal high time")
	cmd.Flags().DurationVar(&msrStep, "step", 100*time.Nanosecond, "Sampling interval")
	cmd.Flags().DurationVar(&msrPhase, "phase", 0, "Signal phase")
	cmd.Flags().IntVar(&msrEdges, "edges", wave.DefaultConfig.Edges, "Rising edges collected in averaging mode")
	cmd.Flags().IntVar(&msrBudget, "budget", wave.DefaultConfig.Budget, "Tick budget")
	cmd.Flags().IntVarP(&msrRepeat, "repeat", "n", 1, "Consecutive measurements to average")

	return cmd
}

func runMeasure(w io.Writer) error {
	mode, err := wave.ParseMode(msrMode)
	if err != nil {
		return err
	}
	src, err := signal.Square(int64(msrPeriod), int64(msrHigh), int64(msrStep), int64(msrPhase))
	if err != nil {
		return err
	}
	cfg := wave.Config{Mode: mode, Edges: msrEdges, Budget: msrBudget}
	if err = cfg.Validate(); err != nil {
		return err
	}
	if msrRepeat < 1 {
		return errors.Errorf("invalid repeat count %d", msrRepeat)
	}
	rs := make([]wave.Result, 0, msrRepeat)
	for i := 0; i < msrRepeat; i++ {
		r, err := wave.Measure(src, cfg)
		if err != nil {
			fmt.Fprintln(w, r)
			return err
		}
		rs = append(rs, r)
	}
	fmt.Fprintln(w, wave.Average(rs...))
	return nil
}
