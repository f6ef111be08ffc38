// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/db47h/pwmbench/hwtest"
	"github.com/db47h/pwmbench/wave"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	runPWMPeriod int
	runWorkers   int
	runVerbose   bool
	runMode      string
	runDuty      int
	runTolerance float64
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the peripheral scenarios on the simulated bench",
		Long: `Bring the simulated peripheral out of reset, then run:

  static   write the enable registers and check the static outputs
  invalid  send out of range writes and a read, outputs must not change
  pwm      enable channel 0 in PWM mode at --duty and measure it
  constant duty 0x00 and 0xff must measure as constant levels`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := hwtest.DefaultConfig()
			cfg.PWMPeriod = runPWMPeriod
			cfg.Workers = runWorkers
			if runVerbose {
				cfg.Logger = log.New(os.Stderr, "bench: ", 0)
			}
			mode, err := wave.ParseMode(runMode)
			if err != nil {
				return err
			}
			return runSuite(cmd.OutOrStdout(), cfg, mode)
		},
	}

	cmd.Flags().IntVar(&runPWMPeriod, "pwm-period", hwtest.DefaultConfig().PWMPeriod, "PWM period of the device in clock cycles")
	cmd.Flags().IntVarP(&runWorkers, "workers", "w", -1, "Simulation goroutines (0 = GOMAXPROCS, <0 = inline)")
	cmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Log transactions and measurements")
	cmd.Flags().StringVarP(&runMode, "mode", "m", "averaging", "Measurement mode: averaging (lenient) or sync (strict)")
	cmd.Flags().IntVar(&runDuty, "duty", 0x80, "Duty register value for the pwm scenario")
	cmd.Flags().Float64Var(&runTolerance, "tolerance", 0.01, "Relative frequency tolerance")

	return cmd
}

type scenario struct {
	name string
	run  func(b *hwtest.Bench, mode wave.Mode) error
}

var scenarios = []scenario{
	{"static", scenarioStatic},
	{"invalid", scenarioInvalid},
	{"pwm", scenarioPWM},
	{"constant", scenarioConstant},
}

// runSuite runs every scenario on a fresh bench and reports one line per
// scenario to w. It returns an error if any scenario fails.
func runSuite(w io.Writer, cfg hwtest.Config, mode wave.Mode) error {
	failed := 0
	for _, sc := range scenarios {
		b, err := hwtest.New(cfg)
		if err != nil {
			return err
		}
		log.Printf("%s: start", sc.name)
		err = sc.run(b, mode)
		t := b.Now()
		b.Close()
		if err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %-8s %v\n", sc.name, err)
			continue
		}
		fmt.Fprintf(w, "ok   %-8s %v simulated\n", sc.name, t.Round(time.Microsecond))
	}
	if failed > 0 {
		return errors.Errorf("%d of %d scenarios failed", failed, len(scenarios))
	}
	return nil
}

func expectOutputs(b *hwtest.Bench, uo, uio uint8) error {
	if gotUO, gotUIO := b.Outputs(); gotUO != uo || gotUIO != uio {
		return errors.Errorf("expected outputs 0x%02x 0x%02x, got 0x%02x 0x%02x", uo, uio, gotUO, gotUIO)
	}
	return nil
}

func scenarioStatic(b *hwtest.Bench, _ wave.Mode) error {
	if err := b.Write(hwtest.RegEnable0, 0xf0); err != nil {
		return err
	}
	if err := expectOutputs(b, 0xf0, 0x00); err != nil {
		return err
	}
	if err := b.Write(hwtest.RegEnable1, 0xcc); err != nil {
		return err
	}
	return expectOutputs(b, 0xf0, 0xcc)
}

func scenarioInvalid(b *hwtest.Bench, _ wave.Mode) error {
	if err := b.Write(hwtest.RegEnable0, 0xf0); err != nil {
		return err
	}
	for _, addr := range []int{0x30, 0x41} {
		if err := b.Write(addr, 0xff); err != nil {
			return err
		}
	}
	if err := b.Read(hwtest.RegEnable0, 0x00); err != nil {
		return err
	}
	return expectOutputs(b, 0xf0, 0x00)
}

func enablePWM(b *hwtest.Bench, duty int) error {
	for _, w := range [][2]int{{hwtest.RegEnable0, 0x01}, {hwtest.RegPWM0, 0x01}, {hwtest.RegDuty, duty}} {
		if err := b.Write(w[0], w[1]); err != nil {
			return err
		}
	}
	return nil
}

func scenarioPWM(b *hwtest.Bench, mode wave.Mode) error {
	if err := enablePWM(b, runDuty); err != nil {
		return err
	}
	r, err := b.Measure(hwtest.Bank0, 0, wave.Config{Mode: mode})
	if err != nil {
		return err
	}
	if r.Status != wave.Measured {
		return errors.Errorf("channel 0: %v", r)
	}
	cfg := b.Config()
	want := 1e9 / float64(time.Duration(cfg.PWMPeriod)*cfg.Timing.Period)
	if r.Frequency < want*(1-runTolerance) || r.Frequency > want*(1+runTolerance) {
		return errors.Errorf("frequency %.2f Hz, expected %.2f Hz ±%.1f%%", r.Frequency, want, runTolerance*100)
	}
	duty := float64(runDuty) / 0xff
	if r.Duty < duty-0.01 || r.Duty > duty+0.01 {
		return errors.Errorf("duty %.4f, expected %.4f", r.Duty, duty)
	}
	log.Printf("pwm: %v", r)
	return nil
}

func scenarioConstant(b *hwtest.Bench, _ wave.Mode) error {
	for _, td := range []struct {
		duty   int
		status wave.Status
	}{
		{0x00, wave.ConstantLow},
		{0xff, wave.ConstantHigh},
	} {
		if err := enablePWM(b, td.duty); err != nil {
			return err
		}
		// constant levels only resolve in lenient mode
		r, err := b.Measure(hwtest.Bank0, 0, wave.Config{Mode: wave.Averaging, Budget: 4 * b.Config().PWMPeriod})
		if err != nil {
			return err
		}
		if r.Status != td.status {
			return errors.Errorf("duty 0x%02x: expected %v, got %v", td.duty, td.status, r)
		}
	}
	return nil
}
