// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides a simulated bench for the PWM peripheral: a serial
// driver and a register level device model wired into a circuit, with helpers
// to issue transactions and measure the device outputs.
//
package hwtest

import (
	"log"
	"time"

	hw "github.com/db47h/pwmbench"
	"github.com/db47h/pwmbench/hwlib"
	"github.com/db47h/pwmbench/signal"
	"github.com/db47h/pwmbench/spi"
	"github.com/db47h/pwmbench/wave"
	"github.com/pkg/errors"
)

// Bank numbers.
const (
	Bank0 = 0 // channels 0-7 on uo_out
	Bank1 = 1 // channels 8-15 on uio_out
)

// Config configures a Bench.
//
type Config struct {
	Timing spi.Timing
	Pinout spi.Pinout
	// PWM period of the device in clock cycles.
	PWMPeriod int
	// Circuit parameters, see pwmbench.NewCircuit.
	StepsPerCycle uint
	Workers       int
	// Logger receives one line per transaction and measurement. Nil disables
	// logging.
	Logger *log.Logger
}

// DefaultConfig returns the reference configuration: 100 ns clock, reference
// serial timing and a 3333 cycle PWM period (≈3 kHz).
//
func DefaultConfig() Config {
	return Config{
		Timing:        spi.DefaultTiming,
		Pinout:        spi.DefaultPinout,
		PWMPeriod:     3333,
		StepsPerCycle: 2,
		Workers:       -1,
	}
}

// A Bench drives a Device through its serial inputs and samples its outputs
// once per clock cycle.
//
//	driver -> ui_pad -> DFF -> ui_sync -> DFF -> ui_in -> device -> uo_out, uio_out
//
type Bench struct {
	cfg   Config
	c     *hw.Circuit
	drv   *spi.Driver
	dev   *Device
	rstN  bool
	cycle uint // cycle of the last output sample
	uo    int64
	uio   int64
}

// New builds a bench and brings the device out of reset.
//
func New(cfg Config) (*Bench, error) {
	if err := cfg.Pinout.Validate(); err != nil {
		return nil, err
	}
	if cfg.Pinout.Clock > 7 || cfg.Pinout.Data > 7 || cfg.Pinout.Select > 7 {
		return nil, errors.Errorf("pinout %+v does not fit the 8 bit ui_in bus", cfg.Pinout)
	}
	if cfg.PWMPeriod < 1 {
		return nil, errors.Errorf("invalid PWM period %d", cfg.PWMPeriod)
	}
	drv, err := spi.NewDriver(cfg.Timing)
	if err != nil {
		return nil, errors.Wrap(err, "bench driver")
	}
	b := &Bench{cfg: cfg, drv: drv, dev: NewDevice(cfg.Pinout, cfg.PWMPeriod)}
	b.c, err = hw.NewCircuit(cfg.Workers, cfg.StepsPerCycle,
		hwlib.SPIMaster(drv, cfg.Pinout, 8)("out=ui_pad"),
		hwlib.DFFN(8)("in=ui_pad, out=ui_sync"),
		hwlib.DFFN(8)("in=ui_sync, out=ui_in"),
		hwlib.Input(func() bool { return b.rstN })("out=rst_n"),
		b.dev.Part()("ui_in=ui_in, rst_n=rst_n, uo_out=uo_out, uio_out=uio_out"),
		hwlib.Sampler(8, func(cycle uint, v int64) { b.cycle, b.uo = cycle, v })("in=uo_out"),
		hwlib.Sampler(8, func(_ uint, v int64) { b.uio = v })("in=uio_out"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "bench circuit")
	}
	b.logf("circuit: %d components, %d steps per cycle", b.c.Size(), b.c.SPC())
	b.Reset()
	return b, nil
}

func (b *Bench) logf(format string, args ...interface{}) {
	if b.cfg.Logger != nil {
		b.cfg.Logger.Printf(format, args...)
	}
}

// Close releases the circuit resources.
//
func (b *Bench) Close() {
	b.c.Dispose()
}

// Reset holds the device in reset for 5 cycles, then runs 5 more cycles with
// the bus idle.
//
func (b *Bench) Reset() {
	b.logf("reset")
	b.rstN = false
	b.c.Run(5)
	b.rstN = true
	b.c.Run(5)
}

// Device returns the simulated device.
//
func (b *Bench) Device() *Device { return b.dev }

// Config returns the bench configuration.
//
func (b *Bench) Config() Config { return b.cfg }

// Cycles runs the simulation for n clock cycles.
//
func (b *Bench) Cycles(n int) { b.c.Run(n) }

// Now returns the simulated time.
//
func (b *Bench) Now() time.Duration {
	return time.Duration(b.c.Cycles()) * b.cfg.Timing.Period
}

// Transfer runs tx to completion, settle time included. Invalid transactions
// are rejected before any pin activity.
//
func (b *Bench) Transfer(tx spi.Transaction) error {
	if err := b.drv.Start(tx); err != nil {
		return err
	}
	b.logf("%v", tx)
	for b.drv.Busy() {
		b.c.TickTock()
	}
	return nil
}

// Write writes data to register addr.
//
func (b *Bench) Write(addr, data int) error {
	tx, err := spi.WriteTx(addr, data)
	if err != nil {
		return err
	}
	return b.Transfer(tx)
}

// Read sends a read transaction. The device has no serial output, so nothing
// is read back.
//
func (b *Bench) Read(addr, data int) error {
	tx, err := spi.ReadTx(addr, data)
	if err != nil {
		return err
	}
	return b.Transfer(tx)
}

// Outputs returns the last sampled value of the output buses.
//
func (b *Bench) Outputs() (uo, uio uint8) {
	return uint8(b.uo), uint8(b.uio)
}

// Source returns an infinite sample stream of one output channel. Each call
// to Next runs the simulation for one clock cycle.
//
func (b *Bench) Source(bank, ch int) (signal.Source, error) {
	if bank != Bank0 && bank != Bank1 {
		return nil, errors.Errorf("invalid bank %d", bank)
	}
	if ch < 0 || ch > 7 {
		return nil, errors.Errorf("invalid channel %d", ch)
	}
	period := int64(b.cfg.Timing.Period / time.Nanosecond)
	return signal.BusBit(func() (int64, uint64, bool) {
		b.c.TickTock()
		v := b.uo
		if bank == Bank1 {
			v = b.uio
		}
		return int64(b.cycle) * period, uint64(v), true
	}, uint(ch)), nil
}

// Measure measures one output channel.
//
func (b *Bench) Measure(bank, ch int, cfg wave.Config) (wave.Result, error) {
	src, err := b.Source(bank, ch)
	if err != nil {
		return wave.Result{}, err
	}
	r, err := wave.Measure(src, cfg)
	b.logf("measure bank %d channel %d: %v", bank, ch, r)
	return r, err
}
