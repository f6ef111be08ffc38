// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package spi

import "github.com/pkg/errors"

// ErrBusy is returned by Driver.Start while a transaction is in progress.
var ErrBusy = errors.New("transaction in progress")

type phase int

const (
	phIdle phase = iota
	phSetup
	phLow
	phHigh
	phSettle
)

// A Driver shifts transactions out as a sequence of pin vectors, one per
// reference clock tick.
//
// The driver does not own the clock: the simulation calls Step exactly once per
// tick and drives the returned vector onto the device inputs for that tick.
// Transactions are never pipelined and cannot be cancelled; once started, a
// transaction runs to the end of its settle time.
//
type Driver struct {
	t     Timing
	tx    Transaction
	frame uint16
	ph    phase
	bit   int // current bit, 0 is the MSB
	n     int // ticks left in the current phase
}

// NewDriver returns an idle driver using timing t.
//
func NewDriver(t Timing) (*Driver, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Driver{t: t}, nil
}

// Timing returns the driver's timing.
//
func (d *Driver) Timing() Timing { return d.t }

// Start begins shifting out tx on the next call to Step. An invalid tx is
// rejected before any pin activity. Start returns ErrBusy if the previous
// transaction has not completed.
//
func (d *Driver) Start(tx Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if d.ph != phIdle {
		return errors.Wrapf(ErrBusy, "cannot start %v", tx)
	}
	d.tx = tx
	d.frame = tx.Frame()
	d.ph = phSetup
	d.n = d.t.Setup
	d.bit = 0
	return nil
}

// Busy returns true from Start until the last settle tick has been stepped.
//
func (d *Driver) Busy() bool { return d.ph != phIdle }

// Current returns the transaction in progress.
//
func (d *Driver) Current() (Transaction, bool) {
	return d.tx, d.ph != phIdle
}

func (d *Driver) data() bool {
	return d.frame>>uint(FrameBits-1-d.bit)&1 != 0
}

// Step returns the pin vector for the current tick and advances the driver by
// one tick. An idle driver returns Idle.
//
func (d *Driver) Step() PinVector {
	var v PinVector
	switch d.ph {
	case phIdle:
		return Idle
	case phSetup:
		v = PinVector{Select: true}
	case phLow:
		v = PinVector{Select: true, Data: d.data()}
	case phHigh:
		v = PinVector{Select: true, Data: d.data(), Clock: true}
	case phSettle:
		v = Idle
	}
	d.n--
	if d.n == 0 {
		d.advance()
	}
	return v
}

func (d *Driver) advance() {
	switch d.ph {
	case phSetup:
		d.ph, d.n = phLow, d.t.HalfBit
	case phLow:
		d.ph, d.n = phHigh, d.t.HalfBit
	case phHigh:
		d.bit++
		if d.bit < FrameBits {
			d.ph, d.n = phLow, d.t.HalfBit
		} else {
			d.ph, d.n = phSettle, d.t.Settle
		}
	case phSettle:
		d.ph = phIdle
	}
}

// Drive returns the complete pin vector sequence for tx, one vector per tick,
// including the setup and settle framing.
//
func Drive(tx Transaction, t Timing) ([]PinVector, error) {
	d, err := NewDriver(t)
	if err != nil {
		return nil, err
	}
	if err = d.Start(tx); err != nil {
		return nil, err
	}
	seq := make([]PinVector, 0, t.Ticks())
	for d.Busy() {
		seq = append(seq, d.Step())
	}
	return seq, nil
}

// A Transition is a pin vector change in a sequence.
//
type Transition struct {
	Tick int
	Pins PinVector
}

// Transitions compacts seq to the ticks where the pin vector changes. The first
// vector is always reported.
//
func Transitions(seq []PinVector) []Transition {
	var ts []Transition
	for i, v := range seq {
		if i == 0 || v != seq[i-1] {
			ts = append(ts, Transition{i, v})
		}
	}
	return ts
}
