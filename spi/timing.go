// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package spi

import (
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidTiming is the cause of errors returned for unusable timings.
var ErrInvalidTiming = errors.New("invalid timing")

// Timing sets the framing of a transaction in reference clock ticks.
//
// A transaction lasts Setup + 2*FrameBits*HalfBit + Settle ticks:
//
//	Setup    chip select active, serial clock and data low
//	HalfBit  serial clock low with the data bit, then the same count with
//	         serial clock high, for each of the 16 bits
//	Settle   chip select inactive, serial clock and data low
//
type Timing struct {
	Period  time.Duration // reference clock period
	Setup   int
	HalfBit int
	Settle  int
}

// DefaultTiming is the reference timing: 100 ns clock, 5 µs half-bit period and
// 600 ticks of settle time.
var DefaultTiming = Timing{
	Period:  100 * time.Nanosecond,
	Setup:   1,
	HalfBit: 50,
	Settle:  600,
}

// TimingFor returns a timing for the given reference clock period, half-bit
// duration and settle ticks. The half-bit duration is rounded up to a whole
// number of ticks.
//
func TimingFor(period, halfBit time.Duration, settle int) (Timing, error) {
	if period <= 0 || halfBit <= 0 {
		return Timing{}, errors.Wrapf(ErrInvalidTiming, "period %v, half-bit %v", period, halfBit)
	}
	t := Timing{
		Period:  period,
		Setup:   1,
		HalfBit: int((halfBit + period - 1) / period),
		Settle:  settle,
	}
	return t, t.Validate()
}

// Validate checks that every phase lasts at least one tick.
//
func (t Timing) Validate() error {
	switch {
	case t.Period <= 0:
		return errors.Wrapf(ErrInvalidTiming, "non positive clock period %v", t.Period)
	case t.Setup < 1:
		return errors.Wrapf(ErrInvalidTiming, "setup %d < 1 tick", t.Setup)
	case t.HalfBit < 1:
		return errors.Wrapf(ErrInvalidTiming, "half-bit %d < 1 tick", t.HalfBit)
	case t.Settle < 1:
		return errors.Wrapf(ErrInvalidTiming, "settle %d < 1 tick", t.Settle)
	}
	return nil
}

// Ticks returns the length of one transaction in ticks.
//
func (t Timing) Ticks() int {
	return t.Setup + 2*FrameBits*t.HalfBit + t.Settle
}

// Duration returns the length of one transaction in simulated time.
//
func (t Timing) Duration() time.Duration {
	return time.Duration(t.Ticks()) * t.Period
}

// SerialClock returns the serial clock frequency in Hz.
//
func (t Timing) SerialClock() float64 {
	return float64(time.Second) / float64(2*time.Duration(t.HalfBit)*t.Period)
}
