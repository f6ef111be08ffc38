// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package spi

import (
	"fmt"

	"github.com/pkg/errors"
)

// A PinVector is the state of the bus lines for one reference clock tick.
//
// Select is true when chip select is asserted, i.e. when the (active low)
// line is driven low. The zero value is the idle bus state: chip select
// inactive, serial clock and serial data low.
//
type PinVector struct {
	Select bool
	Data   bool
	Clock  bool
}

// Idle is the bus state between transactions.
var Idle = PinVector{}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// String returns the line levels, e.g. "ncs=0 sd=1 sclk=0".
//
func (v PinVector) String() string {
	return fmt.Sprintf("ncs=%d sd=%d sclk=%d", b2i(!v.Select), b2i(v.Data), b2i(v.Clock))
}

// Pinout gives the bit positions of the bus lines in the device input word.
// All other bits of the word are driven low.
//
type Pinout struct {
	Clock  uint
	Data   uint
	Select uint
}

// DefaultPinout matches the reference device: ui_in = 00000{ncs}{sd}{sclk}.
var DefaultPinout = Pinout{Clock: 0, Data: 1, Select: 2}

// Validate checks that the pin positions are distinct and fit in a 64 bit
// word.
//
func (p Pinout) Validate() error {
	if p.Clock > 63 || p.Data > 63 || p.Select > 63 {
		return errors.Errorf("pinout %+v: bit position out of range", p)
	}
	if p.Clock == p.Data || p.Clock == p.Select || p.Data == p.Select {
		return errors.Errorf("pinout %+v: bit positions must be distinct", p)
	}
	return nil
}

// Word encodes v as an input word.
//
func (p Pinout) Word(v PinVector) uint64 {
	var w uint64
	if !v.Select {
		w |= 1 << p.Select
	}
	if v.Data {
		w |= 1 << p.Data
	}
	if v.Clock {
		w |= 1 << p.Clock
	}
	return w
}

// Decode extracts the bus lines from an input word.
//
func (p Pinout) Decode(w uint64) PinVector {
	return PinVector{
		Select: w&(1<<p.Select) == 0,
		Data:   w&(1<<p.Data) != 0,
		Clock:  w&(1<<p.Clock) != 0,
	}
}
