// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package spi

// A Receiver decodes transactions from pin vectors the way the device does:
// serial data is shifted in MSB first on each serial clock rising edge while
// chip select is active. A frame is delivered when chip select is released
// after exactly FrameBits bits; shorter or longer frames are dropped.
//
// The zero value is ready to use.
//
type Receiver struct {
	prev   PinVector
	active bool
	n      int
	shift  uint16
}

// Step feeds the pin vector sampled at the current tick.
//
func (r *Receiver) Step(v PinVector) (Transaction, bool) {
	defer func() { r.prev = v }()
	if !v.Select {
		if !r.active {
			return Transaction{}, false
		}
		r.active = false
		if r.n != FrameBits {
			return Transaction{}, false
		}
		return FromFrame(r.shift), true
	}
	if !r.active {
		r.active = true
		r.n = 0
		r.shift = 0
	}
	if v.Clock && !r.prev.Clock {
		if r.n <= FrameBits {
			r.n++
		}
		r.shift <<= 1
		if v.Data {
			r.shift |= 1
		}
	}
	return Transaction{}, false
}

// Active returns true while chip select is asserted.
//
func (r *Receiver) Active() bool { return r.active }

// Bits returns the number of bits shifted in during the current frame.
//
func (r *Receiver) Bits() int { return r.n }
