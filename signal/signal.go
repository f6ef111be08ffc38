// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package signal provides the sampling primitives shared by the serial driver
// and the waveform analyzer: time stamped levels, edge detection and sample
// streams.
//
// Timestamps are expressed in nanoseconds of simulated time.
//
package signal

import "strconv"

// A Sample is the level of one observed bit at a point in simulated time.
//
type Sample struct {
	Time  int64 // ns
	Level bool
}

// A Source is a lazy, time ordered stream of samples. Next returns false once
// the stream is exhausted. Streams may be infinite; consumers bound them with a
// tick budget.
//
type Source interface {
	Next() (Sample, bool)
}

// SourceFunc adapts a function to a Source.
//
type SourceFunc func() (Sample, bool)

// Next implements Source.
//
func (f SourceFunc) Next() (Sample, bool) { return f() }

// EdgeKind is the direction of a level transition.
//
type EdgeKind int

// Edge kinds.
const (
	Rising EdgeKind = iota + 1
	Falling
)

func (k EdgeKind) String() string {
	switch k {
	case Rising:
		return "rising"
	case Falling:
		return "falling"
	}
	return "EdgeKind(" + strconv.Itoa(int(k)) + ")"
}

// An Edge is a detected transition. Time is the timestamp of the first sample
// observed at the new level.
//
type Edge struct {
	Time int64
	Kind EdgeKind
}

// EdgeDetector finds edges by comparing consecutive samples. The zero value is
// ready to use: the first sample only primes the detector.
//
type EdgeDetector struct {
	prev   bool
	primed bool
}

// Step feeds s to the detector and reports an edge if s.Level differs from the
// level of the previous sample.
//
func (d *EdgeDetector) Step(s Sample) (Edge, bool) {
	if !d.primed {
		d.primed = true
		d.prev = s.Level
		return Edge{}, false
	}
	prev := d.prev
	d.prev = s.Level
	switch {
	case !prev && s.Level:
		return Edge{s.Time, Rising}, true
	case prev && !s.Level:
		return Edge{s.Time, Falling}, true
	}
	return Edge{}, false
}

// Level returns the level of the last sample.
//
func (d *EdgeDetector) Level() bool { return d.prev }

// Primed returns true once the detector has seen at least one sample.
//
func (d *EdgeDetector) Primed() bool { return d.primed }

// Bit returns bit n of word. Bit 0 is the least significant bit.
//
func Bit(word uint64, n uint) bool {
	return word&(1<<n) != 0
}
