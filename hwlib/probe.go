// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	hw "github.com/db47h/pwmbench"
	"github.com/db47h/pwmbench/signal"
	"github.com/db47h/pwmbench/wave"
)

// Probe returns a part that feeds bit n of a bus into meter m once per clock
// cycle, on the raising edge of the clock. Samples are timestamped with the
// cycle number times period (ns). done is called once with the result when the
// meter completes; the probe is inert afterwards.
//
//	Inputs: in[bits]
//	Function: at each tick, m.Step(in[n])
//
func Probe(bits int, n uint, period int64, m wave.Meter, done func(wave.Result)) hw.NewPartFn {
	return (&hw.PartSpec{
		Name:    "PROBE" + strconv.Itoa(bits),
		Inputs:  bus(bits, pIn),
		Outputs: nil,
		Mount: func(s *hw.Socket) []hw.Component {
			pins := s.Bus(pIn, bits)
			var fired bool
			return []hw.Component{func(c *hw.Circuit) {
				if fired || !c.AtTick() {
					return
				}
				smp := signal.Sample{
					Time:  int64(c.Cycles()) * period,
					Level: signal.Bit(uint64(Int64(c, pins)), n),
				}
				if m.Step(smp) {
					fired = true
					done(m.Result())
				}
			}}
		}}).NewPart
}
