// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	hw "github.com/db47h/pwmbench"
	"github.com/db47h/pwmbench/spi"
)

// SPIMaster returns a part that drives the pin vectors of d onto a bus using
// pinout p. The driver is stepped once per clock cycle, on the raising edge of
// the clock, and the vector is held for the whole cycle. Bits not used by the
// pinout are driven low.
//
//	Outputs: out[bits]
//	Function: at each tick, out = p.Word(d.Step())
//
func SPIMaster(d *spi.Driver, p spi.Pinout, bits int) hw.NewPartFn {
	return (&hw.PartSpec{
		Name:    "SPIMASTER" + strconv.Itoa(bits),
		Inputs:  nil,
		Outputs: bus(bits, pOut),
		Mount: func(s *hw.Socket) []hw.Component {
			out := s.Bus(pOut, bits)
			cur := int64(p.Word(spi.Idle))
			return []hw.Component{
				func(c *hw.Circuit) {
					if c.AtTick() {
						cur = int64(p.Word(d.Step()))
					}
					SetInt64(c, out, cur)
				}}
		}}).NewPart
}
