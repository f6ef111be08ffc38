// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	hw "github.com/db47h/pwmbench"
)

// DFF returns a clocked data flip flop.
//
//	Inputs: in
//	Outputs: out
//	Function: out(t) = in(t-1) // where t is the current clock cycle.
//
func DFF(w string) hw.Part {
	return (&hw.PartSpec{
		Name:    "DFF",
		Inputs:  []string{pIn},
		Outputs: []string{pOut},
		Mount: func(s *hw.Socket) []hw.Component {
			in, out := s.Pin(pIn), s.Pin(pOut)
			var curOut bool
			return []hw.Component{
				func(c *hw.Circuit) {
					// raising edge?
					if c.AtTick() {
						curOut = c.Get(in)
					}
					c.Set(out, curOut)
				}}
		}}).NewPart(w)
}

// DFFN returns a N-bit register of flip flops. Two of them in series make the
// input synchronizer of a device sampling an asynchronous bus.
//
//	Inputs: in[bits]
//	Outputs: out[bits]
//	Function: out(t) = in(t-1)
//
func DFFN(bits int) hw.NewPartFn {
	return (&hw.PartSpec{
		Name:    "DFF" + strconv.Itoa(bits),
		Inputs:  bus(bits, pIn),
		Outputs: bus(bits, pOut),
		Mount: func(s *hw.Socket) []hw.Component {
			in, out := s.Bus(pIn, bits), s.Bus(pOut, bits)
			var cur int64
			return []hw.Component{
				func(c *hw.Circuit) {
					if c.AtTick() {
						cur = Int64(c, in)
					}
					SetInt64(c, out, cur)
				}}
		}}).NewPart
}
