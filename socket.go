// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pwmbench

// Constant input pin names.
//
const (
	True  = "true"
	False = "false"
	// Clk is the reference clock signal. It is high during the first half of
	// each clock cycle.
	Clk = "clk"
)

const (
	cstFalse = iota
	cstTrue
	cstClk
	cstCount
)

// A Socket maps a part's pin names to pin numbers in a circuit.
//
type Socket struct {
	m map[string]int
	c *Circuit
}

func newSocket(c *Circuit) *Socket {
	return &Socket{
		m: make(map[string]int),
		c: c,
	}
}

// Pin returns the pin number allocated to the given pin name.
// This function panics if the pin does not exist.
//
func (s *Socket) Pin(name string) int {
	n, ok := s.m[name]
	if !ok {
		panic("pin " + name + " does not exist")
	}
	return n
}

// Bus returns the pin numbers allocated to the given bus name. Pin 0 is the
// least significant bit.
// This function panics if any of the bus pins does not exist.
//
func (s *Socket) Bus(name string, size int) []int {
	out := make([]int, size)
	for i := range out {
		out[i] = s.Pin(BusPinName(name, i))
	}
	return out
}
