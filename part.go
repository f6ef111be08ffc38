// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pwmbench

import (
	"strings"

	"github.com/pkg/errors"
)

// A MountFn mounts a part into socket s. MountFn's should query
// the socket for assigned pin numbers and return closures around
// these pin numbers.
//
// For example, a Not gate can be defined like this:
//
//	not := &PartSpec{
//		Name: "Not",
//		Inputs: IO("in"),
//		Outputs: IO("out"),
//		Mount: func (s *Socket) []Component {
//			in, out := s.Pin("in"), s.Pin("out")
//			return []Component{
//				func (c *Circuit) { c.Set(out, !c.Get(in)) },
//			}
//		}}
//
type MountFn func(s *Socket) []Component

// A PartSpec wraps a part specification (its blueprint).
//
type PartSpec struct {
	// Part name.
	Name string
	// Input pin names. Must be distinct pin names.
	// Use the IO() function to expand an input description like
	// "a, b, bus[2]" to []string{"a", "b", "bus[0]", "bus[1]"}
	Inputs []string
	// Output pin names. Must be distinct pin names.
	Outputs []string
	// Mount function (see MountFn).
	Mount MountFn
}

// NewPart is a NewPartFn that wraps p with the given connections into a Part.
// It panics if the connection string cannot be parsed.
//
func (p *PartSpec) NewPart(connections string) Part {
	conns, err := ParseConnections(connections)
	if err != nil {
		panic(err)
	}
	return Part{p, conns}
}

// A NewPartFn is a function that takes a connection configuration and returns a
// new Part. See ParseConnections for the syntax of the connection configuration
// string.
//
type NewPartFn func(c string) Part

// A Part wraps a part specification together with its connections within a
// circuit.
//
type Part struct {
	*PartSpec
	Conns []Connection
}

// Parts is a convenience wrapper for []Part.
//
type Parts []Part

// A Connection connects a part pin (PP) to a circuit wire (CP).
//
type Connection struct {
	PP string
	CP string
}

// ParseConnections parses a connection configuration like "partPinX=wireY, ..."
// into a []Connection.
//
// Both sides may use bus ranges: "in[0..3]=ui_in[4..7]". A bus pin name without
// a range designates the whole bus: "out=ui_in" connects out[0] to ui_in[0],
// out[1] to ui_in[1], and so on. A whole bus can be tied to a constant:
// "in=false".
//
func ParseConnections(c string) ([]Connection, error) {
	var conns []Connection
	for _, f := range strings.Split(c, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		i := strings.IndexRune(f, '=')
		if i < 0 {
			return nil, errors.Errorf("in %q: missing '=' in connection %q", c, f)
		}
		k, v := strings.TrimSpace(f[:i]), strings.TrimSpace(f[i+1:])
		if k == "" || v == "" {
			return nil, errors.Errorf("in %q: invalid pin mapping %q", c, f)
		}
		conns = append(conns, Connection{PP: k, CP: v})
	}
	return conns, nil
}
