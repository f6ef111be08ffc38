// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pwmbench

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// BusPinName returns the pin name for bit i of bus name.
//
//	BusPinName("ui_in", 2) // "ui_in[2]"
//
func BusPinName(name string, i int) string {
	return name + "[" + strconv.Itoa(i) + "]"
}

// IO expands a pin description like "a, b, bus[2]" to the individual pin
// names []string{"a", "b", "bus[0]", "bus[1]"}.
//
func IO(spec string) []string {
	var out []string
	for _, f := range strings.Split(spec, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		i := strings.IndexRune(f, '[')
		if i < 0 || !strings.HasSuffix(f, "]") {
			out = append(out, f)
			continue
		}
		n, err := strconv.Atoi(f[i+1 : len(f)-1])
		if err != nil || n <= 0 {
			panic("invalid bus size in " + f)
		}
		for j := 0; j < n; j++ {
			out = append(out, BusPinName(f[:i], j))
		}
	}
	return out
}

func isConstant(name string) bool {
	return name == True || name == False || name == Clk
}

// expandRange expands bus ranges like "bus[0..3]" to individual pin names.
// Names without a range are returned as is.
//
func expandRange(name string) ([]string, error) {
	i := strings.IndexRune(name, '[')
	if i < 0 {
		return []string{name}, nil
	}
	bus := name[:i]
	if bus == "" {
		return nil, errors.New("empty bus name")
	}
	n := name[i+1:]
	i = strings.Index(n, "..")
	if i < 0 {
		return []string{name}, nil
	}
	start, err := strconv.Atoi(n[:i])
	if err != nil {
		return nil, err
	}
	n = n[i+2:]
	i = strings.IndexRune(n, ']')
	if i < 0 {
		return nil, errors.New("no terminating ] in bus range")
	}
	end, err := strconv.Atoi(n[:i])
	if err != nil {
		return nil, err
	}
	if end < start {
		return nil, errors.Errorf("invalid bus range %d..%d", start, end)
	}
	r := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		r = append(r, BusPinName(bus, i))
	}
	return r, nil
}

// busPins returns the pins of bus name in pins, or nil if name is not a bus.
//
func busPins(pins []string, name string) []string {
	var r []string
	for i := 0; ; i++ {
		pn := BusPinName(name, i)
		found := false
		for _, p := range pins {
			if p == pn {
				found = true
				break
			}
		}
		if !found {
			return r
		}
		r = append(r, pn)
	}
}

// expand resolves a connection into pairs of part pin and circuit wire names.
//
func (conn Connection) expand(sp *PartSpec) (ks, vs []string, err error) {
	ks, err = expandRange(conn.PP)
	if err != nil {
		return nil, nil, errors.Wrap(err, "expand key "+conn.PP)
	}
	if len(ks) == 1 && !strings.ContainsRune(conn.PP, '[') {
		if b := busPins(append(append([]string(nil), sp.Inputs...), sp.Outputs...), conn.PP); len(b) > 0 {
			ks = b
		}
	}
	vs, err = expandRange(conn.CP)
	if err != nil {
		return nil, nil, errors.Wrap(err, "expand value "+conn.CP)
	}
	switch {
	case len(ks) == len(vs):
	case len(vs) == 1 && isConstant(conn.CP):
		// many to one constant
		for len(vs) < len(ks) {
			vs = append(vs, conn.CP)
		}
	case len(vs) == 1 && !strings.ContainsRune(conn.CP, '['):
		// whole bus
		vs = vs[:0]
		for i := range ks {
			vs = append(vs, BusPinName(conn.CP, i))
		}
	default:
		return nil, nil, errors.New("pin count mismatch in pin mapping: " + conn.PP + "=" + conn.CP)
	}
	return ks, vs, nil
}

// mount wires part p into c. drivers maps the wires already driven by an
// output to the name of that output.
//
func (c *Circuit) mount(p Part, drivers map[string]string) ([]Component, error) {
	sp := p.PartSpec
	if sp == nil || sp.Mount == nil {
		return nil, errors.New("part without a mount function")
	}
	isOut := make(map[string]bool, len(sp.Inputs)+len(sp.Outputs))
	for _, i := range sp.Inputs {
		isOut[i] = false
	}
	for _, o := range sp.Outputs {
		isOut[o] = true
	}

	sub := newSocket(c)
	for _, conn := range p.Conns {
		ks, vs, err := conn.expand(sp)
		if err != nil {
			return nil, err
		}
		for i, k := range ks {
			out, ok := isOut[k]
			if !ok {
				return nil, errors.New("invalid pin name " + k + " for part " + sp.Name)
			}
			v := vs[i]
			if out {
				if isConstant(v) {
					return nil, errors.New(sp.Name + "." + k + ":" + v + ": output pin connected to constant " + v + " input")
				}
				if d, ok := drivers[v]; ok {
					return nil, errors.New(sp.Name + "." + k + ":" + v + ": wire already driven by " + d)
				}
				drivers[v] = sp.Name + "." + k
			}
			n, ok := c.wires[v]
			if !ok {
				n = c.allocPin()
				c.wires[v] = n
			}
			sub.m[k] = n
		}
	}
	// unconnected inputs read False, unconnected outputs get a private wire.
	for _, i := range sp.Inputs {
		if _, ok := sub.m[i]; !ok {
			sub.m[i] = cstFalse
		}
	}
	for _, o := range sp.Outputs {
		if _, ok := sub.m[o]; !ok {
			sub.m[o] = c.allocPin()
		}
	}
	return sp.Mount(sub), nil
}
