// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package pwmbench

import (
	"math/bits"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// A Component is called once per simulation step. It reads wire states from
// the previous step with Get and writes the next ones with Set.
//
type Component func(c *Circuit)

// Circuit is a clocked simulation of mounted parts.
//
// Time only advances through Step and the Tick/Tock/Run helpers. A bench
// drives it one clock cycle at a time and the parts act on the raising edge
// of Clk (see AtTick).
//
type Circuit struct {
	cur   []bool // states read by Get
	next  []bool // states written by Set
	cs    []Component
	wires map[string]int
	count int
	spc   uint // steps per clock cycle, a power of two
	steps uint

	wc []chan struct{} // one per worker, nil when stepping inline
	wg sync.WaitGroup
}

// NewCircuit mounts parts into a new circuit.
//
// With workers < 0 every component runs on the goroutine calling Step, which
// keeps a simulation deterministic and cheap for small circuits. Otherwise
// components are split among workers goroutines, GOMAXPROCS of them if
// workers is 0, and Dispose must be called to stop them.
//
// stepsPerCycle is rounded up to a power of two, at least 2.
//
func NewCircuit(workers int, stepsPerCycle uint, parts ...Part) (*Circuit, error) {
	if len(parts) == 0 {
		return nil, errors.New("empty part list")
	}
	c := &Circuit{
		count: cstCount,
		spc:   roundSPC(stepsPerCycle),
		wires: map[string]int{False: cstFalse, True: cstTrue, Clk: cstClk},
	}
	drivers := make(map[string]string)
	for _, p := range parts {
		cs, err := c.mount(p, drivers)
		if err != nil {
			return nil, errors.Wrap(err, "mount "+p.Name)
		}
		c.cs = append(c.cs, cs...)
	}
	c.cs = append(c.cs, updClock)
	c.cur = make([]bool, c.count)
	c.next = make([]bool, c.count)
	c.cur[cstTrue], c.next[cstTrue] = true, true
	c.cur[cstClk] = true

	if workers >= 0 {
		c.startWorkers(workers)
	}
	return c, nil
}

func roundSPC(n uint) uint {
	if n < 2 {
		return 2
	}
	return 1 << uint(bits.Len(n-1))
}

func (c *Circuit) startWorkers(n int) {
	if n == 0 {
		n = runtime.GOMAXPROCS(-1)
	}
	size := (len(c.cs) + n - 1) / n
	for cs := c.cs; len(cs) > 0; {
		if size > len(cs) {
			size = len(cs)
		}
		wc := make(chan struct{}, 1)
		c.wc = append(c.wc, wc)
		go c.worker(cs[:size], wc)
		cs = cs[size:]
	}
}

func (c *Circuit) worker(cs []Component, wc <-chan struct{}) {
	for range wc {
		for _, f := range cs {
			f(c)
		}
		c.wg.Done()
	}
	c.wg.Done()
}

// updClock drives Clk high for the first half of each cycle.
//
func updClock(c *Circuit) {
	if c.cur[cstFalse] || !c.cur[cstTrue] {
		panic("true or false constants have been overwritten")
	}
	c.next[cstClk] = (c.steps+1)&(c.spc-1) < c.spc/2
}

// Dispose stops the worker goroutines, if any.
//
func (c *Circuit) Dispose() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		close(wc)
	}
	c.wg.Wait()
	c.wc = nil
}

func (c *Circuit) allocPin() int {
	c.count++
	return c.count - 1
}

// Steps returns the number of steps run so far.
//
func (c *Circuit) Steps() uint { return c.steps }

// SPC returns the number of steps per clock cycle.
//
func (c *Circuit) SPC() uint { return c.spc }

// Cycles returns the number of the current clock cycle, which is also the
// number of complete cycles at a cycle boundary.
//
func (c *Circuit) Cycles() uint { return c.steps / c.spc }

// AtTick returns true on the first step of a clock cycle (raising edge of
// Clk). Clocked parts sample their inputs there.
//
func (c *Circuit) AtTick() bool {
	return c.steps&(c.spc-1) == 0
}

// AtTock returns true on the first step of the second half of a clock cycle
// (falling edge of Clk).
//
func (c *Circuit) AtTock() bool {
	return c.steps&(c.spc-1) == c.spc/2
}

// Get returns the state of pin n as of the previous step.
//
func (c *Circuit) Get(n int) bool {
	return c.cur[n]
}

// Set sets the state of pin n for the next step. Wire states are double
// buffered: components must set all their outputs on every step.
//
func (c *Circuit) Set(n int, s bool) {
	c.next[n] = s
}

// Toggle sets pin n to the inverse of its current state.
//
func (c *Circuit) Toggle(n int) {
	c.next[n] = !c.cur[n]
}

// Step runs all components once.
//
func (c *Circuit) Step() {
	if c.wc == nil {
		for _, f := range c.cs {
			f(c)
		}
	} else {
		c.wg.Add(len(c.wc))
		for _, wc := range c.wc {
			wc <- struct{}{}
		}
		c.wg.Wait()
	}
	c.steps++
	c.cur, c.next = c.next, c.cur
}

// Tick runs the simulation up to the falling edge of Clk.
//
func (c *Circuit) Tick() {
	for c.Get(cstClk) {
		c.Step()
	}
}

// Tock runs the simulation up to the next raising edge of Clk. Clocked parts
// have updated their outputs when Tock returns.
//
func (c *Circuit) Tock() {
	for !c.Get(cstClk) {
		c.Step()
	}
}

// TickTock runs one clock cycle.
//
func (c *Circuit) TickTock() {
	c.Tick()
	c.Tock()
}

// Run runs n clock cycles.
//
func (c *Circuit) Run(n int) {
	for ; n > 0; n-- {
		c.TickTock()
	}
}

// Size returns the number of components in the circuit, the clock included.
//
func (c *Circuit) Size() int { return len(c.cs) }
