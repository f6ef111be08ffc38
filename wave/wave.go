// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package wave measures the frequency and duty cycle of a sampled digital
// signal.
//
// Two measurement modes are provided. They differ on what happens when the
// signal does not toggle:
//
//	Averaging  collects Edges rising edges and averages periods and high times
//	           separately. A signal that never toggles within the budget is
//	           classified as ConstantHigh (duty 1) or ConstantLow (duty 0).
//	Sync       waits for a low level, then times rise, fall and the next rise
//	           of a single cycle. Any wait that exceeds the budget is a Timeout.
//
// Meters are step machines fed one sample per tick. A meter holds the state of
// a single measurement and must not be reused.
//
package wave

import (
	"fmt"

	"github.com/db47h/pwmbench/signal"
	"github.com/pkg/errors"
)

// Errors.
var (
	ErrTimeout           = errors.New("measurement timeout")
	ErrNonPositivePeriod = errors.New("non positive period")
	ErrBadWindow         = errors.New("high time outside the period")
	ErrInvalidConfig     = errors.New("invalid measurement configuration")
)

// Mode selects the measurement strategy.
//
type Mode int

// Measurement modes.
const (
	Averaging Mode = iota
	Sync
)

func (m Mode) String() string {
	switch m {
	case Averaging:
		return "averaging"
	case Sync:
		return "sync"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a mode name. "lenient" and "strict" are accepted as aliases
// for Averaging and Sync.
//
func ParseMode(s string) (Mode, error) {
	switch s {
	case "averaging", "lenient":
		return Averaging, nil
	case "sync", "strict":
		return Sync, nil
	}
	return 0, errors.Wrapf(ErrInvalidConfig, "unknown mode %q", s)
}

// Status classifies a measurement result.
//
type Status int

// Result status values.
const (
	Measured Status = iota
	ConstantHigh
	ConstantLow
	Timeout
	NonPositivePeriod
	BadWindow // high time < 0 or > period
)

var statusNames = [...]string{
	Measured:          "measured",
	ConstantHigh:      "constant high",
	ConstantLow:       "constant low",
	Timeout:           "timeout",
	NonPositivePeriod: "non positive period",
	BadWindow:         "bad timing window",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Stage is the wait a meter is in.
//
type Stage int

// Stages.
const (
	StageNone Stage = iota
	StageEdges
	StageLow
	StageRise
	StageFall
	StageSecondRise
)

var stageNames = [...]string{
	StageNone:       "none",
	StageEdges:      "rising edges",
	StageLow:        "low level",
	StageRise:       "rising edge",
	StageFall:       "falling edge",
	StageSecondRise: "second rising edge",
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Config configures a measurement.
//
type Config struct {
	Mode Mode
	// Edges is the number of rising edges collected in Averaging mode. It must
	// be at least 2. Zero means 3.
	Edges int
	// Budget is the maximum number of ticks for the whole measurement in
	// Averaging mode, and for each wait in Sync mode. Zero means
	// DefaultConfig.Budget.
	Budget int
}

// DefaultConfig is an Averaging measurement over 3 rising edges.
var DefaultConfig = Config{Mode: Averaging, Edges: 3, Budget: 100000}

func (c Config) withDefaults() Config {
	if c.Edges == 0 {
		c.Edges = DefaultConfig.Edges
	}
	if c.Budget == 0 {
		c.Budget = DefaultConfig.Budget
	}
	return c
}

// Validate checks c after applying defaults.
//
func (c Config) Validate() error {
	c = c.withDefaults()
	switch {
	case c.Mode != Averaging && c.Mode != Sync:
		return errors.Wrapf(ErrInvalidConfig, "unknown mode %d", int(c.Mode))
	case c.Budget < 1:
		return errors.Wrapf(ErrInvalidConfig, "tick budget %d < 1", c.Budget)
	case c.Mode == Averaging && c.Edges < 2:
		return errors.Wrapf(ErrInvalidConfig, "%d rising edges < 2", c.Edges)
	}
	return nil
}

// Result is the outcome of one measurement.
//
// Duty and Frequency are zero unless Status is Measured, ConstantHigh (duty 1)
// or ConstantLow (duty 0).
//
type Result struct {
	Mode      Mode
	Status    Status
	Duty      float64 // [0, 1]
	Frequency float64 // Hz
	Period    float64 // mean period, ns
	High      float64 // mean high time, ns
	Cycles    int     // number of periods measured
	Ticks     int     // samples consumed
	Stage     Stage   // wait in progress on Timeout
	Budget    int
}

// Err returns a non nil error only for a Timeout. Constant levels are valid
// results. A non positive period or a bad timing window yields a zero valued
// result.
//
func (r Result) Err() error {
	if r.Status != Timeout {
		return nil
	}
	if r.Mode == Sync {
		return errors.Wrapf(ErrTimeout, "%v mode: no %v within %d ticks", r.Mode, r.Stage, r.Budget)
	}
	return errors.Wrapf(ErrTimeout, "%v mode: not enough %v within %d ticks", r.Mode, r.Stage, r.Budget)
}

// Cause returns the condition behind an unmeasured result: ErrTimeout,
// ErrNonPositivePeriod, ErrBadWindow or nil.
//
func (r Result) Cause() error {
	switch r.Status {
	case Timeout:
		return ErrTimeout
	case NonPositivePeriod:
		return ErrNonPositivePeriod
	case BadWindow:
		return ErrBadWindow
	}
	return nil
}

func (r Result) String() string {
	switch r.Status {
	case Measured:
		return fmt.Sprintf("%v: %.2f Hz, duty %.2f%% (%d cycles)", r.Mode, r.Frequency, r.Duty*100, r.Cycles)
	case ConstantHigh, ConstantLow:
		return fmt.Sprintf("%v: %v, duty %.0f%%", r.Mode, r.Status, r.Duty*100)
	case Timeout:
		return fmt.Sprintf("%v: timeout waiting for %v after %d ticks", r.Mode, r.Stage, r.Ticks)
	}
	return fmt.Sprintf("%v: %v", r.Mode, r.Status)
}

// A Meter is a measurement step machine. Step is called once per tick with
// the sampled level and returns true once the result is final. Result may be
// called at any time; if the measurement is not complete, the stream is
// considered exhausted.
//
type Meter interface {
	Step(s signal.Sample) bool
	Result() Result
}

// NewMeter returns a new Meter for a single measurement.
//
func NewMeter(cfg Config) (Meter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if cfg.Mode == Sync {
		return &syncMeter{cfg: cfg, stage: StageLow}, nil
	}
	return &avgMeter{cfg: cfg}, nil
}

// Measure pulls samples from src until the measurement completes, the budget
// is exhausted or src ends. The returned error is the Result's Err(), or a
// configuration error.
//
func Measure(src signal.Source, cfg Config) (Result, error) {
	m, err := NewMeter(cfg)
	if err != nil {
		return Result{}, err
	}
	for {
		s, ok := src.Next()
		if !ok || m.Step(s) {
			break
		}
	}
	r := m.Result()
	return r, r.Err()
}

// window classifies a timed period and high time. Only Measured results carry
// a duty cycle, which is then in [0, 1].
//
func window(period, high float64) Status {
	switch {
	case period <= 0:
		return NonPositivePeriod
	case high < 0 || high > period:
		return BadWindow
	}
	return Measured
}

func frequency(periodNs float64) float64 {
	return 1e9 / periodNs
}
