// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package wave

import "github.com/db47h/pwmbench/signal"

// syncMeter times a single cycle: low, rise, fall, rise. Each wait has its own
// tick budget.
//
type syncMeter struct {
	cfg   Config
	stage Stage
	n     int // ticks spent in the current stage
	ticks int
	rise  int64
	fall  int64
	done  bool
	res   Result
}

func (m *syncMeter) Step(s signal.Sample) bool {
	if m.done {
		return true
	}
	m.ticks++
	m.n++
	next := m.stage
	switch m.stage {
	case StageLow:
		if !s.Level {
			next = StageRise
		}
	case StageRise:
		if s.Level {
			m.rise = s.Time
			next = StageFall
		}
	case StageFall:
		if !s.Level {
			m.fall = s.Time
			next = StageSecondRise
		}
	case StageSecondRise:
		if s.Level {
			m.finish(s.Time)
			return true
		}
	}
	if next != m.stage {
		m.stage, m.n = next, 0
		return false
	}
	if m.n >= m.cfg.Budget {
		m.timeout()
		return true
	}
	return false
}

func (m *syncMeter) result(st Status) Result {
	return Result{Mode: Sync, Status: st, Ticks: m.ticks, Budget: m.cfg.Budget}
}

func (m *syncMeter) finish(rise2 int64) {
	m.done = true
	period, high := rise2-m.rise, m.fall-m.rise
	if st := window(float64(period), float64(high)); st != Measured {
		m.res = m.result(st)
		return
	}
	m.res = m.result(Measured)
	m.res.Period = float64(period)
	m.res.High = float64(high)
	m.res.Duty = float64(high) / float64(period)
	m.res.Frequency = frequency(float64(period))
	m.res.Cycles = 1
}

func (m *syncMeter) timeout() {
	m.done = true
	m.res = m.result(Timeout)
	m.res.Stage = m.stage
}

func (m *syncMeter) Result() Result {
	if !m.done {
		m.timeout()
	}
	return m.res
}
