// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package wave

import (
	"github.com/db47h/pwmbench/signal"
	"golang.org/x/exp/constraints"
)

func mean[T constraints.Integer | constraints.Float](xs []T) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += float64(x)
	}
	return sum / float64(len(xs))
}

// avgMeter collects rising edges and the high time following each of them.
//
type avgMeter struct {
	cfg     Config
	det     signal.EdgeDetector
	rises   []int64
	highs   []int64
	inHigh  bool
	toggled bool
	ticks   int
	done    bool
	res     Result
}

func (m *avgMeter) Step(s signal.Sample) bool {
	if m.done {
		return true
	}
	m.ticks++
	if e, ok := m.det.Step(s); ok {
		m.toggled = true
		switch e.Kind {
		case signal.Rising:
			m.rises = append(m.rises, e.Time)
			m.inHigh = true
			if len(m.rises) == m.cfg.Edges {
				m.finish()
				return true
			}
		case signal.Falling:
			if m.inHigh {
				m.highs = append(m.highs, e.Time-m.rises[len(m.rises)-1])
				m.inHigh = false
			}
		}
	}
	if m.ticks >= m.cfg.Budget {
		m.exhaust()
		return true
	}
	return false
}

func (m *avgMeter) result(st Status) Result {
	return Result{Mode: Averaging, Status: st, Ticks: m.ticks, Budget: m.cfg.Budget}
}

func (m *avgMeter) finish() {
	m.done = true
	periods := make([]int64, len(m.rises)-1)
	for i := range periods {
		periods[i] = m.rises[i+1] - m.rises[i]
	}
	p, h := mean(periods), mean(m.highs)
	if st := window(p, h); st != Measured {
		m.res = m.result(st)
		return
	}
	m.res = m.result(Measured)
	m.res.Period = p
	m.res.High = h
	m.res.Duty = h / p
	m.res.Frequency = frequency(p)
	m.res.Cycles = len(periods)
}

func (m *avgMeter) exhaust() {
	m.done = true
	switch {
	case m.toggled || !m.det.Primed():
		m.res = m.result(Timeout)
		m.res.Stage = StageEdges
	case m.det.Level():
		m.res = m.result(ConstantHigh)
		m.res.Duty = 1
	default:
		m.res = m.result(ConstantLow)
	}
}

func (m *avgMeter) Result() Result {
	if !m.done {
		m.exhaust()
	}
	return m.res
}

// Average combines the Measured results in rs: periods and high times are
// averaged separately, then duty and frequency are derived from the means.
// Cycles and Ticks are summed. If no result is Measured, the last one is
// returned as is.
//
func Average(rs ...Result) Result {
	var ps, hs []float64
	cycles, ticks := 0, 0
	for _, r := range rs {
		ticks += r.Ticks
		if r.Status != Measured {
			continue
		}
		ps = append(ps, r.Period)
		hs = append(hs, r.High)
		cycles += r.Cycles
	}
	if len(ps) == 0 {
		if len(rs) == 0 {
			return Result{}
		}
		return rs[len(rs)-1]
	}
	p, h := mean(ps), mean(hs)
	res := Result{Mode: rs[0].Mode, Status: window(p, h), Cycles: cycles, Ticks: ticks, Budget: rs[0].Budget}
	if res.Status != Measured {
		return res
	}
	res.Period = p
	res.High = h
	res.Duty = h / p
	res.Frequency = frequency(p)
	return res
}
