// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package signal

import "github.com/pkg/errors"

type sliceSource struct {
	s []Sample
}

func (s *sliceSource) Next() (Sample, bool) {
	if len(s.s) == 0 {
		return Sample{}, false
	}
	v := s.s[0]
	s.s = s.s[1:]
	return v, true
}

// Slice returns a finite Source that yields the given samples in order.
//
func Slice(samples ...Sample) Source {
	return &sliceSource{samples}
}

// Levels returns a finite Source yielding one sample per level, step ns apart,
// starting at time 0.
//
func Levels(step int64, levels ...bool) Source {
	ss := make([]Sample, len(levels))
	for i, l := range levels {
		ss[i] = Sample{int64(i) * step, l}
	}
	return Slice(ss...)
}

// Constant returns an infinite Source stuck at the given level, sampled every
// step ns.
//
func Constant(level bool, step int64) Source {
	var t int64
	return SourceFunc(func() (Sample, bool) {
		s := Sample{t, level}
		t += step
		return s, true
	})
}

// Square returns an infinite periodic Source sampled every step ns. The signal
// is high for the first high ns of every period, shifted by phase ns:
//
//	level(t) = (t + phase) mod period < high
//
func Square(period, high, step, phase int64) (Source, error) {
	if period <= 0 || step <= 0 {
		return nil, errors.Errorf("invalid square wave period %d or step %d", period, step)
	}
	if high < 0 || high > period {
		return nil, errors.Errorf("square wave high time %d out of range [0, %d]", high, period)
	}
	if phase < 0 {
		phase = phase%period + period
	}
	var t int64
	return SourceFunc(func() (Sample, bool) {
		s := Sample{t, (t+phase)%period < high}
		t += step
		return s, true
	}), nil
}

// Limit returns a Source that yields at most n samples from src.
//
func Limit(src Source, n int) Source {
	return SourceFunc(func() (Sample, bool) {
		if n <= 0 {
			return Sample{}, false
		}
		n--
		return src.Next()
	})
}

// BusBit returns a Source that samples bit n of a bus. next returns the time
// and value of the bus for each successive tick.
//
func BusBit(next func() (t int64, word uint64, ok bool), n uint) Source {
	return SourceFunc(func() (Sample, bool) {
		t, w, ok := next()
		if !ok {
			return Sample{}, false
		}
		return Sample{t, Bit(w, n)}, true
	})
}
