package signal_test

import (
	"testing"

	"github.com/db47h/pwmbench/signal"
)

func TestEdgeDetector(t *testing.T) {
	src := signal.Levels(10, false, false, true, true, false, true)
	var d signal.EdgeDetector
	var edges []signal.Edge
	for {
		s, ok := src.Next()
		if !ok {
			break
		}
		if e, ok := d.Step(s); ok {
			edges = append(edges, e)
		}
	}
	exp := []signal.Edge{{20, signal.Rising}, {40, signal.Falling}, {50, signal.Rising}}
	if len(edges) != len(exp) {
		t.Fatalf("expected %d edges, got %v", len(exp), edges)
	}
	for i := range exp {
		if edges[i] != exp[i] {
			t.Errorf("edge %d: expected %v, got %v", i, exp[i], edges[i])
		}
	}
	if !d.Level() {
		t.Error("expected last level high")
	}
}

func TestEdgeDetector_firstSample(t *testing.T) {
	var d signal.EdgeDetector
	if d.Primed() {
		t.Fatal("zero value detector should not be primed")
	}
	if _, ok := d.Step(signal.Sample{Time: 0, Level: true}); ok {
		t.Fatal("first sample must not produce an edge")
	}
	if !d.Primed() {
		t.Fatal("detector should be primed after one sample")
	}
}

func TestSquare(t *testing.T) {
	src, err := signal.Square(100, 25, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	exp := []bool{true, true, true, false, false, false, false, false, false, false, true}
	for i, e := range exp {
		s, ok := src.Next()
		if !ok {
			t.Fatal("square wave ended")
		}
		if s.Time != int64(i)*10 || s.Level != e {
			t.Fatalf("sample %d: expected {%d %v}, got %v", i, i*10, e, s)
		}
	}
}

func TestSquare_errors(t *testing.T) {
	data := []struct {
		name                      string
		period, high, step, phase int64
	}{
		{"zero_period", 0, 0, 1, 0},
		{"zero_step", 10, 5, 0, 0},
		{"high_too_long", 10, 11, 1, 0},
		{"negative_high", 10, -1, 1, 0},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			if _, err := signal.Square(d.period, d.high, d.step, d.phase); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLimit(t *testing.T) {
	src := signal.Limit(signal.Constant(true, 1), 3)
	n := 0
	for {
		if _, ok := src.Next(); !ok {
			break
		}
		n++
	}
	if n != 3 {
		t.Fatalf("expected 3 samples, got %d", n)
	}
}

func TestBusBit(t *testing.T) {
	words := []uint64{0x0, 0x4, 0x5, 0x1}
	i := 0
	src := signal.BusBit(func() (int64, uint64, bool) {
		if i >= len(words) {
			return 0, 0, false
		}
		w := words[i]
		i++
		return int64(i), w, true
	}, 2)
	exp := []bool{false, true, true, false}
	for j, e := range exp {
		s, ok := src.Next()
		if !ok || s.Level != e {
			t.Fatalf("sample %d: expected %v, got %v (ok=%v)", j, e, s.Level, ok)
		}
	}
	if _, ok := src.Next(); ok {
		t.Fatal("expected end of stream")
	}
}

func TestBit(t *testing.T) {
	if !signal.Bit(0x80, 7) || signal.Bit(0x80, 6) {
		t.Fatal("Bit")
	}
}
