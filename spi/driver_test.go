package spi_test

import (
	"testing"
	"testing/quick"
	"time"

	"github.com/db47h/pwmbench/spi"
	"github.com/pkg/errors"
)

var fastTiming = spi.Timing{Period: 100 * time.Nanosecond, Setup: 1, HalfBit: 3, Settle: 2}

func mustTx(t *testing.T, dir spi.Direction, addr, data int) spi.Transaction {
	t.Helper()
	tx, err := spi.NewTransaction(dir, addr, data)
	if err != nil {
		t.Fatal(err)
	}
	return tx
}

// decode samples serial data on each serial clock rising edge.
func decode(seq []spi.PinVector) (bits uint32, n int) {
	var prev spi.PinVector
	for _, v := range seq {
		if v.Select && v.Clock && !prev.Clock {
			bits = bits<<1 | uint32(b2i(v.Data))
			n++
		}
		prev = v
	}
	return bits, n
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestDrive_reference(t *testing.T) {
	tm := spi.DefaultTiming
	seq, err := spi.Drive(mustTx(t, spi.Write, 0x04, 0x80), tm)
	if err != nil {
		t.Fatal(err)
	}
	if len(seq) != 2201 || len(seq) != tm.Ticks() {
		t.Fatalf("expected 2201 ticks, got %d", len(seq))
	}
	// command byte 0x84, data byte 0x80
	check := func(tick int, exp spi.PinVector) {
		t.Helper()
		if seq[tick] != exp {
			t.Errorf("tick %d: expected %v, got %v", tick, exp, seq[tick])
		}
	}
	check(0, spi.PinVector{Select: true})
	check(1, spi.PinVector{Select: true, Data: true})
	check(50, spi.PinVector{Select: true, Data: true})
	check(51, spi.PinVector{Select: true, Data: true, Clock: true})
	check(100, spi.PinVector{Select: true, Data: true, Clock: true})
	check(101, spi.PinVector{Select: true})
	check(151, spi.PinVector{Select: true, Clock: true})
	// bit 5 of the frame: address bit 2
	check(1+5*100, spi.PinVector{Select: true, Data: true})
	// bit 8: data MSB
	check(1+8*100+50, spi.PinVector{Select: true, Data: true, Clock: true})
	check(1600, spi.PinVector{Select: true, Clock: true})
	check(1601, spi.Idle)
	check(2200, spi.Idle)

	if s := tm.Duration(); s != 220100*time.Nanosecond {
		t.Errorf("expected transaction duration 220.1µs, got %v", s)
	}
	if f := tm.SerialClock(); f != 100000 {
		t.Errorf("expected 100 kHz serial clock, got %v", f)
	}
}

func TestDrive_roundTrip(t *testing.T) {
	f := func(write bool, addr, data uint8) bool {
		dir := spi.Read
		if write {
			dir = spi.Write
		}
		tx, err := spi.NewTransaction(dir, int(addr&spi.MaxAddr), int(data))
		if err != nil {
			return false
		}
		seq, err := spi.Drive(tx, fastTiming)
		if err != nil || len(seq) != fastTiming.Ticks() {
			return false
		}
		bits, n := decode(seq)
		if n != spi.FrameBits {
			return false
		}
		return spi.FromFrame(uint16(bits)) == tx
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestNewTransaction_invalid(t *testing.T) {
	f := func(addr, data int16) bool {
		a, d := int(addr), int(data)
		_, err := spi.NewTransaction(spi.Write, a, d)
		valid := a >= 0 && a <= spi.MaxAddr && d >= 0 && d <= spi.MaxData
		if valid {
			return err == nil
		}
		return errors.Cause(err) == spi.ErrInvalidTransaction
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
	data := []struct {
		name       string
		addr, data int
	}{
		{"addr_128", 128, 0},
		{"addr_neg", -1, 0},
		{"data_256", 0, 256},
		{"data_neg", 0, -1},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			_, err := spi.NewTransaction(spi.Write, d.addr, d.data)
			if errors.Cause(err) != spi.ErrInvalidTransaction {
				t.Fatalf("expected ErrInvalidTransaction, got %v", err)
			}
		})
	}
}

func TestDriver_invalidHasNoSideEffects(t *testing.T) {
	d, err := spi.NewDriver(fastTiming)
	if err != nil {
		t.Fatal(err)
	}
	for _, tx := range []spi.Transaction{
		{Dir: spi.Write, Addr: 0x80, Data: 1},
		{Dir: spi.Direction(2), Addr: 1, Data: 1},
	} {
		if err := d.Start(tx); errors.Cause(err) != spi.ErrInvalidTransaction {
			t.Fatalf("%v: expected ErrInvalidTransaction, got %v", tx, err)
		}
		if d.Busy() {
			t.Fatal("driver busy after a rejected transaction")
		}
		for i := 0; i < fastTiming.Ticks(); i++ {
			if v := d.Step(); v != spi.Idle {
				t.Fatalf("tick %d: pin activity %v after a rejected transaction", i, v)
			}
		}
	}
	if _, err := spi.Drive(spi.Transaction{Addr: 0xff}, fastTiming); errors.Cause(err) != spi.ErrInvalidTransaction {
		t.Fatalf("Drive: expected ErrInvalidTransaction, got %v", err)
	}
}

func TestDriver_busy(t *testing.T) {
	d, err := spi.NewDriver(fastTiming)
	if err != nil {
		t.Fatal(err)
	}
	first := mustTx(t, spi.Write, 0x02, 0xff)
	if err = d.Start(first); err != nil {
		t.Fatal(err)
	}
	ref, _ := spi.Drive(first, fastTiming)
	var seq []spi.PinVector
	for i := 0; d.Busy(); i++ {
		if i == 5 {
			if err := d.Start(mustTx(t, spi.Write, 0x04, 0x00)); errors.Cause(err) != spi.ErrBusy {
				t.Fatalf("expected ErrBusy, got %v", err)
			}
		}
		seq = append(seq, d.Step())
	}
	if len(seq) != len(ref) {
		t.Fatalf("expected %d ticks, got %d", len(ref), len(seq))
	}
	for i := range ref {
		if seq[i] != ref[i] {
			t.Fatalf("tick %d: transaction disturbed by Start: %v != %v", i, seq[i], ref[i])
		}
	}
}

func TestDriver_idempotent(t *testing.T) {
	tx := mustTx(t, spi.Write, 0x01, 0xcc)
	d, err := spi.NewDriver(fastTiming)
	if err != nil {
		t.Fatal(err)
	}
	// an unrelated transaction first
	if err = d.Start(mustTx(t, spi.Read, 0x30, 0xbe)); err != nil {
		t.Fatal(err)
	}
	for d.Busy() {
		d.Step()
	}
	var runs [2][]spi.PinVector
	for r := range runs {
		if err = d.Start(tx); err != nil {
			t.Fatal(err)
		}
		for d.Busy() {
			runs[r] = append(runs[r], d.Step())
		}
	}
	if len(runs[0]) != len(runs[1]) {
		t.Fatalf("length mismatch: %d != %d", len(runs[0]), len(runs[1]))
	}
	for i := range runs[0] {
		if runs[0][i] != runs[1][i] {
			t.Fatalf("tick %d: %v != %v", i, runs[0][i], runs[1][i])
		}
	}
}

func TestTransitions(t *testing.T) {
	seq, err := spi.Drive(mustTx(t, spi.Write, 0x00, 0x00), fastTiming)
	if err != nil {
		t.Fatal(err)
	}
	ts := spi.Transitions(seq)
	// setup, then for each bit low and high. Bit 0 (direction) changes data,
	// every other bit only toggles the clock. Then idle.
	if len(ts) != 1+2*spi.FrameBits+1 {
		t.Fatalf("expected %d transitions, got %d: %v", 2+2*spi.FrameBits, len(ts), ts)
	}
	if ts[0].Tick != 0 || ts[len(ts)-1].Pins != spi.Idle || ts[len(ts)-1].Tick != 1+2*spi.FrameBits*fastTiming.HalfBit {
		t.Fatalf("unexpected framing: first %v, last %v", ts[0], ts[len(ts)-1])
	}
}

func TestTimingFor(t *testing.T) {
	data := []struct {
		period, half time.Duration
		ticks        int
	}{
		{100 * time.Nanosecond, 5 * time.Microsecond, 50},
		{10 * time.Nanosecond, 5 * time.Microsecond, 500},
		{30 * time.Nanosecond, 100 * time.Nanosecond, 4},
	}
	for _, d := range data {
		tm, err := spi.TimingFor(d.period, d.half, 600)
		if err != nil {
			t.Fatal(err)
		}
		if tm.HalfBit != d.ticks {
			t.Errorf("TimingFor(%v, %v): expected %d ticks, got %d", d.period, d.half, d.ticks, tm.HalfBit)
		}
	}
	if _, err := spi.TimingFor(0, time.Microsecond, 1); errors.Cause(err) != spi.ErrInvalidTiming {
		t.Errorf("expected ErrInvalidTiming, got %v", err)
	}
	if _, err := spi.TimingFor(time.Nanosecond, time.Microsecond, 0); errors.Cause(err) != spi.ErrInvalidTiming {
		t.Errorf("expected ErrInvalidTiming for zero settle, got %v", err)
	}
	if _, err := spi.NewDriver(spi.Timing{Period: 1, Setup: 1, HalfBit: 0, Settle: 1}); errors.Cause(err) != spi.ErrInvalidTiming {
		t.Errorf("NewDriver: expected ErrInvalidTiming, got %v", err)
	}
}

func TestPinout(t *testing.T) {
	p := spi.DefaultPinout
	data := []struct {
		v spi.PinVector
		w uint64
	}{
		{spi.Idle, 0x04},
		{spi.PinVector{Select: true}, 0x00},
		{spi.PinVector{Select: true, Data: true}, 0x02},
		{spi.PinVector{Select: true, Data: true, Clock: true}, 0x03},
	}
	for _, d := range data {
		if w := p.Word(d.v); w != d.w {
			t.Errorf("Word(%v): expected %#02x, got %#02x", d.v, d.w, w)
		}
		if v := p.Decode(d.w); v != d.v {
			t.Errorf("Decode(%#02x): expected %v, got %v", d.w, d.v, v)
		}
	}
	if err := (spi.Pinout{Clock: 1, Data: 1, Select: 2}).Validate(); err == nil {
		t.Error("expected an error for overlapping pins")
	}
	if err := (spi.Pinout{Clock: 64, Data: 1, Select: 2}).Validate(); err == nil {
		t.Error("expected an error for out of range pins")
	}
}
