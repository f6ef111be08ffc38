package hwtest_test

import (
	"testing"
	"time"

	"github.com/db47h/pwmbench/hwtest"
	"github.com/db47h/pwmbench/spi"
	"tinygo.org/x/drivers"
)

func TestBus_Tx(t *testing.T) {
	b := newBench(t, fastConfig())
	defer b.Close()
	var bus drivers.SPI = hwtest.NewBus(b)

	cmd := func(dir spi.Direction, addr uint8) byte {
		c, _ := spi.Transaction{Dir: dir, Addr: addr}.Bytes()
		return c
	}
	w := []byte{cmd(spi.Write, hwtest.RegEnable0), 0xa5, cmd(spi.Write, hwtest.RegEnable1), 0x5a}
	r := []byte{1, 2, 3, 4}
	if err := bus.Tx(w, r); err != nil {
		t.Fatal(err)
	}
	for i, v := range r {
		if v != 0 {
			t.Fatalf("read byte %d: expected 0, got %#02x", i, v)
		}
	}
	if uo, uio := b.Outputs(); uo != 0xa5 || uio != 0x5a {
		t.Fatalf("expected outputs 0xa5 0x5a, got %#02x %#02x", uo, uio)
	}

	// read only transfer
	now, writes := b.Now(), b.Device().Writes()
	r = []byte{1, 2}
	if err := bus.Tx(nil, r); err != nil {
		t.Fatal(err)
	}
	if r[0] != 0 || r[1] != 0 {
		t.Fatalf("expected zero read bytes, got %v", r)
	}
	if want := now + time.Duration(b.Config().Timing.Ticks())*b.Config().Timing.Period; b.Now() != want {
		t.Fatalf("expected one transaction, simulated time %v, want %v", b.Now(), want)
	}
	if b.Device().Writes() != writes {
		t.Fatal("read only transfer wrote a register")
	}
	if err := bus.Tx(nil, nil); err != nil {
		t.Fatal(err)
	}

	if err := bus.Tx(w[:3], nil); err == nil {
		t.Fatal("expected an error for an odd length write")
	}
	if err := bus.Tx(w, r[:2]); err == nil {
		t.Fatal("expected an error for a short read buffer")
	}
}

func TestBus_Transfer(t *testing.T) {
	b := newBench(t, fastConfig())
	defer b.Close()
	bus := hwtest.NewBus(b)

	cmd, data := spi.Transaction{Dir: spi.Write, Addr: hwtest.RegEnable0, Data: 0x0f}.Bytes()
	if _, err := bus.Transfer(cmd); err != nil {
		t.Fatal(err)
	}
	if n := b.Device().Writes(); n != 0 {
		t.Fatalf("transaction sent after the command byte")
	}
	if err := bus.Tx([]byte{0, 0}, nil); err == nil {
		t.Fatal("expected Tx to fail with a pending command byte")
	}
	if _, err := bus.Transfer(data); err != nil {
		t.Fatal(err)
	}
	if uo, _ := b.Outputs(); uo != 0x0f {
		t.Fatalf("expected uo_out 0x0f, got %#02x", uo)
	}
}
