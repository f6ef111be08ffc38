package hwtest_test

import (
	"testing"

	hw "github.com/db47h/pwmbench"
	hl "github.com/db47h/pwmbench/hwlib"
	"github.com/db47h/pwmbench/hwtest"
	"github.com/db47h/pwmbench/spi"
)

// drive feeds the device through a bare circuit, without input synchronizers.
func drive(t *testing.T, dev *hwtest.Device, txs ...spi.Transaction) (uo, uio int64) {
	t.Helper()
	tm := fastConfig().Timing
	var vecs []spi.PinVector
	for _, tx := range txs {
		seq, err := spi.Drive(tx, tm)
		if err != nil {
			t.Fatal(err)
		}
		vecs = append(vecs, seq...)
	}
	p := spi.DefaultPinout
	i := 0
	c, err := hw.NewCircuit(-1, 2,
		hl.InputN(8, func() int64 {
			if i < len(vecs) {
				return int64(p.Word(vecs[i]))
			}
			return int64(p.Word(spi.Idle))
		})("out=ui"),
		hl.Input(func() bool { return true })("out=rst_n"),
		dev.Part()("ui_in=ui, rst_n=rst_n, uo_out=uo, uio_out=uio"),
		hl.Sampler(8, func(_ uint, v int64) { uo = v })("in=uo"),
		hl.Sampler(8, func(_ uint, v int64) { uio = v })("in=uio"),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()
	for ; i < len(vecs)+4; i++ {
		c.TickTock()
	}
	return uo, uio
}

func TestDevice_registers(t *testing.T) {
	dev := hwtest.NewDevice(spi.DefaultPinout, 10)
	w := func(addr, data int) spi.Transaction {
		tx, err := spi.WriteTx(addr, data)
		if err != nil {
			t.Fatal(err)
		}
		return tx
	}
	r, err := spi.ReadTx(hwtest.RegEnable1, 0xff)
	if err != nil {
		t.Fatal(err)
	}
	uo, uio := drive(t, dev,
		w(hwtest.RegEnable0, 0x5a),
		w(hwtest.RegEnable1, 0x3c),
		w(hwtest.RegPWM1, 0x0f),
		w(0x05, 0xff),
		w(0x7f, 0xff),
		r,
	)
	want := [hwtest.NumRegs]uint8{0x5a, 0x3c, 0x00, 0x0f, 0x00}
	if regs := dev.Registers(); regs != want {
		t.Fatalf("expected registers %v, got %v", want, regs)
	}
	if dev.Writes() != 3 {
		t.Fatalf("expected 3 writes, got %d", dev.Writes())
	}
	// the PWM channels of bank 1 are low with a zero duty cycle
	if uo != 0x5a || uio != 0x30 {
		t.Fatalf("expected outputs 0x5a 0x30, got %#02x %#02x", uo, uio)
	}
}

func TestNewDevice_period(t *testing.T) {
	if p := hwtest.NewDevice(spi.DefaultPinout, 0).Period(); p != 1 {
		t.Fatalf("expected period clamped to 1, got %d", p)
	}
}
