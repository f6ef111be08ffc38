// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	hw "github.com/db47h/pwmbench"
	"github.com/db47h/pwmbench/hwlib"
	"github.com/db47h/pwmbench/spi"
)

// Register map of the PWM peripheral.
const (
	RegEnable0 = 0x00 // output enable, channels 0-7 (uo_out)
	RegEnable1 = 0x01 // output enable, channels 8-15 (uio_out)
	RegPWM0    = 0x02 // PWM mode, channels 0-7
	RegPWM1    = 0x03 // PWM mode, channels 8-15
	RegDuty    = 0x04 // shared duty cycle, 0x00 = 0%, 0xff = 100%
	NumRegs    = 5
)

// Device is a register level stand-in for the PWM peripheral. It only
// reproduces the externally visible behavior: writes to the five registers
// above are applied when chip select is released, anything else is ignored.
// An enabled channel is statically high, or toggles with the shared duty
// cycle when its PWM mode bit is set.
//
// A Device is mounted in a circuit with Part and must not be accessed
// concurrently with circuit updates.
//
type Device struct {
	pinout spi.Pinout
	period int // PWM period in clock cycles
	regs   [NumRegs]uint8
	rx     spi.Receiver
	cnt    int
	writes int
}

// NewDevice returns a device decoding its serial inputs with pinout p and
// generating PWM outputs with a period of period clock cycles.
//
func NewDevice(p spi.Pinout, period int) *Device {
	if period < 1 {
		period = 1
	}
	return &Device{pinout: p, period: period}
}

// Registers returns a copy of the device registers.
//
func (d *Device) Registers() [NumRegs]uint8 { return d.regs }

// Writes returns the number of register writes applied since reset.
//
func (d *Device) Writes() int { return d.writes }

// Period returns the PWM period in clock cycles.
//
func (d *Device) Period() int { return d.period }

func (d *Device) reset() {
	d.regs = [NumRegs]uint8{}
	d.rx = spi.Receiver{}
	d.cnt = 0
	d.writes = 0
}

func (d *Device) apply(tx spi.Transaction) {
	if tx.Dir != spi.Write || int(tx.Addr) >= NumRegs {
		return
	}
	d.regs[tx.Addr] = tx.Data
	d.writes++
}

func (d *Device) pwm() bool {
	return d.cnt*0xff < d.period*int(d.regs[RegDuty])
}

func (d *Device) bank(b int, pwm bool) int64 {
	en, mode := d.regs[RegEnable0+b], d.regs[RegPWM0+b]
	out := en &^ mode
	if pwm {
		out |= en & mode
	}
	return int64(out)
}

// Part returns the device as a circuit part.
//
//	Inputs: ui_in[8], rst_n
//	Outputs: uo_out[8], uio_out[8]
//
func (d *Device) Part() hw.NewPartFn {
	return (&hw.PartSpec{
		Name:    "PWM16",
		Inputs:  hw.IO("ui_in[8], rst_n"),
		Outputs: hw.IO("uo_out[8], uio_out[8]"),
		Mount: func(s *hw.Socket) []hw.Component {
			in, rstN := s.Bus("ui_in", 8), s.Pin("rst_n")
			uo, uio := s.Bus("uo_out", 8), s.Bus("uio_out", 8)
			return []hw.Component{
				func(c *hw.Circuit) {
					if c.AtTick() {
						if !c.Get(rstN) {
							d.reset()
						} else {
							if tx, ok := d.rx.Step(d.pinout.Decode(uint64(hwlib.Int64(c, in)))); ok {
								d.apply(tx)
							}
							d.cnt++
							if d.cnt >= d.period {
								d.cnt = 0
							}
						}
					}
					pwm := d.pwm()
					hwlib.SetInt64(c, uo, d.bank(0, pwm))
					hwlib.SetInt64(c, uio, d.bank(1, pwm))
				}}
		}}).NewPart
}
