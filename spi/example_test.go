package spi_test

import (
	"fmt"

	"github.com/db47h/pwmbench/spi"
)

func ExampleDrive() {
	tx, err := spi.WriteTx(0x04, 0x80)
	if err != nil {
		panic(err)
	}
	seq, err := spi.Drive(tx, spi.DefaultTiming)
	if err != nil {
		panic(err)
	}
	ts := spi.Transitions(seq)
	for _, t := range ts[:4] {
		fmt.Printf("%4d %v 0x%02x\n", t.Tick, t.Pins, spi.DefaultPinout.Word(t.Pins))
	}
	fmt.Println(len(seq), "ticks")

	// Output:
	//    0 ncs=0 sd=0 sclk=0 0x00
	//    1 ncs=0 sd=1 sclk=0 0x02
	//   51 ncs=0 sd=1 sclk=1 0x03
	//  101 ncs=0 sd=0 sclk=0 0x00
	// 2201 ticks
}
