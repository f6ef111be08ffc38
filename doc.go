/*
Package pwmbench provides a verification bench for a 16 channel PWM peripheral
controlled over a minimal serial bus.

The root package is a naive clocked hardware simulator: parts are composed into
a Circuit whose wires are updated once per simulation step. The Circuit owns
the reference clock. Everything else acts at tick granularity when the
circuit calls it.

Sub packages:

	signal   sampled levels, edges and synthetic sample streams
	spi      serial transaction driver and device side decoder
	wave     frequency and duty cycle measurement
	hwlib    reusable parts (IO probes, flip flops, bus master, probes)
	hwtest   the bench: a register level PWM device wired to a driver
*/
package pwmbench
