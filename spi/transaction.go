// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package spi implements the serial transaction driver used to configure the
// PWM peripheral, and the matching device side decoder.
//
// A transaction is a 16 bit frame sent MSB first while chip select is held
// active (low): a command byte [direction:1][address:7] followed by a data
// byte. Serial data is set while the serial clock is low and sampled by the
// device on the serial clock rising edge.
//
package spi

import (
	"fmt"

	"github.com/pkg/errors"
)

// Frame layout.
const (
	FrameBits = 16
	MaxAddr   = 0x7f
	MaxData   = 0xff
)

// ErrInvalidTransaction is returned when a transaction has an out of range
// direction, address or data.
var ErrInvalidTransaction = errors.New("invalid transaction")

// Direction is the transfer direction bit of the command byte.
//
type Direction int

// Directions. The value is the direction bit sent on the wire.
const (
	Read Direction = iota
	Write
)

func (d Direction) String() string {
	switch d {
	case Read:
		return "read"
	case Write:
		return "write"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// A Transaction is a single register access.
//
type Transaction struct {
	Dir  Direction
	Addr uint8 // 7 bits
	Data uint8
}

// NewTransaction returns a validated Transaction. The returned error has
// ErrInvalidTransaction as its cause.
//
func NewTransaction(dir Direction, addr, data int) (Transaction, error) {
	if addr < 0 || addr > MaxAddr {
		return Transaction{}, errors.Wrapf(ErrInvalidTransaction, "address %d out of range [0, %d]", addr, MaxAddr)
	}
	if data < 0 || data > MaxData {
		return Transaction{}, errors.Wrapf(ErrInvalidTransaction, "data %d out of range [0, %d]", data, MaxData)
	}
	tx := Transaction{Dir: dir, Addr: uint8(addr), Data: uint8(data)}
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// WriteTx returns a write transaction. See NewTransaction.
//
func WriteTx(addr, data int) (Transaction, error) { return NewTransaction(Write, addr, data) }

// ReadTx returns a read transaction. See NewTransaction.
//
func ReadTx(addr, data int) (Transaction, error) { return NewTransaction(Read, addr, data) }

// Validate checks that t can be encoded.
//
func (t Transaction) Validate() error {
	if t.Dir != Read && t.Dir != Write {
		return errors.Wrapf(ErrInvalidTransaction, "unknown direction %d", int(t.Dir))
	}
	if t.Addr > MaxAddr {
		return errors.Wrapf(ErrInvalidTransaction, "address %d out of range [0, %d]", t.Addr, MaxAddr)
	}
	return nil
}

// Bytes returns the command and data bytes of t.
//
func (t Transaction) Bytes() (cmd, data byte) {
	return byte(t.Dir)<<7 | t.Addr&MaxAddr, t.Data
}

// Frame returns the 16 bit frame for t, in transmission order from the most
// significant bit.
//
func (t Transaction) Frame() uint16 {
	cmd, data := t.Bytes()
	return uint16(cmd)<<8 | uint16(data)
}

// FromBytes decodes a command and data byte pair.
//
func FromBytes(cmd, data byte) Transaction {
	return Transaction{Dir: Direction(cmd >> 7), Addr: cmd & MaxAddr, Data: data}
}

// FromFrame decodes a 16 bit frame.
//
func FromFrame(f uint16) Transaction {
	return FromBytes(byte(f>>8), byte(f))
}

func (t Transaction) String() string {
	return fmt.Sprintf("%v addr=0x%02x data=0x%02x", t.Dir, t.Addr, t.Data)
}
