// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"github.com/db47h/pwmbench/spi"
	"github.com/pkg/errors"
	"tinygo.org/x/drivers"
)

// Bus exposes a Bench as a tinygo drivers.SPI bus. Every pair of bytes
// written is one transaction: the command byte [direction:1][address:7]
// followed by the data byte. The device has no serial output line; bytes read
// back are always 0.
//
type Bus struct {
	b       *Bench
	cmd     byte
	pending bool
}

var _ drivers.SPI = (*Bus)(nil)

// NewBus returns a Bus on bench b.
//
func NewBus(b *Bench) *Bus {
	return &Bus{b: b}
}

// Tx implements drivers.SPI. len(w) must be even and r is either nil or the
// same length as w. A nil w clocks out len(r) zero bytes, that is reads of
// register 0.
//
func (s *Bus) Tx(w, r []byte) error {
	if s.pending {
		return errors.New("Tx with a pending Transfer byte")
	}
	if w == nil {
		w = make([]byte, len(r))
	}
	if len(w)%2 != 0 {
		return errors.Errorf("odd write length %d", len(w))
	}
	if r != nil && len(r) != len(w) {
		return errors.Errorf("read length %d != write length %d", len(r), len(w))
	}
	for i := 0; i < len(w); i += 2 {
		if err := s.b.Transfer(spi.FromBytes(w[i], w[i+1])); err != nil {
			return errors.Wrapf(err, "transaction %d", i/2)
		}
	}
	for i := range r {
		r[i] = 0
	}
	return nil
}

// Transfer implements drivers.SPI. The first byte of a transaction is
// buffered; the transaction runs when the second byte is transferred.
//
func (s *Bus) Transfer(b byte) (byte, error) {
	if !s.pending {
		s.cmd, s.pending = b, true
		return 0, nil
	}
	s.pending = false
	return 0, s.b.Transfer(spi.FromBytes(s.cmd, b))
}
