// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package pmc frames TRNG requests for the Versal PMC firmware, the
// alternative random number source on parts where the TRNG block is owned by
// the platform manager rather than directly driven.
//
// Only the crypto module framing is implemented here, the IPI mailbox
// transport is the caller's responsibility through the Channel interface.
package pmc

import (
	"fmt"
)

const (
	secModuleShift = 8
	secModuleID    = 5

	// TRNG generate API identifier within the crypto module
	apiGenerate = 22

	// SecStrengthLen is the maximum random data length per PMC request.
	SecStrengthLen = 32
)

func cryptoAPIID(id uint32) uint32 {
	return secModuleID<<secModuleShift | id
}

// Buffer represents a shared memory region visible to the PMC firmware.
type Buffer interface {
	// Addr returns the region physical address.
	Addr() uint64
	// Bytes returns the region contents.
	Bytes() []byte
	// Free releases the region.
	Free()
}

// Channel represents a single IPI channel towards the PMC firmware.
type Channel interface {
	// Alloc reserves a shared memory region for request payloads.
	Alloc(size int) (Buffer, error)
	// Call issues a PMC command and blocks until its response, returning
	// the PMC status word.
	Call(cmd []uint32) (status uint32, err error)
}

// Client issues TRNG requests to the PMC firmware.
type Client struct {
	// Chan is the IPI transport
	Chan Channel
}

// GetRandomBytes fills buf with random data requested from the PMC TRNG in
// 32-byte chunks.
func (c *Client) GetRandomBytes(buf []byte) error {
	p, err := c.Chan.Alloc(len(buf))

	if err != nil {
		return err
	}
	defer p.Free()

	for off := 0; off < len(buf); off += SecStrengthLen {
		n := len(buf) - off

		if n > SecStrengthLen {
			n = SecStrengthLen
		}

		addr := p.Addr() + uint64(off)

		cmd := []uint32{
			cryptoAPIID(apiGenerate),
			uint32(addr),
			uint32(addr >> 32),
			uint32(n),
		}

		status, err := c.Chan.Call(cmd)

		if err != nil {
			return fmt.Errorf("getting randomness returned %#x, %w", status, err)
		}

		if status != 0 {
			return fmt.Errorf("getting randomness returned %#x", status)
		}

		copy(buf[off:off+n], p.Bytes()[off:off+n])
	}

	return nil
}
