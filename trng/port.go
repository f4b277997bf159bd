// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package trng

// Port abstracts 32-bit access to the TRNG register window.
//
// Implementations must guarantee that writes reach the device in program
// order, the driver relies on it for the reseed and serial seed load
// choreography.
type Port interface {
	// Read32 returns the register at the given offset from the device
	// base address.
	Read32(off uint32) uint32

	// Write32 sets the register at the given offset from the device base
	// address.
	Write32(off uint32, val uint32)

	// Delay spins for at least the given number of microseconds.
	Delay(us int)
}
