// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package trngsim simulates the register file of the Xilinx Versal PMC TRNG,
// implementing the trng.Port interface.
//
// The simulated device replays hardware behaviour at the register level:
// status flags, output FIFO bursts, serial seed capture. It does not model
// the DRBG itself, random output is served from scripted bursts (see Queue)
// or, when the script runs dry, from a deterministic counter pattern.
//
// It backs the driver test suite and the rngd emulation mode.
package trngsim

import (
	"encoding/binary"

	"github.com/usbarmory/versal-trng/trng"
)

// Write represents a single logged register write.
type Write struct {
	Off uint32
	Val uint32
}

// Device simulates a Versal PMC TRNG register window.
type Device struct {
	// Version is the simulated IP revision
	Version trng.Version

	// CERTF asserts the entropy health failure flag
	CERTF bool
	// DTF asserts the deterministic test failure flag
	DTF bool
	// StuckOutput serves bit-identical output bursts
	StuckOutput bool
	// FreezeQCNT holds the output FIFO count at zero
	FreezeQCNT bool
	// CorruptSerial corrupts the serial seed read back at the given byte
	// index, -1 disables corruption
	CorruptSerial int

	// Writes is the ordered log of all register writes
	Writes []Write

	regs    map[uint32]uint32
	script  []uint32
	counter uint32

	serialCur   byte
	serialBits  int
	serialBytes []byte

	delay int
}

// New returns a simulated device for the given IP revision.
func New(version trng.Version) *Device {
	return &Device{
		Version:       version,
		CorruptSerial: -1,
		regs:          make(map[uint32]uint32),
	}
}

// Queue schedules output bursts, served on core output reads ahead of the
// default counter pattern. The buffer length must be a multiple of 4.
func (d *Device) Queue(buf []byte) {
	for i := 0; i+4 <= len(buf); i += 4 {
		d.script = append(d.script, binary.BigEndian.Uint32(buf[i:]))
	}
}

// QueueKAT schedules the expected known answer test output for the simulated
// IP revision, so that a driver KAT run against the simulated device
// succeeds.
func (d *Device) QueueKAT() {
	switch d.Version {
	case trng.V2:
		d.Queue(katOutputV2[:])
	default:
		d.Queue(katOutputV1[:])
	}
}

func (d *Device) nextWord() uint32 {
	if len(d.script) > 0 {
		val := d.script[0]
		d.script = d.script[1:]

		return val
	}

	if d.StuckOutput {
		return 0x0badbeef
	}

	d.counter++

	return 0x01000000 + d.counter
}

// Read32 implements trng.Port.
func (d *Device) Read32(off uint32) uint32 {
	switch off {
	case trng.TRNG_STATUS:
		val := uint32(trng.STATUS_DONE)

		if !d.FreezeQCNT {
			val |= 4 << trng.STATUS_QCNT_SHIFT
		}

		if d.CERTF {
			val |= trng.STATUS_CERTF
		}

		if d.DTF {
			val |= trng.STATUS_DTF
		}

		return val
	case trng.TRNG_CORE_OUTPUT:
		return d.nextWord()
	case trng.TRNG_CTRL_4:
		if d.CorruptSerial >= 0 && len(d.serialBytes) == d.CorruptSerial {
			return d.regs[off] ^ 1
		}

		return d.regs[off]
	}

	return d.regs[off]
}

// Write32 implements trng.Port.
func (d *Device) Write32(off uint32, val uint32) {
	d.Writes = append(d.Writes, Write{off, val})
	d.regs[off] = val

	if off == trng.TRNG_CTRL_4 {
		d.serialCur = d.serialCur<<1 | byte(val&1)
		d.serialBits++

		if d.serialBits == 8 {
			d.serialBytes = append(d.serialBytes, d.serialCur)
			d.serialCur = 0
			d.serialBits = 0
		}
	}
}

// Delay implements trng.Port, accumulating the requested settle time.
func (d *Device) Delay(us int) {
	d.delay += us
}

// TotalDelay returns the accumulated settle time in microseconds.
func (d *Device) TotalDelay() int {
	return d.delay
}

// Reg returns the last value written to the register at the given offset.
func (d *Device) Reg(off uint32) uint32 {
	return d.regs[off]
}

// SeedRegs returns the external seed register file.
func (d *Device) SeedRegs() (w [12]uint32) {
	for i := 0; i < len(w); i++ {
		w[i] = d.regs[trng.TRNG_EXT_SEED_0+uint32(i)*4]
	}

	return
}

// PerStringRegs returns the personalization string register file.
func (d *Device) PerStringRegs() (w [12]uint32) {
	for i := 0; i < len(w); i++ {
		w[i] = d.regs[trng.TRNG_PER_STRING_0+uint32(i)*4]
	}

	return
}

// SerialSeed returns the bytes reconstructed from the serial seed bit input.
func (d *Device) SerialSeed() []byte {
	return d.serialBytes
}

// WritesTo returns the logged writes to the given offset, in order.
func (d *Device) WritesTo(off uint32) (vals []uint32) {
	for _, w := range d.Writes {
		if w.Off == off {
			vals = append(vals, w.Val)
		}
	}

	return
}

// expected known answer test outputs replayed by QueueKAT
var (
	katOutputV1 = [32]byte{
		0x91, 0x9a, 0x6b, 0x99, 0xd5, 0xbc, 0x2c, 0x11,
		0x5f, 0x3a, 0xfc, 0x0b, 0x0e, 0x7b, 0xc7, 0x69,
		0x4d, 0xe1, 0xe5, 0xfe, 0x59, 0x9e, 0xaa, 0x41,
		0xd3, 0x48, 0xfd, 0x3d, 0xd2, 0xc4, 0x50, 0x1e,
	}

	katOutputV2 = [32]byte{
		0xee, 0xa7, 0x5b, 0xb6, 0x2b, 0x97, 0xf0, 0xc0,
		0x0f, 0xd6, 0xab, 0x13, 0x00, 0x87, 0x7e, 0xf4,
		0x00, 0x7f, 0xd7, 0x56, 0xfe, 0xe5, 0xdf, 0xa6,
		0x55, 0x5b, 0xb2, 0x86, 0xdd, 0x81, 0x73, 0xb2,
	}
)
