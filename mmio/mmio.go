// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package mmio maps device register windows from physical memory, providing
// 32-bit ordered accessors for them.
package mmio

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

const devMem = "/dev/mem"

// Window represents a memory mapped device register window.
type Window struct {
	mem []byte
}

// Map maps size bytes of physical memory at base, which must be page
// aligned.
func Map(base uint32, size uint32) (*Window, error) {
	pageSize := uint32(os.Getpagesize())

	if base%pageSize != 0 {
		return nil, fmt.Errorf("base address %#x is not page aligned", base)
	}

	f, err := os.OpenFile(devMem, os.O_RDWR|os.O_SYNC, 0)

	if err != nil {
		return nil, fmt.Errorf("could not open %s, %w", devMem, err)
	}
	defer f.Close()

	mem, err := unix.Mmap(int(f.Fd()), int64(base), int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)

	if err != nil {
		return nil, fmt.Errorf("could not map %#x+%#x, %w", base, size, err)
	}

	return &Window{mem: mem}, nil
}

// Read32 returns the 32-bit register at the given offset.
func (w *Window) Read32(off uint32) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(&w.mem[off])))
}

// Write32 sets the 32-bit register at the given offset. Atomic accessors
// keep device writes in program order.
func (w *Window) Write32(off uint32, val uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&w.mem[off])), val)
}

// Delay sleeps for at least the given number of microseconds.
func (w *Window) Delay(us int) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}

// Close unmaps the window.
func (w *Window) Close() error {
	mem := w.mem
	w.mem = nil

	return unix.Munmap(mem)
}
