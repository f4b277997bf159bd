// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package pmc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loopbackBuffer struct {
	addr uint64
	buf  []byte
}

func (b *loopbackBuffer) Addr() uint64 {
	return b.addr
}

func (b *loopbackBuffer) Bytes() []byte {
	return b.buf
}

func (b *loopbackBuffer) Free() {
	b.buf = nil
}

// loopbackChannel simulates the PMC firmware end of the mailbox, filling
// requested regions with a deterministic pattern.
type loopbackChannel struct {
	buf  *loopbackBuffer
	cmds [][]uint32
}

func (c *loopbackChannel) Alloc(size int) (Buffer, error) {
	c.buf = &loopbackBuffer{
		addr: 0x7fe00000,
		buf:  make([]byte, size),
	}

	return c.buf, nil
}

func (c *loopbackChannel) Call(cmd []uint32) (uint32, error) {
	c.cmds = append(c.cmds, cmd)

	off := int(uint64(cmd[1])|uint64(cmd[2])<<32) - int(c.buf.addr)
	n := int(cmd[3])

	for i := 0; i < n; i++ {
		c.buf.buf[off+i] = byte(off + i)
	}

	return 0, nil
}

func TestGetRandomBytes(t *testing.T) {
	chn := &loopbackChannel{}
	c := &Client{Chan: chn}

	buf := make([]byte, 70)
	require.NoError(t, c.GetRandomBytes(buf))

	// three chunked requests of at most the security strength each
	require.Equal(t, 3, len(chn.cmds))

	for _, cmd := range chn.cmds {
		assert.Equal(t, uint32(5<<8|22), cmd[0])
	}

	assert.Equal(t, uint32(32), chn.cmds[0][3])
	assert.Equal(t, uint32(32), chn.cmds[1][3])
	assert.Equal(t, uint32(6), chn.cmds[2][3])

	for i := range buf {
		assert.Equal(t, byte(i), buf[i])
	}

	// the shared region is released
	assert.Nil(t, chn.buf.buf)
}
