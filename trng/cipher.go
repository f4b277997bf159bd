// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package trng

const (
	blkSize   = 16
	maxRounds = 14
	schedSize = blkSize * (maxRounds + 1)
)

// sbox is the substitution table of the block cipher used by the derivation
// function.
var sbox = [256]byte{
	0x63, 0x7c, 0x77, 0x7b, 0xf2, 0x6b, 0x6f, 0xc5, 0x30, 0x01,
	0x67, 0x2b, 0xfe, 0xd7, 0xab, 0x76, 0xca, 0x82, 0xc9, 0x7d,
	0xfa, 0x59, 0x47, 0xf0, 0xad, 0xd4, 0xa2, 0xaf, 0x9c, 0xa4,
	0x72, 0xc0, 0xb7, 0xfd, 0x93, 0x26, 0x36, 0x3f, 0xf7, 0xcc,
	0x34, 0xa5, 0xe5, 0xf1, 0x71, 0xd8, 0x31, 0x15, 0x04, 0xc7,
	0x23, 0xc3, 0x18, 0x96, 0x05, 0x9a, 0x07, 0x12, 0x80, 0xe2,
	0xeb, 0x27, 0xb2, 0x75, 0x09, 0x83, 0x2c, 0x1a, 0x1b, 0x6e,
	0x5a, 0xa0, 0x52, 0x3b, 0xd6, 0xb3, 0x29, 0xe3, 0x2f, 0x84,
	0x53, 0xd1, 0x00, 0xed, 0x20, 0xfc, 0xb1, 0x5b, 0x6a, 0xcb,
	0xbe, 0x39, 0x4a, 0x4c, 0x58, 0xcf, 0xd0, 0xef, 0xaa, 0xfb,
	0x43, 0x4d, 0x33, 0x85, 0x45, 0xf9, 0x02, 0x7f, 0x50, 0x3c,
	0x9f, 0xa8, 0x51, 0xa3, 0x40, 0x8f, 0x92, 0x9d, 0x38, 0xf5,
	0xbc, 0xb6, 0xda, 0x21, 0x10, 0xff, 0xf3, 0xd2, 0xcd, 0x0c,
	0x13, 0xec, 0x5f, 0x97, 0x44, 0x17, 0xc4, 0xa7, 0x7e, 0x3d,
	0x64, 0x5d, 0x19, 0x73, 0x60, 0x81, 0x4f, 0xdc, 0x22, 0x2a,
	0x90, 0x88, 0x46, 0xee, 0xb8, 0x14, 0xde, 0x5e, 0x0b, 0xdb,
	0xe0, 0x32, 0x3a, 0x0a, 0x49, 0x06, 0x24, 0x5c, 0xc2, 0xd3,
	0xac, 0x62, 0x91, 0x95, 0xe4, 0x79, 0xe7, 0xc8, 0x37, 0x6d,
	0x8d, 0xd5, 0x4e, 0xa9, 0x6c, 0x56, 0xf4, 0xea, 0x65, 0x7a,
	0xae, 0x08, 0xba, 0x78, 0x25, 0x2e, 0x1c, 0xa6, 0xb4, 0xc6,
	0xe8, 0xdd, 0x74, 0x1f, 0x4b, 0xbd, 0x8b, 0x8a, 0x70, 0x3e,
	0xb5, 0x66, 0x48, 0x03, 0xf6, 0x0e, 0x61, 0x35, 0x57, 0xb9,
	0x86, 0xc1, 0x1d, 0x9e, 0xe1, 0xf8, 0x98, 0x11, 0x69, 0xd9,
	0x8e, 0x94, 0x9b, 0x1e, 0x87, 0xe9, 0xce, 0x55, 0x28, 0xdf,
	0x8c, 0xa1, 0x89, 0x0d, 0xbf, 0xe6, 0x42, 0x68, 0x41, 0x99,
	0x2d, 0x0f, 0xb0, 0x54, 0xbb, 0x16,
}

// blockCipher is the fixed-rounds block cipher driving the derivation
// function, it is not meant for any other use.
type blockCipher struct {
	sbx1 [256]byte
	sbx2 [256]byte
	sbx3 [256]byte

	schedule [schedSize]byte
	rounds   int
}

func newBlockCipher() *blockCipher {
	c := &blockCipher{
		sbx1: sbox,
	}

	for i := 0; i < len(sbox); i++ {
		c.sbx2[i] = (sbox[i] << 1) ^ (((sbox[i] >> 7) & 1) * 0x1b)
		c.sbx3[i] = c.sbx2[i] ^ sbox[i]
	}

	return c
}

func (c *blockCipher) rota4(a, b, d, e *byte) {
	t := *a

	*a = c.sbx1[*b]
	*b = c.sbx1[*d]
	*d = c.sbx1[*e]
	*e = c.sbx1[t]
}

func (c *blockCipher) rota2(a, b *byte) {
	t := *a

	*a = c.sbx1[*b]
	*b = c.sbx1[t]
}

func (c *blockCipher) sbox4(a, b, d, e *byte) {
	*a = c.sbx1[*a]
	*b = c.sbx1[*b]
	*d = c.sbx1[*d]
	*e = c.sbx1[*e]
}

func xorb(res, in []byte) {
	for i := 0; i < blkSize; i++ {
		res[i] ^= in[i]
	}
}

func (c *blockCipher) setKey(res, src []byte, round int) {
	copy(res[0:blkSize], src)
	xorb(res, c.schedule[round*blkSize:])
}

// mixColumnSbox applies the substitution and the column mix in a single pass
// through the precomputed tables.
func (c *blockCipher) mixColumnSbox(dst, f []byte) {
	for i := 0; i < 4; i++ {
		a := 4 * i
		b := (0x5 + a) % 16
		d := (0xa + a) % 16
		e := (0xf + a) % 16

		dst[0+a] = c.sbx2[f[a]] ^ c.sbx3[f[b]] ^ c.sbx1[f[d]] ^ c.sbx1[f[e]]
		dst[1+a] = c.sbx1[f[a]] ^ c.sbx2[f[b]] ^ c.sbx3[f[d]] ^ c.sbx1[f[e]]
		dst[2+a] = c.sbx1[f[a]] ^ c.sbx1[f[b]] ^ c.sbx2[f[d]] ^ c.sbx3[f[e]]
		dst[3+a] = c.sbx3[f[a]] ^ c.sbx1[f[b]] ^ c.sbx1[f[d]] ^ c.sbx2[f[e]]
	}
}

func (c *blockCipher) shiftRowSbox(f []byte) {
	c.sbox4(&f[0], &f[4], &f[8], &f[12])
	c.rota4(&f[1], &f[5], &f[9], &f[13])
	c.rota2(&f[2], &f[10])
	c.rota2(&f[6], &f[14])
	c.rota4(&f[15], &f[11], &f[7], &f[3])
}

func (c *blockCipher) encrypt(in, out []byte) {
	var fa, fb [blkSize]byte

	c.setKey(fa[:], in, 0)

	round := 1
	for ; round < c.rounds; round++ {
		c.mixColumnSbox(fb[:], fa[:])
		c.setKey(fa[:], fb[:], round)
	}

	c.shiftRowSbox(fa[:])
	c.setKey(out, fa[:], round)
}

// checksum computes a CBC-MAC style chained encryption of nblk blocks of in
// over iv.
func (c *blockCipher) checksum(in []byte, iv []byte, nblk int) {
	for i := 0; i < nblk; i++ {
		xorb(iv, in[i*blkSize:])
		c.encrypt(iv, iv)
	}
}

func (c *blockCipher) setupKey(k []byte) {
	rcon := byte(1)
	klen := len(k)

	c.rounds = maxRounds
	copy(c.schedule[:], k)

	for i := klen; i < schedSize; i += 4 {
		t0 := c.schedule[i-4]
		t1 := c.schedule[i-3]
		t2 := c.schedule[i-2]
		t3 := c.schedule[i-1]

		switch {
		case i%klen == 0:
			c.rota4(&t0, &t1, &t2, &t3)
			t0 ^= rcon
			rcon = (rcon << 1) ^ (((rcon >> 7) & 1) * 0x1b)
		case i%klen == 16:
			c.sbox4(&t0, &t1, &t2, &t3)
		}

		ik := i - klen
		c.schedule[i+0] = c.schedule[ik+0] ^ t0
		c.schedule[i+1] = c.schedule[ik+1] ^ t1
		c.schedule[i+2] = c.schedule[ik+2] ^ t2
		c.schedule[i+3] = c.schedule[ik+3] ^ t3
	}
}
