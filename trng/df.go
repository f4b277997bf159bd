// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package trng

import (
	"encoding/binary"
)

const (
	dfKeyLen = 32
	dfPadVal = 0x80
	dfPadLen = 4

	maxPreDFLen = (maxDFLenMult + 1) * blkSize

	// formatted input layout, all fields big-endian
	dfinIVC     = 0
	dfinVal1    = dfinIVC + 4              // L, raw input length
	dfinVal2    = dfinVal1 + 4             // N, requested output length
	dfinEntropy = dfinVal2 + 4             // raw entropy, seed material
	dfinPStr    = dfinEntropy + maxPreDFLen // personalization string
	dfinPad     = dfinPStr + PersStrLen    // 0x80 terminator, zero filled
	dfinSize    = dfinPad + dfPadLen
)

// dfInput is the formatted derivation function input block.
type dfInput [dfinSize]byte

type dfFlag int

const (
	// dfSeed produces a DRBG seed out of the accumulated entropy
	dfSeed dfFlag = iota
	// dfRand produces random output out of the accumulated entropy
	dfRand
)

// dfKey is the fixed derivation function key (NIST SP 800-90A, §10.3.2).
var dfKey = [dfKeyLen]byte{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
	17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31,
}

// dfAlgorithm distills the entropy available in the formatted input into a
// smaller number of bits on the output, implementing the Block Cipher
// derivation function of NIST SP 800-90A, §10.3.2 and §10.3.3.
//
// The accumulated entropy (t.length bytes of t.dfin) and the optional
// personalization string are packed in the formatted input, the result is
// left in t.dfout: a 48-byte seed for dfSeed, 32 bytes of random output for
// dfRand.
func (t *TRNG) dfAlgorithm(flag dfFlag, pstr []byte) {
	bc := t.cipher()

	dfinLen := dfinSize + t.length

	if flag == dfSeed {
		binary.BigEndian.PutUint32(t.dfin[dfinVal2:], SeedLen)
	} else {
		binary.BigEndian.PutUint32(t.dfin[dfinVal2:], GenLen)
	}

	t.dfin[dfinPad] = dfPadVal

	var xfer int
	var src int
	var off int

	if pstr == nil {
		if t.length > maxPreDFLen+PersStrLen {
			panic("trng: DF entropy length exceeds input buffer")
		}

		dfinLen -= PersStrLen + maxPreDFLen
		binary.BigEndian.PutUint32(t.dfin[dfinVal1:], uint32(t.length))

		xfer = dfPadLen
		src = dfinPad
		off = maxPreDFLen + PersStrLen - t.length
	} else {
		if t.length > maxPreDFLen {
			panic("trng: DF entropy length exceeds input buffer")
		}

		copy(t.dfin[dfinPStr:dfinPad], pstr[0:PersStrLen])

		dfinLen -= maxPreDFLen
		binary.BigEndian.PutUint32(t.dfin[dfinVal1:], uint32(t.length+PersStrLen))

		xfer = dfPadLen + PersStrLen
		src = dfinPStr
		off = maxPreDFLen - t.length
	}

	// Move the tail of the formatted input right after the entropy and
	// clear the freed bytes.
	if off > 0 {
		if xfer > off {
			panic("trng: overlapping data")
		}

		copy(t.dfin[src-off:src-off+xfer], t.dfin[src:src+xfer])

		for i := dfinSize - off; i < dfinSize; i++ {
			t.dfin[i] = 0
		}
	}

	// derivation - first pass (BCC over the formatted input)
	bc.setupKey(dfKey[:])

	for i := 0; i < SeedLen; i += blkSize {
		for j := i; j < i+blkSize; j++ {
			t.dfout[j] = 0
		}

		binary.BigEndian.PutUint32(t.dfin[dfinIVC:], uint32(i/blkSize))
		bc.checksum(t.dfin[:], t.dfout[i:i+blkSize], dfinLen/blkSize)
	}

	// derivation - second pass (chained encryption under the derived key)
	bc.setupKey(t.dfout[:dfKeyLen])

	for i := 0; i < SeedLen; i += blkSize {
		var in []byte

		if i == 0 {
			in = t.dfout[SecStrengthLen : SecStrengthLen+blkSize]
		} else {
			in = t.dfout[i-blkSize : i]
		}

		bc.encrypt(in, t.dfout[i:i+blkSize])
	}
}
