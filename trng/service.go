// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package trng

import (
	"fmt"
)

// GetRandomBytes fills buf with random data of cryptographic strength,
// generated in 32-byte blocks.
//
// Any generation failure results in a panic as the calling security
// subsystem cannot safely proceed with a degraded random number generator.
func (t *TRNG) GetRandomBytes(buf []byte) {
	var random [SecStrengthLen]byte

	n := len(buf) / SecStrengthLen

	for i := 0; i < n; i++ {
		if err := t.Generate(buf[i*SecStrengthLen:(i+1)*SecStrengthLen], false); err != nil {
			panic(fmt.Sprintf("trng: generation failure, %v", err))
		}
	}

	if tail := len(buf) % SecStrengthLen; tail != 0 {
		if err := t.Generate(random[:], false); err != nil {
			panic(fmt.Sprintf("trng: generation failure, %v", err))
		}

		copy(buf[n*SecStrengthLen:], random[:tail])
	}
}

// Read implements io.Reader filling p with random data, it never returns an
// error (see GetRandomBytes).
func (t *TRNG) Read(p []byte) (int, error) {
	t.GetRandomBytes(p)
	return len(p), nil
}
