// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package trng

import (
	"bytes"
	"fmt"
)

// known answer test vectors (DRNG mode, derivation function enabled)
var (
	katSeed = [SeedLen]byte{
		0x3b, 0xc3, 0xed, 0x64, 0xf4, 0x80, 0x1c, 0xc7,
		0x14, 0xcc, 0x35, 0xed, 0x57, 0x01, 0x2a, 0xe4,
		0xbc, 0xef, 0xde, 0xf6, 0x7c, 0x46, 0xa6, 0x34,
		0xc6, 0x79, 0xe8, 0x91, 0x5d, 0xb1, 0xdb, 0xa7,
		0x49, 0xa5, 0xbb, 0x4f, 0xed, 0x30, 0xb3, 0x7b,
		0xa9, 0x8b, 0xf5, 0x56, 0x4d, 0x40, 0x18, 0x9f,
	}

	katPersStr = [PersStrLen]byte{
		0xb2, 0x80, 0x7e, 0x4c, 0xd0, 0xe4, 0xe2, 0xa9,
		0x2f, 0x1f, 0x5d, 0xc1, 0xa2, 0x1f, 0x40, 0xfc,
		0x1f, 0x24, 0x5d, 0x42, 0x61, 0x80, 0xe6, 0xe9,
		0x71, 0x05, 0x17, 0x5b, 0xaf, 0x70, 0x30, 0x18,
		0xbc, 0x23, 0x18, 0x15, 0xcb, 0xb8, 0xa6, 0x3e,
		0x83, 0xb8, 0x4a, 0xfe, 0x38, 0xfc, 0x25, 0x87,
	}

	katExpected = [GenLen]byte{
		0x91, 0x9a, 0x6b, 0x99, 0xd5, 0xbc, 0x2c, 0x11,
		0x5f, 0x3a, 0xfc, 0x0b, 0x0e, 0x7b, 0xc7, 0x69,
		0x4d, 0xe1, 0xe5, 0xfe, 0x59, 0x9e, 0xaa, 0x41,
		0xd3, 0x48, 0xfd, 0x3d, 0xd2, 0xc4, 0x50, 0x1e,
	}

	katSeedV2 = [V2SeedLen]byte{
		0x3b, 0xc3, 0xed, 0x64, 0xf4, 0x80, 0x1c, 0xc7,
		0x14, 0xcc, 0x35, 0xed, 0x57, 0x01, 0x2a, 0xe4,
		0xbc, 0xef, 0xde, 0xf6, 0x7c, 0x46, 0xa6, 0x34,
		0xc6, 0x79, 0xe8, 0x91, 0x5d, 0xb1, 0xdb, 0xa7,
		0x49, 0xa5, 0xbb, 0x4f, 0xed, 0x30, 0xb3, 0x7b,
		0xa9, 0x8b, 0xf5, 0x56, 0x4d, 0x40, 0x18, 0x9f,
		0x66, 0x4e, 0x39, 0xc0, 0x60, 0xc8, 0x8e, 0xf4,
		0x1c, 0xb9, 0x9d, 0x7b, 0x97, 0x8b, 0x69, 0x62,
		0x45, 0x0c, 0xd4, 0x85, 0xfc, 0xdc, 0x5a, 0x2b,
		0xfd, 0xab, 0x92, 0x4a, 0x12, 0x52, 0x7d, 0x45,
		0xd2, 0x61, 0x0a, 0x06, 0x74, 0xa7, 0x88, 0x36,
		0x4b, 0xa2, 0x65, 0xee, 0x71, 0x0b, 0x5a, 0x4e,
		0x33, 0xb2, 0x7a, 0x2e, 0xc0, 0xa6, 0xf2, 0x7d,
		0xbd, 0x7d, 0xdf, 0x07, 0xbb, 0xe2, 0x86, 0xff,
		0xf0, 0x8e, 0xa4, 0xb1, 0x46, 0xdb, 0xf7, 0x8c,
		0x3c, 0x62, 0x4d, 0xf0, 0x51, 0x50, 0xe7, 0x85,
	}

	katReseedV2 = [V2SeedLen]byte{
		0xdf, 0x5e, 0x4d, 0x4f, 0x38, 0x9e, 0x2a, 0x3e,
		0xf2, 0xab, 0x46, 0xe3, 0xa0, 0x26, 0x77, 0x84,
		0x0b, 0x9d, 0x29, 0xb0, 0x5d, 0xce, 0xc8, 0xc3,
		0xf9, 0x4d, 0x32, 0xf7, 0xba, 0x6f, 0xa3, 0xb5,
		0x35, 0xcb, 0xc7, 0x5c, 0x62, 0x48, 0x01, 0x65,
		0x3a, 0xaa, 0x34, 0x2d, 0x89, 0x6e, 0xef, 0x6f,
		0x69, 0x96, 0xe7, 0x84, 0xda, 0xef, 0x4e, 0xbe,
		0x27, 0x4e, 0x9f, 0x88, 0xb1, 0xa0, 0x7f, 0x83,
		0xdb, 0x4a, 0xa9, 0x42, 0x01, 0xf1, 0x84, 0x71,
		0xa9, 0xef, 0xb9, 0xe8, 0x7f, 0x81, 0xc7, 0xc1,
		0x6c, 0x5e, 0xac, 0x00, 0x47, 0x34, 0xa1, 0x75,
		0xc0, 0xe8, 0x7f, 0x48, 0x00, 0x45, 0xc9, 0xe9,
		0x41, 0xe3, 0x8d, 0xd8, 0x4a, 0x63, 0xc4, 0x94,
		0x77, 0x59, 0xd9, 0x50, 0x2a, 0x1d, 0x4c, 0x47,
		0x64, 0xa6, 0x66, 0x60, 0x16, 0xe7, 0x29, 0xc0,
		0xb1, 0xcf, 0x3b, 0x3f, 0x54, 0x49, 0x31, 0xd4,
	}

	katExpectedV2 = [GenLen]byte{
		0xee, 0xa7, 0x5b, 0xb6, 0x2b, 0x97, 0xf0, 0xc0,
		0x0f, 0xd6, 0xab, 0x13, 0x00, 0x87, 0x7e, 0xf4,
		0x00, 0x7f, 0xd7, 0x56, 0xfe, 0xe5, 0xdf, 0xa6,
		0x55, 0x5b, 0xb2, 0x86, 0xdd, 0x81, 0x73, 0xb2,
	}
)

// HealthTest exercises the entropy path and the derivation function,
// instantiating and releasing the instance in HRNG mode. It must be run
// before any PTRNG or HRNG use.
func (t *TRNG) HealthTest() error {
	usr := UsrCfg{
		Mode:     HRNG,
		SeedLife: 10,
		DFMul:    7,
	}

	if err := t.Instantiate(usr); err != nil {
		return err
	}

	return t.Release()
}

// KAT runs the known answer test for the configured IP revision,
// instantiating the instance in DRNG mode with fixed vectors and comparing
// the generated output. A mismatch is fatal for the instance.
func (t *TRNG) KAT() error {
	switch t.Version {
	case V1:
		return t.katV1()
	case V2:
		return t.katV2()
	}

	return ErrGeneric
}

func (t *TRNG) katV1() error {
	usr := UsrCfg{
		Mode:     DRNG,
		SeedLife: 5,
		DFMul:    2,
		ISeedEn:  true,
		InitSeed: katSeed[:],
		PStrEn:   true,
		PStr:     katPersStr[:],
	}

	var out [GenLen]byte

	if err := t.Instantiate(usr); err != nil {
		return err
	}

	if err := t.Generate(out[:], false); err != nil {
		return err
	}

	if !bytes.Equal(out[:], katExpected[:]) {
		t.status = Error
		return ErrGeneric
	}

	return t.Release()
}

func (t *TRNG) katV2() error {
	usr := UsrCfg{
		Mode:     DRNG,
		SeedLife: 2,
		DFMul:    7,
		ISeedEn:  true,
		InitSeed: katSeedV2[:],
		PStrEn:   true,
		PStr:     katPersStr[:],
	}

	var out [GenLen]byte

	if err := t.Instantiate(usr); err != nil {
		return err
	}

	if err := t.Reseed(katReseedV2[:], 7); err != nil {
		return err
	}

	if err := t.Generate(out[:], false); err != nil {
		return err
	}

	if !bytes.Equal(out[:], katExpectedV2[:]) {
		t.status = Error
		return ErrGeneric
	}

	return t.Release()
}

// Init performs the full bring-up sequence: known answer test for the
// configured IP revision, health test, instantiation with the given user
// configuration and an initial reseed with its derivation function
// multiplier.
//
// A self test failure is fatal, the calling security subsystem cannot
// proceed with a degraded random number generator, and results in a panic.
func (t *TRNG) Init(usr UsrCfg) error {
	if t.Port == nil {
		return ErrGeneric
	}

	switch t.Version {
	case V1, V2:
		// supported
	default:
		return ErrGeneric
	}

	if err := t.KAT(); err != nil {
		panic(fmt.Sprintf("trng: KAT failure, %v", err))
	}

	if err := t.HealthTest(); err != nil {
		panic(fmt.Sprintf("trng: health test failure, %v", err))
	}

	if err := t.Instantiate(usr); err != nil {
		panic(fmt.Sprintf("trng: instantiation failure, %v", err))
	}

	if err := t.Reseed(nil, usr.DFMul); err != nil {
		panic(fmt.Sprintf("trng: reseed failure, %v", err))
	}

	return nil
}
