// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package trng_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usbarmory/versal-trng/trng"
	"github.com/usbarmory/versal-trng/trng/trngsim"
)

func newEngine(version trng.Version) (*trng.TRNG, *trngsim.Device) {
	dev := trngsim.New(version)

	rng := &trng.TRNG{
		Base:    0xf1230000,
		Size:    0x10000,
		Version: version,
		Port:    dev,
	}

	return rng, dev
}

func hrngCfg() trng.UsrCfg {
	return trng.UsrCfg{
		Mode:     trng.HRNG,
		SeedLife: 10,
		DFMul:    7,
	}
}

func pattern(n int, start byte) []byte {
	buf := make([]byte, n)

	for i := range buf {
		buf[i] = start + byte(i)
	}

	return buf
}

func drngCfg(version trng.Version) trng.UsrCfg {
	n := trng.SeedLen

	if version == trng.V2 {
		n = trng.V2SeedLen
	}

	return trng.UsrCfg{
		Mode:     trng.DRNG,
		SeedLife: 5,
		DFMul:    2,
		ISeedEn:  true,
		InitSeed: pattern(n, 0x80),
	}
}

func TestInstantiateValidation(t *testing.T) {
	for _, tt := range []struct {
		name string
		usr  trng.UsrCfg
	}{
		{
			"invalid mode",
			trng.UsrCfg{SeedLife: 1, DFMul: 2},
		},
		{
			"DRNG without initial seed",
			trng.UsrCfg{Mode: trng.DRNG, SeedLife: 1, DFMul: 2},
		},
		{
			"HRNG with initial seed",
			trng.UsrCfg{Mode: trng.HRNG, SeedLife: 1, DFMul: 2, ISeedEn: true, InitSeed: pattern(trng.SeedLen, 0)},
		},
		{
			"zero seed life",
			trng.UsrCfg{Mode: trng.HRNG, DFMul: 2},
		},
		{
			"DF multiplier too small",
			trng.UsrCfg{Mode: trng.HRNG, SeedLife: 1, DFMul: 1},
		},
		{
			"DF multiplier too large",
			trng.UsrCfg{Mode: trng.HRNG, SeedLife: 1, DFMul: 10},
		},
		{
			"DF disabled with multiplier",
			trng.UsrCfg{Mode: trng.HRNG, SeedLife: 1, DFMul: 2, DFDisable: true},
		},
		{
			"PTRNG with seed life",
			trng.UsrCfg{Mode: trng.PTRNG, SeedLife: 1, DFMul: 2},
		},
		{
			"PTRNG with personalization string",
			trng.UsrCfg{Mode: trng.PTRNG, DFMul: 2, PStrEn: true, PStr: pattern(trng.PersStrLen, 0)},
		},
		{
			"PTRNG with prediction resistance",
			trng.UsrCfg{Mode: trng.PTRNG, DFMul: 2, PredictEn: true},
		},
		{
			"short initial seed",
			trng.UsrCfg{Mode: trng.DRNG, SeedLife: 1, DFMul: 2, ISeedEn: true, InitSeed: pattern(trng.SeedLen-1, 0)},
		},
		{
			"short personalization string",
			trng.UsrCfg{Mode: trng.HRNG, SeedLife: 1, DFMul: 2, PStrEn: true, PStr: pattern(8, 0)},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			rng, _ := newEngine(trng.V1)

			assert.Error(t, rng.Instantiate(tt.usr))
			assert.Equal(t, trng.Error, rng.Status())
		})
	}
}

func TestInstantiateTwice(t *testing.T) {
	rng, _ := newEngine(trng.V1)

	require.NoError(t, rng.Instantiate(hrngCfg()))
	assert.Error(t, rng.Instantiate(hrngCfg()))
	assert.Equal(t, trng.Error, rng.Status())
}

func TestPTRNGRegisterSilence(t *testing.T) {
	rng, dev := newEngine(trng.V1)

	usr := trng.UsrCfg{
		Mode:  trng.PTRNG,
		DFMul: 7,
	}

	require.NoError(t, rng.Instantiate(usr))
	require.Equal(t, trng.Healthy, rng.Status())

	for i := 0; i < 12; i++ {
		assert.Empty(t, dev.WritesTo(trng.TRNG_EXT_SEED_0+uint32(i)*4))
		assert.Empty(t, dev.WritesTo(trng.TRNG_PER_STRING_0+uint32(i)*4))
	}
}

func TestPTRNGDirectOutput(t *testing.T) {
	rng, dev := newEngine(trng.V1)

	usr := trng.UsrCfg{
		Mode:      trng.PTRNG,
		DFDisable: true,
	}

	require.NoError(t, rng.Instantiate(usr))

	entropy := pattern(trng.GenLen, 0x11)
	dev.Queue(entropy)

	buf := make([]byte, trng.GenLen)
	require.NoError(t, rng.Generate(buf, false))

	assert.Equal(t, entropy, buf)
}

func TestPTRNGConditionedOutput(t *testing.T) {
	entropy := pattern(48, 0x23)

	generate := func() []byte {
		rng, dev := newEngine(trng.V1)

		usr := trng.UsrCfg{
			Mode:  trng.PTRNG,
			DFMul: 2,
		}

		require.NoError(t, rng.Instantiate(usr))

		dev.Queue(entropy)

		buf := make([]byte, trng.GenLen)
		require.NoError(t, rng.Generate(buf, false))

		return buf
	}

	out1 := generate()
	out2 := generate()

	// the derivation function conditions the entropy deterministically
	assert.Equal(t, out1, out2)
	assert.NotEqual(t, entropy[:trng.GenLen], out1)
}

func TestHRNGSmoke(t *testing.T) {
	rng, _ := newEngine(trng.V1)

	require.NoError(t, rng.Instantiate(hrngCfg()))
	require.Equal(t, trng.Healthy, rng.Status())

	buf := make([]byte, trng.GenLen)

	for i := 0; i < 10; i++ {
		require.NoError(t, rng.Generate(buf, false))
		require.Equal(t, uint32(i+1), rng.Stats().ElapsedSeedLife)
	}

	// seed life exhausted, the next generate reseeds implicitly
	require.NoError(t, rng.Generate(buf, false))
	assert.Equal(t, uint32(1), rng.Stats().ElapsedSeedLife)
	assert.Equal(t, trng.Healthy, rng.Status())
}

func TestHRNGPredictionResistance(t *testing.T) {
	rng, _ := newEngine(trng.V1)

	usr := hrngCfg()
	usr.PredictEn = true

	require.NoError(t, rng.Instantiate(usr))

	buf := make([]byte, trng.GenLen)

	require.NoError(t, rng.Generate(buf, false))
	require.Equal(t, uint32(1), rng.Stats().ElapsedSeedLife)

	// a prediction resistance request forces a reseed
	require.NoError(t, rng.Generate(buf, true))
	assert.Equal(t, uint32(1), rng.Stats().ElapsedSeedLife)
}

func TestDRNGSeedLife(t *testing.T) {
	rng, _ := newEngine(trng.V1)

	usr := drngCfg(trng.V1)
	usr.SeedLife = 2

	require.NoError(t, rng.Instantiate(usr))

	buf := make([]byte, trng.GenLen)

	for i := 0; i < 3; i++ {
		require.NoError(t, rng.Generate(buf, false))
	}

	// the seed life is exceeded and DRNG mode cannot reseed on its own
	assert.Error(t, rng.Generate(buf, false))
	assert.Equal(t, trng.Error, rng.Status())
}

func TestDRNGPredictionResistance(t *testing.T) {
	rng, _ := newEngine(trng.V1)

	usr := drngCfg(trng.V1)
	usr.PredictEn = true

	require.NoError(t, rng.Instantiate(usr))

	buf := make([]byte, trng.GenLen)

	require.NoError(t, rng.Generate(buf, true))
	require.NoError(t, rng.Generate(buf, false))

	assert.Error(t, rng.Generate(buf, true))
	assert.Equal(t, trng.Error, rng.Status())
}

func TestPredictionResistanceDisabled(t *testing.T) {
	rng, _ := newEngine(trng.V1)

	require.NoError(t, rng.Instantiate(drngCfg(trng.V1)))

	buf := make([]byte, trng.GenLen)

	assert.Error(t, rng.Generate(buf, true))
	assert.Equal(t, trng.Error, rng.Status())
}

func TestGenerateShortBuffer(t *testing.T) {
	rng, _ := newEngine(trng.V1)

	require.NoError(t, rng.Instantiate(hrngCfg()))

	buf := make([]byte, trng.GenLen-1)

	assert.Error(t, rng.Generate(buf, false))
	assert.Equal(t, trng.Error, rng.Status())
}

func TestGenerateTimeout(t *testing.T) {
	rng, dev := newEngine(trng.V1)

	require.NoError(t, rng.Instantiate(hrngCfg()))

	dev.FreezeQCNT = true

	buf := make([]byte, trng.GenLen)

	assert.Error(t, rng.Generate(buf, false))
	assert.Equal(t, trng.Error, rng.Status())
}

func TestReseedTimeout(t *testing.T) {
	rng, dev := newEngine(trng.V1)

	dev.FreezeQCNT = true

	assert.Error(t, rng.Instantiate(hrngCfg()))
	assert.Equal(t, trng.Error, rng.Status())
}

func TestStuckOutputCatastrophic(t *testing.T) {
	rng, dev := newEngine(trng.V1)

	require.NoError(t, rng.Instantiate(hrngCfg()))

	dev.StuckOutput = true

	buf := make([]byte, trng.GenLen)

	require.Error(t, rng.Generate(buf, false))
	require.Equal(t, trng.Catastrophic, rng.Status())

	// catastrophic state is sticky and refuses register traffic
	writes := len(dev.Writes)

	assert.Error(t, rng.Generate(buf, false))
	assert.Equal(t, trng.Catastrophic, rng.Status())
	assert.Equal(t, writes, len(dev.Writes))
}

func TestDTFCatastrophic(t *testing.T) {
	rng, dev := newEngine(trng.V1)

	require.NoError(t, rng.Instantiate(hrngCfg()))

	dev.DTF = true

	buf := make([]byte, trng.GenLen)

	require.Error(t, rng.Generate(buf, false))
	assert.Equal(t, trng.Catastrophic, rng.Status())
}

func TestCERTFError(t *testing.T) {
	rng, dev := newEngine(trng.V1)

	dev.CERTF = true

	assert.Error(t, rng.Instantiate(hrngCfg()))
	assert.Equal(t, trng.Error, rng.Status())
}

func TestSeedPatternRejection(t *testing.T) {
	rng, dev := newEngine(trng.V1)

	// trivial entropy in the first collected burst
	burst := pattern(16, 0x60)
	copy(burst, []byte{0xaa, 0xaa, 0xaa, 0xaa})
	dev.Queue(burst)

	assert.Error(t, rng.Instantiate(hrngCfg()))
	assert.Equal(t, trng.Error, rng.Status())
}

func TestReseedValidation(t *testing.T) {
	buf := pattern(trng.SeedLen, 0x42)

	t.Run("initial seed rejected", func(t *testing.T) {
		rng, _ := newEngine(trng.V1)
		usr := drngCfg(trng.V1)

		require.NoError(t, rng.Instantiate(usr))

		assert.Error(t, rng.Reseed(usr.InitSeed, 2))
		assert.Equal(t, trng.Error, rng.Status())
	})

	t.Run("DRNG without seed", func(t *testing.T) {
		rng, _ := newEngine(trng.V1)

		require.NoError(t, rng.Instantiate(drngCfg(trng.V1)))

		assert.Error(t, rng.Reseed(nil, 2))
		assert.Equal(t, trng.Error, rng.Status())
	})

	t.Run("HRNG with seed", func(t *testing.T) {
		rng, _ := newEngine(trng.V1)

		require.NoError(t, rng.Instantiate(hrngCfg()))

		assert.Error(t, rng.Reseed(buf, 2))
		assert.Equal(t, trng.Error, rng.Status())
	})

	t.Run("multiplier out of range", func(t *testing.T) {
		rng, _ := newEngine(trng.V1)

		require.NoError(t, rng.Instantiate(drngCfg(trng.V1)))

		assert.Error(t, rng.Reseed(buf, 10))
		assert.Equal(t, trng.Error, rng.Status())
	})

	t.Run("uninitialized", func(t *testing.T) {
		rng, _ := newEngine(trng.V1)

		assert.Error(t, rng.Reseed(buf, 2))
		assert.Equal(t, trng.Error, rng.Status())
	})
}

func TestReseedDRNG(t *testing.T) {
	rng, _ := newEngine(trng.V1)

	require.NoError(t, rng.Instantiate(drngCfg(trng.V1)))

	assert.NoError(t, rng.Reseed(pattern(trng.SeedLen, 0x42), 2))
	assert.Equal(t, trng.Healthy, rng.Status())
	assert.Zero(t, rng.Stats().ElapsedSeedLife)
}

func TestReseedHRNG(t *testing.T) {
	rng, _ := newEngine(trng.V1)

	require.NoError(t, rng.Instantiate(hrngCfg()))

	buf := make([]byte, trng.GenLen)
	require.NoError(t, rng.Generate(buf, false))
	require.Equal(t, uint32(1), rng.Stats().ElapsedSeedLife)

	assert.NoError(t, rng.Reseed(nil, 7))
	assert.Zero(t, rng.Stats().ElapsedSeedLife)
}

func TestSeedRegisterLoadOrder(t *testing.T) {
	rng, dev := newEngine(trng.V1)

	usr := drngCfg(trng.V1)
	usr.DFDisable = true
	usr.DFMul = 0

	require.NoError(t, rng.Instantiate(usr))

	// raw seed words are loaded big-endian in reverse register order
	seed := usr.InitSeed
	regs := dev.SeedRegs()

	for i := 0; i < 12; i++ {
		word := uint32(seed[i*4])<<24 | uint32(seed[i*4+1])<<16 |
			uint32(seed[i*4+2])<<8 | uint32(seed[i*4+3])

		assert.Equal(t, word, regs[11-i])
	}
}

func TestStats(t *testing.T) {
	rng, _ := newEngine(trng.V1)

	require.NoError(t, rng.Instantiate(hrngCfg()))

	buf := make([]byte, trng.GenLen)

	require.NoError(t, rng.Generate(buf, false))
	require.NoError(t, rng.Generate(buf, false))

	stats := rng.Stats()

	assert.Equal(t, uint64(2*trng.GenLen), stats.Bytes)
	assert.Equal(t, uint64(2*trng.GenLen), stats.BytesReseed)
	assert.Equal(t, uint32(2), stats.ElapsedSeedLife)

	require.NoError(t, rng.Reseed(nil, 7))

	stats = rng.Stats()

	// lifetime counter survives a reseed
	assert.Equal(t, uint64(2*trng.GenLen), stats.Bytes)
	assert.Zero(t, stats.BytesReseed)
	assert.Zero(t, stats.ElapsedSeedLife)
}
