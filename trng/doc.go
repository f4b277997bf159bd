// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package trng implements a driver for the Xilinx Versal PMC True Random
// Number Generator, a hardware block combining a ring oscillator entropy
// source, a deterministic random bit generator (DRBG) and health test logic.
//
// The block operates in three modes:
//
// DRNG, deterministic mode: only the DRBG portion is used, the caller
// provides the external seed.
//
// PTRNG, entropy mode: the digitized entropy source output is returned as
// random data.
//
// HRNG, hybrid mode: the entropy source seeds the DRBG which in turn
// generates the random data.
//
// NIST SP 800-90A practically requires CTR_DRBG based generators to include a
// derivation function. The version of the IP in the Versal PMC does not
// implement one in silicon, a software derivation function (§10.3.2, §10.3.3)
// is therefore part of this driver and each mode can be operated with or
// without it.
//
// Register access is abstracted behind the Port interface so that the state
// machine can be exercised against a simulated device, see the trngsim
// package.
//
// The driver is not safe for concurrent use, callers serialize access to an
// instance.
package trng
