// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"golang.org/x/term"

	hwrng "github.com/usbarmory/versal-trng/rngd/internal"
)

// maximum number of random bytes served per request
const maxRandBytes = 4096

func init() {
	Add(Cmd{
		Name:    "rand",
		Args:    1,
		Pattern: regexp.MustCompile(`^rand (\d+)$`),
		Syntax:  "<n>",
		Help:    "generate n random bytes",
		Fn:      randCmd,
	})

	Add(Cmd{
		Name: "stat",
		Help: "random source state and statistics",
		Fn:   statCmd,
	})

	Add(Cmd{
		Name: "reseed",
		Help: "reseed the DRBG from the entropy source",
		Fn:   reseedCmd,
	})

	Add(Cmd{
		Name: "kat",
		Help: "re-run the known answer test",
		Fn:   katCmd,
	})

	Add(Cmd{
		Name: "yield",
		Help: "yield the TRNG, serve from software DRBG",
		Fn:   yieldCmd,
	})

	Add(Cmd{
		Name: "restore",
		Help: "restore the TRNG as random source",
		Fn:   restoreCmd,
	})
}

func randCmd(_ *term.Terminal, arg []string) (res string, err error) {
	n, err := strconv.Atoi(arg[0])

	if err != nil {
		return "", fmt.Errorf("invalid length, %v", err)
	}

	if n <= 0 || n > maxRandBytes {
		return "", errors.New("length out of range")
	}

	buf, err := hwrng.Random(n)

	if err != nil {
		return
	}

	return hex.EncodeToString(buf), nil
}

func statCmd(_ *term.Terminal, _ []string) (res string, err error) {
	info := hwrng.Info()

	res = fmt.Sprintf("source: %s\nstatus: %s\nbytes: %d (%d since reseed)\nelapsed seed life: %d",
		info.Source, info.Status,
		info.Stats.Bytes, info.Stats.BytesReseed,
		info.Stats.ElapsedSeedLife)

	return
}

func reseedCmd(_ *term.Terminal, _ []string) (res string, err error) {
	if err = hwrng.Reseed(); err != nil {
		return
	}

	return "reseeded", nil
}

func katCmd(_ *term.Terminal, _ []string) (res string, err error) {
	if err = hwrng.KAT(); err != nil {
		return
	}

	return "KAT pass", nil
}

func yieldCmd(_ *term.Terminal, _ []string) (res string, err error) {
	if err = hwrng.Yield(); err != nil {
		return
	}

	return "TRNG yielded, serving from software DRBG", nil
}

func restoreCmd(_ *term.Terminal, _ []string) (res string, err error) {
	if err = hwrng.Restore(); err != nil {
		return
	}

	return "TRNG restored", nil
}
