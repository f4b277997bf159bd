// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"runtime"

	"github.com/usbarmory/versal-trng/mmio"
	"github.com/usbarmory/versal-trng/rngd/cmd"
	hwrng "github.com/usbarmory/versal-trng/rngd/internal"
	"github.com/usbarmory/versal-trng/trng"
	"github.com/usbarmory/versal-trng/trng/trngsim"
	"github.com/usbarmory/versal-trng/util"
)

const (
	defaultBase = 0xf1230000
	defaultSize = 0x10000

	defaultSeedLife = 256
	defaultDFMul    = 7
)

// default personalization string for HRNG operation
var persString = [trng.PersStrLen]byte{
	0xb2, 0x80, 0x7e, 0x4c, 0xd0, 0xe4, 0xe2, 0xa9,
	0x2f, 0x1f, 0x5d, 0xc1, 0xa2, 0x1f, 0x40, 0xfc,
	0x1f, 0x24, 0x5d, 0x42, 0x61, 0x80, 0xe6, 0xe9,
	0x71, 0x05, 0x17, 0x5b, 0xaf, 0x70, 0x30, 0x18,
	0xbc, 0x23, 0x18, 0x15, 0xcb, 0xb8, 0xa6, 0x3e,
	0x83, 0xb8, 0x4a, 0xfe, 0x38, 0xfc, 0x25, 0x87,
}

var console *util.Console

func init() {
	log.SetFlags(log.Ltime)
	log.SetOutput(os.Stdout)
}

func main() {
	base := flag.Uint64("base", defaultBase, "TRNG base address")
	size := flag.Uint64("size", defaultSize, "TRNG register window size")
	v2 := flag.Bool("2", false, "drive V2 silicon")
	sim := flag.Bool("s", false, "run against a simulated device")
	sshAddr := flag.String("c", ":2222", "SSH console listen address")
	apiAddr := flag.String("l", ":8080", "HTTP API listen address")
	seedLife := flag.Uint("seedlife", defaultSeedLife, "generate operations per seed")
	flag.Parse()

	version := trng.V1

	if *v2 {
		version = trng.V2
	}

	var port trng.Port

	if *sim {
		dev := trngsim.New(version)
		dev.QueueKAT()
		port = dev

		log.Printf("running against a simulated TRNG")
	} else {
		w, err := mmio.Map(uint32(*base), uint32(*size))

		if err != nil {
			log.Fatalf("could not map TRNG, %v", err)
		}

		port = w
	}

	t := &trng.TRNG{
		Base:    uint32(*base),
		Size:    uint32(*size),
		Version: version,
		Port:    port,
	}

	usr := trng.UsrCfg{
		Mode:     trng.HRNG,
		SeedLife: uint32(*seedLife),
		DFMul:    defaultDFMul,
		PStrEn:   true,
		PStr:     persString[:],
	}

	if err := hwrng.Init(t, usr); err != nil {
		log.Fatalf("could not initialize TRNG, %v", err)
	}

	log.Printf("TRNG v%d instantiated (%s mode, seed life %d)", version, usr.Mode, usr.SeedLife)

	listener, err := net.Listen("tcp", *sshAddr)

	if err != nil {
		log.Fatalf("could not initialize SSH listener, %v", err)
	}

	console = &util.Console{
		Banner:   fmt.Sprintf("%s/%s (%s) • Versal PMC TRNG", runtime.GOOS, runtime.GOARCH, runtime.Version()),
		Help:     cmd.Usage(),
		Handler:  cmd.Handle,
		Listener: listener,
	}

	if err = console.Start(); err != nil {
		log.Fatalf("could not initialize SSH server, %v", err)
	}

	// never returns
	startAPI(*apiAddr)
}
