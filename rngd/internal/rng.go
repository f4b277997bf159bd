// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package hwrng

import (
	"errors"
	"fmt"
	"sync"

	"github.com/canonical/go-sp800.90a-drbg"

	"github.com/usbarmory/versal-trng/trng"
)

var (
	mu  sync.Mutex
	hw  *trng.TRNG
	usr trng.UsrCfg

	// software DRBG serving reads while the hardware is yielded
	fallback *drbg.DRBG
)

// State describes the active random number source.
type State struct {
	Status string     `json:"status"`
	Source string     `json:"source"`
	Stats  trng.Stats `json:"stats"`
}

// Init brings up the hardware instance with the given user configuration,
// the instance serves all following requests.
func Init(t *trng.TRNG, cfg trng.UsrCfg) error {
	mu.Lock()
	defer mu.Unlock()

	hw = t
	usr = cfg
	fallback = nil

	return t.Init(cfg)
}

// Random returns n random bytes from the active source.
func Random(n int) ([]byte, error) {
	mu.Lock()
	defer mu.Unlock()

	buf := make([]byte, n)

	if fallback != nil {
		if _, err := fallback.Read(buf); err != nil {
			return nil, err
		}

		return buf, nil
	}

	if hw == nil || hw.Status() != trng.Healthy {
		return nil, errors.New("random source not available")
	}

	hw.GetRandomBytes(buf)

	return buf, nil
}

// Reseed re-keys the hardware DRBG from the entropy source.
func Reseed() error {
	mu.Lock()
	defer mu.Unlock()

	if hw == nil || fallback != nil {
		return errors.New("hardware not active")
	}

	return hw.Reseed(nil, usr.DFMul)
}

// Yield re-configures the service entropy source to a pure software one
// (NIST SP 800-90A DRBG) to allow scenarios where it is desirable to give
// exclusive TRNG access to another agent.
func Yield() error {
	mu.Lock()
	defer mu.Unlock()

	if hw == nil || fallback != nil {
		return errors.New("hardware not active")
	}

	seed := make([]byte, 256)
	hw.GetRandomBytes(seed)

	nonce := make([]byte, 128)
	hw.GetRandomBytes(nonce)

	rng, err := drbg.NewCTRWithExternalEntropy(32, seed, nonce, usr.PStr, nil)

	if err != nil {
		panic(fmt.Sprintf("could not instantiate DRBG, %v", err))
	}

	fallback = rng

	return hw.Release()
}

// Restore re-initializes the hardware as the service entropy source.
func Restore() error {
	mu.Lock()
	defer mu.Unlock()

	if hw == nil || fallback == nil {
		return errors.New("hardware already active")
	}

	if err := hw.Instantiate(usr); err != nil {
		return err
	}

	if err := hw.Reseed(nil, usr.DFMul); err != nil {
		return err
	}

	fallback = nil

	return nil
}

// KAT releases the hardware instance, re-runs the known answer test for its
// IP revision and brings the instance back in service.
func KAT() error {
	mu.Lock()
	defer mu.Unlock()

	if hw == nil {
		return errors.New("hardware not active")
	}

	if hw.Status() == trng.Healthy {
		if err := hw.Release(); err != nil {
			return err
		}
	}

	if err := hw.KAT(); err != nil {
		return err
	}

	if err := hw.Instantiate(usr); err != nil {
		return err
	}

	return hw.Reseed(nil, usr.DFMul)
}

// Info returns the active source state.
func Info() State {
	mu.Lock()
	defer mu.Unlock()

	s := State{
		Status: "uninitialized",
		Source: "none",
	}

	if fallback != nil {
		s.Source = "sp800-90a software DRBG"
		s.Status = "healthy"
		return s
	}

	if hw != nil {
		s.Source = fmt.Sprintf("versal-trng %s", usr.Mode)
		s.Status = hw.Status().String()
		s.Stats = hw.Stats()
	}

	return s
}
