// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/rs/cors"

	hwrng "github.com/usbarmory/versal-trng/rngd/internal"
	"github.com/usbarmory/versal-trng/trng"
)

// maximum number of random bytes served per request
const maxRequestBytes = 4096

func randHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	n := trng.SecStrengthLen

	if q := r.URL.Query().Get("n"); q != "" {
		v, err := strconv.Atoi(q)

		if err != nil || v <= 0 || v > maxRequestBytes {
			http.Error(w, "invalid length", http.StatusBadRequest)
			return
		}

		n = v
	}

	buf, err := hwrng.Random(n)

	if err != nil {
		http.Error(w, "random source not available", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	_ = json.NewEncoder(w).Encode(map[string]any{
		"n":    n,
		"rand": hex.EncodeToString(buf),
	})
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	_ = json.NewEncoder(w).Encode(hwrng.Info())
}

func startAPI(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("/rand", randHandler)
	mux.HandleFunc("/status", statusHandler)

	log.Printf("starting HTTP API at %s", addr)
	log.Fatal(http.ListenAndServe(addr, cors.Default().Handler(mux)))
}
