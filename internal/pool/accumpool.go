// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pool provides a sync.Pool-backed recycler for the fixed-size
// float64 slices the sampler allocates once per Monte Carlo trial. Running
// thousands of trials each touching six N-length slices creates enough
// garbage to matter at large N; reuse avoids re-zeroing an allocator's
// worth of memory on every trial.
package pool

import "sync"

// Buf is a reusable set of N-length float64 slices, one per accumulated
// observable. Callers index by name rather than holding onto a typed
// struct so the pool can be shared across accumulator shapes without a
// dependency on the sampler package.
type Buf struct {
	Pinf, Chi, BondFrac, Inaccess, Qn, Flux []float64
}

var pools sync.Map // n (int) -> *sync.Pool

func poolFor(n int) *sync.Pool {
	if p, ok := pools.Load(n); ok {
		return p.(*sync.Pool)
	}
	p := &sync.Pool{
		New: func() interface{} {
			return &Buf{
				Pinf:     make([]float64, n),
				Chi:      make([]float64, n),
				BondFrac: make([]float64, n),
				Inaccess: make([]float64, n),
				Qn:       make([]float64, n),
				Flux:     make([]float64, n),
			}
		},
	}
	actual, _ := pools.LoadOrStore(n, p)
	return actual.(*sync.Pool)
}

// Get returns a zeroed Buf sized for n, from the pool bucket for n.
func Get(n int) *Buf {
	b := poolFor(n).Get().(*Buf)
	zero(b.Pinf)
	zero(b.Chi)
	zero(b.BondFrac)
	zero(b.Inaccess)
	zero(b.Qn)
	zero(b.Flux)
	return b
}

// Put returns b to the pool bucket keyed by its slice length, creating that
// bucket if none exists yet, so a Buf is never pooled under another length.
func Put(b *Buf) {
	if b == nil || len(b.Pinf) == 0 {
		return
	}
	poolFor(len(b.Pinf)).Put(b)
}

func zero(xs []float64) {
	for i := range xs {
		xs[i] = 0
	}
}
