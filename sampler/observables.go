// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sampler runs the percolator engine repeatedly over independent
// Monte Carlo trials, accumulates discrete site-count-indexed observables,
// and convolves them with a binomial distribution to obtain the
// probability-indexed curves callers actually want.
package sampler

import (
	"github.com/atomisticnet/dribble/internal/pool"
	"github.com/atomisticnet/dribble/lattice"
	"github.com/atomisticnet/dribble/percolator"
	"github.com/atomisticnet/dribble/perr"
)

// Series holds a discrete, n-indexed observable (index 0 is n=1) and its
// binomial-convolved, p-indexed counterpart aligned with the caller's Ps.
type Series struct {
	N []float64 // Pn[n-1], n = 1..N
	P []float64 // aligned with the caller's config.SampleConfig.Ps
}

// PcResult holds the six percolation-threshold scalars, each averaged
// across trials as n/N (sites) or nbonds/B_max (bonds) at the step the
// criterion was first met.
type PcResult struct {
	SiteAny, SiteTwo, SiteAll float64
	BondAny, BondTwo, BondAll float64
}

// Result aggregates every observable over a sampling run.
type Result struct {
	Pinf        Series // P-infinity: probability a site is in the largest cluster
	Chi         Series // percolation susceptibility
	Pwrap       Series // wrapping probability
	BondFrac    Series // fraction of realized percolating bonds
	Inaccess    Series // fraction of inaccessible sites
	ClusterFrac Series // fraction of wrapping clusters among all clusters (Qn)
	Flux        Series // wrapping paths per unit surface area
	Pc          PcResult
	RunID       string
}

// pcCrossing records, for one trial, the step and bond fraction at which a
// wrapping criterion was first satisfied. Step 0 means never satisfied.
type pcCrossing struct {
	step     int
	bondFrac float64
}

// trialAccum holds the per-n contributions of a single trial before they
// are weighted and folded into the run-level Result. Each field has length
// N, indexed n-1.
type trialAccum struct {
	buf      *pool.Buf
	pinf     []float64
	chi      []float64
	pwrapN   int // n* at which the largest cluster first wraps, 0 if never
	bondFrac []float64
	inaccess []float64
	qn       []float64
	flux     []float64

	siteAny, siteTwo, siteAll pcCrossing
}

// newTrialAccum borrows a pool.Buf sized for n rather than allocating six
// fresh slices; release must be called once the accumulator's contents
// have been folded into a run-level total.
func newTrialAccum(n int) *trialAccum {
	b := pool.Get(n)
	return &trialAccum{
		buf:      b,
		pinf:     b.Pinf,
		chi:      b.Chi,
		bondFrac: b.BondFrac,
		inaccess: b.Inaccess,
		qn:       b.Qn,
		flux:     b.Flux,
	}
}

// release returns the accumulator's backing buffer to the pool. It must not
// be called on an accumulator whose slices are still referenced elsewhere.
func (a *trialAccum) release() {
	pool.Put(a.buf)
	a.buf = nil
}

// runTrial sweeps N sites in random order on eng (already Reset), recording
// per-n observable contributions into acc. bMax and surfArea are the
// lattice-wide normalizers shared by every trial.
func runTrial(eng *percolator.Engine, lat *lattice.Lattice, add func() error, acc *trialAccum, bMax float64, surfArea float64) error {
	n := eng.N()
	wrapSeen := false

	for step := 1; step <= n; step++ {
		if err := add(); err != nil {
			return err
		}

		idx := step - 1
		largest := eng.LargestClusterSize()
		acc.pinf[idx] = float64(largest) / float64(step)

		sumSqOthers := 0.0
		for _, c := range eng.LiveClusters() {
			if c == eng.Largest() {
				continue
			}
			s := float64(eng.ClusterSize(c))
			sumSqOthers += s * s
		}
		acc.chi[idx] = (float64(n) / float64(step)) * sumSqOthers

		bf := 0.0
		if bMax > 0 {
			bf = float64(eng.NumBonds()) / bMax
		}
		acc.bondFrac[idx] = bf
		acc.inaccess[idx] = float64(step-eng.NumPercolating()) / float64(step)
		if eng.NumClusters() > 0 {
			acc.qn[idx] = float64(eng.NumClusPercol()) / float64(eng.NumClusters())
		}
		if surfArea > 0 {
			acc.flux[idx] = float64(eng.NumPaths()) / surfArea
		}

		w := eng.Wrapping(eng.Largest())
		axes := countAxes(w)
		if axes >= 1 && acc.siteAny.step == 0 {
			acc.siteAny = pcCrossing{step: step, bondFrac: bf}
		}
		if axes >= 2 && acc.siteTwo.step == 0 {
			acc.siteTwo = pcCrossing{step: step, bondFrac: bf}
		}
		if axes >= 3 && acc.siteAll.step == 0 {
			acc.siteAll = pcCrossing{step: step, bondFrac: bf}
		}
		if !wrapSeen && sumWrapping(w) > 0 {
			wrapSeen = true
			acc.pwrapN = step
		}
	}

	if !wrapSeen {
		return perr.ErrNonPercolating
	}
	return nil
}

func countAxes(w [3]int32) int {
	n := 0
	for _, v := range w {
		if v > 0 {
			n++
		}
	}
	return n
}

func sumWrapping(w [3]int32) int32 {
	return w[0] + w[1] + w[2]
}
