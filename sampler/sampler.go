// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sampler

import (
	"context"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/atomisticnet/dribble/config"
	"github.com/atomisticnet/dribble/diag"
	"github.com/atomisticnet/dribble/lattice"
	"github.com/atomisticnet/dribble/percolator"
	"github.com/atomisticnet/dribble/perr"
	"github.com/atomisticnet/dribble/rng"
	"github.com/atomisticnet/dribble/rules"
	"github.com/atomisticnet/dribble/runctl"
)

// bMax is the lattice-wide normalizer for the bond-fraction observable: the
// total number of neighbor-list slots divided by two. The flux observable's
// normalizer is lat.SurfaceArea().
func bMax(lat *lattice.Lattice) float64 {
	total := 0
	for i := 0; i < lat.N(); i++ {
		total += len(lat.Neighbors(i))
	}
	return float64(total) / 2.0
}

// Run executes cfg.Samples independent trials against lat under rule,
// and returns the combined Result. cfg.Workers == 0 resolves to
// runtime.NumCPU(); a resolved worker count of 1 runs the trials
// sequentially, anything larger runs them via runParallel. ch may be nil; diagnostics are then
// silently dropped.
func Run(ctx context.Context, lat *lattice.Lattice, rule rules.Rule, cfg config.SampleConfig, ch *diag.Channel) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rule == nil {
		rule = rules.AlwaysTrue{}
	}

	runID := uuid.NewString()
	ch.Emit(diag.Event{RunID: runID, Op: "sampler.Run", Msg: "starting"})

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	if workers <= 1 {
		return runSequential(ctx, lat, rule, cfg, ch, runID)
	}
	return runParallel(ctx, lat, rule, cfg, ch, runID, workers)
}

func runSequential(ctx context.Context, lat *lattice.Lattice, rule rules.Rule, cfg config.SampleConfig, ch *diag.Channel, runID string) (*Result, error) {
	n := lat.N()
	eng := percolator.New(lat, rule)
	combined := newTrialAccum(n)
	var combinedCounts combinedCounts

	checker := runctl.NewChecker(ctx, cfg.CheckInterval)

	for trial := 0; trial < cfg.Samples; trial++ {
		if checker.CheckNow() {
			return nil, perr.Wrap("sampler.Run", runctl.ErrCancelled)
		}
		eng.Reset()
		r := rng.ForTrial(cfg.Seed, trial)
		budget := runctl.NewBudget(cfg.TrialBudget, cfg.CheckInterval)

		acc := newTrialAccum(n)
		add := func() error {
			if checker.Check() || budget.Check() {
				return perr.Wrap("sampler.runTrial", runctl.ErrCancelled)
			}
			return eng.AddRandomSite(r)
		}
		if err := runTrial(eng, lat, add, acc, bMax(lat), lat.SurfaceArea()); err != nil {
			return nil, perr.WrapSnapshot("sampler.Run", err, snapshotOf(eng))
		}
		foldInto(combined, &combinedCounts, acc, n)
		acc.release()
	}

	result, err := finalize(combined, &combinedCounts, cfg, n, lat, ch, runID)
	combined.release()
	return result, err
}

func runParallel(ctx context.Context, lat *lattice.Lattice, rule rules.Rule, cfg config.SampleConfig, ch *diag.Channel, runID string, workers int) (*Result, error) {
	n := lat.N()
	if workers > cfg.Samples {
		workers = cfg.Samples
	}

	results := make([]*trialAccum, cfg.Samples)
	checker := runctl.NewChecker(ctx, cfg.CheckInterval)

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int, cfg.Samples)
	for i := 0; i < cfg.Samples; i++ {
		jobs <- i
	}
	close(jobs)

	var mu sync.Mutex
	var firstErr error

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			eng := percolator.New(lat, rule)
			bm := bMax(lat)
			surf := lat.SurfaceArea()
			localChecker := runctl.NewChecker(gctx, cfg.CheckInterval)

			for trial := range jobs {
				if localChecker.CheckNow() {
					return perr.Wrap("sampler.RunParallel", runctl.ErrCancelled)
				}
				eng.Reset()
				r := rng.ForTrial(cfg.Seed, trial)
				budget := runctl.NewBudget(cfg.TrialBudget, cfg.CheckInterval)

				acc := newTrialAccum(n)
				add := func() error {
					if localChecker.Check() || budget.Check() {
						return perr.Wrap("sampler.runTrial", runctl.ErrCancelled)
					}
					return eng.AddRandomSite(r)
				}
				if err := runTrial(eng, lat, add, acc, bm, surf); err != nil {
					wrapped := perr.WrapSnapshot("sampler.RunParallel", err, snapshotOf(eng))
					mu.Lock()
					if firstErr == nil {
						firstErr = wrapped
					}
					mu.Unlock()
					return wrapped
				}
				results[trial] = acc
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	combined := newTrialAccum(n)
	var combinedCounts combinedCounts
	for _, acc := range results {
		if acc == nil {
			continue
		}
		foldInto(combined, &combinedCounts, acc, n)
		acc.release()
	}

	result, err := finalize(combined, &combinedCounts, cfg, n, lat, ch, runID)
	combined.release()
	return result, err
}

// combinedCounts accumulates the pc crossing contributions and the
// cumulative wrapping indicator across all trials of a run.
type combinedCounts struct {
	samples int

	siteAnySum, siteTwoSum, siteAllSum float64
	bondAnySum, bondTwoSum, bondAllSum float64

	pwrapCum []float64 // cumulative wrap indicator, length N
}

func foldInto(dst *trialAccum, counts *combinedCounts, src *trialAccum, n int) {
	if counts.pwrapCum == nil {
		counts.pwrapCum = make([]float64, n)
	}
	counts.samples++

	floats.Add(dst.pinf, src.pinf)
	floats.Add(dst.chi, src.chi)
	floats.Add(dst.bondFrac, src.bondFrac)
	floats.Add(dst.inaccess, src.inaccess)
	floats.Add(dst.qn, src.qn)
	floats.Add(dst.flux, src.flux)

	if src.pwrapN > 0 {
		for i := src.pwrapN - 1; i < n; i++ {
			counts.pwrapCum[i]++
		}
	}

	if src.siteAny.step > 0 {
		counts.siteAnySum += float64(src.siteAny.step) / float64(n)
		counts.bondAnySum += src.siteAny.bondFrac
	}
	if src.siteTwo.step > 0 {
		counts.siteTwoSum += float64(src.siteTwo.step) / float64(n)
		counts.bondTwoSum += src.siteTwo.bondFrac
	}
	if src.siteAll.step > 0 {
		counts.siteAllSum += float64(src.siteAll.step) / float64(n)
		counts.bondAllSum += src.siteAll.bondFrac
	}
}

func finalize(acc *trialAccum, counts *combinedCounts, cfg config.SampleConfig, n int, lat *lattice.Lattice, ch *diag.Channel, runID string) (*Result, error) {
	w := 1.0 / float64(cfg.Samples)
	pinf := scale(acc.pinf, w)
	chi := scale(acc.chi, w)
	bondFrac := scale(acc.bondFrac, w)
	inaccess := scale(acc.inaccess, w)
	qn := scale(acc.qn, w)
	flux := scale(acc.flux, w)

	pwrap := make([]float64, n)
	for i := range pwrap {
		pwrap[i] = counts.pwrapCum[i] * w
	}

	samples := float64(cfg.Samples)
	result := &Result{
		Pinf:        buildSeries(pinf, cfg.Ps, n, ch, runID),
		Chi:         buildSeries(chi, cfg.Ps, n, ch, runID),
		Pwrap:       buildSeries(pwrap, cfg.Ps, n, ch, runID),
		BondFrac:    buildSeries(bondFrac, cfg.Ps, n, ch, runID),
		Inaccess:    buildSeries(inaccess, cfg.Ps, n, ch, runID),
		ClusterFrac: buildSeries(qn, cfg.Ps, n, ch, runID),
		Flux:        buildSeries(flux, cfg.Ps, n, ch, runID),
		Pc: PcResult{
			SiteAny: counts.siteAnySum / samples,
			SiteTwo: counts.siteTwoSum / samples,
			SiteAll: counts.siteAllSum / samples,
			BondAny: counts.bondAnySum / samples,
			BondTwo: counts.bondTwoSum / samples,
			BondAll: counts.bondAllSum / samples,
		},
		RunID: runID,
	}
	return result, nil
}

func scale(xs []float64, w float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	floats.Scale(w, out)
	return out
}

// Snapshot is the diagnostic payload attached to a non-percolating-run
// error: the full site-occupation state, for the caller to understand why
// the requested wrapping criterion was never satisfied.
type Snapshot struct {
	Occupied []int
	Clusters map[int32][]int
}

func snapshotOf(eng *percolator.Engine) Snapshot {
	s := Snapshot{Clusters: make(map[int32][]int)}
	for _, c := range eng.LiveClusters() {
		s.Clusters[c] = eng.MembersOf(c)
	}
	for i := 0; i < eng.N(); i++ {
		if eng.ClusterOf(i) >= 0 {
			s.Occupied = append(s.Occupied, i)
		}
	}
	return s
}
