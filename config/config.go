// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the typed, validated configuration for neighbor-list
// construction and sampling runs, in the style of the teacher's
// ParseLimits/DefaultParseLimits.
package config

import (
	"time"

	"github.com/atomisticnet/dribble/perr"
)

// NeighborConfig controls periodic neighbor-list construction.
type NeighborConfig struct {
	// Range, if > 0, selects range mode: all (j, T) with distance <= Range.
	// If 0, nearest-neighbor mode is used with tolerance Tolerance.
	Range float64

	// Tolerance (dr) is the slack added to the minimum nearest-neighbor
	// distance in nearest-neighbor mode.
	Tolerance float64

	// BoxA, BoxB, BoxC are the box-partition counts along each basis
	// direction. Zero means "choose automatically" (see neighbors.Build).
	BoxA, BoxB, BoxC int
}

// DefaultNeighborConfig returns nearest-neighbor mode with a small
// tolerance and automatic box partitioning.
func DefaultNeighborConfig() NeighborConfig {
	return NeighborConfig{
		Range:     0,
		Tolerance: 1e-6,
	}
}

// Validate checks the configuration for internal consistency.
func (c NeighborConfig) Validate() error {
	if c.Range < 0 {
		return perr.Wrap("config.NeighborConfig.Validate", perr.ErrInvalidBoxPartition)
	}
	if (c.BoxA < 0) || (c.BoxB < 0) || (c.BoxC < 0) {
		return perr.Wrap("config.NeighborConfig.Validate", perr.ErrInvalidBoxPartition)
	}
	return nil
}

// SampleConfig controls a sampling run.
type SampleConfig struct {
	// Samples is the number of independent Monte Carlo trials.
	Samples int

	// Seed is the root PRNG seed; trial i derives its stream via rng.ForTrial(Seed, i).
	Seed uint64

	// Ps is the list of occupation probabilities at which p-indexed
	// observables are reported.
	Ps []float64

	// Workers is the number of trial-parallel workers. 0 means
	// runtime.NumCPU(), 1 means sequential (no goroutines spawned).
	Workers int

	// TrialBudget caps wall-clock time per trial; 0 disables the cap.
	TrialBudget time.Duration

	// CheckInterval is how often (in AddSite calls) the cooperative
	// cancellation check actually consults the context.
	CheckInterval int

	// DiagBuffer sizes the diagnostic event channel.
	DiagBuffer int
}

// DefaultSampleConfig returns conservative defaults: 1 sample, root seed 1,
// sequential execution, checked every 256 site additions.
func DefaultSampleConfig() SampleConfig {
	return SampleConfig{
		Samples:       1,
		Seed:          1,
		Workers:       1,
		CheckInterval: 256,
		DiagBuffer:    64,
	}
}

// Validate checks the configuration for internal consistency.
func (c SampleConfig) Validate() error {
	if c.Samples <= 0 {
		return perr.Wrap("config.SampleConfig.Validate", perr.ErrInvalidSampleCount)
	}
	for _, p := range c.Ps {
		if p <= 0 || p >= 1 {
			return perr.Wrap("config.SampleConfig.Validate", perr.ErrInvalidProbability)
		}
	}
	if c.Workers < 0 {
		return perr.Wrap("config.SampleConfig.Validate", perr.ErrInvalidSampleCount)
	}
	return nil
}
