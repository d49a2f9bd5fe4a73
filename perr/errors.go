// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package perr defines the structured error types shared by the lattice,
// neighbors, percolator, and sampler packages.
package perr

import (
	"errors"
	"fmt"
)

// Error wraps an error with operation context, optionally carrying a
// diagnostic snapshot (e.g. the full site occupation of a non-percolating
// run) for the caller to inspect.
type Error struct {
	Op       string // operation that failed, e.g. "percolator.AddSite"
	Site     int    // site index if applicable, -1 if not
	Err      error
	Snapshot any // optional diagnostic payload; nil unless populated
}

func (e *Error) Error() string {
	if e.Site >= 0 {
		return fmt.Sprintf("dribble: %s (site %d): %v", e.Op, e.Site, e.Err)
	}
	return fmt.Sprintf("dribble: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Common sentinel errors.
var (
	// ErrEmptyLattice indicates the lattice was constructed with zero sites.
	ErrEmptyLattice = errors.New("lattice has no sites")

	// ErrSingularBasis indicates the 3x3 basis matrix is not invertible.
	ErrSingularBasis = errors.New("basis matrix is singular")

	// ErrInvalidBoxPartition indicates a box partition collapsed to zero
	// boxes along some axis.
	ErrInvalidBoxPartition = errors.New("box partition has a zero dimension")

	// ErrSiteOccupied indicates AddSite was called on an already-occupied site.
	ErrSiteOccupied = errors.New("site is already occupied")

	// ErrNeighborAsymmetry indicates the neighbor list built for a lattice
	// violates the symmetric-translation invariant.
	ErrNeighborAsymmetry = errors.New("neighbor list is not translation-symmetric")

	// ErrNonPercolating indicates a sampling trial exhausted all N sites
	// without satisfying the requested wrapping criterion.
	ErrNonPercolating = errors.New("rule never percolates")

	// ErrInvalidProbability indicates a requested p value was outside (0,1).
	ErrInvalidProbability = errors.New("probability must lie in (0,1)")

	// ErrInvalidSampleCount indicates N_samples <= 0.
	ErrInvalidSampleCount = errors.New("sample count must be positive")
)

// Wrap wraps err with operation context. Returns nil if err is nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Site: -1, Err: err}
}

// WrapSite wraps err with operation and site context. Returns nil if err is nil.
func WrapSite(op string, site int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Site: site, Err: err}
}

// WrapSnapshot wraps err with operation context and a diagnostic snapshot.
// Used for ErrNonPercolating, where the caller needs the full occupation
// state to understand why the run failed.
func WrapSnapshot(op string, err error, snapshot any) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Site: -1, Err: err, Snapshot: snapshot}
}

// Warning is a non-fatal numeric condition (e.g. binomial underflow at
// extreme p) surfaced on the diagnostic channel only; it never propagates
// to the caller as a returned error.
type Warning struct {
	Op  string
	Msg string
}

func (w *Warning) Error() string {
	return fmt.Sprintf("dribble: warning: %s: %s", w.Op, w.Msg)
}
