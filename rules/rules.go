// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rules defines the pluggable bonding predicate the percolator
// engine consults before realizing a bond between two occupied sites. The
// predicate is modeled as an interface with two implementations so it can
// be passed into the engine as an owned capability rather than reassigned
// at runtime.
package rules

import "github.com/atomisticnet/dribble/lattice"

// Rule decides whether a bond between occupied sites i and j is realized.
// occupied reports whether a site index is currently occupied; neighbors
// returns a site's neighbor list. Implementations must be safe to call
// concurrently from independent percolator.Engine instances (they must not
// carry engine-specific mutable state).
type Rule interface {
	// IsBonded reports whether the bond between i and j percolates.
	IsBonded(i, j int, occupied func(int) bool, neighbors func(int) []lattice.NeighborRef) bool

	// Deferred reports whether installing this rule requires the engine to
	// re-examine existing neighbor pairs after every AddSite, because
	// occupying a new site can retroactively satisfy the predicate for a
	// pair that previously failed it (see CommonNeighborK).
	Deferred() bool
}

// AlwaysTrue is the default rule: every bond between occupied neighbors
// percolates.
type AlwaysTrue struct{}

func (AlwaysTrue) IsBonded(int, int, func(int) bool, func(int) []lattice.NeighborRef) bool {
	return true
}

func (AlwaysTrue) Deferred() bool { return false }

// CommonNeighborK requires at least K occupied sites common to the
// neighbor lists of i and j for the bond i-j to percolate.
type CommonNeighborK struct {
	K int
}

func (r CommonNeighborK) IsBonded(i, j int, occupied func(int) bool, neighbors func(int) []lattice.NeighborRef) bool {
	if r.K <= 0 {
		return true
	}
	iNeighbors := neighbors(i)
	common := 0
	for _, ni := range iNeighbors {
		if ni.Site == j {
			continue
		}
		if !occupied(ni.Site) {
			continue
		}
		for _, nj := range neighbors(j) {
			if nj.Site == ni.Site {
				common++
				break
			}
		}
	}
	return common >= r.K
}

func (r CommonNeighborK) Deferred() bool { return true }
