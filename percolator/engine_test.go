// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package percolator

import (
	"math/rand"
	"testing"

	"github.com/atomisticnet/dribble/lattice"
	"github.com/atomisticnet/dribble/rules"
)

// chainLattice builds a 1-D periodic chain of n sites along x, each site
// bonded to its immediate left/right neighbor.
func chainLattice(t *testing.T, n int) *lattice.Lattice {
	t.Helper()
	coords := make([][3]float64, n)
	for i := 0; i < n; i++ {
		coords[i] = [3]float64{float64(i) / float64(n), 0, 0}
	}
	lat, err := lattice.New([3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, coords)
	if err != nil {
		t.Fatalf("lattice.New: %v", err)
	}
	refs := make([][]lattice.NeighborRef, n)
	for i := 0; i < n; i++ {
		right := (i + 1) % n
		left := (i - 1 + n) % n
		tRight := 0
		if right < i {
			tRight = 1
		}
		tLeft := 0
		if left > i {
			tLeft = -1
		}
		refs[i] = []lattice.NeighborRef{
			{Site: right, T: [3]int{tRight, 0, 0}},
			{Site: left, T: [3]int{tLeft, 0, 0}},
		}
	}
	if err := lat.SetNeighbors(refs); err != nil {
		t.Fatalf("SetNeighbors: %v", err)
	}
	return lat
}

func TestAddSiteRejectsOutOfRangeAndOccupied(t *testing.T) {
	lat := chainLattice(t, 4)
	e := New(lat, rules.AlwaysTrue{})

	if err := e.AddSite(10); err == nil {
		t.Error("expected error for out-of-range site")
	}
	if err := e.AddSite(0); err != nil {
		t.Fatalf("AddSite(0): %v", err)
	}
	if err := e.AddSite(0); err == nil {
		t.Error("expected error for re-adding an occupied site")
	}
}

func TestSingleSiteHasNoWrappingUntilFullChain(t *testing.T) {
	lat := chainLattice(t, 4)
	e := New(lat, rules.AlwaysTrue{})

	for i := 0; i < 3; i++ {
		if err := e.AddSite(i); err != nil {
			t.Fatalf("AddSite(%d): %v", i, err)
		}
		if e.NumClusPercol() != 0 {
			t.Errorf("after %d sites, NumClusPercol() = %d, want 0", i+1, e.NumClusPercol())
		}
	}
	// Closing the chain (adding the last site) wraps the whole lattice.
	if err := e.AddSite(3); err != nil {
		t.Fatalf("AddSite(3): %v", err)
	}
	if e.NumClusPercol() != 1 {
		t.Errorf("NumClusPercol() = %d, want 1 after closing the ring", e.NumClusPercol())
	}
	if !e.IsWrapping(e.Largest()) {
		t.Error("largest cluster should be wrapping once the ring is closed")
	}
	if e.LargestClusterSize() != 4 {
		t.Errorf("LargestClusterSize() = %d, want 4", e.LargestClusterSize())
	}
}

func TestMergeIsIdempotentForDuplicateDeferredReexamination(t *testing.T) {
	lat := chainLattice(t, 4)
	e := New(lat, rules.AlwaysTrue{})
	for i := 0; i < 3; i++ {
		if err := e.AddSite(i); err != nil {
			t.Fatalf("AddSite(%d): %v", i, err)
		}
	}
	bondsBefore := e.NumBonds()
	// Re-running merge on the same already-bonded pair must not double-count.
	e.merge(e.ClusterOf(0), 0, 0, e.ClusterOf(1), 1, [3]int{0, 0, 0})
	if e.NumBonds() != bondsBefore {
		t.Errorf("NumBonds() = %d after redundant merge, want unchanged %d", e.NumBonds(), bondsBefore)
	}
}

func TestLargestClusterMovesToBridgingCluster(t *testing.T) {
	// Two separate pairs, then bridge them: the bridge site opens the
	// highest cluster id and absorbs both pairs, so largest has to move to
	// it before the absorbed clusters are retired.
	lat := chainLattice(t, 6)
	e := New(lat, rules.AlwaysTrue{})
	for _, s := range []int{0, 1, 3, 4} {
		if err := e.AddSite(s); err != nil {
			t.Fatalf("AddSite(%d): %v", s, err)
		}
	}
	if e.LargestClusterSize() != 2 {
		t.Fatalf("LargestClusterSize() = %d, want 2 before bridging", e.LargestClusterSize())
	}
	if err := e.AddSite(2); err != nil {
		t.Fatalf("AddSite(2): %v", err)
	}
	if e.LargestClusterSize() != 5 {
		t.Errorf("LargestClusterSize() = %d, want 5 after bridging {0,1} and {3,4} via site 2", e.LargestClusterSize())
	}
	if e.NumClusters() != 1 { // site 5 was never added
		t.Errorf("NumClusters() = %d, want 1", e.NumClusters())
	}
}

func TestResetClearsAllState(t *testing.T) {
	lat := chainLattice(t, 4)
	e := New(lat, rules.AlwaysTrue{})
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 4; i++ {
		if err := e.AddRandomSite(r); err != nil {
			t.Fatalf("AddRandomSite: %v", err)
		}
	}
	e.Reset()
	if e.NumOccupied() != 0 || e.NumClusters() != 0 || e.NumBonds() != 0 {
		t.Errorf("Reset left stale state: occupied=%d clusters=%d bonds=%d",
			e.NumOccupied(), e.NumClusters(), e.NumBonds())
	}
	for i := 0; i < 4; i++ {
		if e.ClusterOf(i) >= 0 {
			t.Errorf("site %d reports occupied after Reset", i)
		}
	}
}

// triangleLattice builds three mutually-adjacent sites (a triangle), every
// pair reachable with zero lattice translation. A ring has no triangles,
// so CommonNeighborK can never bond anything on chainLattice; this shape
// gives every pair a shared third neighbor once all three are occupied.
func triangleLattice(t *testing.T) *lattice.Lattice {
	t.Helper()
	coords := [][3]float64{{0, 0, 0}, {1.0 / 3, 0, 0}, {2.0 / 3, 0, 0}}
	lat, err := lattice.New([3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, coords)
	if err != nil {
		t.Fatalf("lattice.New: %v", err)
	}
	zero := [3]int{0, 0, 0}
	refs := [][]lattice.NeighborRef{
		{{Site: 1, T: zero}, {Site: 2, T: zero}},
		{{Site: 0, T: zero}, {Site: 2, T: zero}},
		{{Site: 0, T: zero}, {Site: 1, T: zero}},
	}
	if err := lat.SetNeighbors(refs); err != nil {
		t.Fatalf("SetNeighbors: %v", err)
	}
	return lat
}

func TestCommonNeighborKDefersUntilThresholdMet(t *testing.T) {
	lat := triangleLattice(t)
	e := New(lat, rules.CommonNeighborK{K: 1})

	if err := e.AddSite(0); err != nil {
		t.Fatalf("AddSite(0): %v", err)
	}
	if err := e.AddSite(1); err != nil {
		t.Fatalf("AddSite(1): %v", err)
	}
	if e.NumBonds() != 0 {
		t.Fatalf("NumBonds() = %d, want 0 before a third, shared neighbor exists", e.NumBonds())
	}
	if err := e.AddSite(2); err != nil {
		t.Fatalf("AddSite(2): %v", err)
	}
	// Adding site 2 gives every pair a shared neighbor: 2's own edges bond
	// directly, and the deferred re-check must also retroactively bond the
	// pre-existing 0-1 pair now that 2 is their common neighbor.
	if e.NumBonds() != 3 {
		t.Errorf("NumBonds() = %d, want 3 (all three edges of the triangle)", e.NumBonds())
	}
	if e.LargestClusterSize() != 3 {
		t.Errorf("LargestClusterSize() = %d, want 3", e.LargestClusterSize())
	}
}
