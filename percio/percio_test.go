// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package percio

import (
	"testing"

	"github.com/atomisticnet/dribble/config"
	"github.com/atomisticnet/dribble/percolator"
	"github.com/atomisticnet/dribble/rules"
)

func TestLoadLatticeBuildsUsableNeighborLists(t *testing.T) {
	basis := [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	coords := [][3]float64{{0, 0, 0}}
	lat, err := LoadLattice(basis, coords, config.DefaultNeighborConfig())
	if err != nil {
		t.Fatalf("LoadLattice: %v", err)
	}
	if len(lat.Neighbors(0)) != 6 {
		t.Fatalf("got %d neighbors, want 6", len(lat.Neighbors(0)))
	}
}

func TestDumpClusterReportsMembersAndWrapping(t *testing.T) {
	basis := [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	coords := [][3]float64{{0, 0, 0}, {0.5, 0, 0}}
	lat, err := LoadLattice(basis, coords, config.DefaultNeighborConfig())
	if err != nil {
		t.Fatalf("LoadLattice: %v", err)
	}
	eng := percolator.New(lat, rules.AlwaysTrue{})
	if err := eng.AddSite(0); err != nil {
		t.Fatalf("AddSite(0): %v", err)
	}
	if err := eng.AddSite(1); err != nil {
		t.Fatalf("AddSite(1): %v", err)
	}
	snap := DumpCluster(lat, eng, eng.Largest())
	if len(snap.Sites) != 2 {
		t.Errorf("got %d members, want 2", len(snap.Sites))
	}
	if len(snap.Coords) != len(snap.Sites) {
		t.Errorf("Coords length %d != Sites length %d", len(snap.Coords), len(snap.Sites))
	}
}
