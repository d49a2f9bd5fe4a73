// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rules

import (
	"testing"

	"github.com/atomisticnet/dribble/lattice"
)

func TestAlwaysTrueNeverDefers(t *testing.T) {
	if (AlwaysTrue{}).Deferred() {
		t.Error("AlwaysTrue should not require deferred re-examination")
	}
	if !(AlwaysTrue{}).IsBonded(0, 1, nil, nil) {
		t.Error("AlwaysTrue must bond every pair")
	}
}

func TestCommonNeighborKZeroBehavesLikeAlwaysTrue(t *testing.T) {
	r := CommonNeighborK{K: 0}
	if !r.IsBonded(0, 1, nil, nil) {
		t.Error("K=0 should bond unconditionally")
	}
}

// triangleNeighbors models three mutually-adjacent sites: every pair's own
// neighbor sets, minus each other, overlap in the third site.
func triangleNeighbors(site int) []lattice.NeighborRef {
	all := []int{0, 1, 2}
	var out []lattice.NeighborRef
	for _, s := range all {
		if s != site {
			out = append(out, lattice.NeighborRef{Site: s})
		}
	}
	return out
}

func TestCommonNeighborKRequiresSharedOccupiedNeighbor(t *testing.T) {
	r := CommonNeighborK{K: 1}

	onlyTwoOccupied := func(site int) bool { return site == 0 || site == 1 }
	if r.IsBonded(0, 1, onlyTwoOccupied, triangleNeighbors) {
		t.Error("0-1 should not bond before their shared neighbor 2 is occupied")
	}

	allOccupied := func(int) bool { return true }
	if !r.IsBonded(0, 1, allOccupied, triangleNeighbors) {
		t.Error("0-1 should bond once shared neighbor 2 is occupied")
	}
}
