// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package percio is the thin external-interface surface the core hands to
// a real crystal-structure file reader and a cluster-snapshot writer. It
// deliberately implements neither: no crystallography file format, no
// external crystallography library dependency, and no CLI live here (see
// cmd/percol for a minimal worked caller). This package only adapts
// in-memory data already shaped like a lattice into a *lattice.Lattice,
// and renders an occupied cluster's member sites for external diagnosis.
package percio

import (
	"github.com/atomisticnet/dribble/config"
	"github.com/atomisticnet/dribble/lattice"
	"github.com/atomisticnet/dribble/neighbors"
	"github.com/atomisticnet/dribble/percolator"
)

// LoadLattice builds a *lattice.Lattice from an in-memory basis and
// fractional coordinate list, constructing its neighbor list per cfg. A
// real file-format adapter (CIF, POSCAR, ...) lives outside this module and
// calls this function once it has parsed basis/coords from disk.
func LoadLattice(basis [3][3]float64, coords [][3]float64, cfg config.NeighborConfig) (*lattice.Lattice, error) {
	lat, err := lattice.New(basis, coords)
	if err != nil {
		return nil, err
	}
	refs, err := neighbors.Build(lat.Basis(), lat.Coords(), cfg)
	if err != nil {
		return nil, err
	}
	if err := lat.SetNeighbors(refs); err != nil {
		return nil, err
	}
	return lat, nil
}

// Snapshot is a rendered view of one cluster's membership, suitable for
// handing to an external structure-writer (e.g. to dump a CIF/XYZ file
// highlighting a non-percolating configuration for debugging). This
// package does not write any file itself.
type Snapshot struct {
	ClusterID int32
	Sites     []int
	Coords    [][3]float64
	Wrapping  [3]int32
}

// DumpCluster enumerates cluster c's member sites and their fractional
// coordinates for external diagnosis.
func DumpCluster(lat *lattice.Lattice, eng *percolator.Engine, c int32) Snapshot {
	members := eng.MembersOf(c)
	coords := make([][3]float64, len(members))
	for i, site := range members {
		coords[i] = lat.Coord(site)
	}
	return Snapshot{
		ClusterID: c,
		Sites:     members,
		Coords:    coords,
		Wrapping:  eng.Wrapping(c),
	}
}
