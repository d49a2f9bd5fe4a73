// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lattice holds the immutable geometric description of a periodic
// crystal cell: the basis matrix, fractional site coordinates, and the
// neighbor lists with their lattice-translation vectors.
package lattice

import (
	"math"

	"github.com/atomisticnet/dribble/perr"
	"gonum.org/v1/gonum/mat"
)

// NeighborRef is one neighbor-list slot: site j, reached from the owning
// site i via lattice translation T, i.e. the physical displacement is
// A*(Coords[j] + T - Coords[i]).
type NeighborRef struct {
	Site int
	T    [3]int
}

// Lattice is immutable once constructed by New.
type Lattice struct {
	basis     *mat.Dense // 3x3, rows are basis vectors
	basisInv  *mat.Dense // 3x3 inverse, precomputed
	coords    [][3]float64
	neighbors [][]NeighborRef
}

// New constructs a Lattice from a 3x3 basis (rows are basis vectors) and
// fractional coordinates wrapped into [0,1)^3. Neighbors is left empty;
// callers populate it via SetNeighbors once neighbors.Build has run (the
// two packages are mutually dependent on NeighborRef but not on each
// other's constructors, to avoid an import cycle).
func New(basis [3][3]float64, coords [][3]float64) (*Lattice, error) {
	if len(coords) == 0 {
		return nil, perr.Wrap("lattice.New", perr.ErrEmptyLattice)
	}

	a := mat.NewDense(3, 3, []float64{
		basis[0][0], basis[0][1], basis[0][2],
		basis[1][0], basis[1][1], basis[1][2],
		basis[2][0], basis[2][1], basis[2][2],
	})

	det := mat.Det(a)
	if math.Abs(det) < 1e-12 {
		return nil, perr.Wrap("lattice.New", perr.ErrSingularBasis)
	}

	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return nil, perr.Wrap("lattice.New", perr.ErrSingularBasis)
	}

	wrapped := make([][3]float64, len(coords))
	for i, c := range coords {
		wrapped[i] = wrapUnit(c)
	}

	return &Lattice{
		basis:     a,
		basisInv:  &inv,
		coords:    wrapped,
		neighbors: make([][]NeighborRef, len(coords)),
	}, nil
}

func wrapUnit(c [3]float64) [3]float64 {
	var out [3]float64
	for d := 0; d < 3; d++ {
		f := math.Mod(c[d], 1.0)
		if f < 0 {
			f += 1.0
		}
		out[d] = f
	}
	return out
}

// N returns the number of sites.
func (l *Lattice) N() int { return len(l.coords) }

// Basis returns the 3x3 basis matrix (rows are basis vectors). Callers must
// not mutate the returned matrix.
func (l *Lattice) Basis() *mat.Dense { return l.basis }

// Coord returns the fractional coordinate of site i.
func (l *Lattice) Coord(i int) [3]float64 { return l.coords[i] }

// Coords returns all fractional coordinates. Callers must not mutate the
// returned slice.
func (l *Lattice) Coords() [][3]float64 { return l.coords }

// Neighbors returns the neighbor list of site i.
func (l *Lattice) Neighbors(i int) []NeighborRef { return l.neighbors[i] }

// SetNeighbors installs the full neighbor table, validating the symmetric
// neighbor-list invariant (for every (i, j, T) there exists (j, i, -T)).
// Returns perr.ErrNeighborAsymmetry on violation.
func (l *Lattice) SetNeighbors(neighbors [][]NeighborRef) error {
	if len(neighbors) != len(l.coords) {
		return perr.Wrap("lattice.SetNeighbors", perr.ErrNeighborAsymmetry)
	}
	for i, refs := range neighbors {
		for _, ref := range refs {
			if !hasReciprocal(neighbors, ref.Site, i, ref.T) {
				return perr.WrapSite("lattice.SetNeighbors", i, perr.ErrNeighborAsymmetry)
			}
		}
	}
	l.neighbors = neighbors
	return nil
}

func hasReciprocal(neighbors [][]NeighborRef, j, i int, t [3]int) bool {
	want := [3]int{-t[0], -t[1], -t[2]}
	for _, ref := range neighbors[j] {
		if ref.Site == i && ref.T == want {
			return true
		}
	}
	return false
}

// Displacement returns the fractional displacement c_j + T - c_i for a
// neighbor slot, i.e. the vector that, multiplied by Basis, gives the
// physical bond vector from site i to its neighbor.
func (l *Lattice) Displacement(i int, ref NeighborRef) [3]float64 {
	ci := l.coords[i]
	cj := l.coords[ref.Site]
	return [3]float64{
		cj[0] + float64(ref.T[0]) - ci[0],
		cj[1] + float64(ref.T[1]) - ci[1],
		cj[2] + float64(ref.T[2]) - ci[2],
	}
}

// Physical converts a fractional vector to a physical (Cartesian) vector
// via Basis^T * v (Basis rows are basis vectors, so v_phys = v . A).
func (l *Lattice) Physical(v [3]float64) [3]float64 {
	var out [3]float64
	for d := 0; d < 3; d++ {
		out[d] = v[0]*l.basis.At(0, d) + v[1]*l.basis.At(1, d) + v[2]*l.basis.At(2, d)
	}
	return out
}

// SurfaceArea returns 2*(|a x b| + |a x c| + |b x c|), the total surface
// area of the periodic cell, used by the sampler's flux observable.
func (l *Lattice) SurfaceArea() float64 {
	a := l.row(0)
	b := l.row(1)
	c := l.row(2)
	return 2 * (norm(cross(a, b)) + norm(cross(a, c)) + norm(cross(b, c)))
}

func (l *Lattice) row(i int) [3]float64 {
	return [3]float64{l.basis.At(i, 0), l.basis.At(i, 1), l.basis.At(i, 2)}
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func norm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}
