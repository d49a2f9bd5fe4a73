// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package percolator

// clusterTable is an append-only table of per-cluster state, with
// tombstones for retired clusters so that cluster ids never need to be
// rewritten once assigned. Reusing an id would require rewriting every
// cluster[i] that points to it; tombstones are cheap by comparison, and the
// table compacts only when the highest live id is the one being retired.
type clusterTable struct {
	first    []int32
	size     []int32
	wrapping [][3]int32
}

// newCluster appends a fresh, singleton cluster headed at site and returns
// its id.
func (t *clusterTable) newCluster(site int32) int32 {
	id := int32(len(t.first))
	t.first = append(t.first, site)
	t.size = append(t.size, 1)
	t.wrapping = append(t.wrapping, [3]int32{})
	return id
}

// isWrapping reports whether cluster c wraps along any axis.
func (t *clusterTable) isWrapping(c int32) bool {
	w := t.wrapping[c]
	return w[0] > 0 || w[1] > 0 || w[2] > 0
}

// retire tombstones cluster c: if c is the highest live id, the table is
// popped (compacted); otherwise c is converted to a zero-size tombstone
// that is never referenced again by any cluster[i].
func (t *clusterTable) retire(c int32) {
	last := int32(len(t.first) - 1)
	if c == last {
		t.first = t.first[:last]
		t.size = t.size[:last]
		t.wrapping = t.wrapping[:last]
		// Popping may expose a run of trailing tombstones left behind by
		// earlier non-highest retirements; compact them too.
		for len(t.first) > 0 && t.size[len(t.size)-1] == 0 {
			n := len(t.first) - 1
			t.first = t.first[:n]
			t.size = t.size[:n]
			t.wrapping = t.wrapping[:n]
		}
		return
	}
	t.first[c] = -1
	t.size[c] = 0
	t.wrapping[c] = [3]int32{}
}
