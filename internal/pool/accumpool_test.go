// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pool

import "testing"

func TestGetReturnsZeroedBuffersOfRequestedLength(t *testing.T) {
	b := Get(8)
	for _, s := range [][]float64{b.Pinf, b.Chi, b.BondFrac, b.Inaccess, b.Qn, b.Flux} {
		if len(s) != 8 {
			t.Fatalf("slice length = %d, want 8", len(s))
		}
		for _, v := range s {
			if v != 0 {
				t.Fatalf("expected a zeroed slice, found %v", v)
			}
		}
	}
	Put(b)
}

func TestPutRecycledBufferComesBackZeroed(t *testing.T) {
	b := Get(4)
	b.Pinf[0] = 1.5
	Put(b)

	b2 := Get(4)
	if b2.Pinf[0] != 0 {
		t.Errorf("recycled buffer still carries stale data: %v", b2.Pinf[0])
	}
}

func TestPutIgnoresNilAndEmpty(t *testing.T) {
	Put(nil)
	Put(&Buf{})
}
