// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rng

import "testing"

func TestForTrialIsDeterministic(t *testing.T) {
	a := ForTrial(42, 7)
	b := ForTrial(42, 7)
	for i := 0; i < 10; i++ {
		va, vb := a.Int63(), b.Int63()
		if va != vb {
			t.Fatalf("draw %d diverged: %d != %d", i, va, vb)
		}
	}
}

func TestForTrialDecorrelatesTrialIndex(t *testing.T) {
	a := ForTrial(42, 1)
	b := ForTrial(42, 2)
	same := true
	for i := 0; i < 5; i++ {
		if a.Int63() != b.Int63() {
			same = false
			break
		}
	}
	if same {
		t.Error("distinct trial indices produced identical streams")
	}
}

func TestForTrialDecorrelatesRootSeed(t *testing.T) {
	a := ForTrial(1, 0)
	b := ForTrial(2, 0)
	if a.Int63() == b.Int63() {
		t.Error("distinct root seeds produced an identical first draw")
	}
}
