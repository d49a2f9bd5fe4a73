// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build amd64
// +build amd64

package neighbors

import "golang.org/x/sys/cpu"

// hasAVX2 reports whether the running CPU supports AVX2. On amd64 with
// AVX2 present, scanBox processes candidate sites four at a time via
// normSq4, which the Go compiler auto-vectorizes more readily than the
// scalar loop.
func hasAVX2() bool {
	return cpu.X86.HasAVX2
}

// normSq4 computes four squared norms at once. Kept as a flat function of
// plain float64s, rather than operating on [4]float64 arrays by pointer,
// so the compiler can keep all operands in registers.
func normSq4(x0, y0, z0, x1, y1, z1, x2, y2, z2, x3, y3, z3 float64) (float64, float64, float64, float64) {
	return x0*x0 + y0*y0 + z0*z0,
		x1*x1 + y1*y1 + z1*z1,
		x2*x2 + y2*y2 + z2*z2,
		x3*x3 + y3*y3 + z3*z3
}
