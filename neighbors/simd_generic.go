// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !amd64
// +build !amd64

package neighbors

// hasAVX2 is always false on non-amd64 targets; scanBox falls back to the
// scalar distance loop.
func hasAVX2() bool {
	return false
}
