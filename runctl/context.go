// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runctl provides cooperative cancellation for long-running
// sampling loops: a counter-gated context check cheap enough to call on
// every site addition, plus an elapsed-time guard for the rare deployment
// that wants a hard wall-clock budget per trial.
package runctl

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrCancelled is returned when a context is cancelled mid-sweep.
var ErrCancelled = errors.New("dribble: run cancelled")

// ErrBudgetExceeded is returned when a trial exceeds its configured time
// budget.
var ErrBudgetExceeded = errors.New("dribble: trial time budget exceeded")

// Checker provides cheap, periodic cancellation checking. Unlike calling
// ctx.Done() in a select on every loop iteration, it only performs the
// actual channel check every CheckInterval calls, which matters when the
// loop body (percolator.AddSite) is itself O(1) amortized.
type Checker struct {
	ctx           context.Context
	checkInterval int
	counter       int64
	cancelled     int32 // atomic flag
}

// NewChecker creates a checker that consults ctx every checkInterval calls
// to Check. A checkInterval <= 0 defaults to 256.
func NewChecker(ctx context.Context, checkInterval int) *Checker {
	if ctx == nil {
		ctx = context.Background()
	}
	if checkInterval <= 0 {
		checkInterval = 256
	}
	return &Checker{ctx: ctx, checkInterval: checkInterval}
}

// Check returns true if the context has been cancelled. It is safe and
// cheap to call on every iteration of a hot loop.
func (c *Checker) Check() bool {
	if atomic.LoadInt32(&c.cancelled) != 0 {
		return true
	}
	c.counter++
	if c.counter%int64(c.checkInterval) != 0 {
		return false
	}
	select {
	case <-c.ctx.Done():
		atomic.StoreInt32(&c.cancelled, 1)
		return true
	default:
		return false
	}
}

// CheckNow forces an immediate check, bypassing the interval gate. Callers
// use this between trials, where the per-call cost no longer matters.
func (c *Checker) CheckNow() bool {
	if atomic.LoadInt32(&c.cancelled) != 0 {
		return true
	}
	select {
	case <-c.ctx.Done():
		atomic.StoreInt32(&c.cancelled, 1)
		return true
	default:
		return false
	}
}

// Err returns ctx.Err() if the context has been cancelled, else nil.
func (c *Checker) Err() error {
	if err := c.ctx.Err(); err != nil {
		return err
	}
	return nil
}

// Budget tracks elapsed wall-clock time against an optional per-trial cap.
// A zero-value max duration disables the budget.
type Budget struct {
	start         time.Time
	max           time.Duration
	checkInterval int
	counter       int64
	exceeded      int32
}

// NewBudget creates a time budget. max <= 0 disables the check entirely
// (Check always returns false).
func NewBudget(max time.Duration, checkInterval int) *Budget {
	if checkInterval <= 0 {
		checkInterval = 256
	}
	return &Budget{start: time.Now(), max: max, checkInterval: checkInterval}
}

// Check returns true if the budget has been exceeded.
func (b *Budget) Check() bool {
	if b.max <= 0 {
		return false
	}
	if atomic.LoadInt32(&b.exceeded) != 0 {
		return true
	}
	b.counter++
	if b.counter%int64(b.checkInterval) != 0 {
		return false
	}
	if time.Since(b.start) > b.max {
		atomic.StoreInt32(&b.exceeded, 1)
		return true
	}
	return false
}

// Elapsed returns the time elapsed since the budget was created.
func (b *Budget) Elapsed() time.Duration {
	return time.Since(b.start)
}
