// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import "testing"

func TestDefaultNeighborConfigValidates(t *testing.T) {
	if err := DefaultNeighborConfig().Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestNeighborConfigRejectsNegativeRange(t *testing.T) {
	c := NeighborConfig{Range: -1}
	if err := c.Validate(); err == nil {
		t.Error("expected an error for negative Range")
	}
}

func TestNeighborConfigRejectsNegativeBoxCounts(t *testing.T) {
	c := NeighborConfig{BoxA: -1}
	if err := c.Validate(); err == nil {
		t.Error("expected an error for negative BoxA")
	}
}

func TestDefaultSampleConfigValidates(t *testing.T) {
	if err := DefaultSampleConfig().Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestSampleConfigRejectsZeroSamples(t *testing.T) {
	c := DefaultSampleConfig()
	c.Samples = 0
	if err := c.Validate(); err == nil {
		t.Error("expected an error for zero Samples")
	}
}

func TestSampleConfigRejectsOutOfRangeProbability(t *testing.T) {
	c := DefaultSampleConfig()
	c.Ps = []float64{0.5, 1.0}
	if err := c.Validate(); err == nil {
		t.Error("expected an error for p >= 1")
	}
}

func TestSampleConfigRejectsNegativeWorkers(t *testing.T) {
	c := DefaultSampleConfig()
	c.Workers = -1
	if err := c.Validate(); err == nil {
		t.Error("expected an error for negative Workers")
	}
}
