// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sampler

import (
	"context"
	"math"
	"testing"

	"github.com/atomisticnet/dribble/config"
	"github.com/atomisticnet/dribble/diag"
)

// TestScenario5BinomialConvolutionSanity is the distilled spec's end-to-end
// scenario 5: with N=10 and Pn[i] = 1 for every i, Pp(p) matches the closed
// form 1 - (1-p)^N for every p in (0,1). convolve sums n = 1..N only (n=0,
// the vacant-lattice term, is not part of the Series), so the sum falls
// strictly short of 1 by (1-p)^N rather than reaching it - see
// TestConvolveConstantPnMatchesClosedForm for the general law this scenario
// instantiates at N=10.
func TestScenario5BinomialConvolutionSanity(t *testing.T) {
	const nTotal = 10
	pn := make([]float64, nTotal)
	for i := range pn {
		pn[i] = 1
	}
	ps := []float64{0.05, 0.1, 0.3, 0.5, 0.7, 0.9, 0.95}
	ch := diag.NewChannel(0)

	got := convolve(pn, ps, nTotal, ch, "scenario5")
	for i, p := range ps {
		want := 1.0 - math.Pow(1-p, nTotal)
		if math.Abs(got[i]-want) > 1e-9 {
			t.Errorf("convolve at p=%v: got %v, want %v", p, got[i], want)
		}
	}
}

// TestScenario6SiteThresholdOnSixCubedSimpleCubic is the distilled spec's
// end-to-end scenario 6: percolation_point on a 6x6x6 simple-cubic lattice
// with >= 500 samples returns pc_site_any within 0.02 of the known infinite-
// lattice value 0.3116.
func TestScenario6SiteThresholdOnSixCubedSimpleCubic(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Monte Carlo convergence test in -short mode")
	}
	lat := simpleCubic(t, 6)
	cfg := config.DefaultSampleConfig()
	cfg.Samples = 500
	cfg.Seed = 11
	cfg.Workers = 4

	result, err := Run(context.Background(), lat, nil, cfg, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if math.Abs(result.Pc.SiteAny-0.3116) > 0.02 {
		t.Errorf("Pc.SiteAny = %v, want within 0.02 of 0.3116", result.Pc.SiteAny)
	}
}
