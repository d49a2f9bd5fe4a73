// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sampler

import (
	"math"

	"github.com/atomisticnet/dribble/diag"
	"gonum.org/v1/gonum/stat/distuv"
)

// convolve computes Pp(p) = sum_{n=1..N} Binom(n; N, p) * pn[n-1] for every
// p in ps, evaluating the binomial PMF in log space via
// distuv.Binomial.LogProb so large N does not overflow. Underflowing terms
// (log-probability below a floor) are clamped to zero and reported on ch
// rather than propagated as an error, per the distilled spec's numeric
// error-handling rule.
func convolve(pn []float64, ps []float64, nTotal int, ch *diag.Channel, runID string) []float64 {
	out := make([]float64, len(ps))
	const logFloor = -700 // exp(-700) underflows float64; below this we clamp to 0

	for pi, p := range ps {
		if p <= 0 || p >= 1 {
			out[pi] = 0
			continue
		}
		dist := distuv.Binomial{N: float64(nTotal), P: p}
		sum := 0.0
		underflowed := 0
		for n := 1; n <= nTotal; n++ {
			lp := dist.LogProb(float64(n))
			if lp < logFloor {
				underflowed++
				continue
			}
			sum += math.Exp(lp) * pn[n-1]
		}
		if underflowed > 0 {
			ch.Emit(diag.Event{
				RunID: runID,
				Op:    "sampler.convolve",
				Msg:   "binomial terms clamped to zero at extreme p",
			})
		}
		out[pi] = sum
	}
	return out
}

// buildSeries wraps a discrete n-indexed slice and its convolution into a
// Series.
func buildSeries(pn []float64, ps []float64, nTotal int, ch *diag.Channel, runID string) Series {
	return Series{
		N: pn,
		P: convolve(pn, ps, nTotal, ch, runID),
	}
}
