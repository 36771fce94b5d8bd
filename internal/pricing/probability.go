// Package pricing implements probability blending and EV-based candidate
// selection over one resolved market snapshot. All functions here are pure
// and never fail: malformed inputs degrade to documented clamping or
// degenerate-market behavior instead of errors.
package pricing

import (
	"github.com/wanwanbooboo/boatrace/internal/models"
)

// ImpliedProbabilities derives probabilities purely from market odds.
// Each selection gets the inverse-odds weight 100/odds (zero when odds <= 0),
// normalized so weights sum to 1 across the market. Normalization removes
// the bookmaker overround; it does not correct favorite-longshot bias.
// A market with no usable odds yields all-zero probabilities.
func ImpliedProbabilities(market models.Market) []float64 {
	weights := make([]float64, len(market))
	for i, e := range market {
		odds := e.OddsFloat()
		if odds > 0 {
			weights[i] = 100.0 / odds
		}
	}
	return normalize(weights)
}

// Blend mixes model and implied probabilities per selection:
// p = clamp(alpha*model + (1-alpha)*implied, 0, 1). The result is NOT
// re-normalized after clamping; clamping is a safety bound, and downstream
// EV computation tolerates a distribution that does not sum to exactly 1.
func Blend(pModel, pImplied []float64, alpha float64) []float64 {
	n := len(pModel)
	if len(pImplied) < n {
		n = len(pImplied)
	}
	mixed := make([]float64, n)
	for i := 0; i < n; i++ {
		p := alpha*pModel[i] + (1.0-alpha)*pImplied[i]
		if p < 0 {
			p = 0
		}
		if p > 1 {
			p = 1
		}
		mixed[i] = p
	}
	return mixed
}

// normalize scales non-negative weights to sum to 1. A zero weight sum is
// treated as 1.0 so a degenerate market produces zeros, not a fault.
func normalize(weights []float64) []float64 {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		sum = 1.0
	}
	probs := make([]float64, len(weights))
	for i, w := range weights {
		probs[i] = w / sum
	}
	return probs
}
