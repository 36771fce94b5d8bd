package pricing

import (
	"sort"

	"github.com/wanwanbooboo/boatrace/internal/models"
)

// SelectorConfig bounds candidate selection for one pricing request.
type SelectorConfig struct {
	EVMin float64
	TopK  int
	Stake StakeStrategy
}

// EV computes the expected value of one selection under the per-100-unit
// payout convention: ev = p * odds / 100.
func EV(probability, odds float64) float64 {
	return probability * odds / 100.0
}

// Select filters, ranks and sizes betting candidates for one market.
// Selections with ev >= EVMin are ordered by descending EV, ties broken by
// ascending selection identifier so repeated calls over the same inputs
// return the identical list (idempotency keys depend on this). The top
// TopK eligible selections are returned; fewer, including zero, is valid.
func Select(market models.Market, probabilities []float64, cfg SelectorConfig) []models.Candidate {
	n := len(market)
	if len(probabilities) < n {
		n = len(probabilities)
	}

	candidates := make([]models.Candidate, 0, n)
	for i := 0; i < n; i++ {
		ev := EV(probabilities[i], market[i].OddsFloat())
		if ev < cfg.EVMin {
			continue
		}
		candidates = append(candidates, models.Candidate{
			Selection:   market[i].Selection,
			Probability: probabilities[i],
			Odds:        market[i].Odds,
			EV:          ev,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].EV != candidates[j].EV {
			return candidates[i].EV > candidates[j].EV
		}
		return candidates[i].Selection < candidates[j].Selection
	})

	if cfg.TopK > 0 && len(candidates) > cfg.TopK {
		candidates = candidates[:cfg.TopK]
	}

	if cfg.Stake != nil {
		cfg.Stake.Allocate(candidates)
	}

	return candidates
}
