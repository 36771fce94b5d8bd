package pricing

import (
	"github.com/wanwanbooboo/boatrace/internal/models"
)

// MarketProbabilityModel estimates a probability distribution over the
// selections of one market. Implementations return one non-negative value
// per market entry, in market order. Swapping in a real statistical model
// does not touch the blending or selection contracts.
type MarketProbabilityModel interface {
	Name() string
	Estimate(market models.Market) []float64
}

// FavoriteWeightedModel is the reference placeholder model: it favors
// lower-odds (popular) selections with inverse-odds weights.
type FavoriteWeightedModel struct{}

// NewFavoriteWeightedModel creates the reference model
func NewFavoriteWeightedModel() *FavoriteWeightedModel {
	return &FavoriteWeightedModel{}
}

// Name returns the model identifier
func (m *FavoriteWeightedModel) Name() string {
	return "favorite_weighted"
}

const minModelOdds = 1e-6

// Estimate weights each selection by 1/max(odds, 1e-6), normalized.
func (m *FavoriteWeightedModel) Estimate(market models.Market) []float64 {
	weights := make([]float64, len(market))
	for i, e := range market {
		odds := e.OddsFloat()
		if odds < minModelOdds {
			odds = minModelOdds
		}
		weights[i] = 1.0 / odds
	}
	return normalize(weights)
}
