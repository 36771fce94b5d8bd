package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/wanwanbooboo/boatrace/internal/models"
)

func makeMarket(entries map[string]float64) models.Market {
	market := models.Market{}
	for sel, odds := range entries {
		market = append(market, models.MarketEntry{
			Selection: sel,
			Odds:      decimal.NewFromFloat(odds),
		})
	}
	return market
}

func TestImpliedProbabilitiesSumToOne(t *testing.T) {
	market := makeMarket(map[string]float64{
		"1-2-3": 18.5,
		"1-3-2": 20.0,
		"2-1-3": 35.0,
	})

	probs := ImpliedProbabilities(market)

	var sum float64
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestImpliedProbabilitiesZeroWeightForNonPositiveOdds(t *testing.T) {
	market := models.Market{
		{Selection: "1-2-3", Odds: decimal.NewFromFloat(18.5)},
		{Selection: "1-3-2", Odds: decimal.NewFromFloat(0)},
		{Selection: "2-1-3", Odds: decimal.NewFromFloat(-5)},
	}

	probs := ImpliedProbabilities(market)

	assert.InDelta(t, 1.0, probs[0], 1e-9)
	assert.Zero(t, probs[1])
	assert.Zero(t, probs[2])
}

func TestImpliedProbabilitiesDegenerateMarket(t *testing.T) {
	market := models.Market{
		{Selection: "1-2-3", Odds: decimal.NewFromFloat(0)},
		{Selection: "1-3-2", Odds: decimal.NewFromFloat(0)},
	}

	probs := ImpliedProbabilities(market)

	// Weight sum of zero is treated as one: all-zero probabilities, no fault.
	assert.Equal(t, []float64{0, 0}, probs)
}

func TestImpliedProbabilitiesEmptyMarket(t *testing.T) {
	probs := ImpliedProbabilities(models.Market{})
	assert.Empty(t, probs)
}

func TestBlendAlphaExtremes(t *testing.T) {
	pModel := []float64{0.7, 0.2, 0.1}
	pImplied := []float64{0.5, 0.3, 0.2}

	assert.Equal(t, pModel, Blend(pModel, pImplied, 1.0), "alpha=1 must equal model probabilities")
	assert.Equal(t, pImplied, Blend(pModel, pImplied, 0.0), "alpha=0 must equal implied probabilities")
}

func TestBlendMixes(t *testing.T) {
	pModel := []float64{0.8}
	pImplied := []float64{0.4}

	mixed := Blend(pModel, pImplied, 0.5)

	assert.InDelta(t, 0.6, mixed[0], 1e-9)
}

func TestBlendClampsWithoutRenormalizing(t *testing.T) {
	// Inputs outside [0,1] are clamped per element; the result is not
	// rescaled to sum to 1.
	mixed := Blend([]float64{1.5, -0.5}, []float64{1.5, -0.5}, 0.5)

	assert.Equal(t, []float64{1.0, 0.0}, mixed)
}

func TestFavoriteWeightedModelNormalizes(t *testing.T) {
	market := makeMarket(map[string]float64{
		"1-2-3": 18.5,
		"1-3-2": 20.0,
	})

	model := NewFavoriteWeightedModel()
	probs := model.Estimate(market)

	var sum float64
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestFavoriteWeightedModelFavorsLowerOdds(t *testing.T) {
	market := models.Market{
		{Selection: "1-2-3", Odds: decimal.NewFromFloat(5.0)},
		{Selection: "1-3-2", Odds: decimal.NewFromFloat(50.0)},
	}

	probs := NewFavoriteWeightedModel().Estimate(market)

	assert.Greater(t, probs[0], probs[1])
}

func TestFavoriteWeightedModelEmptyMarket(t *testing.T) {
	assert.Empty(t, NewFavoriteWeightedModel().Estimate(models.Market{}))
}
