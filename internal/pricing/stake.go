package pricing

import (
	"github.com/wanwanbooboo/boatrace/internal/models"
)

// StakeStrategy sizes the stakes of the selected candidates in place.
// Every strategy must keep each stake in [0, MaxStake] and the sum of all
// stakes of one request at or below MaxStake: the cap is a per-race
// aggregate cap, not a per-candidate one.
type StakeStrategy interface {
	Name() string
	Allocate(candidates []models.Candidate)
}

// FlatStakeStrategy assigns each candidate the same unit stake, scaled down
// to Unit*n <= MaxStake when necessary. This is the default policy.
type FlatStakeStrategy struct {
	Unit     int64
	MaxStake int64
}

// NewFlatStakeStrategy creates a flat allocation strategy
func NewFlatStakeStrategy(unit, maxStake int64) *FlatStakeStrategy {
	return &FlatStakeStrategy{Unit: unit, MaxStake: maxStake}
}

// Name returns the policy identifier
func (s *FlatStakeStrategy) Name() string { return "flat" }

// Allocate gives each of n candidates min(Unit, MaxStake/n).
func (s *FlatStakeStrategy) Allocate(candidates []models.Candidate) {
	n := int64(len(candidates))
	if n == 0 {
		return
	}
	stake := s.Unit
	if per := s.MaxStake / n; stake > per {
		stake = per
	}
	if stake < 0 {
		stake = 0
	}
	for i := range candidates {
		candidates[i].Stake = stake
	}
}

// ProportionalStakeStrategy splits the race cap proportionally to each
// candidate's EV. Rounding is downward, so the aggregate cap always holds.
type ProportionalStakeStrategy struct {
	MaxStake int64
}

// NewProportionalStakeStrategy creates an EV-proportional allocation strategy
func NewProportionalStakeStrategy(maxStake int64) *ProportionalStakeStrategy {
	return &ProportionalStakeStrategy{MaxStake: maxStake}
}

// Name returns the policy identifier
func (s *ProportionalStakeStrategy) Name() string { return "proportional" }

// Allocate sizes stakes as MaxStake * ev_i / sum(ev), floored.
func (s *ProportionalStakeStrategy) Allocate(candidates []models.Candidate) {
	var evSum float64
	for _, c := range candidates {
		if c.EV > 0 {
			evSum += c.EV
		}
	}
	if evSum <= 0 {
		for i := range candidates {
			candidates[i].Stake = 0
		}
		return
	}
	for i := range candidates {
		if candidates[i].EV <= 0 {
			candidates[i].Stake = 0
			continue
		}
		candidates[i].Stake = int64(float64(s.MaxStake) * candidates[i].EV / evSum)
	}
}

// NewStakeStrategy resolves a configured policy name to its implementation.
func NewStakeStrategy(policy string, unit, maxStake int64) StakeStrategy {
	switch policy {
	case "proportional":
		return NewProportionalStakeStrategy(maxStake)
	default:
		return NewFlatStakeStrategy(unit, maxStake)
	}
}
