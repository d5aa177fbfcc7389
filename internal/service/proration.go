package service

import (
	"math"

	"github.com/biznet/bn_server/internal/model"
)

// DailyRate is the tier price spread over its duration.
func DailyRate(tier *model.MembershipTier) float64 {
	return tier.Price / float64(tier.DurationDays)
}

// ComputeUpgradeAmount estimates the prorated cost of moving from the
// current tier to a higher one with remainingDays still on the clock.
// Rounding is math.Round, i.e. round half away from zero. Negative deltas
// clamp to 0. Note this estimate is reported, never charged; upgrades are
// validated against ExpectedUpgradeAmount instead.
func ComputeUpgradeAmount(current, next *model.MembershipTier, remainingDays int) float64 {
	delta := math.Round((DailyRate(next) - DailyRate(current)) * float64(remainingDays))
	if delta < 0 {
		return 0
	}
	return delta
}

// ExpectedUpgradeAmount is the flat price difference the client must pay
// when upgrading.
func ExpectedUpgradeAmount(current, next *model.MembershipTier) float64 {
	return next.Price - current.Price
}
