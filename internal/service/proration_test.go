package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biznet/bn_server/internal/model"
)

var (
	basicTier        = &model.MembershipTier{Name: model.TierBasic, Price: 99, DurationDays: 30}
	professionalTier = &model.MembershipTier{Name: model.TierProfessional, Price: 299, DurationDays: 180}
	enterpriseTier   = &model.MembershipTier{Name: model.TierEnterprise, Price: 999, DurationDays: 365}
)

func TestDailyRate(t *testing.T) {
	assert.InDelta(t, 3.3, DailyRate(basicTier), 0.001)
	assert.InDelta(t, 299.0/180.0, DailyRate(professionalTier), 0.001)
	assert.InDelta(t, 999.0/365.0, DailyRate(enterpriseTier), 0.001)
}

func TestComputeUpgradeAmount(t *testing.T) {
	t.Run("basic to professional", func(t *testing.T) {
		// (299/180 - 99/30) * 15 = (1.661 - 3.3) * 15, negative, clamps to 0
		amount := ComputeUpgradeAmount(basicTier, professionalTier, 15)
		assert.Equal(t, 0.0, amount)
	})

	t.Run("professional to enterprise", func(t *testing.T) {
		// (999/365 - 299/180) * 90 = (2.7370 - 1.6611) * 90 = 96.83 -> 97
		amount := ComputeUpgradeAmount(professionalTier, enterpriseTier, 90)
		assert.Equal(t, 97.0, amount)
	})

	t.Run("zero remaining days", func(t *testing.T) {
		amount := ComputeUpgradeAmount(professionalTier, enterpriseTier, 0)
		assert.Equal(t, 0.0, amount)
	})

	t.Run("never negative", func(t *testing.T) {
		for _, days := range []int{0, 1, 7, 30, 90, 180, 365} {
			pairs := [][2]*model.MembershipTier{
				{basicTier, professionalTier},
				{basicTier, enterpriseTier},
				{professionalTier, enterpriseTier},
				{enterpriseTier, basicTier}, // not a valid path, still non-negative
			}
			for _, p := range pairs {
				assert.GreaterOrEqual(t, ComputeUpgradeAmount(p[0], p[1], days), 0.0)
			}
		}
	})
}

func TestExpectedUpgradeAmount(t *testing.T) {
	assert.Equal(t, 200.0, ExpectedUpgradeAmount(basicTier, professionalTier))
	assert.Equal(t, 700.0, ExpectedUpgradeAmount(professionalTier, enterpriseTier))
	assert.Equal(t, 900.0, ExpectedUpgradeAmount(basicTier, enterpriseTier))
}
