package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/biznet/bn_server/internal/model"
	"github.com/biznet/bn_server/internal/testutil"
)

func TestTierRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	repo := NewTierRepository(db)
	testutil.SeedTiers(t, db)

	t.Run("get by name is case insensitive", func(t *testing.T) {
		tier, err := repo.GetByName("BASIC")
		require.NoError(t, err)
		assert.Equal(t, model.TierBasic, tier.Name)
		assert.Equal(t, 99.0, tier.Price)

		_, err = repo.GetByName("Platinum")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("list ordered by price", func(t *testing.T) {
		tiers, err := repo.List()
		require.NoError(t, err)
		require.Len(t, tiers, 3)
		assert.Equal(t, model.TierBasic, tiers[0].Name)
		assert.Equal(t, model.TierProfessional, tiers[1].Name)
		assert.Equal(t, model.TierEnterprise, tiers[2].Name)
	})

	t.Run("update features round-trips through the serializer", func(t *testing.T) {
		tier, err := repo.GetByName(model.TierBasic)
		require.NoError(t, err)

		features := []model.TierFeature{
			{Name: "Event hosting", Included: true},
			{Name: "Priority support", Included: false},
		}
		require.NoError(t, repo.UpdateFeatures(tier.ID, features))

		got, err := repo.GetByName(model.TierBasic)
		require.NoError(t, err)
		assert.Equal(t, features, got.Features)
	})

	t.Run("count", func(t *testing.T) {
		count, err := repo.Count()
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
