package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/biznet/bn_server/internal/model"
	"github.com/biznet/bn_server/internal/model/dto"
	"github.com/biznet/bn_server/internal/repository"
	"github.com/biznet/bn_server/internal/testutil"
)

func setupCatalogService(t *testing.T) (*CatalogService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	return NewCatalogService(repository.NewTierRepository(db)), db
}

func boolPtr(b bool) *bool { return &b }

func TestSeed(t *testing.T) {
	svc, db := setupCatalogService(t)

	require.NoError(t, svc.Seed())

	var count int64
	require.NoError(t, db.Model(&model.MembershipTier{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	basic, err := svc.GetTier(model.TierBasic)
	require.NoError(t, err)
	assert.Equal(t, 99.0, basic.Price)
	assert.Equal(t, 30, basic.DurationDays)
	assert.NotEmpty(t, basic.Features)

	t.Run("idempotent", func(t *testing.T) {
		require.NoError(t, svc.Seed())
		require.NoError(t, db.Model(&model.MembershipTier{}).Count(&count).Error)
		assert.Equal(t, int64(3), count)
	})

	t.Run("preserves admin edits", func(t *testing.T) {
		_, err := svc.UpdateFeatures(model.TierBasic, []dto.FeatureInput{
			{Name: "Custom feature", Included: boolPtr(true)},
		})
		require.NoError(t, err)

		require.NoError(t, svc.Seed())

		basic, err := svc.GetTier(model.TierBasic)
		require.NoError(t, err)
		require.Len(t, basic.Features, 1)
		assert.Equal(t, "Custom feature", basic.Features[0].Name)
	})
}

func TestGetTier(t *testing.T) {
	svc, _ := setupCatalogService(t)
	require.NoError(t, svc.Seed())

	t.Run("case insensitive", func(t *testing.T) {
		for _, name := range []string{"Enterprise", "enterprise", "ENTERPRISE", " Enterprise "} {
			tier, err := svc.GetTier(name)
			require.NoError(t, err, "lookup %q", name)
			assert.Equal(t, model.TierEnterprise, tier.Name)
		}
	})

	t.Run("unknown tier", func(t *testing.T) {
		_, err := svc.GetTier("Platinum")
		assert.ErrorIs(t, err, ErrTierNotFound)
	})
}

func TestListTiers(t *testing.T) {
	svc, _ := setupCatalogService(t)
	require.NoError(t, svc.Seed())

	tiers, err := svc.ListTiers()
	require.NoError(t, err)
	require.Len(t, tiers, 3)

	// Ordered by price ascending.
	assert.Equal(t, model.TierBasic, tiers[0].Name)
	assert.Equal(t, model.TierProfessional, tiers[1].Name)
	assert.Equal(t, model.TierEnterprise, tiers[2].Name)
}

func TestUpdateFeatures(t *testing.T) {
	t.Run("replaces the feature list", func(t *testing.T) {
		svc, _ := setupCatalogService(t)
		require.NoError(t, svc.Seed())

		updated, err := svc.UpdateFeatures("professional", []dto.FeatureInput{
			{Name: "Event hosting", Included: boolPtr(true)},
			{Name: "Investment board access", Included: boolPtr(false)},
		})
		require.NoError(t, err)
		require.Len(t, updated.Features, 2)
		assert.True(t, updated.Features[0].Included)
		assert.False(t, updated.Features[1].Included)

		// Price and duration are never touched.
		assert.Equal(t, 299.0, updated.Price)
		assert.Equal(t, 180, updated.DurationDays)

		stored, err := svc.GetTier(model.TierProfessional)
		require.NoError(t, err)
		assert.Equal(t, updated.Features, stored.Features)
	})

	t.Run("empty feature name", func(t *testing.T) {
		svc, _ := setupCatalogService(t)
		require.NoError(t, svc.Seed())

		_, err := svc.UpdateFeatures(model.TierBasic, []dto.FeatureInput{
			{Name: "  ", Included: boolPtr(true)},
		})
		assert.ErrorIs(t, err, ErrInvalidFeature)
	})

	t.Run("missing included flag", func(t *testing.T) {
		svc, _ := setupCatalogService(t)
		require.NoError(t, svc.Seed())

		_, err := svc.UpdateFeatures(model.TierBasic, []dto.FeatureInput{
			{Name: "Event hosting"},
		})
		assert.ErrorIs(t, err, ErrInvalidFeature)
	})

	t.Run("unknown tier", func(t *testing.T) {
		svc, _ := setupCatalogService(t)
		require.NoError(t, svc.Seed())

		_, err := svc.UpdateFeatures("Platinum", []dto.FeatureInput{
			{Name: "Event hosting", Included: boolPtr(true)},
		})
		assert.ErrorIs(t, err, ErrTierNotFound)
	})
}
