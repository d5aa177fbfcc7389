package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/biznet/bn_server/internal/model"
	"github.com/biznet/bn_server/internal/model/dto"
	"github.com/biznet/bn_server/internal/repository"
)

var (
	ErrTierNotFound   = errors.New("membership tier not found")
	ErrInvalidFeature = errors.New("each feature needs a non-empty name and an included flag")
)

// defaultTiers is the hard-coded catalog. Price and duration never change
// at runtime; feature lists are editable through UpdateFeatures.
var defaultTiers = []model.MembershipTier{
	{
		Name:         model.TierBasic,
		Price:        99,
		DurationDays: 30,
		Features: []model.TierFeature{
			{Name: "Member directory listing", Included: true},
			{Name: "Chapter meeting access", Included: true},
			{Name: "Community posts", Included: true},
			{Name: "Event hosting", Included: false},
			{Name: "Investment board access", Included: false},
		},
	},
	{
		Name:         model.TierProfessional,
		Price:        299,
		DurationDays: 180,
		Features: []model.TierFeature{
			{Name: "Member directory listing", Included: true},
			{Name: "Chapter meeting access", Included: true},
			{Name: "Community posts", Included: true},
			{Name: "Event hosting", Included: true},
			{Name: "Referral tracking", Included: true},
			{Name: "Investment board access", Included: false},
		},
	},
	{
		Name:         model.TierEnterprise,
		Price:        999,
		DurationDays: 365,
		Features: []model.TierFeature{
			{Name: "Member directory listing", Included: true},
			{Name: "Chapter meeting access", Included: true},
			{Name: "Community posts", Included: true},
			{Name: "Event hosting", Included: true},
			{Name: "Referral tracking", Included: true},
			{Name: "Investment board access", Included: true},
			{Name: "Priority support", Included: true},
		},
	},
}

type CatalogService struct {
	tierRepo *repository.TierRepository
}

func NewCatalogService(tierRepo *repository.TierRepository) *CatalogService {
	return &CatalogService{tierRepo: tierRepo}
}

// Seed inserts any catalog default that is missing. Existing rows are left
// untouched so admin feature edits survive restarts.
func (s *CatalogService) Seed() error {
	for i := range defaultTiers {
		tier := defaultTiers[i]
		_, err := s.tierRepo.GetByName(tier.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.tierRepo.Create(&tier); err != nil {
			return err
		}
	}
	return nil
}

// GetTier looks a tier up by name, case-insensitively.
func (s *CatalogService) GetTier(name string) (*model.MembershipTier, error) {
	tier, err := s.tierRepo.GetByName(strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTierNotFound
		}
		return nil, err
	}
	return tier, nil
}

func (s *CatalogService) ListTiers() ([]model.MembershipTier, error) {
	return s.tierRepo.List()
}

// UpdateFeatures replaces a tier's feature list. Every feature must carry a
// non-empty name and an explicit included flag.
func (s *CatalogService) UpdateFeatures(tierName string, features []dto.FeatureInput) (*model.MembershipTier, error) {
	tier, err := s.GetTier(tierName)
	if err != nil {
		return nil, err
	}

	validated := make([]model.TierFeature, 0, len(features))
	for _, f := range features {
		if strings.TrimSpace(f.Name) == "" || f.Included == nil {
			return nil, ErrInvalidFeature
		}
		validated = append(validated, model.TierFeature{
			Name:     strings.TrimSpace(f.Name),
			Included: *f.Included,
		})
	}

	if err := s.tierRepo.UpdateFeatures(tier.ID, validated); err != nil {
		return nil, err
	}

	tier.Features = validated
	return tier, nil
}
