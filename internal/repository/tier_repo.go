package repository

import (
	"gorm.io/gorm"

	"github.com/biznet/bn_server/internal/model"
)

type TierRepository struct {
	db *gorm.DB
}

func NewTierRepository(db *gorm.DB) *TierRepository {
	return &TierRepository{db: db}
}

func (r *TierRepository) Create(tier *model.MembershipTier) error {
	return r.db.Create(tier).Error
}

// GetByName matches the tier name case-insensitively.
func (r *TierRepository) GetByName(name string) (*model.MembershipTier, error) {
	var tier model.MembershipTier
	err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&tier).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *TierRepository) List() ([]model.MembershipTier, error) {
	var tiers []model.MembershipTier
	err := r.db.Order("price ASC").Find(&tiers).Error
	return tiers, err
}

func (r *TierRepository) UpdateFeatures(id int64, features []model.TierFeature) error {
	return r.db.Model(&model.MembershipTier{}).Where("id = ?", id).
		Update("features", features).Error
}

func (r *TierRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.MembershipTier{}).Count(&count).Error
	return count, err
}
