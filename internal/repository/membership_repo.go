package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/biznet/bn_server/internal/model"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *MembershipRepository) WithTx(tx *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: tx}
}

func (r *MembershipRepository) Create(m *model.Membership) error {
	return r.db.Create(m).Error
}

// Save persists all fields of an existing record.
func (r *MembershipRepository) Save(m *model.Membership) error {
	return r.db.Save(m).Error
}

func (r *MembershipRepository) GetByUserID(userID int64) (*model.Membership, error) {
	var m model.Membership
	err := r.db.Where("user_id = ?", userID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MembershipRepository) GetByMembershipID(membershipID string) (*model.Membership, error) {
	var m model.Membership
	err := r.db.Where("membership_id = ?", membershipID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MembershipRepository) UpdateStatus(membershipID, status string) error {
	return r.db.Model(&model.Membership{}).
		Where("membership_id = ?", membershipID).
		Update("status", status).Error
}

func (r *MembershipRepository) ExistsMembershipID(membershipID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Membership{}).
		Where("membership_id = ?", membershipID).Count(&count).Error
	return count > 0, err
}

// ListDueForExpiry returns active records whose expiry date has passed.
func (r *MembershipRepository) ListDueForExpiry(now time.Time) ([]model.Membership, error) {
	var due []model.Membership
	err := r.db.Where("status = ? AND expiry_date < ?", model.StatusActive, now).
		Find(&due).Error
	return due, err
}
