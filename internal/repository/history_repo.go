package repository

import (
	"gorm.io/gorm"

	"github.com/biznet/bn_server/internal/model"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *HistoryRepository) WithTx(tx *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: tx}
}

func (r *HistoryRepository) Create(entry *model.MembershipHistory) error {
	return r.db.Create(entry).Error
}

func (r *HistoryRepository) ListByUserID(userID int64) ([]model.MembershipHistory, error) {
	var entries []model.MembershipHistory
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Find(&entries).Error
	return entries, err
}

// MarkStatusByMembershipID moves every entry of the membership currently in
// fromStatus to toStatus. The ledger is append-only apart from these
// status transitions.
func (r *HistoryRepository) MarkStatusByMembershipID(membershipID, fromStatus, toStatus string) error {
	return r.db.Model(&model.MembershipHistory{}).
		Where("membership_id = ? AND status = ?", membershipID, fromStatus).
		Update("status", toStatus).Error
}

// CancelByMembershipID marks the membership's entries cancelled and stamps
// the reason.
func (r *HistoryRepository) CancelByMembershipID(membershipID string, reason *string) error {
	return r.db.Model(&model.MembershipHistory{}).
		Where("membership_id = ? AND status = ?", membershipID, model.StatusActive).
		Updates(map[string]interface{}{
			"status":              model.StatusCancelled,
			"cancellation_reason": reason,
		}).Error
}

// ExistsMembershipID reports whether any ledger entry ever used the ID.
func (r *HistoryRepository) ExistsMembershipID(membershipID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.MembershipHistory{}).
		Where("membership_id = ?", membershipID).Count(&count).Error
	return count > 0, err
}

// DistinctUserIDs returns every user that has at least one ledger entry.
func (r *HistoryRepository) DistinctUserIDs() ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.MembershipHistory{}).
		Distinct("user_id").Order("user_id ASC").Pluck("user_id", &ids).Error
	return ids, err
}
