package service

import (
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/biznet/bn_server/internal/model/dto"
	"github.com/biznet/bn_server/internal/repository"
)

// ReportService builds the read-only admin projections over the ledger.
type ReportService struct {
	userRepo       *repository.UserRepository
	membershipRepo *repository.MembershipRepository
	historyRepo    *repository.HistoryRepository
}

func NewReportService(
	userRepo *repository.UserRepository,
	membershipRepo *repository.MembershipRepository,
	historyRepo *repository.HistoryRepository,
) *ReportService {
	return &ReportService{
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		historyRepo:    historyRepo,
	}
}

// ListUsersByTier groups every user with any ledger entry together with
// their current membership and full history. tier filters on the current
// tier, case-insensitively; "all" disables the filter. History alone keeps
// a user in the "all" view even when they hold no current record.
func (s *ReportService) ListUsersByTier(tier string) ([]dto.TierUserView, error) {
	userIDs, err := s.historyRepo.DistinctUserIDs()
	if err != nil {
		return nil, err
	}

	filterAll := strings.EqualFold(tier, "all") || tier == ""

	views := make([]dto.TierUserView, 0, len(userIDs))
	for _, userID := range userIDs {
		user, err := s.userRepo.GetByID(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue // ledger rows can outlive deleted accounts
			}
			return nil, err
		}

		var current *dto.MembershipSummary
		m, err := s.membershipRepo.GetByUserID(userID)
		if err == nil {
			current = summaryOf(m)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		if !filterAll {
			if current == nil || !strings.EqualFold(current.Tier, tier) {
				continue
			}
		}

		entries, err := s.historyRepo.ListByUserID(userID)
		if err != nil {
			return nil, err
		}
		history := make([]dto.HistoryItem, 0, len(entries))
		for i := range entries {
			history = append(history, historyItemOf(&entries[i]))
		}

		views = append(views, dto.TierUserView{
			User: dto.UserInfo{
				ID:              user.ID,
				Username:        user.Username,
				Email:           user.Email,
				ReferralCode:    user.ReferralCode,
				MembershipLevel: user.MembershipLevel,
			},
			CurrentMembership: current,
			History:           history,
		})
	}

	return views, nil
}

// StatsForUser aggregates the user's ledger into spend and tier statistics.
func (s *ReportService) StatsForUser(userID int64) (*dto.MemberStats, error) {
	entries, err := s.historyRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	stats := &dto.MemberStats{
		TotalPurchases:   len(entries),
		TierDistribution: []dto.TierCount{},
	}
	if len(entries) == 0 {
		return stats, nil
	}

	var totalDays float64
	tierCounts := make(map[string]int)
	for i := range entries {
		e := &entries[i]
		stats.TotalSpent += e.Amount
		totalDays += e.ExpiryDate.Sub(e.PurchaseDate).Hours() / 24
		tierCounts[e.Tier]++
	}
	stats.AverageDurationDays = totalDays / float64(len(entries))

	tiers := make([]string, 0, len(tierCounts))
	for tier := range tierCounts {
		tiers = append(tiers, tier)
	}
	sort.Strings(tiers)
	for _, tier := range tiers {
		stats.TierDistribution = append(stats.TierDistribution, dto.TierCount{
			Tier:  tier,
			Count: tierCounts[tier],
		})
	}

	return stats, nil
}
