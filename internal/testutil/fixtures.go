package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/biznet/bn_server/internal/model"
)

var fixtureSeq int64

func nextSeq() int64 {
	return atomic.AddInt64(&fixtureSeq, 1)
}

// TestUser creates a user with unique username/email/referral code.
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	seq := nextSeq()
	user := &model.User{
		Username:        fmt.Sprintf("member_%d", seq),
		Email:           fmt.Sprintf("member_%d@example.com", seq),
		PasswordHash:    "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
		ReferralCode:    fmt.Sprintf("REF%05d", seq),
		MembershipLevel: model.MembershipLevelNone,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername sets the username.
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail sets the email.
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithAdmin flags an admin account.
func WithAdmin() func(*model.User) {
	return func(u *model.User) {
		u.IsAdmin = true
	}
}

// WithMembershipLevel sets the mirrored tier on the user row.
func WithMembershipLevel(level string) func(*model.User) {
	return func(u *model.User) {
		u.MembershipLevel = level
	}
}

// SeedTiers inserts the catalog defaults used across tests.
func SeedTiers(t *testing.T, db *gorm.DB) {
	t.Helper()

	tiers := []model.MembershipTier{
		{Name: model.TierBasic, Price: 99, DurationDays: 30, Features: []model.TierFeature{
			{Name: "Member directory listing", Included: true},
		}},
		{Name: model.TierProfessional, Price: 299, DurationDays: 180, Features: []model.TierFeature{
			{Name: "Member directory listing", Included: true},
			{Name: "Event hosting", Included: true},
		}},
		{Name: model.TierEnterprise, Price: 999, DurationDays: 365, Features: []model.TierFeature{
			{Name: "Member directory listing", Included: true},
			{Name: "Event hosting", Included: true},
			{Name: "Investment board access", Included: true},
		}},
	}

	for i := range tiers {
		if err := db.Create(&tiers[i]).Error; err != nil {
			t.Fatalf("Failed to seed tier %s: %v", tiers[i].Name, err)
		}
	}
}

// TestMembership creates a current membership record.
func TestMembership(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Membership)) *model.Membership {
	t.Helper()

	seq := nextSeq()
	now := time.Now()
	m := &model.Membership{
		UserID:        userID,
		MembershipID:  fmt.Sprintf("BN-TEST%04d", seq),
		Tier:          model.TierBasic,
		Status:        model.StatusActive,
		StartDate:     now,
		ExpiryDate:    now.Add(30 * 24 * time.Hour),
		Amount:        99,
		Currency:      "USD",
		TransactionID: fmt.Sprintf("txn_%d", seq),
		PaymentDate:   now,
		PaymentMethod: model.PaymentCreditCard,
	}

	for _, opt := range opts {
		opt(m)
	}

	if err := db.Create(m).Error; err != nil {
		t.Fatalf("Failed to create test membership: %v", err)
	}

	return m
}

// WithTier sets the membership tier and a matching amount.
func WithTier(tier string) func(*model.Membership) {
	return func(m *model.Membership) {
		m.Tier = tier
		switch tier {
		case model.TierProfessional:
			m.Amount = 299
		case model.TierEnterprise:
			m.Amount = 999
		default:
			m.Amount = 99
		}
	}
}

// WithStatus sets the record status.
func WithStatus(status string) func(*model.Membership) {
	return func(m *model.Membership) {
		m.Status = status
	}
}

// WithExpiry sets the expiry date.
func WithExpiry(expiry time.Time) func(*model.Membership) {
	return func(m *model.Membership) {
		m.ExpiryDate = expiry
	}
}

// WithMembershipID sets an explicit membership ID.
func WithMembershipID(id string) func(*model.Membership) {
	return func(m *model.Membership) {
		m.MembershipID = id
	}
}

// TestHistoryEntry creates one ledger entry mirroring the membership.
func TestHistoryEntry(t *testing.T, db *gorm.DB, m *model.Membership, opts ...func(*model.MembershipHistory)) *model.MembershipHistory {
	t.Helper()

	entry := &model.MembershipHistory{
		UserID:        m.UserID,
		MembershipID:  m.MembershipID,
		Tier:          m.Tier,
		PurchaseDate:  m.StartDate,
		ExpiryDate:    m.ExpiryDate,
		Status:        m.Status,
		Amount:        m.Amount,
		Currency:      m.Currency,
		TransactionID: m.TransactionID,
		PaymentDate:   m.PaymentDate,
		PaymentMethod: m.PaymentMethod,
		RenewalCount:  m.RenewalCount,
	}

	for _, opt := range opts {
		opt(entry)
	}

	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("Failed to create test history entry: %v", err)
	}

	return entry
}

// WithEntryStatus sets the ledger entry status.
func WithEntryStatus(status string) func(*model.MembershipHistory) {
	return func(e *model.MembershipHistory) {
		e.Status = status
	}
}
