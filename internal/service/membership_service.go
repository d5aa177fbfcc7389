package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/biznet/bn_server/internal/model"
	"github.com/biznet/bn_server/internal/model/dto"
	"github.com/biznet/bn_server/internal/pkg/ids"
	"github.com/biznet/bn_server/internal/pkg/queue"
	"github.com/biznet/bn_server/internal/repository"
)

var (
	ErrInvalidTier            = errors.New("unknown membership tier")
	ErrInvalidPayment         = errors.New("payment details are incomplete or invalid")
	ErrNoActiveMembership     = errors.New("no active membership to upgrade")
	ErrNoMembership           = errors.New("no membership found")
	ErrInvalidUpgradePath     = errors.New("unsupported upgrade path")
	ErrAlreadyCancelled       = errors.New("membership is already cancelled")
	ErrAlreadyBasic           = errors.New("membership is already on the Basic tier")
	ErrInvalidDowngradeTarget = errors.New("only downgrades to Basic are supported")
	ErrMembershipNotFound     = errors.New("membership not found")
)

// AmountMismatchError carries the flat price difference the client should
// have submitted for an upgrade.
type AmountMismatchError struct {
	Expected float64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("payment amount does not match the upgrade price (expected %.2f)", e.Expected)
}

// Upgrades move one step up only; Enterprise has no further target.
var upgradePath = map[string]string{
	model.TierBasic:        model.TierProfessional,
	model.TierProfessional: model.TierEnterprise,
}

var validPaymentMethods = map[string]bool{
	model.PaymentCreditCard:   true,
	model.PaymentDebitCard:    true,
	model.PaymentBankTransfer: true,
	model.PaymentOther:        true,
}

// userLocks serialises membership mutations per user. Without it two
// concurrent upgrades for the same user race on the single membership row.
// Entries are reference-counted and evicted once uncontended, so the map is
// bounded by in-flight operations rather than user cardinality.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until the user's lock is held and returns the release func.
func (l *userLocks) lock(userID int64) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()

		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

// MembershipService is the lifecycle manager: it enforces valid state
// transitions, keeps the current record, the history ledger and the user
// mirror consistent, and emits an event on every transition.
type MembershipService struct {
	db             *gorm.DB
	membershipRepo *repository.MembershipRepository
	historyRepo    *repository.HistoryRepository
	userRepo       *repository.UserRepository
	catalog        *CatalogService
	notifier       *Notifier
	locks          userLocks
}

func NewMembershipService(
	db *gorm.DB,
	membershipRepo *repository.MembershipRepository,
	historyRepo *repository.HistoryRepository,
	userRepo *repository.UserRepository,
	catalog *CatalogService,
	notifier *Notifier,
) *MembershipService {
	return &MembershipService{
		db:             db,
		membershipRepo: membershipRepo,
		historyRepo:    historyRepo,
		userRepo:       userRepo,
		catalog:        catalog,
		notifier:       notifier,
		locks:          userLocks{locks: make(map[int64]*userLock)},
	}
}

// Purchase starts a fresh membership, or performs an upgrade when the
// payment details carry is_upgrade.
func (s *MembershipService) Purchase(userID int64, req *dto.PurchaseRequest) (*dto.MembershipSummary, error) {
	tier, err := s.catalog.GetTier(req.Tier)
	if err != nil {
		if errors.Is(err, ErrTierNotFound) {
			return nil, ErrInvalidTier
		}
		return nil, err
	}

	if err := validatePayment(&req.PaymentDetails); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	if req.PaymentDetails.IsUpgrade {
		return s.upgrade(userID, tier, &req.PaymentDetails)
	}

	m, err := s.issue(userID, tier, &req.PaymentDetails, issueOpts{})
	if err != nil {
		return nil, err
	}

	s.notifier.Emit(queue.EventPurchased, userID, m)
	return summaryOf(m), nil
}

// upgrade validates the path and the flat price difference, retires the
// previous record and issues a new membership ID. Caller holds the user lock.
func (s *MembershipService) upgrade(userID int64, newTier *model.MembershipTier, pd *dto.PaymentDetails) (*dto.MembershipSummary, error) {
	current, err := s.membershipRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveMembership
		}
		return nil, err
	}
	if current.Status != model.StatusActive {
		return nil, ErrNoActiveMembership
	}

	currentTier, err := s.catalog.GetTier(current.Tier)
	if err != nil {
		return nil, err
	}

	if upgradePath[currentTier.Name] != newTier.Name {
		return nil, ErrInvalidUpgradePath
	}

	expected := ExpectedUpgradeAmount(currentTier, newTier)
	if *pd.Amount != expected {
		return nil, &AmountMismatchError{Expected: expected}
	}

	// Prorated figure is an estimate only; the charge is the flat difference.
	remaining := int(time.Until(current.ExpiryDate).Hours() / 24)
	if remaining < 0 {
		remaining = 0
	}
	estimate := ComputeUpgradeAmount(currentTier, newTier, remaining)
	log.Debug().
		Int64("user_id", userID).
		Int("remaining_days", remaining).
		Float64("prorated_estimate", estimate).
		Float64("charged", expected).
		Msg("membership upgrade")

	// Retiring the old ledger entry is best-effort: a failure here is logged
	// but never aborts the upgrade.
	if err := s.historyRepo.MarkStatusByMembershipID(
		current.MembershipID, model.StatusActive, model.StatusUpgraded); err != nil {
		log.Error().Err(err).
			Str("membership_id", current.MembershipID).
			Msg("failed to mark previous history entry as upgraded")
	}

	s.notifier.Emit(queue.EventDeactivated, userID, current)

	prevID := current.MembershipID
	upgradeFrom := currentTier.Name
	m, err := s.issue(userID, newTier, pd, issueOpts{
		upgradeFrom:          &upgradeFrom,
		previousMembershipID: &prevID,
		renewalCount:         current.RenewalCount + 1,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Emit(queue.EventPurchased, userID, m)

	summary := summaryOf(m)
	summary.UpgradeFrom = &upgradeFrom
	summary.ProratedEstimate = &estimate
	return summary, nil
}

type issueOpts struct {
	upgradeFrom          *string
	previousMembershipID *string
	renewalCount         int
}

// issue writes the current record, the ledger entry and the user mirror in
// one transaction, replacing any prior record the user holds.
func (s *MembershipService) issue(userID int64, tier *model.MembershipTier, pd *dto.PaymentDetails, opts issueOpts) (*model.Membership, error) {
	membershipID, err := s.newMembershipID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	m := &model.Membership{
		UserID:               userID,
		MembershipID:         membershipID,
		Tier:                 tier.Name,
		Status:               model.StatusActive,
		StartDate:            now,
		ExpiryDate:           now.Add(time.Duration(tier.DurationDays) * 24 * time.Hour),
		Amount:               *pd.Amount,
		Currency:             pd.Currency,
		TransactionID:        pd.TransactionID,
		PaymentDate:          *pd.PaymentDate,
		PaymentMethod:        pd.PaymentMethod,
		PreviousMembershipID: opts.previousMembershipID,
		RenewalCount:         opts.renewalCount,
	}

	// Reuse the row when the user already holds a record: one record per
	// user, enforced by the unique index.
	existing, err := s.membershipRepo.GetByUserID(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		m.ID = existing.ID
		m.CreatedAt = existing.CreatedAt
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		mRepo := s.membershipRepo.WithTx(tx)
		if existing != nil {
			if err := mRepo.Save(m); err != nil {
				return err
			}
			// A plain repurchase over a still-active membership retires the
			// previous ledger entry; the upgrade path has already marked its
			// entry upgraded, so this is a no-op there.
			if existing.Status == model.StatusActive {
				if err := s.historyRepo.WithTx(tx).MarkStatusByMembershipID(
					existing.MembershipID, model.StatusActive, model.StatusSuperseded); err != nil {
					return err
				}
			}
		} else if err := mRepo.Create(m); err != nil {
			return err
		}

		entry := &model.MembershipHistory{
			UserID:               userID,
			MembershipID:         m.MembershipID,
			Tier:                 m.Tier,
			PurchaseDate:         now,
			ExpiryDate:           m.ExpiryDate,
			Status:               model.StatusActive,
			Amount:               m.Amount,
			Currency:             m.Currency,
			TransactionID:        m.TransactionID,
			PaymentDate:          m.PaymentDate,
			PaymentMethod:        m.PaymentMethod,
			PreviousMembershipID: opts.previousMembershipID,
			RenewalCount:         opts.renewalCount,
			UpgradeFrom:          opts.upgradeFrom,
		}
		if err := s.historyRepo.WithTx(tx).Create(entry); err != nil {
			return err
		}

		return s.userRepo.WithTx(tx).UpdateMembershipLevel(userID, m.Tier)
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Downgrade mutates the tier in place on the same membership ID and leaves
// the expiry date untouched. Only Basic is a valid target.
func (s *MembershipService) Downgrade(userID int64, targetTier string) (*dto.MembershipSummary, error) {
	if !strings.EqualFold(targetTier, model.TierBasic) {
		return nil, ErrInvalidDowngradeTarget
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	m, err := s.membershipRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoMembership
		}
		return nil, err
	}
	if m.Status != model.StatusActive {
		return nil, ErrNoMembership
	}
	if strings.EqualFold(m.Tier, model.TierBasic) {
		return nil, ErrAlreadyBasic
	}

	now := time.Now()
	previousTier := m.Tier
	m.Tier = model.TierBasic
	m.PreviousTier = &previousTier
	m.DowngradeDate = &now

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.membershipRepo.WithTx(tx).Save(m); err != nil {
			return err
		}

		hRepo := s.historyRepo.WithTx(tx)
		if err := hRepo.MarkStatusByMembershipID(
			m.MembershipID, model.StatusActive, model.StatusSuperseded); err != nil {
			return err
		}

		entry := &model.MembershipHistory{
			UserID:        userID,
			MembershipID:  m.MembershipID,
			Tier:          model.TierBasic,
			PurchaseDate:  now,
			ExpiryDate:    m.ExpiryDate,
			Status:        model.StatusActive,
			RenewalCount:  m.RenewalCount,
			DowngradeDate: &now,
			Notes:         fmt.Sprintf("downgraded from %s", previousTier),
		}
		if err := hRepo.Create(entry); err != nil {
			return err
		}

		return s.userRepo.WithTx(tx).UpdateMembershipLevel(userID, model.TierBasic)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Emit(queue.EventDowngraded, userID, m)
	return summaryOf(m), nil
}

// Cancel marks the record and its ledger entry cancelled. The expiry date
// is left as-is.
func (s *MembershipService) Cancel(userID int64, reason string) (*dto.MembershipSummary, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	m, err := s.membershipRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoMembership
		}
		return nil, err
	}
	if m.Status == model.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	m.Status = model.StatusCancelled

	var reasonPtr *string
	if strings.TrimSpace(reason) != "" {
		trimmed := strings.TrimSpace(reason)
		reasonPtr = &trimmed
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.membershipRepo.WithTx(tx).Save(m); err != nil {
			return err
		}
		if err := s.historyRepo.WithTx(tx).CancelByMembershipID(m.MembershipID, reasonPtr); err != nil {
			return err
		}
		return s.userRepo.WithTx(tx).UpdateMembershipLevel(userID, model.MembershipLevelNone)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Emit(queue.EventCancelled, userID, m)
	return summaryOf(m), nil
}

// Verify reports whether the user holds an active membership, lazily
// expiring records whose expiry date has passed (write-on-read).
func (s *MembershipService) Verify(userID int64) (*dto.VerifyResult, error) {
	m, err := s.membershipRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.VerifyResult{HasActiveMembership: false}, nil
		}
		return nil, err
	}

	if m.Status != model.StatusActive {
		return &dto.VerifyResult{HasActiveMembership: false}, nil
	}

	if m.ExpiryDate.Before(time.Now()) {
		// The record may have been replaced between the unlocked read and
		// here; expireUnderLock re-reads before writing anything.
		m, err = s.expireUnderLock(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &dto.VerifyResult{HasActiveMembership: false}, nil
			}
			return nil, err
		}
		if m.Status != model.StatusActive || m.ExpiryDate.Before(time.Now()) {
			return &dto.VerifyResult{HasActiveMembership: false}, nil
		}
		// A concurrent purchase landed mid-check; report the fresh record.
	}

	return &dto.VerifyResult{
		HasActiveMembership: true,
		Membership:          summaryOf(m),
	}, nil
}

// VerifyByID is the public lookup used for third-party verification.
func (s *MembershipService) VerifyByID(membershipID string) (*dto.VerifyResult, error) {
	m, err := s.membershipRepo.GetByMembershipID(membershipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.VerifyResult{HasActiveMembership: false}, nil
		}
		return nil, err
	}

	if m.Status != model.StatusActive {
		return &dto.VerifyResult{HasActiveMembership: false}, nil
	}

	if m.ExpiryDate.Before(time.Now()) {
		fresh, err := s.expireUnderLock(m.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &dto.VerifyResult{HasActiveMembership: false}, nil
			}
			return nil, err
		}
		// The user's record may now carry a different membership ID: the
		// queried one is gone either way.
		if fresh.MembershipID != membershipID ||
			fresh.Status != model.StatusActive || fresh.ExpiryDate.Before(time.Now()) {
			return &dto.VerifyResult{HasActiveMembership: false}, nil
		}
		m = fresh
	}

	return &dto.VerifyResult{
		HasActiveMembership: true,
		Membership:          summaryOf(m),
	}, nil
}

// expireUnderLock re-reads the user's current record under the user lock
// and expires it only when it is still active and past expiry. Acting on
// the fresh read instead of the caller's keeps a concurrent purchase from
// being overwritten by a stale struct.
func (s *MembershipService) expireUnderLock(userID int64) (*model.Membership, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	m, err := s.membershipRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if m.Status == model.StatusActive && m.ExpiryDate.Before(time.Now()) {
		s.expireRecord(m)
	}
	return m, nil
}

// History returns the user's ledger, newest first.
func (s *MembershipService) History(userID int64) ([]dto.HistoryItem, error) {
	entries, err := s.historyRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, historyItemOf(&e))
	}
	return items, nil
}

// Details returns the current record regardless of status.
func (s *MembershipService) Details(userID int64) (*dto.MembershipSummary, error) {
	m, err := s.membershipRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoMembership
		}
		return nil, err
	}
	return summaryOf(m), nil
}

// ExpireDue sweeps every active record whose expiry date has passed.
// Used by the periodic sweep and the one-shot CLI.
func (s *MembershipService) ExpireDue(now time.Time) (int, error) {
	due, err := s.membershipRepo.ListDueForExpiry(now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range due {
		if s.expireIfStillDue(due[i].MembershipID, now) {
			expired++
		}
	}
	return expired, nil
}

// expireIfStillDue re-reads one listed record under the user lock and
// expires it only if it still matches what the sweep saw. Rows replaced
// by a purchase between the listing and the lock are skipped.
func (s *MembershipService) expireIfStillDue(membershipID string, now time.Time) bool {
	m, err := s.membershipRepo.GetByMembershipID(membershipID)
	if err != nil {
		return false
	}

	unlock := s.locks.lock(m.UserID)
	defer unlock()

	m, err = s.membershipRepo.GetByUserID(m.UserID)
	if err != nil {
		return false
	}
	if m.MembershipID != membershipID ||
		m.Status != model.StatusActive || !m.ExpiryDate.Before(now) {
		return false
	}
	return s.expireRecord(m) == nil
}

// expireRecord transitions one record to expired across all three
// locations. Failures are logged; the caller still reports the membership
// as inactive. Caller holds the user lock.
func (s *MembershipService) expireRecord(m *model.Membership) error {
	m.Status = model.StatusExpired

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.membershipRepo.WithTx(tx).Save(m); err != nil {
			return err
		}
		if err := s.historyRepo.WithTx(tx).MarkStatusByMembershipID(
			m.MembershipID, model.StatusActive, model.StatusExpired); err != nil {
			return err
		}
		return s.userRepo.WithTx(tx).UpdateMembershipLevel(m.UserID, model.MembershipLevelNone)
	})
	if err != nil {
		log.Error().Err(err).
			Str("membership_id", m.MembershipID).
			Msg("failed to expire membership")
		return err
	}

	s.notifier.Emit(queue.EventExpired, m.UserID, m)
	return nil
}

func (s *MembershipService) newMembershipID() (string, error) {
	// Collision odds are tiny (36^8 space) but duplicates are retried
	// rather than left to chance.
	for i := 0; i < 5; i++ {
		id := ids.MembershipID()

		exists, err := s.membershipRepo.ExistsMembershipID(id)
		if err != nil {
			return "", err
		}
		if exists {
			continue
		}

		// History keeps every ID ever issued, including ones whose record
		// was since replaced by an upgrade.
		used, err := s.historyRepo.ExistsMembershipID(id)
		if err != nil {
			return "", err
		}
		if !used {
			return id, nil
		}
	}
	return "", errors.New("could not allocate a unique membership id")
}

func validatePayment(pd *dto.PaymentDetails) error {
	if pd == nil || pd.Amount == nil || pd.PaymentDate == nil {
		return ErrInvalidPayment
	}
	if pd.Currency == "" || pd.TransactionID == "" {
		return ErrInvalidPayment
	}
	if !validPaymentMethods[pd.PaymentMethod] {
		return ErrInvalidPayment
	}
	return nil
}

func summaryOf(m *model.Membership) *dto.MembershipSummary {
	return &dto.MembershipSummary{
		MembershipID:  m.MembershipID,
		Tier:          m.Tier,
		Status:        m.Status,
		StartDate:     m.StartDate,
		ExpiryDate:    m.ExpiryDate,
		RenewalCount:  m.RenewalCount,
		PreviousTier:  m.PreviousTier,
		DowngradeDate: m.DowngradeDate,
	}
}

func historyItemOf(e *model.MembershipHistory) dto.HistoryItem {
	return dto.HistoryItem{
		MembershipID:       e.MembershipID,
		Tier:               e.Tier,
		Status:             e.Status,
		PurchaseDate:       e.PurchaseDate,
		ExpiryDate:         e.ExpiryDate,
		Amount:             e.Amount,
		Currency:           e.Currency,
		PaymentMethod:      e.PaymentMethod,
		RenewalCount:       e.RenewalCount,
		UpgradeFrom:        e.UpgradeFrom,
		DowngradeDate:      e.DowngradeDate,
		CancellationReason: e.CancellationReason,
		Notes:              e.Notes,
	}
}
