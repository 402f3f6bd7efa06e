package model

import (
	"time"

	"wordmate-subscription/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// PaymentMethodRedemptionCode tags subscriptions activated by redeeming a
// code; the monetary amount on those rows is always zero.
const PaymentMethodRedemptionCode = "redemption_code"

// Subscription is a user's entitlement row. At most one active subscription
// exists per user; the redemption engine cancels priors before inserting a
// new one inside the same transaction.
type Subscription struct {
	ID            string // ULID
	UserID        string
	PlanID        string
	Status        SubscriptionStatus
	StartAt       time.Time
	EndAt         *time.Time // nil = unbounded
	AutoRenew     bool
	PaymentMethod string
	AmountCents   int64
	Currency      string
	CancelledAt   *time.Time
	CreatedAt     time.Time
}

// NewRedeemedSubscription builds the active subscription produced by a
// successful code redemption.
func NewRedeemedSubscription(id, userID string, plan *Plan, endAt *time.Time) (*Subscription, error) {
	if id == "" || userID == "" || plan.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Subscription{
		ID:            id,
		UserID:        userID,
		PlanID:        plan.ID,
		Status:        SubscriptionStatusActive,
		StartAt:       now,
		EndAt:         endAt,
		AutoRenew:     false,
		PaymentMethod: PaymentMethodRedemptionCode,
		AmountCents:   0,
		Currency:      plan.Currency,
		CreatedAt:     now,
	}, nil
}

// SubscriptionHistory is the append-only audit copy written alongside every
// activation. Rows are never mutated after insert.
type SubscriptionHistory struct {
	ID             string // UUID
	SubscriptionID string
	UserID         string
	PlanID         string
	Status         SubscriptionStatus
	StartAt        time.Time
	EndAt          *time.Time
	PaymentMethod  string
	AmountCents    int64
	Currency       string
	RecordedAt     time.Time
}

// HistoryFrom snapshots a subscription into an audit row.
func HistoryFrom(id string, s *Subscription) *SubscriptionHistory {
	return &SubscriptionHistory{
		ID:             id,
		SubscriptionID: s.ID,
		UserID:         s.UserID,
		PlanID:         s.PlanID,
		Status:         s.Status,
		StartAt:        s.StartAt,
		EndAt:          s.EndAt,
		PaymentMethod:  s.PaymentMethod,
		AmountCents:    s.AmountCents,
		Currency:       s.Currency,
		RecordedAt:     time.Now(),
	}
}
