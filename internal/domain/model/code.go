package model

import (
	"time"

	"wordmate-subscription/internal/domain"
)

type CodeStatus string

const (
	CodeStatusUnused  CodeStatus = "unused"
	CodeStatusUsed    CodeStatus = "used"
	CodeStatusExpired CodeStatus = "expired"
)

// RedemptionCode is a single-use code exchanged for an active subscription.
// Status transitions are monotonic: unused -> used or unused -> expired;
// used and expired are terminal.
type RedemptionCode struct {
	ID        string // UUID
	Code      string // canonical XXXX-XXXX-XXXX form, upper-case
	OrderID   string
	Email     string
	PlanName  string
	Period    BillingPeriod
	Status    CodeStatus
	ExpiresAt *time.Time // nil = never expires
	CreatedAt time.Time
	UsedAt    *time.Time // nil until redeemed
	UsedBy    *string    // nil until redeemed
}

// NewRedemptionCode creates an unused code bound to a paid order.
func NewRedemptionCode(id, code string, order *Order, expiresAt *time.Time) (*RedemptionCode, error) {
	if id == "" || code == "" || order == nil || order.ID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &RedemptionCode{
		ID:        id,
		Code:      code,
		OrderID:   order.ID,
		Email:     order.Email,
		PlanName:  order.PlanName,
		Period:    order.Period,
		Status:    CodeStatusUnused,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// Redeemable reports whether the code can still be consumed at `now`.
// A stored expiry in the past is reported as ErrCodeExpired even while the
// persisted status is still unused; callers persist the transition lazily.
func (c *RedemptionCode) Redeemable(now time.Time) error {
	switch c.Status {
	case CodeStatusUsed:
		return domain.ErrCodeAlreadyUsed
	case CodeStatusExpired:
		return domain.ErrCodeExpired
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return domain.ErrCodeExpired
	}
	return nil
}
