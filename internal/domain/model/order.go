package model

import (
	"time"

	"wordmate-subscription/internal/domain"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // created, awaiting manual payment confirmation
	OrderStatusPaid      OrderStatus = "paid"      // admin confirmed; a redemption code exists
	OrderStatusCancelled OrderStatus = "cancelled" // cancelled while still pending
	OrderStatusExpired   OrderStatus = "expired"   // pending too long, swept by the expiry worker
)

// Order represents a purchase intent settled out-of-band. Payment is confirmed
// manually by an operator; confirmation attaches a single redemption code.
//
// Invariant: RedemptionCode is set if and only if Status is paid.
type Order struct {
	ID             string // ULID
	Email          string
	PlanID         string
	PlanName       string
	Period         BillingPeriod
	AmountCents    int64
	Currency       string
	PaymentMethod  string
	Status         OrderStatus
	CreatedAt      time.Time
	PaidAt         *time.Time // nil until confirmed
	RedemptionCode *string    // nil until confirmed
}

// NewOrder creates a pending order for the given plan.
func NewOrder(id, email string, plan *Plan, amountCents int64, paymentMethod string) (*Order, error) {
	if id == "" || email == "" || plan.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	return &Order{
		ID:            id,
		Email:         email,
		PlanID:        plan.ID,
		PlanName:      plan.Name,
		Period:        plan.Period,
		AmountCents:   amountCents,
		Currency:      plan.Currency,
		PaymentMethod: paymentMethod,
		Status:        OrderStatusPending,
		CreatedAt:     time.Now(),
	}, nil
}
