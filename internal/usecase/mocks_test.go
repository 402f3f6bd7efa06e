//go:build !integration

package usecase_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jackc/pgx/v4"

	"wordmate-subscription/internal/domain"
	"wordmate-subscription/internal/domain/model"
	"wordmate-subscription/internal/domain/ports/repository"
)

// newTestLogger creates a silent logger for tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// ---- Mock TransactionManager ----

// MockTxManager runs the callback without a real transaction (nil tx handle).
type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, nil)
}

// ---- Mock OrderRepository ----

type MockOrderRepo struct {
	mu    sync.Mutex
	store map[string]*model.Order

	SaveFunc     func(ctx context.Context, tx repository.Tx, o *model.Order) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Order, error)
	MarkPaidFunc func(ctx context.Context, tx repository.Tx, id, code string, paidAt time.Time) (bool, error)
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{store: make(map[string]*model.Order)}
}

func (m *MockOrderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.store[o.ID] = &cp
	return nil
}

func (m *MockOrderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderRepo) MarkPaid(ctx context.Context, tx repository.Tx, id, code string, paidAt time.Time) (bool, error) {
	if m.MarkPaidFunc != nil {
		return m.MarkPaidFunc(ctx, tx, id, code, paidAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok || o.Status != model.OrderStatusPending {
		return false, nil
	}
	o.Status = model.OrderStatusPaid
	o.PaidAt = &paidAt
	o.RedemptionCode = &code
	return true, nil
}

func (m *MockOrderRepo) MarkCancelled(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok || o.Status != model.OrderStatusPending {
		return false, nil
	}
	o.Status = model.OrderStatusCancelled
	return true, nil
}

func (m *MockOrderRepo) List(ctx context.Context, tx repository.Tx, status model.OrderStatus, offset, limit int) ([]*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Order
	for _, o := range m.store {
		if status == "" || o.Status == status {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockOrderRepo) ExpirePendingBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, o := range m.store {
		if o.Status == model.OrderStatusPending && o.CreatedAt.Before(cutoff) {
			o.Status = model.OrderStatusExpired
			n++
		}
	}
	return n, nil
}

// ---- Mock CodeRepository ----

type MockCodeRepo struct {
	mu    sync.Mutex
	store map[string]*model.RedemptionCode // keyed by canonical code string

	SaveFunc     func(ctx context.Context, tx repository.Tx, c *model.RedemptionCode) error
	MarkUsedFunc func(ctx context.Context, tx repository.Tx, code, userID string, usedAt time.Time) (bool, error)
}

func NewMockCodeRepo() *MockCodeRepo {
	return &MockCodeRepo{store: make(map[string]*model.RedemptionCode)}
}

func (m *MockCodeRepo) Save(ctx context.Context, tx repository.Tx, c *model.RedemptionCode) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, c)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.Code] = &cp
	return nil
}

func (m *MockCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.RedemptionCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCodeRepo) MarkUsed(ctx context.Context, tx repository.Tx, code, userID string, usedAt time.Time) (bool, error) {
	if m.MarkUsedFunc != nil {
		return m.MarkUsedFunc(ctx, tx, code, userID, usedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[code]
	if !ok || c.Status != model.CodeStatusUnused {
		return false, nil
	}
	c.Status = model.CodeStatusUsed
	c.UsedAt = &usedAt
	c.UsedBy = &userID
	return true, nil
}

func (m *MockCodeRepo) MarkExpired(ctx context.Context, tx repository.Tx, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.store[code]; ok && c.Status == model.CodeStatusUnused {
		c.Status = model.CodeStatusExpired
	}
	return nil
}

func (m *MockCodeRepo) ExpireOverdue(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.store {
		if c.Status == model.CodeStatusUnused && c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
			c.Status = model.CodeStatusExpired
			n++
		}
	}
	return n, nil
}

// ---- Mock PlanRepository ----

type MockPlanRepo struct {
	mu    sync.Mutex
	store map[string]*model.Plan

	FindActiveByTierFunc func(ctx context.Context, tx repository.Tx, tier model.Tier) (*model.Plan, error)
}

func NewMockPlanRepo() *MockPlanRepo {
	return &MockPlanRepo{store: make(map[string]*model.Plan)}
}

func (m *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPlanRepo) FindActiveByTier(ctx context.Context, tx repository.Tx, tier model.Tier) (*model.Plan, error) {
	if m.FindActiveByTierFunc != nil {
		return m.FindActiveByTierFunc(ctx, tx, tier)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.Tier == tier && p.Active {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Plan
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// ---- Mock SubscriptionRepository ----

type MockSubRepo struct {
	mu      sync.Mutex
	subs    map[string]*model.Subscription
	history []*model.SubscriptionHistory

	SaveFunc func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
}

func NewMockSubRepo() *MockSubRepo {
	return &MockSubRepo{subs: make(map[string]*model.Subscription)}
}

func (m *MockSubRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.subs[s.ID] = &cp
	return nil
}

func (m *MockSubRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Subscription
	for _, s := range m.subs {
		if s.UserID == userID && s.Status == model.SubscriptionStatusActive {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockSubRepo) CancelActiveByUser(ctx context.Context, tx repository.Tx, userID string, at time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.subs {
		if s.UserID == userID && s.Status == model.SubscriptionStatusActive {
			s.Status = model.SubscriptionStatusCancelled
			cancelAt := at
			s.CancelledAt = &cancelAt
			n++
		}
	}
	return n, nil
}

func (m *MockSubRepo) SaveHistory(ctx context.Context, tx repository.Tx, h *model.SubscriptionHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *h
	m.history = append(m.history, &cp)
	return nil
}

// ---- Mock Mailer ----

type MockMailer struct {
	mu   sync.Mutex
	Sent []string // destination addresses

	SendFunc func(ctx context.Context, to, code, planName string) error
}

func (m *MockMailer) Enabled() bool { return true }

func (m *MockMailer) SendRedemptionCode(ctx context.Context, to, code, planName string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, code, planName)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, to)
	return nil
}

// ---- helpers ----

func unusedCode(code, planName string, period model.BillingPeriod) *model.RedemptionCode {
	return &model.RedemptionCode{
		ID:        "code-" + strings.ToLower(code[:4]),
		Code:      code,
		OrderID:   "order-1",
		Email:     "buyer@example.com",
		PlanName:  planName,
		Period:    period,
		Status:    model.CodeStatusUnused,
		CreatedAt: time.Now(),
	}
}
