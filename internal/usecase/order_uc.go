package usecase

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"wordmate-subscription/internal/domain"
	"wordmate-subscription/internal/domain/model"
	"wordmate-subscription/internal/domain/ports/adapter"
	"wordmate-subscription/internal/domain/ports/repository"
	"wordmate-subscription/internal/infra/logging"
	"wordmate-subscription/internal/infra/metrics"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ConfirmResult carries the outcome of an admin payment confirmation. Email
// delivery failure is a soft failure: the code and paid state stand, and the
// error is reported alongside.
type ConfirmResult struct {
	Code       string
	Email      string
	EmailSent  bool
	EmailError string
}

// Compile-time check
var _ OrderUseCase = (*orderUC)(nil)

// OrderUseCase implements the order lifecycle: pending -> paid | cancelled | expired.
type OrderUseCase interface {
	// Create validates the purchaser email, plan and amount, and persists a
	// pending order.
	Create(ctx context.Context, email, planID string, amountCents int64) (*model.Order, error)
	// Confirm marks an order paid, generates its redemption code and attempts
	// email delivery. Admin-only; rejected when the order is not pending.
	Confirm(ctx context.Context, orderID string) (*ConfirmResult, error)
	// Cancel is allowed only while the order is pending.
	Cancel(ctx context.Context, orderID string) error
	Get(ctx context.Context, orderID string) (*model.Order, error)
	List(ctx context.Context, status model.OrderStatus, offset, limit int) ([]*model.Order, error)
	// ExpireStale sweeps pending orders older than pendingTTL and unused codes
	// past their expiry. Called by the expiry worker.
	ExpireStale(ctx context.Context, pendingTTL time.Duration) (orders, codes int, err error)
}

type orderUC struct {
	orders  repository.OrderRepository
	codes   repository.CodeRepository
	plans   repository.PlanRepository
	mailer  adapter.Mailer
	txm     repository.TransactionManager
	codeTTL time.Duration // 0 = codes never expire
	log     *zerolog.Logger
	dev     bool
}

func NewOrderUseCase(
	orders repository.OrderRepository,
	codes repository.CodeRepository,
	plans repository.PlanRepository,
	mailer adapter.Mailer,
	txm repository.TransactionManager,
	codeTTL time.Duration,
	logger *zerolog.Logger,
	dev bool,
) *orderUC {
	ucLog := logger.With().Str("component", "OrderUC").Logger()
	return &orderUC{
		orders:  orders,
		codes:   codes,
		plans:   plans,
		mailer:  mailer,
		txm:     txm,
		codeTTL: codeTTL,
		log:     &ucLog,
		dev:     dev,
	}
}

func (u *orderUC) Create(ctx context.Context, email, planID string, amountCents int64) (*model.Order, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegex.MatchString(email) {
		return nil, domain.ErrInvalidArgument
	}

	plan, err := u.plans.FindByID(ctx, repository.NoTX, planID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, domain.ErrNotFound
	}
	if amountCents < plan.PriceCents {
		return nil, domain.ErrAmountTooLow
	}

	order, err := model.NewOrder(ulid.Make().String(), email, plan, amountCents, "manual")
	if err != nil {
		return nil, err
	}
	if err := u.orders.Save(ctx, repository.NoTX, order); err != nil {
		return nil, err
	}

	metrics.IncOrder(string(model.OrderStatusPending))
	u.log.Info().
		Str("order_id", order.ID).
		Str("plan_id", planID).
		Str("email", logging.Redact(email, u.dev)).
		Msg("order created")
	return order, nil
}

func (u *orderUC) Confirm(ctx context.Context, orderID string) (*ConfirmResult, error) {
	var (
		codeStr string
		email   string
		plan    string
	)

	err := u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		order, err := u.orders.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		switch order.Status {
		case model.OrderStatusPending:
			// fallthrough to confirmation
		case model.OrderStatusPaid:
			return domain.ErrOrderAlreadyPaid
		default:
			return domain.ErrOrderNotPending
		}

		generated, err := generateRedemptionCode()
		if err != nil {
			return err
		}

		now := time.Now()
		ok, err := u.orders.MarkPaid(ctx, tx, order.ID, generated, now)
		if err != nil {
			return err
		}
		if !ok {
			// lost the race with a concurrent confirmation
			return domain.ErrOrderAlreadyPaid
		}

		var expiresAt *time.Time
		if u.codeTTL > 0 {
			exp := now.Add(u.codeTTL)
			expiresAt = &exp
		}
		code, err := model.NewRedemptionCode(uuid.NewString(), generated, order, expiresAt)
		if err != nil {
			return err
		}
		if err := u.codes.Save(ctx, tx, code); err != nil {
			return err
		}

		codeStr, email, plan = generated, order.Email, order.PlanName
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncOrder(string(model.OrderStatusPaid))
	u.log.Info().
		Str("order_id", orderID).
		Str("email", logging.Redact(email, u.dev)).
		Msg("order confirmed, code issued")

	res := &ConfirmResult{Code: codeStr, Email: email}
	if sendErr := u.mailer.SendRedemptionCode(ctx, email, codeStr, plan); sendErr != nil {
		// Soft failure: the paid/code state stands, the operator sees the
		// error in the response and can resend manually.
		metrics.IncEmail("failed")
		u.log.Error().Err(sendErr).Str("order_id", orderID).Msg("code email delivery failed")
		res.EmailError = sendErr.Error()
	} else {
		metrics.IncEmail("sent")
		res.EmailSent = true
	}
	return res, nil
}

func (u *orderUC) Cancel(ctx context.Context, orderID string) error {
	ok, err := u.orders.MarkCancelled(ctx, repository.NoTX, orderID)
	if err != nil {
		return err
	}
	if !ok {
		// Distinguish unknown order from a non-pending one.
		if _, err := u.orders.FindByID(ctx, repository.NoTX, orderID); err != nil {
			return err
		}
		return domain.ErrOrderNotPending
	}
	metrics.IncOrder(string(model.OrderStatusCancelled))
	u.log.Info().Str("order_id", orderID).Msg("order cancelled")
	return nil
}

func (u *orderUC) Get(ctx context.Context, orderID string) (*model.Order, error) {
	return u.orders.FindByID(ctx, repository.NoTX, orderID)
}

func (u *orderUC) List(ctx context.Context, status model.OrderStatus, offset, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return u.orders.List(ctx, repository.NoTX, status, offset, limit)
}

func (u *orderUC) ExpireStale(ctx context.Context, pendingTTL time.Duration) (int, int, error) {
	now := time.Now()
	expiredOrders, err := u.orders.ExpirePendingBefore(ctx, repository.NoTX, now.Add(-pendingTTL))
	if err != nil {
		return 0, 0, err
	}
	expiredCodes, err := u.codes.ExpireOverdue(ctx, repository.NoTX, now)
	if err != nil {
		return expiredOrders, 0, err
	}
	return expiredOrders, expiredCodes, nil
}
