package usecase

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/google/uuid"

	"wordmate-subscription/internal/domain"
	"wordmate-subscription/internal/domain/model"
	"wordmate-subscription/internal/domain/ports/repository"
	"wordmate-subscription/internal/infra/metrics"
)

// Locker serializes redemption attempts per user. Implementations are
// expected to be distributed (Redis); a nil Locker disables locking.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// RedemptionResult is returned to the caller on a successful redemption.
type RedemptionResult struct {
	Tier     model.Tier
	PlanName string
	EndDate  *time.Time // nil = unbounded
}

// Compile-time check
var _ RedemptionUseCase = (*redemptionUC)(nil)

// RedemptionUseCase exchanges a single-use code for an active subscription.
type RedemptionUseCase interface {
	Redeem(ctx context.Context, userID, rawCode string) (*RedemptionResult, error)
}

type redemptionUC struct {
	codes   repository.CodeRepository
	plans   repository.PlanRepository
	subs    repository.SubscriptionRepository
	txm     repository.TransactionManager
	locker  Locker // optional
	lockTTL time.Duration
	log     *zerolog.Logger
}

func NewRedemptionUseCase(
	codes repository.CodeRepository,
	plans repository.PlanRepository,
	subs repository.SubscriptionRepository,
	txm repository.TransactionManager,
	locker Locker,
	lockTTL time.Duration,
	logger *zerolog.Logger,
) *redemptionUC {
	ucLog := logger.With().Str("component", "RedemptionUC").Logger()
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &redemptionUC{
		codes:   codes,
		plans:   plans,
		subs:    subs,
		txm:     txm,
		locker:  locker,
		lockTTL: lockTTL,
		log:     &ucLog,
	}
}

func hashToInt64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64() & ((1 << 63) - 1))
}

// Redeem validates the submitted code and activates the matching subscription.
//
// The activation sequence (cancel priors, insert subscription, insert history,
// consume the code) runs inside a single transaction with the code-consumption
// compare-and-swap as its precondition, so a concurrent or retried redemption
// of the same code cannot double-activate. A per-user advisory xact lock
// serializes the cancel/insert pair against concurrent redemptions by the
// same user with different codes.
func (u *redemptionUC) Redeem(ctx context.Context, userID, rawCode string) (*RedemptionResult, error) {
	if userID == "" || rawCode == "" {
		return nil, domain.ErrInvalidArgument
	}

	key := normalizeCode(rawCode)

	code, err := u.codes.FindByCode(ctx, repository.NoTX, key)
	if err != nil {
		if err == domain.ErrNotFound {
			metrics.IncRedemption("invalid")
			return nil, domain.ErrCodeNotFound
		}
		return nil, err
	}

	now := time.Now()
	if err := code.Redeemable(now); err != nil {
		// An overdue expiry discovered here is persisted lazily; the
		// transition is unused -> expired, terminal either way.
		if err == domain.ErrCodeExpired && code.Status == model.CodeStatusUnused {
			if markErr := u.codes.MarkExpired(ctx, repository.NoTX, key); markErr != nil {
				u.log.Error().Err(markErr).Str("code", key).Msg("lazy expiry persist failed")
			}
		}
		switch err {
		case domain.ErrCodeAlreadyUsed:
			metrics.IncRedemption("used")
		case domain.ErrCodeExpired:
			metrics.IncRedemption("expired")
		}
		return nil, err
	}

	tier, known := model.TierForPlanName(code.PlanName)
	if !known {
		// Preserved leniency: unknown display names fall back to premium
		// rather than stranding the purchaser. Worth alerting on, since it
		// usually means a data-entry error at code creation.
		u.log.Warn().Str("code", key).Str("plan_name", code.PlanName).
			Msg("unrecognized plan name on code, defaulting to premium")
	}

	plan, err := u.plans.FindActiveByTier(ctx, repository.NoTX, tier)
	if err != nil {
		if err == domain.ErrNotFound {
			u.log.Error().Str("tier", string(tier)).Msg("plan catalog has no active row for tier")
			metrics.IncRedemption("config_error")
			return nil, domain.ErrPlanNotConfigured
		}
		return nil, err
	}

	endDate := code.Period.EndDate(now)

	if u.locker != nil {
		token, lockErr := u.locker.TryLock(ctx, "redeem:user:"+userID, u.lockTTL)
		if lockErr != nil {
			return nil, domain.ErrTooManyAttempts
		}
		defer func() { _ = u.locker.Unlock(ctx, "redeem:user:"+userID, token) }()
	}

	err = u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if ptx, ok := tx.(pgx.Tx); ok {
			if _, err := ptx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", hashToInt64(userID)); err != nil {
				return err
			}
		}

		// Precondition: the code must still be unused. If the conditional
		// update misses, someone else consumed it since our read.
		consumed, err := u.codes.MarkUsed(ctx, tx, key, userID, now)
		if err != nil {
			return err
		}
		if !consumed {
			return domain.ErrCodeAlreadyUsed
		}

		if _, err := u.subs.CancelActiveByUser(ctx, tx, userID, now); err != nil {
			return err
		}

		sub, err := model.NewRedeemedSubscription(ulid.Make().String(), userID, plan, endDate)
		if err != nil {
			return err
		}
		if err := u.subs.Save(ctx, tx, sub); err != nil {
			return err
		}
		if err := u.subs.SaveHistory(ctx, tx, model.HistoryFrom(uuid.NewString(), sub)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if err == domain.ErrCodeAlreadyUsed {
			metrics.IncRedemption("used")
		} else {
			metrics.IncRedemption("error")
		}
		return nil, err
	}

	metrics.IncRedemption("success")
	u.log.Info().
		Str("code", key).
		Str("user_id", userID).
		Str("tier", string(tier)).
		Msg("code redeemed")

	return &RedemptionResult{
		Tier:     tier,
		PlanName: plan.Name,
		EndDate:  endDate,
	}, nil
}
