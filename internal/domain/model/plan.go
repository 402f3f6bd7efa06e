package model

import (
	"strings"
	"time"

	"wordmate-subscription/internal/domain"
)

// Tier is the internal subscription level, distinct from the user-facing
// plan display name printed on orders and codes.
type Tier string

const (
	TierFree             Tier = "free"
	TierPremium          Tier = "premium"
	TierFlagship         Tier = "flagship"
	TierFlagshipLifetime Tier = "flagship_lifetime"
)

// BillingPeriod is the cadence encoded on a plan, order and code. The product
// surface is Chinese-first, so the Chinese labels are accepted as aliases.
type BillingPeriod string

const (
	PeriodMonthly  BillingPeriod = "monthly"
	PeriodYearly   BillingPeriod = "yearly"
	PeriodLifetime BillingPeriod = "lifetime"
)

var periodAliases = map[string]BillingPeriod{
	"monthly":  PeriodMonthly,
	"月付":       PeriodMonthly,
	"yearly":   PeriodYearly,
	"年付":       PeriodYearly,
	"lifetime": PeriodLifetime,
	"终身":       PeriodLifetime,
}

// ParseBillingPeriod resolves a raw period label to a known cadence.
// Unknown labels return ok=false; callers treat those as "unbounded".
func ParseBillingPeriod(raw string) (BillingPeriod, bool) {
	p, ok := periodAliases[strings.ToLower(strings.TrimSpace(raw))]
	return p, ok
}

// EndDate computes the subscription end date for this cadence starting at
// `from`. Lifetime is modeled as a finite date 100 years out so downstream
// date comparisons never have to special-case it. An unrecognized cadence
// yields nil (unbounded).
func (p BillingPeriod) EndDate(from time.Time) *time.Time {
	var end time.Time
	switch p {
	case PeriodMonthly:
		end = from.AddDate(0, 1, 0)
	case PeriodYearly:
		end = from.AddDate(1, 0, 0)
	case PeriodLifetime:
		end = from.AddDate(100, 0, 0)
	default:
		return nil
	}
	return &end
}

// Plan is a static catalog entry mapping a tier to pricing and display name.
type Plan struct {
	ID         string
	Tier       Tier
	Name       string
	Period     BillingPeriod
	PriceCents int64
	Currency   string
	Active     bool
	CreatedAt  time.Time
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == "" }

// NewPlan validates and constructs a catalog entry.
func NewPlan(id string, tier Tier, name string, period BillingPeriod, priceCents int64, currency string) (*Plan, error) {
	if id == "" || tier == "" || name == "" || priceCents < 0 || currency == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:         id,
		Tier:       tier,
		Name:       name,
		Period:     period,
		PriceCents: priceCents,
		Currency:   currency,
		Active:     true,
		CreatedAt:  time.Now(),
	}, nil
}

// tierByPlanName maps display names stamped on codes to internal tiers.
// Codes carry display names because the admin tooling that created them
// predates tier identifiers.
var tierByPlanName = map[string]Tier{
	"高级会员":     TierPremium,
	"旗舰会员":     TierFlagship,
	"旗舰终身会员":   TierFlagshipLifetime,
	"premium":  TierPremium,
	"flagship": TierFlagship,
}

// TierForPlanName resolves a plan display name to a tier. Unknown or empty
// names fall back to premium rather than failing the redemption; the second
// return value reports whether the name was actually recognized.
func TierForPlanName(name string) (Tier, bool) {
	t, ok := tierByPlanName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return TierPremium, false
	}
	return t, true
}
