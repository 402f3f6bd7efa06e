package adapter

import "context"

// Mailer delivers redemption codes to purchasers. Implementations must treat
// missing provider credentials as a valid configuration and no-op instead of
// failing; delivery failure is always reported to the caller as a value, never
// allowed to abort the surrounding operation.
type Mailer interface {
	// SendRedemptionCode sends the formatted code to the purchaser.
	SendRedemptionCode(ctx context.Context, to, code, planName string) error
	// Enabled reports whether a real provider is configured.
	Enabled() bool
}
