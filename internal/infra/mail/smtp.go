package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"wordmate-subscription/internal/config"
	"wordmate-subscription/internal/domain/ports/adapter"
)

// Ensure implementation satisfies the port.
var _ adapter.Mailer = (*SMTPMailer)(nil)

// SMTPMailer delivers redemption codes through a transactional SMTP provider.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
	log    *zerolog.Logger
}

// NewMailer returns an SMTP mailer, or a no-op mailer when no host is
// configured. Running without credentials is a valid development setup.
func NewMailer(cfg config.SMTPConfig, logger *zerolog.Logger) adapter.Mailer {
	if cfg.Host == "" {
		logger.Warn().Msg("smtp.host not configured; code emails are disabled")
		return &NoopMailer{log: logger}
	}
	mailLog := logger.With().Str("component", "SMTPMailer").Logger()
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		log:    &mailLog,
	}
}

func (s *SMTPMailer) Enabled() bool { return true }

func (s *SMTPMailer) SendRedemptionCode(ctx context.Context, to, code, planName string) error {
	subject := "您的 WordMate 会员兑换码"
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>感谢您的购买！</h2>
			<p>您购买的套餐：<strong>%s</strong></p>
			<p>您的兑换码：</p>
			<p style="font-size:24px;font-family:monospace;letter-spacing:2px;"><strong>%s</strong></p>
			<p>请在 App 的「会员中心 - 兑换码」页面输入上方兑换码激活会员。</p>
			<p>如有问题请直接回复本邮件。</p>
		</body>
		</html>
	`, planName, code)

	plainBody := fmt.Sprintf(`感谢您的购买！

您购买的套餐：%s
您的兑换码：%s

请在 App 的「会员中心 - 兑换码」页面输入兑换码激活会员。
如有问题请直接回复本邮件。
`, planName, code)

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.FromAddress, s.cfg.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	// gomail has no context support; honor cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send code email: %w", err)
	}
	s.log.Info().Str("to", to).Msg("code email sent")
	return nil
}

// NoopMailer reports success without sending anything.
type NoopMailer struct {
	log *zerolog.Logger
}

var _ adapter.Mailer = (*NoopMailer)(nil)

func (n *NoopMailer) Enabled() bool { return false }

func (n *NoopMailer) SendRedemptionCode(ctx context.Context, to, code, planName string) error {
	n.log.Debug().Str("to", to).Msg("mailer disabled; skipping code email")
	return nil
}
