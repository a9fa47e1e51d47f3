package infra

import (
	"fmt"
	"net/smtp"

	"github.com/vllevinton/bakery-stock-app/internal/config"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog/log"
)

// Mailer wraps SMTP configuration for sending stock alert emails.
// When SMTP is not configured (no host/user/password) it runs in disabled
// mode: the payload is logged instead of sent, so local development works
// without a mail account.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.MailFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

func (m *Mailer) enabled() bool {
	return m.host != "" && m.user != "" && m.password != ""
}

// Send delivers one email with both HTML and plain-text bodies.
func (m *Mailer) Send(to []string, subject, htmlBody, textBody string) error {
	if len(to) == 0 {
		return nil
	}
	if !m.enabled() {
		log.Info().
			Strs("to", to).
			Str("subject", subject).
			Str("text", textBody).
			Msg("mailer disabled — would send")
		return nil
	}

	e := email.NewEmail()
	e.From = m.from
	e.To = to
	e.Subject = subject
	e.HTML = []byte(htmlBody)
	e.Text = []byte(textBody)

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
