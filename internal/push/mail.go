package push

import (
	"context"
	"fmt"

	"github.com/kirinyoku/lodge-go/internal/domain"
	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Subject  string
}

// MailSender delivers to "email" endpoints; the endpoint token is the
// address.
type MailSender struct {
	d       dialer
	from    string
	subject string
}

func NewMailSender(cfg MailConfig) *MailSender {
	subject := cfg.Subject
	if subject == "" {
		subject = "Lodging notification"
	}

	return &MailSender{
		d:       gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		subject: subject,
	}
}

func (s *MailSender) Send(ctx context.Context, ep domain.PushEndpoint, msg Message) error {
	const op = "push.MailSender.Send"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", ep.Token)
	m.SetHeader("Subject", s.subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.d.DialAndSend(m); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
