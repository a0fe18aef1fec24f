package mailer

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"satn_chatbot/internal/adapters/observability"
	"satn_chatbot/internal/domain"
)

type SMTP struct {
	host    string
	port    int
	user    string
	pass    string
	from    string
	salesTo string
}

// NewSMTP sends over SMTP with opportunistic STARTTLS; auth only when a user and password are set.
func NewSMTP(host string, port int, user, pass, from, salesTo string) *SMTP {
	return &SMTP{host: host, port: port, user: user, pass: pass, from: from, salesTo: salesTo}
}

func (s *SMTP) SendWelcome(ctx context.Context, l domain.Lead) error {
	err := s.send(ctx, l.Email, welcomeMessage(l))
	observability.ObserveEmail("smtp", "welcome", err)
	return err
}

func (s *SMTP) SendSalesAlert(ctx context.Context, c domain.Contact) error {
	err := s.send(ctx, s.salesTo, salesMessage(c))
	observability.ObserveEmail("smtp", "sales_alert", err)
	return err
}

func (s *SMTP) newMsg(to string, m message) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(senderName, s.from); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, m.Body)
	return msg, nil
}

func (s *SMTP) send(ctx context.Context, to string, m message) error {
	if to == "" {
		return nil
	}
	msg, err := s.newMsg(to, m)
	if err != nil {
		return err
	}
	opts := []gomail.Option{gomail.WithPort(s.port), gomail.WithTLSPolicy(gomail.TLSOpportunistic)}
	if s.user != "" && s.pass != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.user),
			gomail.WithPassword(s.pass))
	}
	c, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
