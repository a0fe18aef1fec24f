package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"satn_chatbot/internal/adapters/observability"
	"satn_chatbot/internal/domain"
)

type SendGrid struct {
	key        string
	host       string
	from       string
	templateID string
	salesTo    string
}

// NewSendGrid sends through the SendGrid v3 API. With a template id the
// welcome email uses the dynamic template, otherwise plain text.
func NewSendGrid(key, from, templateID, salesTo string) *SendGrid {
	return &SendGrid{key: key, from: from, templateID: templateID, salesTo: salesTo}
}

// WithHost points the client at another API host.
func (s *SendGrid) WithHost(host string) *SendGrid {
	s.host = host
	return s
}

func (s *SendGrid) SendWelcome(ctx context.Context, l domain.Lead) error {
	from := mail.NewEmail(senderName, s.from)
	to := mail.NewEmail(l.DisplayName(), l.Email)

	var m *mail.SGMailV3
	if s.templateID != "" {
		m = mail.NewV3Mail()
		m.SetFrom(from)
		m.SetTemplateID(s.templateID)
		p := mail.NewPersonalization()
		p.AddTos(to)
		p.SetDynamicTemplateData("first_name", deref(l.FirstName))
		p.SetDynamicTemplateData("last_name", deref(l.LastName))
		m.AddPersonalizations(p)
	} else {
		msg := welcomeMessage(l)
		m = mail.NewSingleEmailPlainText(from, msg.Subject, to, msg.Body)
	}
	err := s.send(ctx, m)
	observability.ObserveEmail("sendgrid", "welcome", err)
	return err
}

func (s *SendGrid) SendSalesAlert(ctx context.Context, c domain.Contact) error {
	msg := salesMessage(c)
	m := mail.NewSingleEmailPlainText(mail.NewEmail(senderName, s.from), msg.Subject, mail.NewEmail("", s.salesTo), msg.Body)
	err := s.send(ctx, m)
	observability.ObserveEmail("sendgrid", "sales_alert", err)
	return err
}

func (s *SendGrid) send(ctx context.Context, m *mail.SGMailV3) error {
	req := sendgrid.GetRequest(s.key, "/v3/mail/send", s.host)
	req.Method = "POST"
	req.Body = mail.GetRequestBody(m)
	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
