package mailer

import (
	"context"

	"github.com/rs/zerolog/log"

	"satn_chatbot/internal/adapters/observability"
	"satn_chatbot/internal/domain"
)

// Log writes emails to the log instead of sending them. Used when no provider is configured.
type Log struct{}

func (Log) SendWelcome(_ context.Context, l domain.Lead) error {
	m := welcomeMessage(l)
	log.Info().Str("to", l.Email).Str("subject", m.Subject).Msg("welcome email (not sent)")
	observability.ObserveEmail("log", "welcome", nil)
	return nil
}

func (Log) SendSalesAlert(_ context.Context, c domain.Contact) error {
	m := salesMessage(c)
	log.Info().Str("lead", c.Email).Str("subject", m.Subject).Msg("sales alert (not sent)")
	observability.ObserveEmail("log", "sales_alert", nil)
	return nil
}
