package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"satn_chatbot/internal/domain"
)

const emailTimeout = 30 * time.Second

// Dispatcher sends notifications off the request path. Failures are logged
// and never reach the caller.
type Dispatcher struct {
	n  domain.Notifier
	wg sync.WaitGroup
}

func NewDispatcher(n domain.Notifier) *Dispatcher { return &Dispatcher{n: n} }

func (d *Dispatcher) goSend(kind, to string, send func(ctx context.Context) error) {
	if d == nil || d.n == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		// detached from the request so a finished response doesn't cancel the send
		ctx, cancel := context.WithTimeout(context.Background(), emailTimeout)
		defer cancel()
		if err := send(ctx); err != nil {
			log.Error().Err(err).Str("kind", kind).Str("to", to).Msg("email send failed")
			return
		}
		log.Debug().Str("kind", kind).Str("to", to).Msg("email sent")
	}()
}

func (d *Dispatcher) Welcome(l domain.Lead) {
	d.goSend("welcome", l.Email, func(ctx context.Context) error { return d.n.SendWelcome(ctx, l) })
}

func (d *Dispatcher) SalesAlert(c domain.Contact) {
	d.goSend("sales_alert", c.Email, func(ctx context.Context) error { return d.n.SendSalesAlert(ctx, c) })
}

// Wait blocks until every pending send has finished.
func (d *Dispatcher) Wait() {
	if d != nil {
		d.wg.Wait()
	}
}
