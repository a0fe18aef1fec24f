package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"satn_chatbot/internal/domain"
)

type LeadService struct {
	repo   domain.LeadRepository
	notify *Dispatcher
}

func NewLeadService(r domain.LeadRepository, d *Dispatcher) *LeadService {
	return &LeadService{repo: r, notify: d}
}

// Capture stores the lead, then queues the welcome mail and the sales alert.
func (s *LeadService) Capture(ctx context.Context, l domain.Lead) (domain.Lead, error) {
	l.Email = strings.TrimSpace(l.Email)
	if l.Email == "" {
		return domain.Lead{}, fmt.Errorf("%w: email is required", domain.ErrInvalid)
	}
	if l.Source == "" {
		l.Source = domain.DefaultLeadSource
	}
	l.ID = uuid.NewString()

	out, err := s.repo.CreateLead(ctx, l)
	if err != nil {
		return domain.Lead{}, err
	}
	s.notify.Welcome(out)
	s.notify.SalesAlert(domain.Contact{
		Name:   out.DisplayName(),
		Email:  out.Email,
		Phone:  deref(out.Phone),
		Source: out.Source,
	})
	return out, nil
}
