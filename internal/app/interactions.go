package app

import (
	"context"
	"fmt"
	"strings"

	"satn_chatbot/internal/domain"
)

const (
	DefaultInteractionLimit = 100
	MaxInteractionLimit     = 1000
)

type InteractionService struct{ repo domain.InteractionRepository }

func NewInteractionService(r domain.InteractionRepository) *InteractionService {
	return &InteractionService{repo: r}
}

func (s *InteractionService) Log(ctx context.Context, i domain.Interaction) (domain.Interaction, error) {
	i.SessionID = strings.TrimSpace(i.SessionID)
	if i.SessionID == "" || strings.TrimSpace(i.UserMessage) == "" {
		return domain.Interaction{}, fmt.Errorf("%w: session_id and user_message are required", domain.ErrInvalid)
	}
	if i.Channel == "" {
		i.Channel = domain.DefaultChannel
	}
	return s.repo.CreateInteraction(ctx, i)
}

// Session lists a session's interactions oldest first.
func (s *InteractionService) Session(ctx context.Context, sessionID string, limit int) ([]domain.Interaction, error) {
	switch {
	case limit == 0:
		limit = DefaultInteractionLimit
	case limit < 0 || limit > MaxInteractionLimit:
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalid, MaxInteractionLimit)
	}
	return s.repo.ListSessionInteractions(ctx, sessionID, limit)
}
