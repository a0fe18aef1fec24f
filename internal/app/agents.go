package app

import (
	"context"
	"fmt"

	"satn_chatbot/internal/domain"
)

const (
	DefaultAgentLimit = 100
	MaxAgentLimit     = 1000
)

type AgentService struct{ repo domain.AgentRepository }

func NewAgentService(r domain.AgentRepository) *AgentService { return &AgentService{repo: r} }

func (s *AgentService) List(ctx context.Context, skip, limit int) ([]domain.Agent, error) {
	if skip < 0 {
		return nil, fmt.Errorf("%w: skip must be >= 0", domain.ErrInvalid)
	}
	if limit < 1 || limit > MaxAgentLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalid, MaxAgentLimit)
	}
	return s.repo.ListAgents(ctx, skip, limit)
}

func (s *AgentService) Get(ctx context.Context, id int64) (domain.Agent, error) {
	return s.repo.GetAgent(ctx, id)
}

func (s *AgentService) Create(ctx context.Context, a domain.Agent) (domain.Agent, error) {
	if a.FullName == "" {
		return domain.Agent{}, fmt.Errorf("%w: full_name is required", domain.ErrInvalid)
	}
	return s.repo.CreateAgent(ctx, a)
}

// Update replaces only the fields present in p.
func (s *AgentService) Update(ctx context.Context, id int64, p domain.AgentPatch) (domain.Agent, error) {
	a, err := s.repo.GetAgent(ctx, id)
	if err != nil {
		return domain.Agent{}, err
	}
	p.Apply(&a)
	return s.repo.UpdateAgent(ctx, a)
}
