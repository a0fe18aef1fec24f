package app

import (
	"context"
	"fmt"

	"satn_chatbot/internal/domain"
)

type HealthService struct{ repo domain.HealthRepository }

func NewHealthService(r domain.HealthRepository) *HealthService { return &HealthService{repo: r} }

// DBCheck returns row counts of the core tables.
func (s *HealthService) DBCheck(ctx context.Context) (map[string]int64, error) {
	counts, err := s.repo.TableCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("DB check failed: %w", err)
	}
	return counts, nil
}
