package app

import (
	"context"
	"fmt"
	"time"

	"satn_chatbot/internal/domain"
)

const companyLatestKey = "company:latest"

type CompanyService struct {
	repo     domain.CompanyRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCompanyService(r domain.CompanyRepository, c domain.Cache, ttl time.Duration) *CompanyService {
	if c == nil {
		c = NoCache{}
	}
	return &CompanyService{repo: r, cache: c, cacheTTL: ttl}
}

// Latest returns the most recently created company profile.
func (s *CompanyService) Latest(ctx context.Context) (domain.CompanyInfo, error) {
	var ci domain.CompanyInfo
	if ok, _ := s.cache.Get(ctx, companyLatestKey, &ci); ok {
		return ci, nil
	}
	ci, err := s.repo.LatestCompany(ctx)
	if err != nil {
		return domain.CompanyInfo{}, err
	}
	_ = s.cache.Set(ctx, companyLatestKey, ci, int(s.cacheTTL.Seconds()))
	return ci, nil
}

func (s *CompanyService) Create(ctx context.Context, c domain.CompanyInfo) (domain.CompanyInfo, error) {
	if c.LegalName == "" {
		return domain.CompanyInfo{}, fmt.Errorf("%w: legal_name is required", domain.ErrInvalid)
	}
	out, err := s.repo.CreateCompany(ctx, c)
	if err != nil {
		return domain.CompanyInfo{}, err
	}
	_ = s.cache.Del(ctx, companyLatestKey)
	return out, nil
}

func (s *CompanyService) Update(ctx context.Context, id int64, p domain.CompanyPatch) (domain.CompanyInfo, error) {
	c, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		return domain.CompanyInfo{}, err
	}
	p.Apply(&c)
	out, err := s.repo.UpdateCompany(ctx, c)
	if err != nil {
		return domain.CompanyInfo{}, err
	}
	_ = s.cache.Del(ctx, companyLatestKey)
	return out, nil
}
