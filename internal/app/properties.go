package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"satn_chatbot/internal/domain"
)

const propertyGenKey = "properties:gen"

// PropertyService serves property reads through the cache. Search results are
// keyed by a generation counter that every write bumps, so a write drops all
// cached searches at once.
type PropertyService struct {
	repo     domain.PropertyRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewPropertyService(r domain.PropertyRepository, c domain.Cache, ttl time.Duration) *PropertyService {
	if c == nil {
		c = NoCache{}
	}
	return &PropertyService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *PropertyService) ttl() int { return int(s.cacheTTL.Seconds()) }

func (s *PropertyService) generation(ctx context.Context) int64 {
	var gen int64
	if ok, _ := s.cache.Get(ctx, propertyGenKey, &gen); !ok {
		return 0
	}
	return gen
}

func (s *PropertyService) bump(ctx context.Context, id string) {
	// the counter outlives any search entry
	_ = s.cache.Set(ctx, propertyGenKey, time.Now().UnixNano(), 10*s.ttl()+60)
	_ = s.cache.Del(ctx, "property:"+id)
}

func filterKey(gen int64, f domain.PropertyFilter) string {
	b, _ := json.Marshal(f)
	sum := sha1.Sum(b)
	return fmt.Sprintf("properties:%d:%s", gen, hex.EncodeToString(sum[:8]))
}

func validateFilter(f domain.PropertyFilter) error {
	neg := func(p *int) bool { return p != nil && *p < 0 }
	negF := func(p *float64) bool { return p != nil && *p < 0 }
	if neg(f.MinBeds) || neg(f.MinBaths) || negF(f.MinPrice) || negF(f.MaxPrice) || f.Limit < 0 {
		return fmt.Errorf("%w: filters must not be negative", domain.ErrInvalid)
	}
	return nil
}

func (s *PropertyService) Search(ctx context.Context, f domain.PropertyFilter) ([]domain.Property, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	f = f.Normalize()
	key := filterKey(s.generation(ctx), f)

	var out []domain.Property
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	ps, err := s.repo.SearchProperties(ctx, f)
	if err != nil {
		return nil, err
	}
	// copy so callers can't mutate what the cache holds
	out = make([]domain.Property, len(ps))
	copy(out, ps)
	_ = s.cache.Set(ctx, key, out, s.ttl())
	return out, nil
}

func (s *PropertyService) Get(ctx context.Context, id string) (domain.Property, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Property{}, fmt.Errorf("%w: property %q", domain.ErrNotFound, id)
	}
	key := "property:" + id
	var p domain.Property
	if ok, _ := s.cache.Get(ctx, key, &p); ok {
		return p, nil
	}
	p, err := s.repo.GetProperty(ctx, id)
	if err != nil {
		return domain.Property{}, err
	}
	_ = s.cache.Set(ctx, key, p, s.ttl())
	return p, nil
}

func (s *PropertyService) Create(ctx context.Context, patch domain.PropertyPatch) (domain.Property, error) {
	if patch.Title == nil || *patch.Title == "" {
		return domain.Property{}, fmt.Errorf("%w: title is required", domain.ErrInvalid)
	}
	p := domain.Property{ID: uuid.NewString(), Features: domain.Features{}}
	patch.Apply(&p)
	out, err := s.repo.CreateProperty(ctx, p)
	if err != nil {
		return domain.Property{}, err
	}
	s.bump(ctx, out.ID)
	return out, nil
}

func (s *PropertyService) Update(ctx context.Context, id string, patch domain.PropertyPatch) (domain.Property, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Property{}, fmt.Errorf("%w: property %q", domain.ErrNotFound, id)
	}
	p, err := s.repo.GetProperty(ctx, id)
	if err != nil {
		return domain.Property{}, err
	}
	patch.Apply(&p)
	out, err := s.repo.UpdateProperty(ctx, p)
	if err != nil {
		return domain.Property{}, err
	}
	s.bump(ctx, id)
	return out, nil
}
