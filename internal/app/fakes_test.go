package app_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"satn_chatbot/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	mu           sync.Mutex
	agents       map[int64]domain.Agent
	companies    []domain.CompanyInfo
	interactions []domain.Interaction
	leads        []domain.Lead
	props        map[string]domain.Property
	users        []domain.User
	searches     int
	lastFilter   domain.PropertyFilter
	failLead     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{agents: map[int64]domain.Agent{}, props: map[string]domain.Property{}}
}

func (f *fakeRepo) ListAgents(ctx context.Context, skip, limit int) ([]domain.Agent, error) {
	out := []domain.Agent{}
	for _, a := range f.agents {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeRepo) GetAgent(ctx context.Context, id int64) (domain.Agent, error) {
	a, ok := f.agents[id]
	if !ok {
		return domain.Agent{}, domain.ErrNotFound
	}
	return a, nil
}

func (f *fakeRepo) CreateAgent(ctx context.Context, a domain.Agent) (domain.Agent, error) {
	a.ID = int64(len(f.agents) + 1)
	f.agents[a.ID] = a
	return a, nil
}

func (f *fakeRepo) UpdateAgent(ctx context.Context, a domain.Agent) (domain.Agent, error) {
	f.agents[a.ID] = a
	return a, nil
}

func (f *fakeRepo) LatestCompany(ctx context.Context) (domain.CompanyInfo, error) {
	if len(f.companies) == 0 {
		return domain.CompanyInfo{}, domain.ErrNotFound
	}
	return f.companies[len(f.companies)-1], nil
}

func (f *fakeRepo) GetCompany(ctx context.Context, id int64) (domain.CompanyInfo, error) {
	for _, c := range f.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.CompanyInfo{}, domain.ErrNotFound
}

func (f *fakeRepo) CreateCompany(ctx context.Context, c domain.CompanyInfo) (domain.CompanyInfo, error) {
	c.ID = int64(len(f.companies) + 1)
	f.companies = append(f.companies, c)
	return c, nil
}

func (f *fakeRepo) UpdateCompany(ctx context.Context, c domain.CompanyInfo) (domain.CompanyInfo, error) {
	for i := range f.companies {
		if f.companies[i].ID == c.ID {
			f.companies[i] = c
		}
	}
	return c, nil
}

func (f *fakeRepo) CreateInteraction(ctx context.Context, i domain.Interaction) (domain.Interaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i.ID = int64(len(f.interactions) + 1)
	i.CreatedAt = time.Now()
	f.interactions = append(f.interactions, i)
	return i, nil
}

func (f *fakeRepo) ListSessionInteractions(ctx context.Context, sessionID string, limit int) ([]domain.Interaction, error) {
	out := []domain.Interaction{}
	for _, i := range f.interactions {
		if i.SessionID == sessionID && len(out) < limit {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateLead(ctx context.Context, l domain.Lead) (domain.Lead, error) {
	if f.failLead != nil {
		return domain.Lead{}, f.failLead
	}
	l.CreatedAt = time.Now()
	f.leads = append(f.leads, l)
	return l, nil
}

func (f *fakeRepo) SearchProperties(ctx context.Context, flt domain.PropertyFilter) ([]domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches++
	f.lastFilter = flt
	out := []domain.Property{}
	for _, p := range f.props {
		if flt.Location != "" && !strings.Contains(strings.ToLower(deref(p.Location)), strings.ToLower(flt.Location)) {
			continue
		}
		if flt.MinBeds != nil && (p.BedCount() == nil || *p.BedCount() < *flt.MinBeds) {
			continue
		}
		out = append(out, p)
		if len(out) == flt.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	p, ok := f.props[id]
	if !ok {
		return domain.Property{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) CreateProperty(ctx context.Context, p domain.Property) (domain.Property, error) {
	f.props[p.ID] = p
	return p, nil
}

func (f *fakeRepo) UpdateProperty(ctx context.Context, p domain.Property) (domain.Property, error) {
	f.props[p.ID] = p
	return p, nil
}

func (f *fakeRepo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	for _, u := range f.users {
		if deref(u.Email) == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	u.ID = int64(len(f.users) + 1)
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeRepo) UpdateUserContact(ctx context.Context, id int64, fullName, phone *string) error {
	for i := range f.users {
		if f.users[i].ID == id {
			f.users[i].FullName, f.users[i].Phone = fullName, phone
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeCache stores JSON like the Redis adapter does, so cached values are
// isolated from later mutations.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	welcomes []domain.Lead
	alerts   []domain.Contact
	err      error
}

func (n *fakeNotifier) SendWelcome(ctx context.Context, l domain.Lead) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomes = append(n.welcomes, l)
	return n.err
}

func (n *fakeNotifier) SendSalesAlert(ctx context.Context, c domain.Contact) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, c)
	return n.err
}

type fakeLLM struct {
	answer  string
	err     error
	lang    string
	history []domain.Turn
}

func (l *fakeLLM) Answer(ctx context.Context, lang, text string, history []domain.Turn) (string, error) {
	l.lang, l.history = lang, history
	return l.answer, l.err
}

func ptr[T any](v T) *T { return &v }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
