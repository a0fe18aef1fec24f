package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "satn_chatbot/internal/adapters/http_server"
	"satn_chatbot/internal/app"
	"satn_chatbot/internal/domain"
)

// memStore backs every repository with maps.
type memStore struct {
	mu           sync.Mutex
	agents       map[int64]domain.Agent
	companies    []domain.CompanyInfo
	interactions []domain.Interaction
	leads        []domain.Lead
	props        map[string]domain.Property
	users        []domain.User
	countsErr    error
}

func newMemStore() *memStore {
	return &memStore{agents: map[int64]domain.Agent{}, props: map[string]domain.Property{}}
}

func (m *memStore) ListAgents(ctx context.Context, skip, limit int) ([]domain.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Agent{}
	for id := int64(1); id <= int64(len(m.agents)); id++ {
		out = append(out, m.agents[id])
	}
	if skip >= len(out) {
		return []domain.Agent{}, nil
	}
	out = out[skip:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) GetAgent(ctx context.Context, id int64) (domain.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[id]
	if !ok {
		return domain.Agent{}, domain.ErrNotFound
	}
	return a, nil
}

func (m *memStore) CreateAgent(ctx context.Context, a domain.Agent) (domain.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = int64(len(m.agents) + 1)
	m.agents[a.ID] = a
	return a, nil
}

func (m *memStore) UpdateAgent(ctx context.Context, a domain.Agent) (domain.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agents[a.ID] = a
	return a, nil
}

func (m *memStore) LatestCompany(ctx context.Context) (domain.CompanyInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.companies) == 0 {
		return domain.CompanyInfo{}, domain.ErrNotFound
	}
	return m.companies[len(m.companies)-1], nil
}

func (m *memStore) GetCompany(ctx context.Context, id int64) (domain.CompanyInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.CompanyInfo{}, domain.ErrNotFound
}

func (m *memStore) CreateCompany(ctx context.Context, c domain.CompanyInfo) (domain.CompanyInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = int64(len(m.companies) + 1)
	m.companies = append(m.companies, c)
	return c, nil
}

func (m *memStore) UpdateCompany(ctx context.Context, c domain.CompanyInfo) (domain.CompanyInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[c.ID-1] = c
	return c, nil
}

func (m *memStore) CreateInteraction(ctx context.Context, i domain.Interaction) (domain.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i.ID = int64(len(m.interactions) + 1)
	m.interactions = append(m.interactions, i)
	return i, nil
}

func (m *memStore) ListSessionInteractions(ctx context.Context, sessionID string, limit int) ([]domain.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Interaction{}
	for _, i := range m.interactions {
		if i.SessionID == sessionID && len(out) < limit {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *memStore) CreateLead(ctx context.Context, l domain.Lead) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads = append(m.leads, l)
	return l, nil
}

func (m *memStore) SearchProperties(ctx context.Context, f domain.PropertyFilter) ([]domain.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Property{}
	for _, p := range m.props {
		if f.Location != "" && (p.Location == nil || !strings.Contains(strings.ToLower(*p.Location), strings.ToLower(f.Location))) {
			continue
		}
		if f.MinBeds != nil && (p.Beds == nil || *p.Beds < *f.MinBeds) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.props[id]
	if !ok {
		return domain.Property{}, domain.ErrNotFound
	}
	return p, nil
}

func (m *memStore) CreateProperty(ctx context.Context, p domain.Property) (domain.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.props[p.ID] = p
	return p, nil
}

func (m *memStore) UpdateProperty(ctx context.Context, p domain.Property) (domain.Property, error) {
	return m.CreateProperty(ctx, p)
}

func (m *memStore) GetUser(ctx context.Context, id int64) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (m *memStore) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = int64(len(m.users) + 1)
	m.users = append(m.users, u)
	return u, nil
}

func (m *memStore) UpdateUserContact(ctx context.Context, id int64, fullName, phone *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].FullName, m.users[i].Phone = fullName, phone
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memStore) TableCounts(ctx context.Context) (map[string]int64, error) {
	if m.countsErr != nil {
		return nil, m.countsErr
	}
	return map[string]int64{"agents": int64(len(m.agents)), "properties": int64(len(m.props))}, nil
}

type stubLLM struct{ reply string }

func (s stubLLM) Answer(ctx context.Context, lang, text string, history []domain.Turn) (string, error) {
	return s.reply, nil
}

const (
	adminEmail = "admin@satn.test"
	adminPass  = "s3cret-pass"
	secret     = "test-secret"
)

type env struct {
	store *memStore
	auth  *app.AuthService
	h     http.Handler
}

func newEnv(t *testing.T, llm domain.LLM, limiter *httpserver.IPLimiter) *env {
	t.Helper()
	st := newMemStore()
	auth := app.NewAuthService(st, secret, time.Hour)
	require.NoError(t, auth.EnsureAdmin(context.Background(), adminEmail, adminPass))

	props := app.NewPropertyService(st, nil, time.Minute)
	inter := app.NewInteractionService(st)
	d := app.NewDispatcher(nil)
	srv := httpserver.New([]string{"*"}, 5*time.Second)
	srv.MountHandlers(&httpserver.Handlers{
		Agents:       app.NewAgentService(st),
		Company:      app.NewCompanyService(st, nil, time.Minute),
		Interactions: inter,
		Leads:        app.NewLeadService(st, d),
		Properties:   props,
		Chat:         app.NewChatService(st, props, inter, llm, d),
		Auth:         auth,
		Health:       app.NewHealthService(st),
		ChatLimiter:  limiter,
	})
	return &env{store: st, auth: auth, h: srv.Mux()}
}

func (e *env) do(t *testing.T, method, path string, body any, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type problemBody struct {
	Title  string   `json:"title"`
	Status int      `json:"status"`
	Detail string   `json:"detail"`
	Errors []string `json:"errors"`
}

func seedProperty(st *memStore, id, title, location string, beds int) {
	st.props[id] = domain.Property{ID: id, Title: title, Location: &location, Beds: &beds, Features: domain.Features{}}
}

func TestRootAndHealth(t *testing.T) {
	e := newEnv(t, nil, nil)

	rec := e.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"service": "satn-chatbot", "status": "running"}, decodeBody[map[string]string](t, rec))

	for _, p := range []string{"/healthz", "/api/v1/healthz"} {
		rec = e.do(t, http.MethodGet, p, nil)
		assert.Equal(t, http.StatusOK, rec.Code, p)
		assert.Equal(t, "ok", rec.Body.String(), p)
	}
}

func TestDBCheck(t *testing.T) {
	e := newEnv(t, nil, nil)
	rec := e.do(t, http.MethodGet, "/api/v1/dbcheck", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[struct {
		OK     bool             `json:"ok"`
		Counts map[string]int64 `json:"counts"`
	}](t, rec)
	assert.True(t, body.OK)
	assert.Contains(t, body.Counts, "agents")

	e.store.countsErr = assert.AnError
	rec = e.do(t, http.MethodGet, "/api/v1/dbcheck", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, strings.HasPrefix(decodeBody[problemBody](t, rec).Detail, "DB check failed: "))
}

func TestAgents_CRUD(t *testing.T) {
	e := newEnv(t, nil, nil)

	rec := e.do(t, http.MethodPost, "/api/v1/agents", map[string]any{"full_name": "Nimal Perera", "region": "Colombo"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	a := decodeBody[domain.Agent](t, rec)
	assert.Equal(t, int64(1), a.ID)

	rec = e.do(t, http.MethodPut, "/api/v1/agents/1", map[string]any{"phone": "+94 77 000 0000"})
	require.Equal(t, http.StatusOK, rec.Code)
	a = decodeBody[domain.Agent](t, rec)
	assert.Equal(t, "Nimal Perera", a.FullName)
	require.NotNil(t, a.Phone)

	rec = e.do(t, http.MethodGet, "/api/v1/agents?skip=0&limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]domain.Agent](t, rec), 1)

	rec = e.do(t, http.MethodGet, "/api/v1/agents/99", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Agent not found", decodeBody[problemBody](t, rec).Detail)

	rec = e.do(t, http.MethodGet, "/api/v1/agents/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/agents?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAgents_ValidationLists(t *testing.T) {
	e := newEnv(t, nil, nil)
	rec := e.do(t, http.MethodPost, "/api/v1/agents", map[string]any{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	p := decodeBody[problemBody](t, rec)
	assert.Equal(t, "validation failed", p.Detail)
	assert.ElementsMatch(t, []string{`full_name: failed "required"`, `email: failed "email"`}, p.Errors)

	rec = e.do(t, http.MethodPost, "/api/v1/agents", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "malformed JSON body", decodeBody[problemBody](t, rec).Detail)
}

func TestCompany_LatestWithETag(t *testing.T) {
	e := newEnv(t, nil, nil)

	rec := e.do(t, http.MethodGet, "/api/v1/company-info", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Company profile not found", decodeBody[problemBody](t, rec).Detail)

	rec = e.do(t, http.MethodPost, "/api/v1/company-info", map[string]any{"legal_name": "S A Thomson Nerys & Co."})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/api/v1/company-info", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	rec = e.do(t, http.MethodGet, "/api/v1/company-info", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = e.do(t, http.MethodPut, "/api/v1/company-info/1", map[string]any{"short_name": "SATN"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, http.MethodGet, "/api/v1/company-info", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInteractions_Session(t *testing.T) {
	e := newEnv(t, nil, nil)
	for _, msg := range []string{"hello", "3 bed in Sydney"} {
		rec := e.do(t, http.MethodPost, "/api/v1/interactions", map[string]any{"session_id": "s-1", "user_message": msg})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec := e.do(t, http.MethodPost, "/api/v1/interactions", map[string]any{"session_id": "s-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/interactions/session/s-1?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[[]domain.Interaction](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, domain.DefaultChannel, got[0].Channel)

	rec = e.do(t, http.MethodGet, "/api/v1/interactions/session/s-1?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeads_Create(t *testing.T) {
	e := newEnv(t, nil, nil)
	rec := e.do(t, http.MethodPost, "/api/v1/leads", map[string]any{"first_name": "Kavya", "email": "kavya@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	l := decodeBody[domain.Lead](t, rec)
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, domain.DefaultLeadSource, l.Source)

	rec = e.do(t, http.MethodPost, "/api/v1/leads", map[string]any{"first_name": "NoMail"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProperties_QueryValidation(t *testing.T) {
	e := newEnv(t, nil, nil)
	cases := []struct {
		path string
		want int
	}{
		{"/api/v1/properties", http.StatusOK},
		{"/api/v1/properties?limit=200", http.StatusOK},
		{"/api/v1/properties?limit=0", http.StatusBadRequest},
		{"/api/v1/properties?limit=201", http.StatusBadRequest},
		{"/api/v1/properties?min_beds=two", http.StatusBadRequest},
		{"/api/v1/properties?max_price=cheap", http.StatusBadRequest},
		{"/api/v1/properties?min_beds=-1", http.StatusBadRequest},
		{"/api/v1/properties?location=Sydney&min_beds=2", http.StatusOK},
	}
	for _, c := range cases {
		rec := e.do(t, http.MethodGet, c.path, nil)
		assert.Equal(t, c.want, rec.Code, c.path)
	}

	rec := e.do(t, http.MethodGet, "/api/v1/properties?min_beds=x&min_price=y", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"min_beds: must be an integer", "min_price: must be a number"}, decodeBody[problemBody](t, rec).Errors)
}

func TestProperties_GetAndAdminWrites(t *testing.T) {
	e := newEnv(t, nil, nil)
	const id = "6f1c7a52-3b7e-4a55-9a0d-1f2f3c4d5e6f"
	seedProperty(e.store, id, "Harbour View", "Sydney", 3)

	rec := e.do(t, http.MethodGet, "/api/v1/properties/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("ETag"))

	rec = e.do(t, http.MethodGet, "/api/v1/properties/not-a-uuid", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Property not found", decodeBody[problemBody](t, rec).Detail)

	body := map[string]any{"title": "Marina Loft", "location": "Dubai", "beds": 2}
	rec = e.do(t, http.MethodPost, "/api/v1/properties", body)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	rec = e.do(t, http.MethodPost, "/api/v1/properties", body, "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	plain := "user@satn.test"
	_, err := e.store.CreateUser(context.Background(), domain.User{Email: &plain, IsActive: true})
	require.NoError(t, err)
	tok, err := e.auth.Issue(plain)
	require.NoError(t, err)
	rec = e.do(t, http.MethodPost, "/api/v1/properties", body, "Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]any{"email": adminEmail, "password": adminPass})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "bearer", login["token_type"])
	admin := "Bearer " + login["access_token"]

	rec = e.do(t, http.MethodPost, "/api/v1/properties", body, "Authorization", admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[domain.Property](t, rec)
	assert.Equal(t, "Marina Loft", created.Title)

	rec = e.do(t, http.MethodPut, "/api/v1/properties/"+created.ID, map[string]any{"beds": 3}, "Authorization", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[domain.Property](t, rec)
	require.NotNil(t, updated.Beds)
	assert.Equal(t, 3, *updated.Beds)
	assert.Equal(t, "Marina Loft", updated.Title)
}

func TestAuth_LoginAndMe(t *testing.T) {
	e := newEnv(t, nil, nil)

	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]any{"email": adminEmail, "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/users/me", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := e.auth.Issue(adminEmail)
	require.NoError(t, err)
	rec = e.do(t, http.MethodGet, "/api/v1/users/me", nil, "Authorization", "Bearer "+tok)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[map[string]any](t, rec)
	assert.Equal(t, adminEmail, me["email"])
	assert.Equal(t, true, me["is_admin"])
	assert.NotContains(t, me, "hashed_password")
}

func TestChat_SearchRoute(t *testing.T) {
	e := newEnv(t, nil, nil)
	seedProperty(e.store, "6f1c7a52-3b7e-4a55-9a0d-1f2f3c4d5e60", "Harbour View", "Sydney", 3)
	seedProperty(e.store, "6f1c7a52-3b7e-4a55-9a0d-1f2f3c4d5e61", "Bondi Terrace", "Sydney", 4)

	rec := e.do(t, http.MethodPost, "/api/v1/chat", map[string]any{"message": "3 bed house in Sydney", "lang": "en"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		SessionID     string            `json:"session_id"`
		Reply         string            `json:"reply"`
		Language      string            `json:"language"`
		UserID        *int64            `json:"user_id"`
		InteractionID int64             `json:"interaction_id"`
		Properties    []domain.Property `json:"properties"`
		QuickReplies  []string          `json:"quick_replies"`
		Filters       map[string]any    `json:"filters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, "en", res.Language)
	assert.Nil(t, res.UserID)
	assert.Len(t, res.Properties, 2)
	assert.Equal(t, "Found 2 options in Sydney with ≥3 bed(s). Showing the top results.", res.Reply)
	assert.NotZero(t, res.InteractionID)
	assert.NotEmpty(t, res.QuickReplies)
	require.Len(t, e.store.interactions, 1)
}

func TestChat_FallbackAndLLM(t *testing.T) {
	e := newEnv(t, nil, nil)
	rec := e.do(t, http.MethodPost, "/api/v1/chat", map[string]any{"message": "what is a good yield?"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, app.NotConfiguredReply, body["reply"])
	assert.Equal(t, []any{}, body["properties"])

	e = newEnv(t, stubLLM{reply: "Yields vary by suburb."}, nil)
	rec = e.do(t, http.MethodPost, "/api/v1/chat", map[string]any{
		"message": "what is a good yield?",
		"history": []map[string]string{{"role": "user", "content": "hi"}, {"role": "assistant", "content": "Hello!"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Yields vary by suburb.", decodeBody[map[string]any](t, rec)["reply"])
}

func TestChat_Validation(t *testing.T) {
	e := newEnv(t, nil, nil)
	for name, body := range map[string]map[string]any{
		"missing message": {"lang": "en"},
		"limit too high":  {"message": "hi", "limit": 13},
		"bad role":        {"message": "hi", "history": []map[string]string{{"role": "system", "content": "x"}}},
		"bad email":       {"message": "hi", "email": "nope"},
	} {
		rec := e.do(t, http.MethodPost, "/api/v1/chat", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
	assert.Empty(t, e.store.interactions)
}

func TestChat_RateLimited(t *testing.T) {
	e := newEnv(t, nil, httpserver.NewIPLimiter(0.001, 2))
	body := map[string]any{"message": "hello"}
	for i := 0; i < 2; i++ {
		rec := e.do(t, http.MethodPost, "/api/v1/chat", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := e.do(t, http.MethodPost, "/api/v1/chat", body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// a forged forwarding header is still the same client
	rec = e.do(t, http.MethodPost, "/api/v1/chat", body, "X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// another peer keeps its own bucket
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"hello"}`))
	req.RemoteAddr = "198.51.100.7:4242"
	rec = httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPDFSummary(t *testing.T) {
	e := newEnv(t, nil, nil)
	rec := e.do(t, http.MethodPost, "/api/v1/pdf/summary", map[string]any{
		"name":       "Kavya",
		"email":      "kavya@example.com",
		"messages":   []map[string]string{{"role": "user", "text": "3 bed in Sydney"}, {"role": "assistant", "text": "Found 2 options."}},
		"properties": []map[string]any{{"title": "Harbour View", "price": 850000, "location": "Sydney"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="satn-chat-summary.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = e.do(t, http.MethodPost, "/api/v1/pdf/summary", map[string]any{"name": "Kavya", "email": "kavya@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
