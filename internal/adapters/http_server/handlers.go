package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"satn_chatbot/internal/adapters/observability"
	"satn_chatbot/internal/adapters/pdf"
	"satn_chatbot/internal/app"
	"satn_chatbot/internal/domain"
	"satn_chatbot/internal/intent"
)

const serviceName = "satn-chatbot"

type Handlers struct {
	Agents       *app.AgentService
	Company      *app.CompanyService
	Interactions *app.InteractionService
	Leads        *app.LeadService
	Properties   *app.PropertyService
	Chat         *app.ChatService
	Auth         *app.AuthService
	Health       *app.HealthService
	ChatLimiter  *IPLimiter
	// Dev echoes internal error text in problem details.
	Dev bool
}

func (s *Server) MountHandlers(h *Handlers) {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) }
	s.mux.Get("/healthz", ok)
	s.mux.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"service": serviceName, "status": "running"})
	})

	s.mux.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", ok)
		r.Get("/dbcheck", h.dbCheck)

		r.Get("/agents", h.listAgents)
		r.Post("/agents", h.createAgent)
		r.Get("/agents/{id}", h.getAgent)
		r.Put("/agents/{id}", h.updateAgent)

		r.Get("/company-info", h.getCompany)
		r.Post("/company-info", h.createCompany)
		r.Put("/company-info/{id}", h.updateCompany)

		r.Post("/interactions", h.createInteraction)
		r.Get("/interactions/session/{session_id}", h.sessionInteractions)

		r.Post("/leads", h.createLead)

		r.Get("/properties", h.listProperties)
		r.Get("/properties/{id}", h.getProperty)
		r.Group(func(r chi.Router) {
			r.Use(RequireUser(h.Auth, h.Dev), RequireAdmin)
			r.Post("/properties", h.createProperty)
			r.Put("/properties/{id}", h.updateProperty)
		})

		r.Group(func(r chi.Router) {
			if h.ChatLimiter != nil {
				r.Use(h.ChatLimiter.Middleware)
			}
			r.Post("/chat", h.chat)
		})
		r.Post("/pdf/summary", h.pdfSummary)

		r.Post("/auth/login", h.login)
		r.With(RequireUser(h.Auth, h.Dev)).Get("/users/me", h.me)
	})
}

// ---- params ----

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

type queryErr struct{ name, want string }

// queryParams parses optional numeric query values, collecting every bad one.
type queryParams struct {
	r    *http.Request
	errs []queryErr
}

func (q *queryParams) optInt(name string) *int {
	v := strings.TrimSpace(q.r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		q.errs = append(q.errs, queryErr{name, "an integer"})
		return nil
	}
	return &n
}

func (q *queryParams) optFloat(name string) *float64 {
	v := strings.TrimSpace(q.r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		q.errs = append(q.errs, queryErr{name, "a number"})
		return nil
	}
	return &f
}

func (q *queryParams) intDefault(name string, def int) int {
	if p := q.optInt(name); p != nil {
		return *p
	}
	return def
}

// failed writes a 400 listing every bad parameter.
func (q *queryParams) failed(w http.ResponseWriter) bool {
	if len(q.errs) == 0 {
		return false
	}
	fields := make([]string, len(q.errs))
	for i, e := range q.errs {
		fields[i] = fmt.Sprintf("%s: must be %s", e.name, e.want)
	}
	writeProblemDoc(w, problem{Type: "about:blank", Title: "Bad Request", Status: http.StatusBadRequest,
		Detail: "invalid query parameters", Errors: fields})
	return true
}

// ---- health ----

func (h *Handlers) dbCheck(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Health.DBCheck(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("db check failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "counts": counts})
}

// ---- agents ----

type agentCreate struct {
	FullName string  `json:"full_name" validate:"required,min=1,max=255"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,max=50"`
	Region   *string `json:"region" validate:"omitempty,max=100"`
}

func (h *Handlers) listAgents(w http.ResponseWriter, r *http.Request) {
	q := &queryParams{r: r}
	skip, limit := q.intDefault("skip", 0), q.intDefault("limit", app.DefaultAgentLimit)
	if q.failed(w) {
		return
	}
	out, err := h.Agents.List(r.Context(), skip, limit)
	if err != nil {
		writeError(w, r, err, h.Dev, "")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := h.Agents.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Dev, "Agent not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handlers) createAgent(w http.ResponseWriter, r *http.Request) {
	var in agentCreate
	if !decode(w, r, &in) {
		return
	}
	a, err := h.Agents.Create(r.Context(), domain.Agent{FullName: in.FullName, Email: in.Email, Phone: in.Phone, Region: in.Region})
	if err != nil {
		writeError(w, r, err, h.Dev, "")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handlers) updateAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p domain.AgentPatch
	if !decode(w, r, &p) {
		return
	}
	a, err := h.Agents.Update(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err, h.Dev, "Agent not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ---- company info ----

type companyCreate struct {
	LegalName   string  `json:"legal_name" validate:"required,min=1,max=255"`
	ShortName   *string `json:"short_name" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	WebsiteURL  *string `json:"website_url" validate:"omitempty,url"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`
	Address     *string `json:"address"`
}

const companyNotFound = "Company profile not found"

func (h *Handlers) getCompany(w http.ResponseWriter, r *http.Request) {
	c, err := h.Company.Latest(r.Context())
	if err != nil {
		writeError(w, r, err, h.Dev, companyNotFound)
		return
	}
	writeCached(w, r, c)
}

func (h *Handlers) createCompany(w http.ResponseWriter, r *http.Request) {
	var in companyCreate
	if !decode(w, r, &in) {
		return
	}
	c, err := h.Company.Create(r.Context(), domain.CompanyInfo{
		LegalName: in.LegalName, ShortName: in.ShortName, Description: in.Description,
		WebsiteURL: in.WebsiteURL, Email: in.Email, Phone: in.Phone, Address: in.Address,
	})
	if err != nil {
		writeError(w, r, err, h.Dev, "")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) updateCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p domain.CompanyPatch
	if !decode(w, r, &p) {
		return
	}
	c, err := h.Company.Update(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err, h.Dev, companyNotFound)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ---- interactions ----

type interactionCreate struct {
	SessionID   string  `json:"session_id" validate:"required,max=100"`
	Channel     string  `json:"channel" validate:"omitempty,max=50"`
	Language    *string `json:"language" validate:"omitempty,max=10"`
	UserMessage string  `json:"user_message" validate:"required"`
	BotResponse *string `json:"bot_response"`
	UserID      *int64  `json:"user_id" validate:"omitempty,gt=0"`
	AgentID     *int64  `json:"agent_id" validate:"omitempty,gt=0"`
}

func (h *Handlers) createInteraction(w http.ResponseWriter, r *http.Request) {
	var in interactionCreate
	if !decode(w, r, &in) {
		return
	}
	i, err := h.Interactions.Log(r.Context(), domain.Interaction{
		SessionID: in.SessionID, Channel: in.Channel, Language: in.Language,
		UserMessage: in.UserMessage, BotResponse: in.BotResponse, UserID: in.UserID, AgentID: in.AgentID,
	})
	if err != nil {
		writeError(w, r, err, h.Dev, "")
		return
	}
	writeJSON(w, http.StatusCreated, i)
}

func (h *Handlers) sessionInteractions(w http.ResponseWriter, r *http.Request) {
	q := &queryParams{r: r}
	limit := q.intDefault("limit", app.DefaultInteractionLimit)
	if q.failed(w) {
		return
	}
	out, err := h.Interactions.Session(r.Context(), chi.URLParam(r, "session_id"), limit)
	if err != nil {
		writeError(w, r, err, h.Dev, "")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- leads ----

type leadCreate struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,max=50"`
	Source    string  `json:"source" validate:"omitempty,max=50"`
}

func (h *Handlers) createLead(w http.ResponseWriter, r *http.Request) {
	var in leadCreate
	if !decode(w, r, &in) {
		return
	}
	l, err := h.Leads.Capture(r.Context(), domain.Lead{
		FirstName: in.FirstName, LastName: in.LastName, Email: in.Email, Phone: in.Phone, Source: in.Source,
	})
	if err != nil {
		writeError(w, r, err, h.Dev, "")
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// ---- properties ----

const propertyNotFound = "Property not found"

func (h *Handlers) listProperties(w http.ResponseWriter, r *http.Request) {
	q := &queryParams{r: r}
	f := domain.PropertyFilter{
		Q:        r.URL.Query().Get("q"),
		Location: r.URL.Query().Get("location"),
		Type:     r.URL.Query().Get("type"),
		MinBeds:  q.optInt("min_beds"),
		MinBaths: q.optInt("min_baths"),
		MinPrice: q.optFloat("min_price"),
		MaxPrice: q.optFloat("max_price"),
		Limit:    q.intDefault("limit", domain.DefaultPropertyLimit),
	}
	if f.Limit < 1 || f.Limit > domain.MaxPropertyLimit {
		q.errs = append(q.errs, queryErr{"limit", fmt.Sprintf("between 1 and %d", domain.MaxPropertyLimit)})
	}
	if q.failed(w) {
		return
	}
	out, err := h.Properties.Search(r.Context(), f)
	if err != nil {
		writeError(w, r, err, h.Dev, "")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getProperty(w http.ResponseWriter, r *http.Request) {
	p, err := h.Properties.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.Dev, propertyNotFound)
		return
	}
	writeCached(w, r, p)
}

func (h *Handlers) createProperty(w http.ResponseWriter, r *http.Request) {
	var in domain.PropertyPatch
	if !decode(w, r, &in) {
		return
	}
	p, err := h.Properties.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err, h.Dev, "")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handlers) updateProperty(w http.ResponseWriter, r *http.Request) {
	var in domain.PropertyPatch
	if !decode(w, r, &in) {
		return
	}
	p, err := h.Properties.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err, h.Dev, propertyNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ---- chat ----

type chatRequest struct {
	SessionID string        `json:"session_id" validate:"omitempty,max=100"`
	Name      string        `json:"name" validate:"omitempty,max=255"`
	Email     string        `json:"email" validate:"omitempty,email,max=255"`
	Phone     string        `json:"phone" validate:"omitempty,max=50"`
	Message   string        `json:"message" validate:"required,max=4000"`
	Lang      string        `json:"lang" validate:"omitempty,max=10"`
	Limit     int           `json:"limit" validate:"omitempty,min=1,max=12"`
	History   []domain.Turn `json:"history" validate:"omitempty,max=20,dive"`
}

type chatResponse struct {
	SessionID     string            `json:"session_id"`
	Reply         string            `json:"reply"`
	Language      string            `json:"language"`
	UserID        *int64            `json:"user_id"`
	InteractionID int64             `json:"interaction_id"`
	Properties    []domain.Property `json:"properties"`
	QuickReplies  []string          `json:"quick_replies"`
	Filters       intent.Slots      `json:"filters"`
}

func (h *Handlers) chat(w http.ResponseWriter, r *http.Request) {
	var in chatRequest
	if !decode(w, r, &in) {
		return
	}
	res, err := h.Chat.Chat(r.Context(), app.ChatRequest{
		SessionID: in.SessionID, Name: in.Name, Email: in.Email, Phone: in.Phone,
		Message: in.Message, Lang: in.Lang, Limit: in.Limit, History: in.History,
	})
	if err != nil {
		writeError(w, r, err, h.Dev, "")
		return
	}
	observability.ObserveChat(res.Route, res.Language)
	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:     res.SessionID,
		Reply:         res.Reply,
		Language:      res.Language,
		UserID:        res.UserID,
		InteractionID: res.InteractionID,
		Properties:    res.Properties,
		QuickReplies:  res.QuickReplies,
		Filters:       res.Filters,
	})
}

// ---- pdf ----

func (h *Handlers) pdfSummary(w http.ResponseWriter, r *http.Request) {
	var in pdf.Summary
	if !decode(w, r, &in) {
		return
	}
	start := time.Now()
	b, err := pdf.Render(in)
	if err != nil {
		writeError(w, r, fmt.Errorf("render pdf: %w", err), h.Dev, "")
		return
	}
	log.Debug().Int("bytes", len(b)).Dur("took", time.Since(start)).Msg("pdf rendered")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+pdf.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(b); err != nil {
		log.Error().Err(err).Msg("failed to write pdf body")
	}
}

// ---- auth ----

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !decode(w, r, &in) {
		return
	}
	tok, err := h.Auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, r, err, h.Dev, "")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: tok, TokenType: app.TokenType})
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r.Context())
	writeJSON(w, http.StatusOK, u)
}
