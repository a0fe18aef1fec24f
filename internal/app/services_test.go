package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"satn_chatbot/internal/app"
	"satn_chatbot/internal/domain"
)

func TestAgents_ListBoundsAndPartialUpdate(t *testing.T) {
	repo := newFakeRepo()
	s := app.NewAgentService(repo)
	ctx := context.Background()

	if _, err := s.List(ctx, -1, 10); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("skip<0: expected ErrInvalid, got %v", err)
	}
	if _, err := s.List(ctx, 0, 1001); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("limit>1000: expected ErrInvalid, got %v", err)
	}

	a, err := s.Create(ctx, domain.Agent{FullName: "Nimal Perera", Region: ptr("Colombo")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	a, err = s.Update(ctx, a.ID, domain.AgentPatch{Phone: ptr("+94 77 000 0000")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if a.FullName != "Nimal Perera" || deref(a.Region) != "Colombo" || deref(a.Phone) != "+94 77 000 0000" {
		t.Fatalf("partial update lost fields: %+v", a)
	}
	if _, err := s.Update(ctx, 99, domain.AgentPatch{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompany_LatestCachedAndInvalidated(t *testing.T) {
	repo := newFakeRepo()
	cache := &fakeCache{}
	s := app.NewCompanyService(repo, cache, time.Minute)
	ctx := context.Background()

	if _, err := s.Latest(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	c, err := s.Create(ctx, domain.CompanyInfo{LegalName: "S A Thomson Nerys & Co."})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got, _ := s.Latest(ctx); got.LegalName != "S A Thomson Nerys & Co." {
		t.Fatalf("unexpected latest: %+v", got)
	}

	if _, err := s.Update(ctx, c.ID, domain.CompanyPatch{ShortName: ptr("SATN")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.Latest(ctx)
	if deref(got.ShortName) != "SATN" {
		t.Fatalf("cache not invalidated on write: %+v", got)
	}
}

func TestInteractions_DefaultsAndValidation(t *testing.T) {
	repo := newFakeRepo()
	s := app.NewInteractionService(repo)
	ctx := context.Background()

	if _, err := s.Log(ctx, domain.Interaction{SessionID: "s1"}); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	i, err := s.Log(ctx, domain.Interaction{SessionID: "s1", UserMessage: "hi"})
	if err != nil || i.Channel != domain.DefaultChannel {
		t.Fatalf("log: %+v %v", i, err)
	}
	out, err := s.Session(ctx, "s1", 0)
	if err != nil || len(out) != 1 {
		t.Fatalf("session: %+v %v", out, err)
	}
}

func TestLeads_CaptureNotifies(t *testing.T) {
	repo := newFakeRepo()
	n := &fakeNotifier{err: errors.New("smtp down")}
	d := app.NewDispatcher(n)
	s := app.NewLeadService(repo, d)

	l, err := s.Capture(context.Background(), domain.Lead{FirstName: ptr("Ana"), Email: " ana@example.com "})
	if err != nil {
		t.Fatalf("capture must not fail on email errors: %v", err)
	}
	d.Wait()

	if l.ID == "" || l.Source != domain.DefaultLeadSource || l.Email != "ana@example.com" {
		t.Fatalf("unexpected lead: %+v", l)
	}
	if len(n.welcomes) != 1 || len(n.alerts) != 1 || n.alerts[0].Name != "Ana" {
		t.Fatalf("expected welcome + alert, got %d/%d", len(n.welcomes), len(n.alerts))
	}
	if _, err := s.Capture(context.Background(), domain.Lead{}); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestHealth_DBCheckWrapsError(t *testing.T) {
	s := app.NewHealthService(failingCounts{})
	_, err := s.DBCheck(context.Background())
	if err == nil || err.Error() != "DB check failed: conn refused" {
		t.Fatalf("unexpected error: %v", err)
	}
}

type failingCounts struct{}

func (failingCounts) TableCounts(context.Context) (map[string]int64, error) {
	return nil, errors.New("conn refused")
}
