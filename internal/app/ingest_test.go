package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"satn_chatbot/internal/app"
	"satn_chatbot/internal/domain"
)

type fakeWP struct {
	pages  map[int][]map[string]any
	failOn int
}

func (f *fakeWP) ListListings(ctx context.Context, page int) ([]map[string]any, int, error) {
	if page == f.failOn {
		return nil, 0, errors.New("boom")
	}
	return f.pages[page], len(f.pages), nil
}

func (f *fakeWP) Ping(ctx context.Context) error { return nil }

type fakeListings struct {
	mu     sync.Mutex
	byWPID map[int64]domain.Listing
	media  map[int64][]domain.ListingImage
	stored []domain.Listing
	fixed  []domain.Listing
}

func newFakeListings() *fakeListings {
	return &fakeListings{byWPID: map[int64]domain.Listing{}, media: map[int64][]domain.ListingImage{}}
}

func (f *fakeListings) UpsertListing(ctx context.Context, l domain.Listing) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byWPID[l.WPID] = l
	return l.WPID, nil
}

func (f *fakeListings) ReplaceListingMedia(ctx context.Context, id int64, imgs []domain.ListingImage, docs []domain.ListingDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.media[id] = imgs
	return nil
}

func (f *fakeListings) ListListings(ctx context.Context) ([]domain.Listing, error) { return f.stored, nil }

func (f *fakeListings) UpdateListingText(ctx context.Context, l domain.Listing) error {
	f.fixed = append(f.fixed, l)
	return nil
}

func post(id int) map[string]any {
	return map[string]any{
		"id":      float64(id),
		"slug":    fmt.Sprint(id),
		"status":  "publish",
		"title":   map[string]any{"rendered": "Listing &#8211; " + fmt.Sprint(id)},
		"content": map[string]any{"rendered": "<p>Hello</p>"},
	}
}

func TestSyncWordPress_AllPages(t *testing.T) {
	wp := &fakeWP{pages: map[int][]map[string]any{
		1: {post(1), post(2)},
		2: {post(3)},
		3: {post(4), {"title": "no id"}},
	}}
	store := newFakeListings()
	var observed int
	var mu sync.Mutex
	s := app.NewIngestionService(wp, store, 2).WithObserver(func(job string, err error) {
		mu.Lock()
		observed++
		mu.Unlock()
	})

	st, err := s.SyncWordPress(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if st.Pages != 3 || st.Upserted != 4 || st.Skipped != 1 || st.Failed != 0 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if observed != 4 {
		t.Fatalf("observer called %d times", observed)
	}
	l := store.byWPID[3]
	if l.Slug != "listing-3" || l.Title != "Listing – 3" || deref(l.DescriptionText) != "Hello" {
		t.Fatalf("unexpected listing: %+v", l)
	}
}

func TestSyncWordPress_PageFailures(t *testing.T) {
	// a later page failing is tolerated
	wp := &fakeWP{pages: map[int][]map[string]any{1: {post(1)}, 2: {post(2)}}, failOn: 2}
	st, err := app.NewIngestionService(wp, newFakeListings(), 4).SyncWordPress(context.Background())
	if err != nil || st.Upserted != 1 || st.FailedPages != 1 {
		t.Fatalf("expected partial success with one failed page, got %+v %v", st, err)
	}

	// page 1 failing aborts
	wp.failOn = 1
	if _, err := app.NewIngestionService(wp, newFakeListings(), 4).SyncWordPress(context.Background()); err == nil {
		t.Fatalf("expected error when page 1 fails")
	}
}

func TestImportExport(t *testing.T) {
	items := []domain.ExportItem{
		{
			WPID:     101,
			Title:    "Harbour View",
			PostType: "hp_listing",
			Slug:     "harbour-view",
			Meta:     map[string]string{"_price": "850,000", "bedrooms": "2", "_thumbnail_id": "555"},
			Terms:    map[string][]string{"hp_listing_region": {"Sydney"}},
		},
		{WPID: 555, PostType: "attachment", AttachmentURL: "https://example.com/cover.jpg"},
		{WPID: 7, PostType: "page"},
	}
	store := newFakeListings()
	st, err := app.NewIngestionService(&fakeWP{}, store, 1).ImportExport(context.Background(), items)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if st.Upserted != 1 || st.Skipped != 2 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	l := store.byWPID[101]
	if l.PriceFrom == nil || *l.PriceFrom != 850_000 || l.Beds == nil || *l.Beds != 2 {
		t.Fatalf("meta not mapped: %+v", l)
	}
	if deref(l.ImageURL) != "https://example.com/cover.jpg" || deref(l.Region) != "Sydney" {
		t.Fatalf("image/region not mapped: %+v", l)
	}
	if imgs := store.media[101]; len(imgs) != 1 || !imgs[0].IsFeatured {
		t.Fatalf("unexpected media: %+v", imgs)
	}
}

func TestFixListings(t *testing.T) {
	store := newFakeListings()
	store.stored = []domain.Listing{
		{ID: 1, WPID: 10, Slug: "10", Title: "CafÃ© Row", DescriptionHTML: ptr("<b>Big</b>  house")},
		{ID: 2, WPID: 11, Slug: "clean", Title: "Clean", DescriptionHTML: ptr("x"), DescriptionText: ptr("x")},
	}
	st, err := app.NewIngestionService(&fakeWP{}, store, 1).FixListings(context.Background())
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if st.Upserted != 1 || st.Skipped != 1 || len(store.fixed) != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	f := store.fixed[0]
	if f.Slug != "listing-10" || f.Title != "Café Row" || deref(f.DescriptionText) != "Big house" {
		t.Fatalf("unexpected fix: %+v", f)
	}
}
