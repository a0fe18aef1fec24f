package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"satn_chatbot/internal/domain"
)

// IngestStats summarises one ETL run. FailedPages counts WordPress pages
// that could not be fetched.
type IngestStats struct {
	Pages       int `json:"pages"`
	Upserted    int `json:"upserted"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
	FailedPages int `json:"failed_pages"`
}

type IngestionService struct {
	wp      domain.WordPressClient
	repo    domain.ListingRepository
	workers int64
	// onListing, when set, is told about every listing outcome (metrics).
	onListing func(job string, err error)
}

func NewIngestionService(wp domain.WordPressClient, r domain.ListingRepository, workers int) *IngestionService {
	if workers < 1 {
		workers = 1
	}
	return &IngestionService{wp: wp, repo: r, workers: int64(workers)}
}

// WithObserver registers a per-listing outcome callback.
func (s *IngestionService) WithObserver(fn func(job string, err error)) *IngestionService {
	s.onListing = fn
	return s
}

type counters struct{ upserted, skipped, failed atomic.Int64 }

func (c *counters) stats(pages int) IngestStats {
	return IngestStats{
		Pages:    pages,
		Upserted: int(c.upserted.Load()),
		Skipped:  int(c.skipped.Load()),
		Failed:   int(c.failed.Load()),
	}
}

func (s *IngestionService) observe(job string, err error) {
	if s.onListing != nil {
		s.onListing(job, err)
	}
}

// store upserts the listing by wp_id, then replaces its media.
func (s *IngestionService) store(ctx context.Context, l domain.Listing) error {
	id, err := s.repo.UpsertListing(ctx, l)
	if err != nil {
		return fmt.Errorf("upsert listing wp_id=%d: %w", l.WPID, err)
	}
	if err := s.repo.ReplaceListingMedia(ctx, id, l.Images, l.Documents); err != nil {
		return fmt.Errorf("replace media wp_id=%d: %w", l.WPID, err)
	}
	return nil
}

func (s *IngestionService) loadPage(ctx context.Context, posts []map[string]any, c *counters) {
	for _, p := range posts {
		l, ok := mapPost(p)
		if !ok {
			c.skipped.Add(1)
			continue
		}
		err := s.store(ctx, l)
		s.observe("wp_sync", err)
		if err != nil {
			c.failed.Add(1)
			log.Warn().Err(err).Int64("wp_id", l.WPID).Msg("listing load failed")
			continue
		}
		c.upserted.Add(1)
	}
}

// SyncWordPress pulls every published listing page. Page 1 tells the page
// count; the remaining pages are fetched concurrently, bounded by workers.
// A failed page is logged and counted; the run fails only when page 1 does.
func (s *IngestionService) SyncWordPress(ctx context.Context) (IngestStats, error) {
	first, total, err := s.wp.ListListings(ctx, 1)
	if err != nil {
		return IngestStats{}, fmt.Errorf("fetch page 1: %w", err)
	}
	var c counters
	s.loadPage(ctx, first, &c)
	log.Info().Int("page", 1).Int("total", total).Int("posts", len(first)).Msg("wordpress page loaded")

	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var pageErrs []error

	for page := 2; page <= total; page++ {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			defer sem.Release(1)

			posts, _, err := s.wp.ListListings(ctx, page)
			if err != nil {
				log.Warn().Err(err).Int("page", page).Msg("wordpress page failed")
				mu.Lock()
				pageErrs = append(pageErrs, fmt.Errorf("page %d: %w", page, err))
				mu.Unlock()
				return
			}
			s.loadPage(ctx, posts, &c)
			log.Info().Int("page", page).Int("total", total).Int("posts", len(posts)).Msg("wordpress page loaded")
		}(page)
	}
	wg.Wait()

	st := c.stats(max(total, 1))
	st.FailedPages = len(pageErrs)
	if err := ctx.Err(); err != nil {
		return st, err
	}
	if len(pageErrs) > 0 {
		log.Warn().Err(errors.Join(pageErrs...)).Int("failed_pages", len(pageErrs)).Msg("wordpress sync incomplete")
	}
	return st, nil
}

// ImportExport loads the listing items of a parsed WXR export.
func (s *IngestionService) ImportExport(ctx context.Context, items []domain.ExportItem) (IngestStats, error) {
	attachments := make(map[int64]string)
	for _, it := range items {
		if it.PostType == "attachment" && it.AttachmentURL != "" {
			attachments[it.WPID] = it.AttachmentURL
		}
	}
	var c counters
	for _, it := range items {
		if !listingPostTypes[it.PostType] || it.WPID == 0 {
			c.skipped.Add(1)
			continue
		}
		if err := ctx.Err(); err != nil {
			return c.stats(1), err
		}
		err := s.store(ctx, mapExportItem(it, attachments))
		s.observe("xml_import", err)
		if err != nil {
			c.failed.Add(1)
			log.Warn().Err(err).Int64("wp_id", it.WPID).Msg("xml listing load failed")
			continue
		}
		c.upserted.Add(1)
	}
	return c.stats(1), nil
}

// FixListings re-applies the text cleanup to every stored listing.
func (s *IngestionService) FixListings(ctx context.Context) (IngestStats, error) {
	ls, err := s.repo.ListListings(ctx)
	if err != nil {
		return IngestStats{}, err
	}
	var c counters
	for _, l := range ls {
		fixed := cleanListing(l)
		if fixed.Slug == l.Slug && fixed.Title == l.Title && deref(fixed.DescriptionHTML) == deref(l.DescriptionHTML) &&
			deref(fixed.DescriptionText) == deref(l.DescriptionText) && deref(fixed.Region) == deref(l.Region) &&
			deref(fixed.Status) == deref(l.Status) {
			c.skipped.Add(1)
			continue
		}
		err := s.repo.UpdateListingText(ctx, fixed)
		s.observe("fix_listings", err)
		if err != nil {
			c.failed.Add(1)
			log.Warn().Err(err).Int64("id", l.ID).Msg("listing fix failed")
			continue
		}
		c.upserted.Add(1)
	}
	return c.stats(1), nil
}

func cleanListing(l domain.Listing) domain.Listing {
	l.Slug = NormalizeSlug(l.Slug, l.WPID)
	l.Title = RepairEncoding(l.Title)
	if l.DescriptionHTML != nil {
		h := RepairEncoding(*l.DescriptionHTML)
		l.DescriptionHTML = &h
		l.DescriptionText = ptrStr(StripHTML(h))
	}
	if l.Region != nil {
		l.Region = ptrStr(RepairEncoding(*l.Region))
	}
	if l.Status != nil {
		l.Status = ptrStr(RepairEncoding(*l.Status))
	}
	return l
}

// Ping checks WordPress reachability and credentials.
func (s *IngestionService) Ping(ctx context.Context) error { return s.wp.Ping(ctx) }
