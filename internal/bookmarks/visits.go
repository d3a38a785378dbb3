package bookmarks

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/bookmarkplus/internal/logger"
	"github.com/nikbrunner/bookmarkplus/internal/model"
)

// ProgressFunc is called after each bookmark is processed.
// completed is the number processed so far, total is the total count.
type ProgressFunc func(completed, total int)

// UpdateBookmarkOnVisit counts a visit. When the bookmark has not been
// updated for longer than the refresh age its favicon is resolved again.
func (m *Manager) UpdateBookmarkOnVisit(ctx context.Context, id string) (*model.Bookmark, error) {
	m.mu.Lock()
	b := m.data.GetBookmarkByID(id)
	if b == nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrBookmarkNotFound, id)
	}
	url := b.URL
	last := b.DateUpdated
	if last.IsZero() {
		last = b.DateAdded
	}
	stale := m.now().Sub(last) > m.refreshAge
	m.mu.Unlock()

	var icon string
	if stale {
		icon = m.resolveFavicon(ctx, url)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	b = m.data.GetBookmarkByID(id)
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBookmarkNotFound, id)
	}
	b.VisitCount++
	if stale && icon != "" && b.URL == url {
		b.Favicon = icon
	}
	b.DateUpdated = m.now()

	if err := m.saveBookmarks(ctx); err != nil {
		return nil, err
	}

	c := b.Clone()
	return &c, nil
}

// RefreshFavicon resolves the favicon of one bookmark again. It reports
// false when no bookmark has id.
func (m *Manager) RefreshFavicon(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	b := m.data.GetBookmarkByID(id)
	if b == nil {
		m.mu.Unlock()
		return false, nil
	}
	url := b.URL
	m.mu.Unlock()

	icon := m.resolveFavicon(ctx, url)

	m.mu.Lock()
	defer m.mu.Unlock()

	b = m.data.GetBookmarkByID(id)
	if b == nil {
		return false, nil
	}
	b.Favicon = icon
	b.DateUpdated = m.now()

	if err := m.saveBookmarks(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// RefreshFavicons re-resolves every favicon using up to concurrency
// lookups at once, then saves once. Bookmarks deleted or re-pointed at a
// different URL meanwhile are skipped. It returns how many were updated.
func (m *Manager) RefreshFavicons(ctx context.Context, concurrency int, onProgress ProgressFunc) (int, error) {
	type job struct {
		id, url string
	}

	m.mu.Lock()
	jobs := make([]job, len(m.data.Bookmarks))
	for i, b := range m.data.Bookmarks {
		jobs[i] = job{id: b.ID, url: b.URL}
	}
	m.mu.Unlock()

	if len(jobs) == 0 {
		return 0, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	icons := make([]string, len(jobs))
	var (
		progressMu sync.Mutex
		completed  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			icons[i] = m.resolveFavicon(gctx, j.url)

			if onProgress != nil {
				progressMu.Lock()
				completed++
				onProgress(completed, len(jobs))
				progressMu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("refresh favicons: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	updated := 0
	for i, j := range jobs {
		b := m.data.GetBookmarkByID(j.id)
		if b == nil || b.URL != j.url || icons[i] == "" {
			continue
		}
		b.Favicon = icons[i]
		b.DateUpdated = now
		updated++
	}

	if err := m.saveBookmarks(ctx); err != nil {
		return 0, err
	}

	m.log.Info("favicons refreshed", logger.Int("updated", updated), logger.Int("total", len(jobs)))
	return updated, nil
}
