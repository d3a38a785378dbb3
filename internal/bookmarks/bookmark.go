package bookmarks

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/bookmarkplus/internal/logger"
	"github.com/nikbrunner/bookmarkplus/internal/model"
)

// CreateBookmark adds a bookmark after resolving its favicon and preview
// metadata. Both lookups run concurrently and must finish before the bookmark
// is stored; neither can fail the call. Bookmarks and tags are then written
// as two separate store writes.
func (m *Manager) CreateBookmark(ctx context.Context, params model.NewBookmarkParams) (*model.Bookmark, error) {
	params.URL = strings.TrimSpace(params.URL)
	params.Title = strings.TrimSpace(params.Title)
	if params.URL == "" {
		return nil, fmt.Errorf("%w: url", ErrMissingField)
	}
	if params.Title == "" {
		params.Title = params.URL
	}

	m.mu.Lock()
	err := m.checkNewBookmark(params)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	icon, og := m.enrich(ctx, params.URL)

	m.mu.Lock()
	defer m.mu.Unlock()

	// The collections may have changed while enrichment ran.
	if err := m.checkNewBookmark(params); err != nil {
		return nil, err
	}

	b := model.NewBookmark(params, m.now())
	b.Favicon = icon
	b.OpenGraph = og
	b.RefreshPreview()

	m.data.Bookmarks = append(m.data.Bookmarks, b)
	m.data.Tags = union(m.data.Tags, b.Tags)

	if err := m.saveBookmarks(ctx); err != nil {
		return nil, err
	}
	if err := m.saveTags(ctx); err != nil {
		return nil, err
	}

	m.log.Info("bookmark created",
		logger.String("id", b.ID), logger.String("url", b.URL), logger.Bool("richPreview", b.HasRichPreview))

	c := b.Clone()
	return &c, nil
}

func (m *Manager) checkNewBookmark(params model.NewBookmarkParams) error {
	if existing := m.data.GetBookmarkByURL(params.URL); existing != nil {
		return &DuplicateURLError{URL: params.URL, Title: existing.Title}
	}
	if params.FolderID != "" && m.data.GetFolderByID(params.FolderID) == nil {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, params.FolderID)
	}
	return nil
}

func (m *Manager) enrich(ctx context.Context, url string) (string, *model.OpenGraph) {
	var (
		icon string
		og   *model.OpenGraph
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		icon = m.resolveFavicon(gctx, url)
		return nil
	})
	g.Go(func() error {
		og = m.extractMetadata(gctx, url)
		return nil
	})
	_ = g.Wait()
	return icon, og
}

// BookmarkUpdate lists the fields to change. Nil fields are left alone.
type BookmarkUpdate struct {
	Title    *string   `json:"title,omitempty"`
	URL      *string   `json:"url,omitempty"`
	FolderID *string   `json:"folderId,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
}

// UpdateBookmark applies upd to the bookmark with id and bumps dateUpdated.
// A new URL must not belong to another bookmark. Changing tags recomputes
// the tag registry.
func (m *Manager) UpdateBookmark(ctx context.Context, id string, upd BookmarkUpdate) (*model.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.data.GetBookmarkByID(id)
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBookmarkNotFound, id)
	}

	next := b.Clone()
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title", ErrMissingField)
		}
		next.Title = title
	}
	if upd.URL != nil {
		url := strings.TrimSpace(*upd.URL)
		if url == "" {
			return nil, fmt.Errorf("%w: url", ErrMissingField)
		}
		if other := m.data.GetBookmarkByURL(url); other != nil && other.ID != id {
			return nil, &DuplicateURLError{URL: url, Title: other.Title}
		}
		next.URL = url
	}
	if upd.FolderID != nil {
		folderID := *upd.FolderID
		if folderID == "" {
			folderID = model.RootFolderID
		}
		if m.data.GetFolderByID(folderID) == nil {
			return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, folderID)
		}
		next.FolderID = folderID
	}
	tagsChanged := false
	if upd.Tags != nil {
		tags := model.NormalizeTags(*upd.Tags)
		tagsChanged = !slices.Equal(tags, next.Tags)
		next.Tags = tags
	}
	next.DateUpdated = m.now()
	*b = next

	if err := m.saveBookmarks(ctx); err != nil {
		return nil, err
	}
	if tagsChanged && m.recomputeTags() {
		if err := m.saveTags(ctx); err != nil {
			return nil, err
		}
	}

	c := b.Clone()
	return &c, nil
}

// MoveBookmark puts the bookmark into folderID. An empty id means root.
func (m *Manager) MoveBookmark(ctx context.Context, id, folderID string) error {
	_, err := m.UpdateBookmark(ctx, id, BookmarkUpdate{FolderID: &folderID})
	return err
}

// DeleteBookmark removes a bookmark and drops tags nobody uses anymore.
// It reports false when no bookmark has id.
func (m *Manager) DeleteBookmark(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data.GetBookmarkByID(id) == nil {
		return false, nil
	}
	m.data.Bookmarks = slices.DeleteFunc(m.data.Bookmarks, func(b model.Bookmark) bool {
		return b.ID == id
	})

	if err := m.saveBookmarks(ctx); err != nil {
		return false, err
	}
	if m.recomputeTags() {
		if err := m.saveTags(ctx); err != nil {
			return false, err
		}
	}
	return true, nil
}

// ReorderBookmarks moves the bookmark at index from to index to, counted
// within folderID in storage order. The collection is rewritten as the
// bookmarks of other folders followed by the reordered folder. Out of range
// or equal indices report false and change nothing.
func (m *Manager) ReorderBookmarks(ctx context.Context, folderID string, from, to int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inFolder := m.data.GetBookmarksInFolder(folderID)
	n := len(inFolder)
	if from < 0 || to < 0 || from >= n || to >= n || from == to {
		return false, nil
	}

	moved := inFolder[from]
	inFolder = slices.Delete(inFolder, from, from+1)
	inFolder = slices.Insert(inFolder, to, moved)

	others := make([]model.Bookmark, 0, len(m.data.Bookmarks))
	for _, b := range m.data.Bookmarks {
		if b.FolderID != folderID {
			others = append(others, b)
		}
	}
	m.data.Bookmarks = append(others, inFolder...)

	if err := m.saveBookmarks(ctx); err != nil {
		return false, err
	}
	return true, nil
}
