// Package bookmarks owns the canonical bookmark, folder and tag collections
// and keeps them consistent with the persistent store.
package bookmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nikbrunner/bookmarkplus/internal/favicon"
	"github.com/nikbrunner/bookmarkplus/internal/logger"
	"github.com/nikbrunner/bookmarkplus/internal/model"
	"github.com/nikbrunner/bookmarkplus/internal/storage"
)

// DefaultFaviconRefreshAge is how stale a bookmark must be before a visit
// re-resolves its favicon.
const DefaultFaviconRefreshAge = 7 * 24 * time.Hour

// FaviconResolver finds an icon for a URL. It must always return something.
type FaviconResolver interface {
	Resolve(ctx context.Context, url string) string
}

// MetadataExtractor fetches preview metadata for a URL, or nil.
type MetadataExtractor interface {
	Extract(ctx context.Context, url string) *model.OpenGraph
}

// Options configures a Manager.
type Options struct {
	Favicons          FaviconResolver
	Metadata          MetadataExtractor
	Logger            logger.Logger
	Now               func() time.Time
	FaviconRefreshAge time.Duration
}

// Manager is the single owner of the in-memory collections. Methods are safe
// for concurrent use; network enrichment happens outside the lock.
type Manager struct {
	store      storage.Store
	favicons   FaviconResolver
	metadata   MetadataExtractor
	log        logger.Logger
	now        func() time.Time
	refreshAge time.Duration

	mu   sync.Mutex
	data *model.Store
}

// New creates a Manager backed by store. Call Init before use.
func New(store storage.Store, opts Options) *Manager {
	m := &Manager{
		store:      store,
		favicons:   opts.Favicons,
		metadata:   opts.Metadata,
		log:        opts.Logger,
		now:        opts.Now,
		refreshAge: opts.FaviconRefreshAge,
		data:       model.NewStore(),
	}
	if m.log == nil {
		m.log = logger.Nop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.refreshAge <= 0 {
		m.refreshAge = DefaultFaviconRefreshAge
	}
	return m
}

// Init loads the collections from the store. Read and decode failures are
// logged and fall back to defaults; the tag registry is rebuilt as the
// stored tags plus every tag found on a bookmark.
func (m *Manager) Init(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data := &model.Store{}

	values, err := m.store.Get(ctx, storage.KeyBookmarks, storage.KeyFolders)
	if err != nil {
		m.log.Warn("load bookmarks failed", logger.Error(err))
		values = nil
	}
	data.Bookmarks = decodeValue[[]model.Bookmark](m.log, values, storage.KeyBookmarks)
	data.Folders = decodeValue[[]model.Folder](m.log, values, storage.KeyFolders)

	if len(data.Folders) == 0 {
		data.Folders = []model.Folder{model.NewRootFolder()}
	}
	if data.Bookmarks == nil {
		data.Bookmarks = []model.Bookmark{}
	}
	for i := range data.Bookmarks {
		normalizeLoaded(&data.Bookmarks[i])
	}
	for i := range data.Folders {
		if data.Folders[i].Children == nil {
			data.Folders[i].Children = []string{}
		}
		data.Folders[i].Kind = model.KindFolder
	}

	tagValues, err := m.store.Get(ctx, storage.KeyTags)
	if err != nil {
		m.log.Warn("load tags failed", logger.Error(err))
	}
	stored := decodeValue[[]string](m.log, tagValues, storage.KeyTags)

	data.Tags = union(data.ReferencedTags(), stored)
	m.data = data

	m.log.Debug("store initialized",
		logger.Int("bookmarks", len(data.Bookmarks)),
		logger.Int("folders", len(data.Folders)),
		logger.Int("tags", len(data.Tags)))
}

// decodeValue returns the zero value when key is absent or undecodable.
func decodeValue[T any](log logger.Logger, values map[string][]byte, key string) T {
	var v T
	raw, ok := values[key]
	if !ok {
		return v
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Warn("decode stored value failed", logger.String("key", key), logger.Error(err))
		var zero T
		return zero
	}
	return v
}

func normalizeLoaded(b *model.Bookmark) {
	b.Tags = model.NormalizeTags(b.Tags)
	b.Kind = model.KindBookmark
	b.RefreshPreview()
}

// union appends the items of extra that are not yet in base.
func union(base []string, extra []string) []string {
	if base == nil {
		base = []string{}
	}
	for _, tag := range extra {
		if !slices.Contains(base, tag) {
			base = append(base, tag)
		}
	}
	return base
}

func (m *Manager) saveBookmarks(ctx context.Context) error {
	return m.save(ctx, storage.KeyBookmarks, m.data.Bookmarks)
}

func (m *Manager) saveFolders(ctx context.Context) error {
	return m.save(ctx, storage.KeyFolders, m.data.Folders)
}

func (m *Manager) saveTags(ctx context.Context) error {
	return m.save(ctx, storage.KeyTags, m.data.Tags)
}

// saveAll writes the three collections as independent writes.
func (m *Manager) saveAll(ctx context.Context) error {
	if err := m.saveBookmarks(ctx); err != nil {
		return err
	}
	if err := m.saveFolders(ctx); err != nil {
		return err
	}
	return m.saveTags(ctx)
}

func (m *Manager) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := m.store.Set(ctx, map[string][]byte{key: raw}); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (m *Manager) resolveFavicon(ctx context.Context, url string) string {
	if m.favicons == nil {
		return favicon.Placeholder(url)
	}
	return m.favicons.Resolve(ctx, url)
}

func (m *Manager) extractMetadata(ctx context.Context, url string) *model.OpenGraph {
	if m.metadata == nil {
		return nil
	}
	return m.metadata.Extract(ctx, url)
}

// Bookmarks returns a copy of every bookmark in storage order.
func (m *Manager) Bookmarks() []model.Bookmark {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneBookmarks(m.data.Bookmarks)
}

// Folders returns a copy of every folder.
func (m *Manager) Folders() []model.Folder {
	m.mu.Lock()
	defer m.mu.Unlock()
	folders := make([]model.Folder, len(m.data.Folders))
	for i, f := range m.data.Folders {
		folders[i] = f.Clone()
	}
	return folders
}

// Tags returns the tag registry in insertion order.
func (m *Manager) Tags() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.data.Tags)
}

// Bookmark returns a copy of the bookmark with id.
func (m *Manager) Bookmark(id string) (*model.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.data.GetBookmarkByID(id)
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBookmarkNotFound, id)
	}
	c := b.Clone()
	return &c, nil
}

// Folder returns a copy of the folder with id.
func (m *Manager) Folder(id string) (*model.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.data.GetFolderByID(id)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, id)
	}
	c := f.Clone()
	return &c, nil
}

// BookmarksInFolder returns copies of the bookmarks directly inside folderID.
func (m *Manager) BookmarksInFolder(folderID string) []model.Bookmark {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneBookmarks(m.data.GetBookmarksInFolder(folderID))
}

func cloneBookmarks(src []model.Bookmark) []model.Bookmark {
	out := make([]model.Bookmark, len(src))
	for i, b := range src {
		out[i] = b.Clone()
	}
	return out
}
