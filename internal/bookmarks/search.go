package bookmarks

import (
	"github.com/nikbrunner/bookmarkplus/internal/model"
	"github.com/nikbrunner/bookmarkplus/internal/search"
)

// GlobalSearch runs search.Global over the current bookmarks.
func (m *Manager) GlobalSearch(query string) []search.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return search.Global(m.data.Bookmarks, query)
}

// SearchByTags returns bookmarks carrying any of tags.
func (m *Manager) SearchByTags(tags []string) []model.Bookmark {
	m.mu.Lock()
	defer m.mu.Unlock()
	return search.ByTags(m.data.Bookmarks, tags)
}

// SearchByTitle returns bookmarks whose title contains query.
func (m *Manager) SearchByTitle(query string) []model.Bookmark {
	m.mu.Lock()
	defer m.mu.Unlock()
	return search.ByTitle(m.data.Bookmarks, query)
}

// FuzzySearch matches bookmark titles fuzzily, best match first.
func (m *Manager) FuzzySearch(query string) []search.FuzzyResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return search.Fuzzy(m.data.Bookmarks, query)
}
