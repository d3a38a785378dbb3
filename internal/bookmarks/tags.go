package bookmarks

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// AddTagToBookmark tags a bookmark and registers the tag. Adding a tag the
// bookmark already has is a no-op.
func (m *Manager) AddTagToBookmark(ctx context.Context, id, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return fmt.Errorf("%w: tag", ErrMissingField)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.data.GetBookmarkByID(id)
	if b == nil {
		return fmt.Errorf("%w: %s", ErrBookmarkNotFound, id)
	}
	if b.HasTag(tag) {
		return nil
	}
	b.Tags = append(b.Tags, tag)
	m.data.Tags = union(m.data.Tags, []string{tag})

	if err := m.saveBookmarks(ctx); err != nil {
		return err
	}
	return m.saveTags(ctx)
}

// RemoveTagFromBookmark untags a bookmark. The tag leaves the registry as
// soon as no bookmark carries it.
func (m *Manager) RemoveTagFromBookmark(ctx context.Context, id, tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.data.GetBookmarkByID(id)
	if b == nil {
		return fmt.Errorf("%w: %s", ErrBookmarkNotFound, id)
	}
	b.Tags = slices.DeleteFunc(b.Tags, func(t string) bool { return t == tag })

	if err := m.saveBookmarks(ctx); err != nil {
		return err
	}
	if m.recomputeTags() {
		return m.saveTags(ctx)
	}
	return nil
}

// RegisterTag adds tag to the registry without attaching it to a bookmark.
// The next orphan cleanup drops it again if it is still unused.
func (m *Manager) RegisterTag(ctx context.Context, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return fmt.Errorf("%w: tag", ErrMissingField)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.Contains(m.data.Tags, tag) {
		return nil
	}
	m.data.Tags = append(m.data.Tags, tag)
	return m.saveTags(ctx)
}

// recomputeTags shrinks the registry to the tags still referenced by a
// bookmark, keeping registry order. It reports whether anything changed.
func (m *Manager) recomputeTags() bool {
	referenced := m.data.ReferencedTags()

	next := make([]string, 0, len(referenced))
	for _, tag := range m.data.Tags {
		if slices.Contains(referenced, tag) {
			next = append(next, tag)
		}
	}
	next = union(next, referenced)

	if slices.Equal(next, m.data.Tags) {
		return false
	}
	m.data.Tags = next
	return true
}
