package bookmarks

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/nikbrunner/bookmarkplus/internal/logger"
	"github.com/nikbrunner/bookmarkplus/internal/model"
)

// CreateFolder adds a folder under parentID (root when empty) and records it
// in the parent's children. Names are not required to be unique.
func (m *Manager) CreateFolder(ctx context.Context, name, parentID string) (*model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	f := model.NewFolder(model.NewFolderParams{Name: name, ParentID: parentID})
	if m.data.GetFolderByID(f.Parent()) == nil {
		return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, f.Parent())
	}

	m.data.Folders = append(m.data.Folders, f)
	parent := m.data.GetFolderByID(f.Parent())
	parent.Children = append(parent.Children, f.ID)

	if err := m.saveFolders(ctx); err != nil {
		return nil, err
	}

	m.log.Info("folder created", logger.String("id", f.ID), logger.String("parent", f.Parent()))

	c := f.Clone()
	return &c, nil
}

// UpdateFolder renames a folder. The root folder cannot be renamed; it and
// unknown ids report false.
func (m *Manager) UpdateFolder(ctx context.Context, id, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("%w: name", ErrMissingField)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	f := m.data.GetFolderByID(id)
	if f == nil || f.IsRoot() {
		return false, nil
	}
	f.Name = name

	if err := m.saveFolders(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteFolder removes a folder together with every bookmark directly inside
// it. The bookmarks are deleted, not moved. Subfolders are not touched and
// keep pointing at the removed parent. The root folder cannot be deleted;
// it and unknown ids report false.
func (m *Manager) DeleteFolder(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f := m.data.GetFolderByID(id)
	if f == nil || f.IsRoot() {
		return false, nil
	}
	parentID := f.Parent()

	before := len(m.data.Bookmarks)
	m.data.Bookmarks = slices.DeleteFunc(m.data.Bookmarks, func(b model.Bookmark) bool {
		return b.FolderID == id
	})
	removed := before - len(m.data.Bookmarks)

	if parent := m.data.GetFolderByID(parentID); parent != nil {
		parent.Children = slices.DeleteFunc(parent.Children, func(c string) bool { return c == id })
	}
	m.data.Folders = slices.DeleteFunc(m.data.Folders, func(f model.Folder) bool {
		return f.ID == id
	})

	if err := m.saveBookmarks(ctx); err != nil {
		return false, err
	}
	if err := m.saveFolders(ctx); err != nil {
		return false, err
	}
	if m.recomputeTags() {
		if err := m.saveTags(ctx); err != nil {
			return false, err
		}
	}

	m.log.Info("folder deleted", logger.String("id", id), logger.Int("bookmarksRemoved", removed))
	return true, nil
}

// FolderPath returns the breadcrumb from the root down to id. A missing
// ancestor ends the path early.
func (m *Manager) FolderPath(id string) []model.Folder {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := m.data.FolderPath(id)
	for i := range path {
		path[i] = path[i].Clone()
	}
	return path
}

// FolderHierarchy returns the nested tree below id, or nil if id is unknown.
func (m *Manager) FolderHierarchy(id string) *model.FolderTree {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.Hierarchy(id)
}

// FolderContents lists the subfolders and then the bookmarks of id.
func (m *Manager) FolderContents(id string) []model.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.Contents(id)
}
