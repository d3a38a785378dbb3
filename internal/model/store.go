package model

import "slices"

// Store holds all bookmarks, folders and the tag registry.
// Slice order is meaningful: bookmarks within a folder are ordered by position.
type Store struct {
	Folders   []Folder   `json:"folders"`
	Bookmarks []Bookmark `json:"bookmarks"`
	Tags      []string   `json:"tags"`
}

// NewStore creates a Store containing only the root folder.
func NewStore() *Store {
	return &Store{
		Folders:   []Folder{NewRootFolder()},
		Bookmarks: []Bookmark{},
		Tags:      []string{},
	}
}

// FolderTree is a nested view of a folder, its bookmarks and subfolders.
type FolderTree struct {
	Folder       Folder        `json:"folder"`
	Bookmarks    []Bookmark    `json:"bookmarks"`
	ChildFolders []*FolderTree `json:"childFolders"`
}

// GetFoldersInFolder returns folders whose parent is parentID.
func (s *Store) GetFoldersInFolder(parentID string) []Folder {
	var result []Folder
	for _, f := range s.Folders {
		if f.ParentID != nil && *f.ParentID == parentID {
			result = append(result, f)
		}
	}
	return result
}

// GetBookmarksInFolder returns bookmarks in the given folder, in storage order.
func (s *Store) GetBookmarksInFolder(folderID string) []Bookmark {
	var result []Bookmark
	for _, b := range s.Bookmarks {
		if b.FolderID == folderID {
			result = append(result, b)
		}
	}
	return result
}

// GetFolderByID finds a folder by ID, returns nil if not found.
func (s *Store) GetFolderByID(id string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			return &s.Folders[i]
		}
	}
	return nil
}

// GetBookmarkByID finds a bookmark by ID, returns nil if not found.
func (s *Store) GetBookmarkByID(id string) *Bookmark {
	for i := range s.Bookmarks {
		if s.Bookmarks[i].ID == id {
			return &s.Bookmarks[i]
		}
	}
	return nil
}

// GetBookmarkByURL finds a bookmark by exact URL, returns nil if not found.
func (s *Store) GetBookmarkByURL(url string) *Bookmark {
	for i := range s.Bookmarks {
		if s.Bookmarks[i].URL == url {
			return &s.Bookmarks[i]
		}
	}
	return nil
}

// HasBookmarkURL reports whether any bookmark already uses url.
func (s *Store) HasBookmarkURL(url string) bool {
	return s.GetBookmarkByURL(url) != nil
}

// HasRoot reports whether the root folder is present.
func (s *Store) HasRoot() bool {
	return s.GetFolderByID(RootFolderID) != nil
}

// ReferencedTags returns every tag used by at least one bookmark,
// in first-seen order.
func (s *Store) ReferencedTags() []string {
	var tags []string
	seen := make(map[string]bool)
	for _, b := range s.Bookmarks {
		for _, tag := range b.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// FolderPath returns the chain of folders from the root down to id.
// A missing ancestor ends the path, so orphaned folders yield a partial path.
func (s *Store) FolderPath(id string) []Folder {
	var path []Folder
	visited := make(map[string]bool)
	current := id
	for current != "" && !visited[current] {
		visited[current] = true
		folder := s.GetFolderByID(current)
		if folder == nil {
			break
		}
		path = append(path, *folder)
		current = folder.Parent()
	}
	slices.Reverse(path)
	return path
}

// Contents lists a folder's subfolders followed by its bookmarks.
func (s *Store) Contents(folderID string) []Item {
	var items []Item
	for _, f := range s.GetFoldersInFolder(folderID) {
		items = append(items, FolderItem(f.Clone()))
	}
	for _, b := range s.GetBookmarksInFolder(folderID) {
		items = append(items, BookmarkItem(b.Clone()))
	}
	return items
}

// Hierarchy builds the nested tree rooted at folderID, or nil if it doesn't exist.
func (s *Store) Hierarchy(folderID string) *FolderTree {
	return s.hierarchy(folderID, make(map[string]bool))
}

func (s *Store) hierarchy(folderID string, visited map[string]bool) *FolderTree {
	folder := s.GetFolderByID(folderID)
	if folder == nil || visited[folderID] {
		return nil
	}
	visited[folderID] = true

	tree := &FolderTree{
		Folder:       folder.Clone(),
		Bookmarks:    []Bookmark{},
		ChildFolders: []*FolderTree{},
	}
	for _, b := range s.GetBookmarksInFolder(folderID) {
		tree.Bookmarks = append(tree.Bookmarks, b.Clone())
	}
	for _, child := range s.GetFoldersInFolder(folderID) {
		if sub := s.hierarchy(child.ID, visited); sub != nil {
			tree.ChildFolders = append(tree.ChildFolders, sub)
		}
	}
	return tree
}

// LinkChildren adds every folder to its parent's children when the parent
// exists and does not list it yet. Existing order is kept.
func (s *Store) LinkChildren() {
	for _, f := range s.Folders {
		parent := s.GetFolderByID(f.Parent())
		if parent != nil && !slices.Contains(parent.Children, f.ID) {
			parent.Children = append(parent.Children, f.ID)
		}
	}
}
