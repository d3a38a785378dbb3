package model

// Item is either a folder or a bookmark, discriminated by Kind.
// Exactly one of Folder and Bookmark is set.
type Item struct {
	Kind     Kind      `json:"type"`
	Folder   *Folder   `json:"folder,omitempty"`
	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// FolderItem wraps a folder.
func FolderItem(f Folder) Item {
	return Item{Kind: KindFolder, Folder: &f}
}

// BookmarkItem wraps a bookmark.
func BookmarkItem(b Bookmark) Item {
	return Item{Kind: KindBookmark, Bookmark: &b}
}

// ID returns the item's ID regardless of type.
func (i Item) ID() string {
	switch i.Kind {
	case KindFolder:
		return i.Folder.ID
	case KindBookmark:
		return i.Bookmark.ID
	default:
		return ""
	}
}

// Title returns a display title for the item.
func (i Item) Title() string {
	switch i.Kind {
	case KindFolder:
		return i.Folder.Name
	case KindBookmark:
		return i.Bookmark.Title
	default:
		return ""
	}
}

// IsFolder returns true if this item is a folder.
func (i Item) IsFolder() bool {
	return i.Kind == KindFolder
}
