package importer

import (
	"slices"
	"time"

	"github.com/nikbrunner/bookmarkplus/internal/model"
)

// builder accumulates folders and bookmarks into an import document.
type builder struct {
	now       time.Time
	root      model.Folder
	folders   []model.Folder
	bookmarks []model.Bookmark
	urls      map[string]bool
}

func newBuilder(now time.Time) *builder {
	return &builder{
		now:  now,
		root: model.NewRootFolder(),
		urls: make(map[string]bool),
	}
}

// folder registers a folder under parentID and returns its id.
func (b *builder) folder(name, parentID string) string {
	f := model.NewFolder(model.NewFolderParams{Name: name, ParentID: parentID})
	b.folders = append(b.folders, f)
	if parent := b.find(parentID); parent != nil {
		parent.Children = append(parent.Children, f.ID)
	}
	return f.ID
}

func (b *builder) find(id string) *model.Folder {
	if id == model.RootFolderID {
		return &b.root
	}
	for i := range b.folders {
		if b.folders[i].ID == id {
			return &b.folders[i]
		}
	}
	return nil
}

// bookmark adds a bookmark and returns it for further edits, or nil when the
// URL was already seen.
func (b *builder) bookmark(title, url, folderID string, added time.Time) *model.Bookmark {
	if b.urls[url] {
		return nil
	}
	b.urls[url] = true

	bm := model.NewBookmark(model.NewBookmarkParams{Title: title, URL: url, FolderID: folderID}, added)
	b.bookmarks = append(b.bookmarks, bm)
	return &b.bookmarks[len(b.bookmarks)-1]
}

func (b *builder) document() model.ExportData {
	tags := []string{}
	for _, bm := range b.bookmarks {
		for _, tag := range bm.Tags {
			if !slices.Contains(tags, tag) {
				tags = append(tags, tag)
			}
		}
	}
	bookmarks := b.bookmarks
	if bookmarks == nil {
		bookmarks = []model.Bookmark{}
	}
	return model.ExportData{
		Bookmarks:  bookmarks,
		Folders:    append([]model.Folder{b.root}, b.folders...),
		Tags:       tags,
		ExportDate: b.now,
	}
}
