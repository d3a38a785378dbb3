package model_test

import (
	"testing"
	"time"

	"github.com/nikbrunner/bookmarkplus/internal/model"
)

// Helper functions for pointers
func stringPtr(s string) *string { return &s }

func testStore() *model.Store {
	return &model.Store{
		Folders: []model.Folder{
			model.NewRootFolder(),
			{ID: "f1", Name: "Development", ParentID: stringPtr("root"), Kind: model.KindFolder},
			{ID: "f2", Name: "React", ParentID: stringPtr("f1"), Kind: model.KindFolder},
			{ID: "f3", Name: "Design", ParentID: stringPtr("root"), Kind: model.KindFolder},
		},
		Bookmarks: []model.Bookmark{
			{ID: "b1", Title: "Root Bookmark", URL: "https://example.com", FolderID: "root", Tags: []string{"misc"}},
			{ID: "b2", Title: "React Docs", URL: "https://react.dev", FolderID: "f2", Tags: []string{"react", "docs"}},
			{ID: "b3", Title: "Another Root", URL: "https://example.net", FolderID: "root", Tags: []string{"docs"}},
		},
	}
}

func TestNewBookmark_Defaults(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	b := model.NewBookmark(model.NewBookmarkParams{
		Title: "TanStack Router",
		URL:   "https://tanstack.com/router",
		Tags:  []string{"react", " routing ", "react", ""},
	}, now)

	if b.ID == "" {
		t.Error("expected generated ID")
	}
	if b.FolderID != model.RootFolderID {
		t.Errorf("expected root folder, got %q", b.FolderID)
	}
	if len(b.Tags) != 2 || b.Tags[0] != "react" || b.Tags[1] != "routing" {
		t.Errorf("expected normalized tags [react routing], got %v", b.Tags)
	}
	if !b.DateAdded.Equal(now) || !b.DateUpdated.Equal(now) {
		t.Error("expected both timestamps to be set to now")
	}
	if b.VisitCount != 0 {
		t.Errorf("expected zero visits, got %d", b.VisitCount)
	}
	if b.Kind != model.KindBookmark {
		t.Errorf("expected kind bookmark, got %q", b.Kind)
	}
}

func TestBookmark_RefreshPreview(t *testing.T) {
	tests := []struct {
		name string
		og   *model.OpenGraph
		want bool
	}{
		{name: "no open graph", og: nil, want: false},
		{name: "title only", og: &model.OpenGraph{Title: "Hello"}, want: false},
		{name: "image", og: &model.OpenGraph{Title: "Hello", Image: "https://x.dev/a.png"}, want: true},
		{name: "description", og: &model.OpenGraph{Description: "About"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := model.Bookmark{OpenGraph: tt.og}
			b.RefreshPreview()
			if b.HasRichPreview != tt.want {
				t.Errorf("HasRichPreview = %v, want %v", b.HasRichPreview, tt.want)
			}
		})
	}
}

func TestBookmark_CloneIsDeep(t *testing.T) {
	original := model.Bookmark{
		ID:        "b1",
		Tags:      []string{"a"},
		OpenGraph: &model.OpenGraph{Title: "T"},
	}

	clone := original.Clone()
	clone.Tags[0] = "changed"
	clone.OpenGraph.Title = "changed"

	if original.Tags[0] != "a" {
		t.Error("clone shares the tag slice")
	}
	if original.OpenGraph.Title != "T" {
		t.Error("clone shares the open graph bundle")
	}
}

func TestStore_GetFoldersInFolder(t *testing.T) {
	store := testStore()

	if got := len(store.GetFoldersInFolder("root")); got != 2 {
		t.Errorf("expected 2 root folders, got %d", got)
	}
	if got := len(store.GetFoldersInFolder("f1")); got != 1 {
		t.Errorf("expected 1 nested folder in f1, got %d", got)
	}
	if got := len(store.GetFoldersInFolder("f3")); got != 0 {
		t.Errorf("expected 0 folders in f3, got %d", got)
	}
}

func TestStore_GetBookmarksInFolder(t *testing.T) {
	store := testStore()

	rootBookmarks := store.GetBookmarksInFolder("root")
	if len(rootBookmarks) != 2 {
		t.Fatalf("expected 2 root bookmarks, got %d", len(rootBookmarks))
	}
	if rootBookmarks[0].ID != "b1" || rootBookmarks[1].ID != "b3" {
		t.Error("expected storage order to be preserved")
	}
}

func TestStore_GetFolderByID(t *testing.T) {
	store := testStore()

	folder := store.GetFolderByID("f1")
	if folder == nil {
		t.Fatal("expected to find folder f1")
	}
	if folder.Name != "Development" {
		t.Errorf("expected name 'Development', got %q", folder.Name)
	}

	if store.GetFolderByID("nonexistent") != nil {
		t.Error("expected nil for nonexistent folder")
	}
}

func TestStore_HasBookmarkURL(t *testing.T) {
	store := testStore()

	if !store.HasBookmarkURL("https://example.com") {
		t.Error("expected to find existing URL")
	}
	if store.HasBookmarkURL("https://EXAMPLE.com") {
		t.Error("URL matching should be case-sensitive")
	}
}

func TestStore_ReferencedTags(t *testing.T) {
	store := testStore()

	tags := store.ReferencedTags()
	want := []string{"misc", "react", "docs"}
	if len(tags) != len(want) {
		t.Fatalf("expected %v, got %v", want, tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], tags[i])
		}
	}
}

func TestStore_FolderPath(t *testing.T) {
	store := testStore()

	path := store.FolderPath("f2")
	if len(path) != 3 {
		t.Fatalf("expected 3 folders in path, got %d", len(path))
	}
	if path[0].ID != "root" || path[1].ID != "f1" || path[2].ID != "f2" {
		t.Errorf("unexpected path order: %v", path)
	}
}

func TestStore_FolderPath_OrphanStopsAtMissingAncestor(t *testing.T) {
	store := testStore()
	store.Folders = append(store.Folders, model.Folder{
		ID: "orphan", Name: "Orphan", ParentID: stringPtr("deleted"), Kind: model.KindFolder,
	})

	path := store.FolderPath("orphan")
	if len(path) != 1 || path[0].ID != "orphan" {
		t.Errorf("expected path to end at the orphan itself, got %v", path)
	}
}

func TestStore_FolderPath_CycleTerminates(t *testing.T) {
	store := &model.Store{
		Folders: []model.Folder{
			{ID: "a", Name: "A", ParentID: stringPtr("b")},
			{ID: "b", Name: "B", ParentID: stringPtr("a")},
		},
	}

	if path := store.FolderPath("a"); len(path) != 2 {
		t.Errorf("expected cycle to be cut after 2 folders, got %d", len(path))
	}
}

func TestStore_Contents(t *testing.T) {
	store := testStore()

	items := store.Contents("root")
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}
	if !items[0].IsFolder() || !items[1].IsFolder() {
		t.Error("expected folders first")
	}
	if items[2].Kind != model.KindBookmark || items[2].ID() != "b1" {
		t.Errorf("expected bookmark b1 third, got %v", items[2].ID())
	}
}

func TestStore_Hierarchy(t *testing.T) {
	store := testStore()

	tree := store.Hierarchy("root")
	if tree == nil {
		t.Fatal("expected tree")
	}
	if len(tree.Bookmarks) != 2 {
		t.Errorf("expected 2 root bookmarks, got %d", len(tree.Bookmarks))
	}
	if len(tree.ChildFolders) != 2 {
		t.Fatalf("expected 2 child folders, got %d", len(tree.ChildFolders))
	}
	dev := tree.ChildFolders[0]
	if len(dev.ChildFolders) != 1 || len(dev.ChildFolders[0].Bookmarks) != 1 {
		t.Error("expected React folder with one bookmark under Development")
	}

	if store.Hierarchy("missing") != nil {
		t.Error("expected nil tree for missing folder")
	}
}

func TestStore_LinkChildren(t *testing.T) {
	store := testStore()
	store.Folders[0].Children = []string{"f3"}

	store.LinkChildren()
	store.LinkChildren()

	root := store.GetFolderByID("root")
	if len(root.Children) != 2 || root.Children[0] != "f3" || root.Children[1] != "f1" {
		t.Errorf("expected root children [f3 f1], got %v", root.Children)
	}
	dev := store.GetFolderByID("f1")
	if len(dev.Children) != 1 || dev.Children[0] != "f2" {
		t.Errorf("expected f1 children [f2], got %v", dev.Children)
	}
}
