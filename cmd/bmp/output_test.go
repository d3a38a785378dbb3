package main

import (
	"bytes"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bookmarkplus/internal/culler"
	"github.com/nikbrunner/bookmarkplus/internal/model"
)

func TestPrintItems(t *testing.T) {
	var buf bytes.Buffer
	printItems(&buf, []model.Item{
		model.FolderItem(model.Folder{ID: "f1", Name: "Dev"}),
		model.BookmarkItem(model.Bookmark{ID: "b1", Title: "Go", URL: "https://go.dev", Tags: []string{"lang", "google"}}),
		model.BookmarkItem(model.Bookmark{ID: "b2", Title: "News", URL: "https://news.test"}),
	})
	assert.Equal(t, buf.String(), "Dev/  f1\n"+
		"Go  https://go.dev  b1  #lang #google\n"+
		"News  https://news.test  b2\n")

	buf.Reset()
	printItems(&buf, nil)
	assert.Equal(t, buf.String(), "(empty)\n")
}

func TestPrintTree(t *testing.T) {
	tree := &model.FolderTree{
		Folder: model.NewRootFolder(),
		ChildFolders: []*model.FolderTree{
			{
				Folder:    model.Folder{ID: "f1", Name: "Dev"},
				Bookmarks: []model.Bookmark{{Title: "Go"}},
			},
		},
		Bookmarks: []model.Bookmark{{Title: "News"}},
	}

	var buf bytes.Buffer
	printTree(&buf, tree, 0)
	assert.Equal(t, buf.String(), "/\n  Dev/\n    Go\n  News\n")
}

func TestPrintCullResults(t *testing.T) {
	var buf bytes.Buffer
	printCullResults(&buf, []culler.Result{
		{Bookmark: model.Bookmark{Title: "Fine", URL: "https://ok.test"}, Status: culler.Healthy, StatusCode: 200},
		{Bookmark: model.Bookmark{Title: "Gone", URL: "https://gone.test"}, Status: culler.Dead, StatusCode: 404},
		{Bookmark: model.Bookmark{Title: "Slow", URL: "https://slow.test"}, Status: culler.Unreachable, Error: "Timeout"},
	})
	assert.Equal(t, buf.String(), "dead         404  Gone  https://gone.test\n"+
		"unreachable  Timeout  Slow  https://slow.test\n"+
		"3 checked, 1 dead, 1 unreachable\n")
}

func TestSplitTags(t *testing.T) {
	assert.Assert(t, splitTags("  ") == nil)
	assert.DeepEqual(t, splitTags("go, lang,go,,"), []string{"go", "lang"})
}
