package exporter

import (
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/golden"

	"github.com/nikbrunner/bookmarkplus/internal/model"
)

func folder(id, name, parent string, children ...string) model.Folder {
	return model.Folder{ID: id, Name: name, ParentID: &parent, Children: children, Kind: model.KindFolder}
}

func rootWith(children ...string) model.Folder {
	root := model.NewRootFolder()
	root.Children = children
	return root
}

func TestExportHTML_EmptyStore(t *testing.T) {
	html := ExportHTML(model.ExportData{Folders: []model.Folder{model.NewRootFolder()}})

	// Should have basic structure even when empty
	if !strings.Contains(html, "<!DOCTYPE NETSCAPE-Bookmark-file-1>") {
		t.Error("expected DOCTYPE declaration")
	}
	if !strings.Contains(html, "<TITLE>Bookmarks</TITLE>") {
		t.Error("expected TITLE element")
	}
	if !strings.Contains(html, "<H1>Bookmarks</H1>") {
		t.Error("expected H1 element")
	}
	if strings.Contains(html, "<H3>/</H3>") {
		t.Error("root folder should not be written as a folder")
	}
}

func TestExportHTML_Golden(t *testing.T) {
	data := model.ExportData{
		Folders: []model.Folder{
			rootWith("f1"),
			folder("f1", "Development", model.RootFolderID, "f2"),
			folder("f2", "React", "f1"),
		},
		Bookmarks: []model.Bookmark{
			{
				ID:          "b1",
				Title:       "TanStack Router",
				URL:         "https://tanstack.com/router",
				FolderID:    "f2",
				Tags:        []string{"react", "router"},
				DateAdded:   time.Unix(1700000000, 0),
				DateUpdated: time.Unix(1700000100, 0),
			},
			{
				ID:        "b2",
				Title:     "Go & Friends",
				URL:       "https://go.dev/?a=1&b=2",
				FolderID:  model.RootFolderID,
				DateAdded: time.Unix(1700000000, 0),
			},
		},
	}

	golden.Assert(t, ExportHTML(data), "export.html.golden")
}

func TestExportHTML_EscapesSpecialCharacters(t *testing.T) {
	html := ExportHTML(model.ExportData{
		Folders: []model.Folder{model.NewRootFolder()},
		Bookmarks: []model.Bookmark{{
			ID:        "b1",
			Title:     "Test <script>alert('xss')</script>",
			URL:       "https://example.com?foo=bar&baz=qux",
			FolderID:  model.RootFolderID,
			Tags:      []string{`a"b`},
			DateAdded: time.Now(),
		}},
	})

	// Title should be escaped
	if strings.Contains(html, "<script>") {
		t.Error("script tag should be escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("expected escaped script tag")
	}

	// URL should be escaped
	if strings.Contains(html, "foo=bar&baz") {
		t.Error("ampersand should be escaped in URL")
	}
	if !strings.Contains(html, "foo=bar&amp;baz") {
		t.Error("expected escaped ampersand in URL")
	}
	if !strings.Contains(html, `TAGS="a&#34;b"`) {
		t.Error("expected escaped quote in tags")
	}
}

func TestExportHTML_OrphanedFoldersSkipped(t *testing.T) {
	html := ExportHTML(model.ExportData{
		Folders: []model.Folder{
			model.NewRootFolder(),
			folder("f9", "Orphan", "gone"),
		},
		Bookmarks: []model.Bookmark{{
			ID: "b1", Title: "Lost", URL: "https://lost.test", FolderID: "f9", DateAdded: time.Now(),
		}},
	})

	if strings.Contains(html, "Orphan") || strings.Contains(html, "Lost") {
		t.Error("items unreachable from root should not be exported")
	}
}

func TestExportHTML_DuplicateFolderIDsWrittenOnce(t *testing.T) {
	html := ExportHTML(model.ExportData{
		Folders: []model.Folder{
			rootWith("a"),
			folder("a", "A", model.RootFolderID),
			folder("a", "A", model.RootFolderID),
		},
	})

	if strings.Count(html, "<H3>A</H3>") != 1 {
		t.Errorf("expected folder once, got:\n%s", html)
	}
}
