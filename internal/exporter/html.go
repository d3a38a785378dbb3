package exporter

import (
	"fmt"
	"html"
	"strings"

	"github.com/nikbrunner/bookmarkplus/internal/model"
)

// ExportHTML renders a document as Netscape bookmark HTML. Children of the
// root folder are written at the top level.
func ExportHTML(data model.ExportData) string {
	store := &model.Store{Folders: data.Folders, Bookmarks: data.Bookmarks, Tags: data.Tags}

	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	writeItems(&b, store, model.RootFolderID, 1, map[string]bool{model.RootFolderID: true})

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

// writeItems recursively writes folders and bookmarks for a given parent.
func writeItems(b *strings.Builder, store *model.Store, parentID string, indent int, visited map[string]bool) {
	prefix := strings.Repeat("    ", indent)

	for _, folder := range store.GetFoldersInFolder(parentID) {
		if visited[folder.ID] {
			continue
		}
		visited[folder.ID] = true

		fmt.Fprintf(b, "%s<DT><H3>%s</H3>\n", prefix, html.EscapeString(folder.Name))
		fmt.Fprintf(b, "%s<DL><p>\n", prefix)
		writeItems(b, store, folder.ID, indent+1, visited)
		fmt.Fprintf(b, "%s</DL><p>\n", prefix)
	}

	for _, bookmark := range store.GetBookmarksInFolder(parentID) {
		var attrs strings.Builder
		fmt.Fprintf(&attrs, " ADD_DATE=\"%d\"", bookmark.DateAdded.Unix())
		if !bookmark.DateUpdated.IsZero() {
			fmt.Fprintf(&attrs, " LAST_MODIFIED=\"%d\"", bookmark.DateUpdated.Unix())
		}
		if len(bookmark.Tags) > 0 {
			fmt.Fprintf(&attrs, " TAGS=\"%s\"", html.EscapeString(strings.Join(bookmark.Tags, ",")))
		}
		fmt.Fprintf(b,
			"%s<DT><A HREF=\"%s\"%s>%s</A>\n",
			prefix,
			html.EscapeString(bookmark.URL),
			attrs.String(),
			html.EscapeString(bookmark.Title),
		)
	}
}
