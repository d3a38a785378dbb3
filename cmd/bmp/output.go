package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/nikbrunner/bookmarkplus/internal/culler"
	"github.com/nikbrunner/bookmarkplus/internal/model"
)

func printItems(w io.Writer, items []model.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}
	for _, it := range items {
		if it.IsFolder() {
			fmt.Fprintf(w, "%s/  %s\n", it.Folder.Name, it.Folder.ID)
			continue
		}
		b := it.Bookmark
		fmt.Fprintf(w, "%s  %s  %s", b.Title, b.URL, b.ID)
		if len(b.Tags) > 0 {
			fmt.Fprintf(w, "  #%s", strings.Join(b.Tags, " #"))
		}
		fmt.Fprintln(w)
	}
}

func printTree(w io.Writer, tree *model.FolderTree, depth int) {
	indent := strings.Repeat("  ", depth)
	name := tree.Folder.Name
	if !tree.Folder.IsRoot() {
		name += "/"
	}
	fmt.Fprintf(w, "%s%s\n", indent, name)
	for _, child := range tree.ChildFolders {
		printTree(w, child, depth+1)
	}
	for _, b := range tree.Bookmarks {
		fmt.Fprintf(w, "%s  %s\n", indent, b.Title)
	}
}

func printCullResults(w io.Writer, results []culler.Result) {
	var dead, unreachable int
	for _, r := range results {
		switch r.Status {
		case culler.Dead:
			dead++
			fmt.Fprintf(w, "dead         %d  %s  %s\n", r.StatusCode, r.Bookmark.Title, r.Bookmark.URL)
		case culler.Unreachable:
			unreachable++
			fmt.Fprintf(w, "unreachable  %s  %s  %s\n", r.Error, r.Bookmark.Title, r.Bookmark.URL)
		}
	}
	fmt.Fprintf(w, "%d checked, %d dead, %d unreachable\n", len(results), dead, unreachable)
}
