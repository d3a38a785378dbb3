package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nikbrunner/bookmarkplus/internal/bookmarks"
	"github.com/nikbrunner/bookmarkplus/internal/culler"
	"github.com/nikbrunner/bookmarkplus/internal/exporter"
	"github.com/nikbrunner/bookmarkplus/internal/httpapi"
	"github.com/nikbrunner/bookmarkplus/internal/importer"
	"github.com/nikbrunner/bookmarkplus/internal/model"
	"github.com/nikbrunner/bookmarkplus/internal/version"
)

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func runAdd(ctx context.Context, a *app, args []string) error {
	fs := newFlags("add")
	folder := fs.String("folder", "", "folder id")
	tags := fs.String("tags", "", "comma separated tags")
	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		return errUsage
	}

	b, err := a.manager.CreateBookmark(ctx, model.NewBookmarkParams{
		URL:      fs.Arg(0),
		Title:    joinArgs(fs.Args()[1:]),
		FolderID: *folder,
		Tags:     splitTags(*tags),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Added %s (%s)\n", b.Title, b.ID)
	if b.OpenGraph != nil && b.OpenGraph.Description != "" {
		fmt.Printf("  %s\n", b.OpenGraph.Description)
	}
	return nil
}

func runRemove(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	ok, err := a.manager.DeleteBookmark(ctx, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", bookmarks.ErrBookmarkNotFound, args[0])
	}
	fmt.Println("Deleted", args[0])
	return nil
}

func runList(_ context.Context, a *app, args []string) error {
	id := model.RootFolderID
	if len(args) > 0 {
		id = args[0]
	}
	if _, err := a.manager.Folder(id); err != nil {
		return err
	}
	printItems(os.Stdout, a.manager.FolderContents(id))
	return nil
}

func runTree(_ context.Context, a *app, args []string) error {
	id := model.RootFolderID
	if len(args) > 0 {
		id = args[0]
	}
	tree := a.manager.FolderHierarchy(id)
	if tree == nil {
		return fmt.Errorf("%w: %s", bookmarks.ErrFolderNotFound, id)
	}
	printTree(os.Stdout, tree, 0)
	return nil
}

func runMkdir(ctx context.Context, a *app, args []string) error {
	fs := newFlags("mkdir")
	parent := fs.String("parent", "", "parent folder id")
	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		return errUsage
	}
	f, err := a.manager.CreateFolder(ctx, joinArgs(fs.Args()), *parent)
	if err != nil {
		return err
	}
	fmt.Printf("Created %s (%s)\n", f.Name, f.ID)
	return nil
}

func runRmdir(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	ok, err := a.manager.DeleteFolder(ctx, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("cannot delete folder %s: not found or root", args[0])
	}
	fmt.Println("Deleted folder", args[0])
	return nil
}

func runTag(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	return a.manager.AddTagToBookmark(ctx, args[0], joinArgs(args[1:]))
}

func runUntag(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	return a.manager.RemoveTagFromBookmark(ctx, args[0], joinArgs(args[1:]))
}

func runTags(_ context.Context, a *app, _ []string) error {
	for _, t := range a.manager.Tags() {
		fmt.Println(t)
	}
	return nil
}

func runSearch(_ context.Context, a *app, args []string) error {
	query := joinArgs(args)
	if query == "" {
		return errUsage
	}
	results := a.manager.GlobalSearch(query)
	if len(results) == 0 {
		fmt.Printf("No bookmarks found for '%s'\n", query)
		return nil
	}
	for _, r := range results {
		fmt.Printf("%-11s %s\n", "["+r.MatchType.String()+"]", r.Bookmark.Title)
		fmt.Printf("            %s  %s\n", r.Bookmark.URL, r.Bookmark.ID)
	}
	return nil
}

func runExport(_ context.Context, a *app, args []string) error {
	if len(args) > 1 {
		return errUsage
	}
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		var err error
		if path, err = exporter.DefaultExportPath("json", time.Now()); err != nil {
			return fmt.Errorf("default export path: %w", err)
		}
	}

	data := a.manager.Export()
	if err := exporter.WriteFile(path, data); err != nil {
		return err
	}
	fmt.Printf("Exported %d bookmarks, %d folders to %s\n", len(data.Bookmarks), len(data.Folders), path)
	return nil
}

func runImport(ctx context.Context, a *app, args []string) error {
	fs := newFlags("import")
	merge := fs.Bool("merge", false, "keep existing data")
	noVersionCheck := fs.Bool("no-version-check", false, "skip the schema version check")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}
	path := fs.Arg(0)
	opts := model.ImportOptions{Merge: *merge, ValidateVersion: !*noVersionCheck}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var result model.ImportResult
	switch importer.DetectFormat(path) {
	case importer.FormatNetscape:
		doc, err := importer.ParseNetscape(bytes.NewReader(raw), time.Now())
		if err != nil {
			return err
		}
		result = a.manager.ImportDocument(ctx, doc, opts)
	case importer.FormatHomepage:
		doc, err := importer.ParseHomepage(bytes.NewReader(raw), time.Now())
		if err != nil {
			return err
		}
		result = a.manager.ImportDocument(ctx, doc, opts)
	default:
		result = a.manager.Import(ctx, raw, opts)
	}

	if !result.Success {
		return fmt.Errorf("import failed: %s", result.Error)
	}
	fmt.Printf("Imported %d bookmarks, %d folders, %d tags (version %s)",
		result.Imported.Bookmarks, result.Imported.Folders, result.Imported.Tags, result.Version)
	if result.Skipped > 0 {
		fmt.Printf(" (%d duplicates skipped)", result.Skipped)
	}
	fmt.Println()
	return nil
}

func runRefreshFavicons(ctx context.Context, a *app, _ []string) error {
	n, err := a.manager.RefreshFavicons(ctx, a.cfg.RefreshConcurrency, func(completed, total int) {
		fmt.Fprintf(os.Stderr, "\rRefreshing favicons %d/%d", completed, total)
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}
	fmt.Printf("Refreshed %d favicons\n", n)
	return nil
}

func runCull(ctx context.Context, a *app, args []string) error {
	fs := newFlags("cull")
	del := fs.Bool("delete", false, "delete dead bookmarks")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errUsage
	}

	checker := culler.NewChecker(culler.Options{
		Timeout:        a.cfg.CullTimeout.Std(),
		Concurrency:    a.cfg.CullConcurrency,
		ExcludeDomains: a.cfg.CullExcludeDomains,
		Logger:         a.log,
	})
	results := checker.Check(ctx, a.manager.Bookmarks(), func(completed, total int) {
		fmt.Fprintf(os.Stderr, "\rChecking %d/%d", completed, total)
	})
	fmt.Fprintln(os.Stderr)

	printCullResults(os.Stdout, results)

	if !*del {
		return nil
	}
	deleted := 0
	for _, b := range culler.DeadBookmarks(results) {
		ok, err := a.manager.DeleteBookmark(ctx, b.ID)
		if err != nil {
			return err
		}
		if ok {
			deleted++
		}
	}
	fmt.Printf("Deleted %d dead bookmarks\n", deleted)
	return nil
}

func runServe(ctx context.Context, a *app, args []string) error {
	fs := newFlags("serve")
	addr := fs.String("addr", a.cfg.ListenAddr, "listen address")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errUsage
	}

	d := httpapi.DefaultDeps(a.manager, a.log)
	d.RefreshConcurrency = a.cfg.RefreshConcurrency
	srv := httpapi.New(*addr, d)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func printVersion() {
	fmt.Printf("bmp %s (commit %s, built %s, %s)\n",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)
	fmt.Printf("export schema %s\n", version.SchemaVersion)
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return model.NormalizeTags(strings.Split(s, ","))
}
