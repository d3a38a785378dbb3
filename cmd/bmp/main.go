package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nikbrunner/bookmarkplus/internal/bookmarks"
	"github.com/nikbrunner/bookmarkplus/internal/config"
	"github.com/nikbrunner/bookmarkplus/internal/favicon"
	"github.com/nikbrunner/bookmarkplus/internal/logger"
	"github.com/nikbrunner/bookmarkplus/internal/opengraph"
	"github.com/nikbrunner/bookmarkplus/internal/storage"
)

var errUsage = errors.New("usage")

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"add":              runAdd,
	"rm":               runRemove,
	"ls":               runList,
	"tree":             runTree,
	"mkdir":            runMkdir,
	"rmdir":            runRmdir,
	"tag":              runTag,
	"untag":            runUntag,
	"tags":             runTags,
	"search":           runSearch,
	"export":           runExport,
	"import":           runImport,
	"refresh-favicons": runRefreshFavicons,
	"cull":             runCull,
	"serve":            runServe,
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printHelp()
		return
	}

	switch args[0] {
	case "help", "--help", "-h":
		printHelp()
		return
	case "version", "--version":
		printVersion()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		// Anything else is a quick search query.
		name, cmd = "", runQuickOpen
	} else {
		args = args[1:]
	}

	a, err := newApp(ctx, name == "serve")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting: %v\n", err)
		os.Exit(1)
	}

	err = cmd(ctx, a, args)
	a.close()
	if errors.Is(err, errUsage) {
		fmt.Fprintf(os.Stderr, "Usage: bmp %s\n", usage[name])
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds everything a subcommand needs.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	store   storage.Store
	manager *bookmarks.Manager
}

func newApp(ctx context.Context, serving bool) (*app, error) {
	path := os.Getenv("BMP_CONFIG")
	if path == "" {
		path = config.DefaultConfigFilePath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// One-shot commands stay quiet unless a level is asked for explicitly.
	level := cfg.LogLevel
	if !serving && os.Getenv("BMP_LOG_LEVEL") == "" {
		level = "warn"
	}
	log := logger.New(level, cfg.PrettyLog())

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Backend, err)
	}

	m := bookmarks.New(store, bookmarks.Options{
		Favicons: favicon.NewResolver(favicon.Options{
			FetchTimeout: cfg.FetchTimeout.Std(),
			Logger:       log,
		}),
		Metadata: opengraph.NewExtractor(opengraph.Options{
			Timeout:         cfg.OpenGraphTimeout.Std(),
			ExcerptFallback: cfg.ExcerptFallback,
			Logger:          log,
		}),
		Logger:            log,
		FaviconRefreshAge: cfg.FaviconRefreshAge.Std(),
	})
	m.Init(ctx)

	return &app{cfg: cfg, log: log, store: store, manager: m}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("closing storage", logger.Error(err))
	}
	_ = a.log.Sync()
}

var usage = map[string]string{
	"":                 "<query>",
	"add":              "add [--folder ID] [--tags a,b] <url> [title]",
	"rm":               "rm <bookmark-id>",
	"ls":               "ls [folder-id]",
	"tree":             "tree [folder-id]",
	"mkdir":            "mkdir [--parent ID] <name>",
	"rmdir":            "rmdir <folder-id>",
	"tag":              "tag <bookmark-id> <tag>",
	"untag":            "untag <bookmark-id> <tag>",
	"tags":             "tags",
	"search":           "search <query>",
	"export":           "export [path]",
	"import":           "import [--merge] [--no-version-check] <file>",
	"refresh-favicons": "refresh-favicons",
	"cull":             "cull [--delete]",
	"serve":            "serve [--addr HOST:PORT]",
}

func printHelp() {
	help := `bmp - personal bookmark organizer

Usage:
  bmp <query>                      Fuzzy search titles, pick one, open it
  bmp add [--folder ID] [--tags a,b] <url> [title]
                                   Save a bookmark (favicon and preview are fetched)
  bmp rm <id>                      Delete a bookmark
  bmp ls [folder-id]               List a folder (root by default)
  bmp tree [folder-id]             Show the folder hierarchy
  bmp mkdir [--parent ID] <name>   Create a folder
  bmp rmdir <folder-id>            Delete a folder and the bookmarks directly in it
  bmp tag <id> <tag>               Tag a bookmark
  bmp untag <id> <tag>             Remove a tag from a bookmark
  bmp tags                         List all tags
  bmp search <query>               Search titles, tags, descriptions and URLs
  bmp export [path]                Export to JSON (or Netscape HTML for .html)
  bmp import [--merge] [--no-version-check] <file>
                                   Import .json, Netscape .html or Homepage .yaml
  bmp refresh-favicons             Resolve every favicon again
  bmp cull [--delete]              Find bookmarks whose pages are gone
  bmp serve [--addr HOST:PORT]     Serve the JSON API for the browser extension
  bmp version                      Show version information
  bmp help                         Show this help

Picker keys:
  ↑/↓ ctrl+k/ctrl+j   Move
  enter               Open in browser
  ctrl+y              Copy URL to clipboard
  esc                 Cancel

Configuration:
  ~/.config/bmp/config.json (or $BMP_CONFIG), .env and BMP_* variables
`
	fmt.Print(help)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
