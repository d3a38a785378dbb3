package main

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"

	"github.com/nikbrunner/bookmarkplus/internal/logger"
	"github.com/nikbrunner/bookmarkplus/internal/model"
	"github.com/nikbrunner/bookmarkplus/internal/picker"
)

// runQuickOpen fuzzy searches titles, lets the user pick one and opens or
// copies it. A single match is opened without asking.
func runQuickOpen(ctx context.Context, a *app, args []string) error {
	query := joinArgs(args)
	results := a.manager.FuzzySearch(query)
	if len(results) == 0 {
		fmt.Printf("No bookmarks found for '%s'\n", query)
		return nil
	}

	var (
		selected *model.Bookmark
		action   = picker.ActionOpen
	)
	if len(results) == 1 {
		selected = &results[0].Bookmark
		fmt.Printf("Opening: %s\n", selected.Title)
	} else {
		var err error
		selected, action, err = picker.Run(a.manager.Bookmarks(), query)
		if err != nil {
			return fmt.Errorf("running picker: %w", err)
		}
	}
	if selected == nil {
		return nil
	}

	if action == picker.ActionCopy {
		if err := clipboard.WriteAll(selected.URL); err != nil {
			return fmt.Errorf("copying URL: %w", err)
		}
		fmt.Printf("Copied: %s\n", selected.URL)
		return nil
	}

	if _, err := a.manager.UpdateBookmarkOnVisit(ctx, selected.ID); err != nil {
		a.log.Warn("recording visit", logger.String("id", selected.ID), logger.Error(err))
	}
	return openURL(selected.URL)
}

// openURL opens a URL in the default browser.
func openURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
