package model

import (
	"slices"
	"strings"
	"time"
)

// Kind discriminates the two item variants stored by the organizer.
type Kind string

const (
	KindBookmark Kind = "bookmark"
	KindFolder   Kind = "folder"
)

// OpenGraph holds the social-preview metadata extracted from a page.
type OpenGraph struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"siteName,omitempty"`
	Type        string `json:"type,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Bookmark represents a saved URL with metadata.
type Bookmark struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	URL            string     `json:"url"`
	FolderID       string     `json:"folderId"`
	Tags           []string   `json:"tags"`
	Favicon        string     `json:"favicon"`
	OpenGraph      *OpenGraph `json:"openGraph,omitempty"`
	HasRichPreview bool       `json:"hasRichPreview"`
	DateAdded      time.Time  `json:"dateAdded"`
	DateUpdated    time.Time  `json:"dateUpdated"`
	VisitCount     int        `json:"visitCount"`
	Kind           Kind       `json:"type"`
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Title    string
	URL      string
	FolderID string
	Tags     []string
}

// NewBookmark creates a Bookmark with generated UUID and timestamps.
// Favicon and OpenGraph are left for the caller to fill in.
func NewBookmark(params NewBookmarkParams, now time.Time) Bookmark {
	folderID := params.FolderID
	if folderID == "" {
		folderID = RootFolderID
	}

	return Bookmark{
		ID:          GenerateUUID(),
		Title:       params.Title,
		URL:         params.URL,
		FolderID:    folderID,
		Tags:        NormalizeTags(params.Tags),
		DateAdded:   now,
		DateUpdated: now,
		VisitCount:  0,
		Kind:        KindBookmark,
	}
}

// RefreshPreview recomputes HasRichPreview from the OpenGraph bundle.
func (b *Bookmark) RefreshPreview() {
	b.HasRichPreview = b.OpenGraph != nil &&
		(b.OpenGraph.Image != "" || b.OpenGraph.Description != "")
}

// HasTag reports whether the bookmark carries tag.
func (b *Bookmark) HasTag(tag string) bool {
	return slices.Contains(b.Tags, tag)
}

// Clone returns a deep copy so callers can't mutate the canonical bookmark.
func (b Bookmark) Clone() Bookmark {
	b.Tags = slices.Clone(b.Tags)
	if b.Tags == nil {
		b.Tags = []string{}
	}
	if b.OpenGraph != nil {
		og := *b.OpenGraph
		b.OpenGraph = &og
	}
	return b
}

// NormalizeTags trims tags, drops empty ones and removes duplicates
// while keeping the first occurrence order.
func NormalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(result, tag) {
			continue
		}
		result = append(result, tag)
	}
	return result
}
