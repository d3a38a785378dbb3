package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nikbrunner/bookmarkplus/internal/model"
	"github.com/sahilm/fuzzy"
)

// MatchType names the bookmark field a global search hit came from.
// Lower values rank first.
type MatchType int

const (
	MatchTitle MatchType = iota
	MatchTag
	MatchDescription
	MatchURL
)

func (m MatchType) String() string {
	switch m {
	case MatchTitle:
		return "title"
	case MatchTag:
		return "tag"
	case MatchDescription:
		return "description"
	case MatchURL:
		return "url"
	}
	return "unknown"
}

// MarshalText lets MatchType travel as its name in JSON.
func (m MatchType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MatchType) UnmarshalText(text []byte) error {
	for _, t := range []MatchType{MatchTitle, MatchTag, MatchDescription, MatchURL} {
		if t.String() == string(text) {
			*m = t
			return nil
		}
	}
	return fmt.Errorf("unknown match type %q", text)
}

// Result is one global search hit.
type Result struct {
	Bookmark    model.Bookmark `json:"bookmark"`
	MatchType   MatchType      `json:"matchType"`
	MatchedText string         `json:"matchedText"`
}

// Global runs a case-insensitive substring search over bookmarks. Each
// bookmark contributes at most one result, for the first field that matches
// in the order title, tag, description, URL. Results are grouped by that
// order and keep the input order within a group. A blank query returns nil.
func Global(bookmarks []model.Bookmark, query string) []Result {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	results := []Result{}
	for _, b := range bookmarks {
		if r, ok := match(b, q); ok {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchType < results[j].MatchType
	})
	return results
}

func match(b model.Bookmark, q string) (Result, bool) {
	if strings.Contains(strings.ToLower(b.Title), q) {
		return Result{Bookmark: b.Clone(), MatchType: MatchTitle, MatchedText: b.Title}, true
	}
	for _, tag := range b.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return Result{Bookmark: b.Clone(), MatchType: MatchTag, MatchedText: tag}, true
		}
	}
	if b.OpenGraph != nil && strings.Contains(strings.ToLower(b.OpenGraph.Description), q) {
		return Result{Bookmark: b.Clone(), MatchType: MatchDescription, MatchedText: b.OpenGraph.Description}, true
	}
	if strings.Contains(strings.ToLower(b.URL), q) {
		return Result{Bookmark: b.Clone(), MatchType: MatchURL, MatchedText: b.URL}, true
	}
	return Result{}, false
}

// ByTags returns bookmarks carrying any of tags. An empty filter returns all.
func ByTags(bookmarks []model.Bookmark, tags []string) []model.Bookmark {
	var result []model.Bookmark
	for _, b := range bookmarks {
		if len(tags) == 0 || hasAny(b, tags) {
			result = append(result, b.Clone())
		}
	}
	return result
}

func hasAny(b model.Bookmark, tags []string) bool {
	for _, tag := range tags {
		if b.HasTag(tag) {
			return true
		}
	}
	return false
}

// ByTitle returns bookmarks whose title contains query, ignoring case.
// An empty query returns all.
func ByTitle(bookmarks []model.Bookmark, query string) []model.Bookmark {
	q := strings.ToLower(query)
	var result []model.Bookmark
	for _, b := range bookmarks {
		if q == "" || strings.Contains(strings.ToLower(b.Title), q) {
			result = append(result, b.Clone())
		}
	}
	return result
}

// FuzzyResult represents a fuzzy search match.
type FuzzyResult struct {
	Bookmark       model.Bookmark `json:"bookmark"`
	MatchedIndexes []int          `json:"matchedIndexes"`
	Score          int            `json:"score"`
}

// bookmarkTitles implements fuzzy.Source for a bookmark slice.
type bookmarkTitles []model.Bookmark

func (bt bookmarkTitles) String(i int) string {
	return bt[i].Title
}

func (bt bookmarkTitles) Len() int {
	return len(bt)
}

// Fuzzy searches bookmarks by title using fuzzy matching.
// Returns results sorted by match score (best first).
func Fuzzy(bookmarks []model.Bookmark, query string) []FuzzyResult {
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, bookmarkTitles(bookmarks))

	results := make([]FuzzyResult, len(matches))
	for i, m := range matches {
		results[i] = FuzzyResult{
			Bookmark:       bookmarks[m.Index].Clone(),
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
