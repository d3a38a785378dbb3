package model

import "time"

// ExportData is the transferable document holding the whole dataset.
type ExportData struct {
	Bookmarks  []Bookmark `json:"bookmarks"`
	Folders    []Folder   `json:"folders"`
	Tags       []string   `json:"tags"`
	ExportDate time.Time  `json:"exportDate"`
	Version    string     `json:"version"`
	AppVersion string     `json:"appVersion"`
}

// ImportOptions controls how a document is applied.
type ImportOptions struct {
	Merge           bool `json:"merge"`
	ValidateVersion bool `json:"validateVersion"`
}

// DefaultImportOptions replaces existing data and checks the version.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{Merge: false, ValidateVersion: true}
}

// ImportCounts reports how many entities the document carried.
type ImportCounts struct {
	Bookmarks int `json:"bookmarks"`
	Folders   int `json:"folders"`
	Tags      int `json:"tags"`
}

// ImportResult describes the outcome of an import.
type ImportResult struct {
	Success  bool          `json:"success"`
	Imported *ImportCounts `json:"imported,omitempty"`
	Skipped  int           `json:"skipped,omitempty"` // merge only: bookmarks dropped for a duplicate URL
	Version  string        `json:"version,omitempty"`
	Error    string        `json:"error,omitempty"`
}
