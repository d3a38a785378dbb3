// Package importer turns third-party bookmark files into import documents.
package importer

import (
	"path/filepath"
	"strings"
)

// Format is a bookmark file format understood by the CLI import command.
type Format string

const (
	FormatJSON     Format = "json"
	FormatNetscape Format = "netscape"
	FormatHomepage Format = "homepage"
)

// DetectFormat picks a format from the file extension. Unknown extensions
// are treated as JSON export documents.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatNetscape
	case ".yaml", ".yml":
		return FormatHomepage
	default:
		return FormatJSON
	}
}
