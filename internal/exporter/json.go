// Package exporter writes the dataset in transferable formats.
package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nikbrunner/bookmarkplus/internal/model"
)

// DefaultExportPath returns the default export file path for ext
// ("json" or "html"). Format: ~/Downloads/bookmark+-export-YYYY-MM-DD.<ext>
func DefaultExportPath(ext string, now time.Time) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmark+-export-%s.%s", now.Format("2006-01-02"), ext)
	return filepath.Join(home, "Downloads", filename), nil
}

// WriteJSON writes data as an indented JSON export document.
func WriteJSON(w io.Writer, data model.ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// WriteFile writes data to path, as Netscape HTML when path ends in .html
// or .htm and as JSON otherwise. Parent directories are created.
func WriteFile(path string, data model.ExportData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch filepath.Ext(path) {
	case ".html", ".htm":
		if _, err := io.WriteString(f, ExportHTML(data)); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
	default:
		if err := WriteJSON(f, data); err != nil {
			return err
		}
	}
	return f.Close()
}
