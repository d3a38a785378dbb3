package bookmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/nikbrunner/bookmarkplus/internal/logger"
	"github.com/nikbrunner/bookmarkplus/internal/model"
	"github.com/nikbrunner/bookmarkplus/internal/version"
)

// Export snapshots the whole dataset as a transferable document.
func (m *Manager) Export() model.ExportData {
	m.mu.Lock()
	defer m.mu.Unlock()

	folders := make([]model.Folder, len(m.data.Folders))
	for i, f := range m.data.Folders {
		folders[i] = f.Clone()
	}

	return model.ExportData{
		Bookmarks:  cloneBookmarks(m.data.Bookmarks),
		Folders:    folders,
		Tags:       union(nil, m.data.Tags),
		ExportDate: m.now().UTC(),
		Version:    version.SchemaVersion,
		AppVersion: version.Version,
	}
}

// document is an import document where absent collections stay nil, so a
// replace import only overwrites what the document actually carries.
type document struct {
	Bookmarks *[]model.Bookmark `json:"bookmarks"`
	Folders   *[]model.Folder   `json:"folders"`
	Tags      *[]string         `json:"tags"`
	Version   string            `json:"version"`
}

// Import applies a JSON export document. The version gate and structural
// validation run before anything changes, so a failed import leaves the
// current state untouched.
func (m *Manager) Import(ctx context.Context, raw []byte, opts model.ImportOptions) model.ImportResult {
	var head map[string]json.RawMessage
	if err := json.Unmarshal(raw, &head); err != nil {
		return failed(fmt.Errorf("%w: %v", ErrInvalidImport, err))
	}
	if head == nil {
		return failed(fmt.Errorf("%w: document is empty", ErrInvalidImport))
	}
	if rawVersion, ok := head["version"]; ok && opts.ValidateVersion && string(rawVersion) != "null" {
		var v string
		if err := json.Unmarshal(rawVersion, &v); err != nil {
			return failed(fmt.Errorf("%w: version must be a string", ErrInvalidImport))
		}
		if err := checkVersion(v); err != nil {
			return failed(err)
		}
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return failed(fmt.Errorf("%w: %v", ErrInvalidImport, err))
	}
	return m.apply(ctx, doc, opts)
}

// ImportDocument applies an already decoded document, such as one produced
// by a browser bookmark file parser.
func (m *Manager) ImportDocument(ctx context.Context, data model.ExportData, opts model.ImportOptions) model.ImportResult {
	if opts.ValidateVersion && data.Version != "" {
		if err := checkVersion(data.Version); err != nil {
			return failed(err)
		}
	}
	doc := document{
		Bookmarks: &data.Bookmarks,
		Folders:   &data.Folders,
		Tags:      &data.Tags,
		Version:   data.Version,
	}
	return m.apply(ctx, doc, opts)
}

func (m *Manager) apply(ctx context.Context, doc document, opts model.ImportOptions) model.ImportResult {
	if err := validate(doc); err != nil {
		return failed(err)
	}

	var incomingBookmarks []model.Bookmark
	if doc.Bookmarks != nil {
		incomingBookmarks = make([]model.Bookmark, len(*doc.Bookmarks))
		for i, b := range *doc.Bookmarks {
			b = b.Clone()
			normalizeLoaded(&b)
			incomingBookmarks[i] = b
		}
	}
	var incomingFolders []model.Folder
	if doc.Folders != nil {
		incomingFolders = make([]model.Folder, len(*doc.Folders))
		for i, f := range *doc.Folders {
			f = f.Clone()
			f.Kind = model.KindFolder
			incomingFolders[i] = f
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	skipped := 0
	if opts.Merge {
		skipped = m.merge(doc, incomingBookmarks, incomingFolders)
	} else {
		m.replace(doc, incomingBookmarks, incomingFolders)
	}
	if !m.data.HasRoot() {
		m.data.Folders = append([]model.Folder{model.NewRootFolder()}, m.data.Folders...)
	}
	m.data.LinkChildren()
	m.data.Tags = union(m.data.Tags, m.data.ReferencedTags())

	if err := m.saveAll(ctx); err != nil {
		return failed(err)
	}

	result := model.ImportResult{
		Success: true,
		Imported: &model.ImportCounts{
			Bookmarks: lenOf(doc.Bookmarks),
			Folders:   lenOf(doc.Folders),
			Tags:      lenOf(doc.Tags),
		},
		Skipped: skipped,
		Version: doc.Version,
	}
	if result.Version == "" {
		result.Version = "unknown"
	}

	m.log.Info("import applied",
		logger.Bool("merge", opts.Merge),
		logger.Int("bookmarks", result.Imported.Bookmarks),
		logger.Int("folders", result.Imported.Folders),
		logger.Int("skipped", skipped))
	return result
}

func (m *Manager) replace(doc document, bookmarks []model.Bookmark, folders []model.Folder) {
	if doc.Bookmarks != nil {
		m.data.Bookmarks = bookmarks
	}
	if doc.Folders != nil {
		m.data.Folders = folders
	}
	if doc.Tags != nil {
		m.data.Tags = union(nil, *doc.Tags)
	}
}

// merge appends entities whose ids are new. Incoming bookmarks whose URL is
// already taken are skipped and counted.
func (m *Manager) merge(doc document, bookmarks []model.Bookmark, folders []model.Folder) int {
	skipped := 0
	for _, b := range bookmarks {
		if m.data.GetBookmarkByID(b.ID) != nil {
			continue
		}
		if m.data.HasBookmarkURL(b.URL) {
			skipped++
			continue
		}
		m.data.Bookmarks = append(m.data.Bookmarks, b)
	}
	for _, f := range folders {
		if m.data.GetFolderByID(f.ID) == nil {
			m.data.Folders = append(m.data.Folders, f)
		}
	}
	if doc.Tags != nil {
		m.data.Tags = union(m.data.Tags, *doc.Tags)
	}
	return skipped
}

func validate(doc document) error {
	if doc.Bookmarks != nil {
		for i, b := range *doc.Bookmarks {
			if b.ID == "" || b.Title == "" || b.URL == "" {
				return fmt.Errorf("%w: bookmark %d needs id, title and url", ErrInvalidImport, i)
			}
		}
	}
	if doc.Folders != nil {
		for i, f := range *doc.Folders {
			if f.ID == "" || f.Name == "" {
				return fmt.Errorf("%w: folder %d needs id and name", ErrInvalidImport, i)
			}
		}
	}
	return nil
}

// checkVersion rejects documents whose major version is newer than ours.
func checkVersion(v string) error {
	if majorOf(v) > majorOf(version.SchemaVersion) {
		return fmt.Errorf("%w: document %s, supported %s", ErrVersionTooNew, v, version.SchemaVersion)
	}
	return nil
}

// majorOf reads the first dot-separated component. Missing or non-numeric
// components count as 0.
func majorOf(v string) int {
	first, _, _ := strings.Cut(v, ".")
	n, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0
	}
	return n
}

func lenOf[T any](s *[]T) int {
	if s == nil {
		return 0
	}
	return len(*s)
}

func failed(err error) model.ImportResult {
	return model.ImportResult{Success: false, Error: err.Error()}
}
