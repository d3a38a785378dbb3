package importer

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nikbrunner/bookmarkplus/internal/model"
)

// HomepageEntry is the property block of one bookmark in a Homepage
// bookmarks.yaml.
type HomepageEntry struct {
	Icon string `yaml:"icon"`
	Abbr string `yaml:"abbr"`
	Href string `yaml:"href"`
}

// HomepageCategory maps a category name to its bookmarks. The YAML shape is
// - Category: [ - Name: [ { icon, abbr, href } ] ]
type HomepageCategory map[string][]map[string][]HomepageEntry

// HomepageConfig is the root of a Homepage bookmarks.yaml.
type HomepageConfig []HomepageCategory

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// ParseHomepage reads a Homepage dashboard bookmarks.yaml. Each category
// becomes a folder under root; the abbreviation becomes a tag.
func ParseHomepage(r io.Reader, now time.Time) (model.ExportData, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.ExportData{}, fmt.Errorf("read bookmarks yaml: %w", err)
	}

	// Strip Homepage template variables ({{HOMEPAGE_VAR_...}})
	data = templateVar.ReplaceAll(data, []byte(`""`))

	var config HomepageConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return model.ExportData{}, fmt.Errorf("parse bookmarks yaml: %w", err)
	}

	b := newBuilder(now)
	for _, category := range config {
		for categoryName, entries := range category {
			folderID := b.folder(categoryName, model.RootFolderID)
			for _, group := range entries {
				for name, props := range group {
					for _, p := range props {
						href := strings.TrimSpace(p.Href)
						if href == "" {
							continue
						}
						title := strings.TrimSpace(name)
						if title == "" {
							title = href
						}
						bm := b.bookmark(title, href, folderID, now)
						if bm == nil {
							continue
						}
						bm.Tags = model.NormalizeTags([]string{p.Abbr})
						if strings.HasPrefix(p.Icon, "http://") || strings.HasPrefix(p.Icon, "https://") {
							bm.Favicon = p.Icon
						}
					}
				}
			}
		}
	}
	return b.document(), nil
}
