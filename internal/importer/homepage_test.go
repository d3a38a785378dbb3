package importer_test

import (
	"strings"
	"testing"

	"github.com/nikbrunner/bookmarkplus/internal/importer"
	"github.com/nikbrunner/bookmarkplus/internal/model"
)

const homepageYAML = `
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
          icon: https://github.com/favicon.ico
    - Secret:
        - abbr: SE
          href: https://{{HOMEPAGE_VAR_HOST}}/secret
- Social:
    - Reddit:
        - icon: reddit.png
          href: https://reddit.com/
    - Empty:
        - abbr: EM
`

func TestParseHomepage(t *testing.T) {
	doc, err := importer.ParseHomepage(strings.NewReader(homepageYAML), importTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Folders) != 3 {
		t.Fatalf("expected root plus 2 category folders, got %d", len(doc.Folders))
	}
	dev := findFolder(doc.Folders, "Developer")
	social := findFolder(doc.Folders, "Social")
	if dev == nil || social == nil {
		t.Fatal("expected Developer and Social folders")
	}
	if dev.Parent() != model.RootFolderID || social.Parent() != model.RootFolderID {
		t.Error("categories should live under root")
	}

	if len(doc.Bookmarks) != 3 {
		t.Fatalf("expected 3 bookmarks, got %d", len(doc.Bookmarks))
	}

	gh := findBookmark(doc.Bookmarks, "Github")
	if gh == nil || gh.FolderID != dev.ID {
		t.Fatal("Github should be in Developer")
	}
	if strings.Join(gh.Tags, ",") != "GH" {
		t.Errorf("expected abbr as tag, got %v", gh.Tags)
	}
	if gh.Favicon != "https://github.com/favicon.ico" {
		t.Errorf("expected icon URL kept, got %q", gh.Favicon)
	}

	secret := findBookmark(doc.Bookmarks, "Secret")
	if secret == nil || secret.URL != `https://""/secret` {
		t.Errorf("expected template variable stripped, got %+v", secret)
	}

	reddit := findBookmark(doc.Bookmarks, "Reddit")
	if reddit == nil || reddit.Favicon != "" || len(reddit.Tags) != 0 {
		t.Errorf("expected non-URL icon dropped and no tags, got %+v", reddit)
	}
	if !reddit.DateAdded.Equal(importTime) {
		t.Errorf("expected import time, got %v", reddit.DateAdded)
	}
}

func TestParseHomepage_Invalid(t *testing.T) {
	_, err := importer.ParseHomepage(strings.NewReader("- [unclosed"), importTime)
	if err == nil {
		t.Fatal("expected parse error")
	}
}
