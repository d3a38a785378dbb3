package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nikbrunner/bookmarkplus/internal/model"
	"golang.org/x/net/html"
)

// ParseNetscape parses Netscape bookmark HTML into an import document.
// Folders hang off the root folder, which is part of the result. Repeated
// URLs keep their first occurrence. now stamps bookmarks without ADD_DATE.
func ParseNetscape(r io.Reader, now time.Time) (model.ExportData, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return model.ExportData{}, err
	}

	b := newBuilder(now)

	// Track current folder stack for hierarchy
	folderStack := []string{model.RootFolderID}
	var pendingFolder string // folder waiting to be pushed on next DL

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				// Folder definition - get name from text content
				name := getTextContent(n)
				if name != "" {
					pendingFolder = b.folder(name, folderStack[len(folderStack)-1])
				}
				return

			case "a":
				href := strings.TrimSpace(getAttr(n, "href"))
				if href == "" {
					return
				}

				title := getTextContent(n)
				if title == "" {
					title = href
				}

				added := parseUnix(getAttr(n, "add_date"), now)
				bm := b.bookmark(title, href, folderStack[len(folderStack)-1], added)
				if bm == nil {
					return
				}
				bm.DateUpdated = parseUnix(getAttr(n, "last_modified"), added)
				bm.Tags = model.NormalizeTags(strings.Split(getAttr(n, "tags"), ","))
				bm.Favicon = getAttr(n, "icon_uri")
				if icon := getAttr(n, "icon"); strings.HasPrefix(icon, "data:") {
					bm.Favicon = icon
				}
				return

			case "dl":
				// Definition list - marks folder contents
				pushedFolder := false
				if pendingFolder != "" {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = ""
					pushedFolder = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushedFolder {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return b.document(), nil
}

func parseUnix(v string, fallback time.Time) time.Time {
	if v == "" {
		return fallback
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return fallback
	}
	return time.Unix(ts, 0).UTC()
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
