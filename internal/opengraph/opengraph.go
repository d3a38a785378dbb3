// Package opengraph fetches a page and extracts its og:* preview metadata.
package opengraph

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/nikbrunner/bookmarkplus/internal/logger"
	"github.com/nikbrunner/bookmarkplus/internal/model"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxBytes = 2 << 20
	userAgent       = "Mozilla/5.0 (compatible; bmp/1.0; +https://github.com/nikbrunner/bookmarkplus)"
)

var (
	metaSelector = cascadia.MustCompile(`meta[property^="og:"], meta[name^="og:"]`)
	textPolicy   = bluemonday.StrictPolicy()
)

// Options configures an Extractor.
type Options struct {
	Client          *http.Client
	Timeout         time.Duration
	MaxBodyBytes    int64
	ExcerptFallback bool
	Logger          logger.Logger
}

// Extractor fetches pages and reads their OpenGraph tags.
type Extractor struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
	excerpt  bool
	log      logger.Logger
}

// NewExtractor creates an Extractor from opts.
func NewExtractor(opts Options) *Extractor {
	e := &Extractor{
		client:   opts.Client,
		timeout:  opts.Timeout,
		maxBytes: opts.MaxBodyBytes,
		excerpt:  opts.ExcerptFallback,
		log:      opts.Logger,
	}
	if e.client == nil {
		e.client = &http.Client{}
	}
	if e.timeout <= 0 {
		e.timeout = defaultTimeout
	}
	if e.maxBytes <= 0 {
		e.maxBytes = defaultMaxBytes
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	return e
}

// Extract returns the preview metadata of rawURL, or nil when the page has
// neither a title nor an image, or cannot be fetched at all.
func (e *Extractor) Extract(ctx context.Context, rawURL string) *model.OpenGraph {
	pageURL, body, err := e.fetch(ctx, rawURL)
	if err != nil {
		e.log.Debug("opengraph fetch failed", logger.String("url", rawURL), logger.Error(err))
		return nil
	}

	og, err := Parse(bytes.NewReader(body), pageURL)
	if err != nil {
		e.log.Debug("opengraph parse failed", logger.String("url", rawURL), logger.Error(err))
		return nil
	}
	if og == nil {
		return nil
	}

	if e.excerpt && og.Description == "" {
		article, err := readability.FromReader(bytes.NewReader(body), pageURL)
		if err == nil {
			og.Description = cleanText(article.Excerpt)
		} else {
			e.log.Debug("readability excerpt failed", logger.String("url", rawURL), logger.Error(err))
		}
	}
	return og
}

func (e *Extractor) fetch(ctx context.Context, rawURL string) (*url.URL, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, nil, fmt.Errorf("unexpected content type %q", ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return nil, nil, err
	}
	// Redirects change the base for relative image URLs.
	return resp.Request.URL, body, nil
}

// Parse reads og:* meta tags from an HTML document. The first value of each
// property wins. pageURL, when set, resolves relative image references.
func Parse(r io.Reader, pageURL *url.URL) (*model.OpenGraph, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	og := &model.OpenGraph{}
	for _, n := range cascadia.QueryAll(doc, metaSelector) {
		key := attr(n, "property")
		if !strings.HasPrefix(key, "og:") {
			key = attr(n, "name")
		}
		content := attr(n, "content")

		switch strings.ToLower(key) {
		case "og:title":
			setOnce(&og.Title, cleanText(content))
		case "og:description":
			setOnce(&og.Description, cleanText(content))
		case "og:image", "og:image:url", "og:image:secure_url":
			if og.Image == "" {
				if img := resolveImage(pageURL, content); IsLikelyImage(img) {
					og.Image = img
				}
			}
		case "og:site_name":
			setOnce(&og.SiteName, cleanText(content))
		case "og:type":
			setOnce(&og.Type, cleanText(content))
		case "og:url":
			setOnce(&og.URL, strings.TrimSpace(content))
		}
	}

	if og.Title == "" && og.Image == "" {
		return nil, nil
	}
	return og, nil
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func setOnce(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// cleanText strips markup, unescapes entities and collapses whitespace.
func cleanText(s string) string {
	s = html.UnescapeString(textPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

func resolveImage(pageURL *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if pageURL != nil {
		u = pageURL.ResolveReference(u)
	}
	return u.String()
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".svg": true, ".bmp": true, ".ico": true, ".avif": true,
}

var imagePathHints = []string{"/image", "/img", "/media/", "/photo", "/thumb", "/og", "/preview", "/social"}

var imageHostHints = []string{"img", "image", "cdn", "static", "media", "cloudinary", "imgur", "googleusercontent", "twimg", "fbcdn", "gravatar"}

// IsLikelyImage reports whether raw looks like a usable http(s) image URL:
// a known image extension, or a path or host that suggests image hosting.
func IsLikelyImage(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}
	p := strings.ToLower(u.Path)
	if imageExtensions[path.Ext(p)] {
		return true
	}
	for _, hint := range imagePathHints {
		if strings.Contains(p, hint) {
			return true
		}
	}
	host := strings.ToLower(u.Hostname())
	for _, hint := range imageHostHints {
		if strings.Contains(host, hint) {
			return true
		}
	}
	return false
}
