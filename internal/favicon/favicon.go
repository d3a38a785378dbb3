// Package favicon resolves an icon reference for a bookmark URL through an
// ordered chain of best-effort lookups, ending in a generated placeholder.
package favicon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nikbrunner/bookmarkplus/internal/logger"
)

const (
	defaultFetchTimeout = 3 * time.Second
	maxIconBytes        = 1 << 20
)

// Tab is the browser tab the user is currently looking at.
type Tab struct {
	URL        string
	FavIconURL string
}

// TabProvider exposes the active browser tab, when there is one.
type TabProvider interface {
	ActiveTab(ctx context.Context) (*Tab, error)
}

// ServiceKind tells how a favicon service answers.
type ServiceKind int

const (
	ServiceImage    ServiceKind = iota // responds with the icon itself
	ServiceIconList                    // responds with a JSON list of icons
)

// Service is a third-party favicon lookup keyed by hostname.
// URL is a format string with a single %s for the hostname.
type Service struct {
	Name string
	URL  string
	Kind ServiceKind
}

// DefaultPaths are the conventional same-origin icon locations, tried in order.
var DefaultPaths = []string{
	"/favicon.ico",
	"/favicon.png",
	"/favicon.svg",
	"/apple-touch-icon.png",
	"/apple-touch-icon-precomposed.png",
	"/assets/favicon.ico",
	"/assets/favicon.png",
	"/static/favicon.ico",
	"/static/favicon.png",
}

// DefaultServices are the favicon lookup services, tried in order.
var DefaultServices = []Service{
	{Name: "google", URL: "https://www.google.com/s2/favicons?domain=%s&sz=16", Kind: ServiceImage},
	{Name: "duckduckgo", URL: "https://icons.duckduckgo.com/ip3/%s.ico", Kind: ServiceImage},
	{Name: "favicongrabber", URL: "https://favicongrabber.com/api/grab/%s?pretty=true", Kind: ServiceIconList},
	{Name: "iconhorse", URL: "https://icon.horse/icon/%s", Kind: ServiceImage},
}

// Options configures a Resolver. Zero values fall back to the defaults.
type Options struct {
	Client       *http.Client
	Tabs         TabProvider
	FetchTimeout time.Duration
	Paths        []string
	Services     []Service
	Logger       logger.Logger
}

// Resolver walks the favicon fallback chain.
type Resolver struct {
	client   *http.Client
	tabs     TabProvider
	timeout  time.Duration
	paths    []string
	services []Service
	log      logger.Logger
}

// NewResolver creates a Resolver from opts.
func NewResolver(opts Options) *Resolver {
	r := &Resolver{
		client:   opts.Client,
		tabs:     opts.Tabs,
		timeout:  opts.FetchTimeout,
		paths:    opts.Paths,
		services: opts.Services,
		log:      opts.Logger,
	}
	if r.client == nil {
		r.client = &http.Client{}
	}
	if r.timeout <= 0 {
		r.timeout = defaultFetchTimeout
	}
	if r.paths == nil {
		r.paths = DefaultPaths
	}
	if r.services == nil {
		r.services = DefaultServices
	}
	if r.log == nil {
		r.log = logger.Nop()
	}
	return r
}

// Resolve returns an icon reference for rawURL. It never fails: when every
// lookup misses it returns a placeholder derived from the hostname.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) string {
	if icon := r.fromActiveTab(ctx, rawURL); icon != "" {
		return icon
	}

	u, err := parseURL(rawURL)
	if err != nil {
		return GenericIcon
	}

	origin := u.Scheme + "://" + u.Host
	for _, path := range r.paths {
		candidate := origin + path
		if err := r.Verify(ctx, candidate); err != nil {
			r.log.Debug("favicon candidate rejected",
				logger.String("candidate", candidate), logger.Error(err))
			continue
		}
		return candidate
	}

	host := u.Hostname()
	for _, svc := range r.services {
		icon, err := r.fromService(ctx, svc, host)
		if err != nil {
			r.log.Debug("favicon service failed",
				logger.String("service", svc.Name), logger.String("host", host), logger.Error(err))
			continue
		}
		return icon
	}

	return Placeholder(rawURL)
}

func (r *Resolver) fromActiveTab(ctx context.Context, rawURL string) string {
	if r.tabs == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	tab, err := r.tabs.ActiveTab(ctx)
	if err != nil || tab == nil {
		return ""
	}
	if tab.URL == rawURL && tab.FavIconURL != "" {
		return tab.FavIconURL
	}
	return ""
}

func (r *Resolver) fromService(ctx context.Context, svc Service, host string) (string, error) {
	serviceURL := fmt.Sprintf(svc.URL, url.PathEscape(host))
	if svc.Kind != ServiceIconList {
		if err := r.Verify(ctx, serviceURL); err != nil {
			return "", err
		}
		return serviceURL, nil
	}

	icons, err := r.fetchIconList(ctx, serviceURL)
	if err != nil {
		return "", err
	}
	best := pickIcon(icons)
	if best == "" {
		return "", fmt.Errorf("no icons listed")
	}
	if err := r.Verify(ctx, best); err != nil {
		return "", err
	}
	return best, nil
}

// listedIcon is one entry of an icon-list service response.
type listedIcon struct {
	Src   string `json:"src"`
	Type  string `json:"type"`
	Sizes string `json:"sizes"`
}

func (r *Resolver) fetchIconList(ctx context.Context, serviceURL string) ([]listedIcon, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serviceURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var payload struct {
		Icons []listedIcon `json:"icons"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxIconBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode icon list: %w", err)
	}
	return payload.Icons, nil
}

// pickIcon prefers a 16x16 or 32x32 entry, else the first one.
func pickIcon(icons []listedIcon) string {
	for _, icon := range icons {
		if icon.Src != "" && (strings.Contains(icon.Sizes, "16x16") || strings.Contains(icon.Sizes, "32x32")) {
			return icon.Src
		}
	}
	if len(icons) > 0 {
		return icons[0].Src
	}
	return ""
}

// Verify downloads iconURL and checks that it decodes as an image with
// non-zero dimensions. The request is bounded by the fetch timeout.
func (r *Resolver) Verify(ctx context.Context, iconURL string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iconURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes))
	if err != nil {
		return err
	}

	width, height, err := imageSize(data)
	if err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return ErrEmptyImage
	}
	return nil
}

func parseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return nil, fmt.Errorf("url %q has no host", rawURL)
	}
	return u, nil
}
