// Package culler finds bookmarks whose pages no longer exist.
package culler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/bookmarkplus/internal/logger"
	"github.com/nikbrunner/bookmarkplus/internal/model"
)

// Status represents the health status of a URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx response
	Dead                      // 404 or 410 Gone
	Unreachable               // timeout, DNS failure, connection refused, etc.
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	case Unreachable:
		return "unreachable"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result holds the check result for a single bookmark.
type Result struct {
	Bookmark   model.Bookmark `json:"bookmark"`
	Status     Status         `json:"status"`
	StatusCode int            `json:"statusCode,omitempty"` // 0 if the connection failed
	Error      string         `json:"error,omitempty"`
}

// ProgressFunc is called after each URL is checked.
type ProgressFunc func(completed, total int)

// Options configures a Checker.
type Options struct {
	Client      *http.Client
	Timeout     time.Duration
	Concurrency int
	// ExcludeDomains lists hosts where a 404 usually means "private", not gone.
	ExcludeDomains []string
	Logger         logger.Logger
}

// Checker checks that bookmark URLs still resolve.
type Checker struct {
	client      *http.Client
	timeout     time.Duration
	concurrency int
	exclude     map[string]bool
	log         logger.Logger
}

func NewChecker(opts Options) *Checker {
	c := &Checker{
		client:      opts.Client,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		exclude:     make(map[string]bool),
		log:         opts.Logger,
	}
	if c.client == nil {
		c.client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}
	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}
	if c.concurrency <= 0 {
		c.concurrency = 10
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	for _, domain := range opts.ExcludeDomains {
		c.exclude[strings.ToLower(domain)] = true
	}
	return c
}

// Check requests every bookmark with at most Concurrency requests in flight.
// Results keep the order of bookmarks. Cancelling ctx marks the remaining
// bookmarks unreachable.
func (c *Checker) Check(ctx context.Context, bookmarks []model.Bookmark, onProgress ProgressFunc) []Result {
	if len(bookmarks) == 0 {
		return nil
	}

	results := make([]Result, len(bookmarks))
	var (
		progressMu sync.Mutex
		completed  int
	)

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for i := range bookmarks {
		g.Go(func() error {
			results[i] = c.checkURL(ctx, bookmarks[i])
			if onProgress != nil {
				progressMu.Lock()
				completed++
				onProgress(completed, len(bookmarks))
				progressMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	dead := 0
	for _, r := range results {
		if r.Status == Dead {
			dead++
		}
	}
	c.log.Info("links checked", logger.Int("total", len(results)), logger.Int("dead", dead))
	return results
}

func (c *Checker) checkURL(ctx context.Context, b model.Bookmark) Result {
	result := Result{Bookmark: b}

	// HEAD first, GET for servers that refuse it.
	resp, err := c.do(ctx, http.MethodHead, b.URL)
	if err != nil || resp.StatusCode == http.StatusMethodNotAllowed {
		if resp != nil {
			resp.Body.Close()
		}
		resp, err = c.do(ctx, http.MethodGet, b.URL)
		if err != nil {
			result.Status = Unreachable
			result.Error = normalizeError(err)
			c.log.Debug("link unreachable", logger.String("url", b.URL), logger.Error(err))
			return result
		}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if c.isExcluded(b.URL) {
			result.Status = Unreachable
			result.Error = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		// 403, 5xx and friends may be temporary or need a login.
		result.Status = Unreachable
		result.Error = http.StatusText(resp.StatusCode)
	}
	return result
}

func (c *Checker) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelBody releases the request context once the body is closed.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// isExcluded checks the host and its parent domains against the exclude list.
func (c *Checker) isExcluded(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for domain := range c.exclude {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// normalizeError simplifies verbose error messages into readable categories.
func normalizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Timeout"
	}
	errStr := err.Error()
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	case strings.Contains(lower, "unsupported protocol scheme"):
		return "Unsupported URL"
	default:
		return errStr
	}
}

// DeadBookmarks returns the bookmarks reported dead.
func DeadBookmarks(results []Result) []model.Bookmark {
	var dead []model.Bookmark
	for _, r := range results {
		if r.Status == Dead {
			dead = append(dead, r.Bookmark)
		}
	}
	return dead
}
