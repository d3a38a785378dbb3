package opengraph_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bookmarkplus/internal/model"
	"github.com/nikbrunner/bookmarkplus/internal/opengraph"
)

const articlePage = `<!doctype html>
<html><head>
<title>Fallback title</title>
<meta property="og:title" content="  Go   &amp; Friends  ">
<meta property="og:title" content="Second title">
<meta property="og:description" content="A <b>bold</b> description">
<meta property="og:image" content="/images/cover.png">
<meta name="og:site_name" content="Example">
<meta property="og:type" content="article">
<meta property="og:url" content="https://example.com/canonical">
</head><body><p>hello</p></body></html>`

func serve(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtract_AllFields(t *testing.T) {
	srv := serve(t, "text/html; charset=utf-8", articlePage)

	og := opengraph.NewExtractor(opengraph.Options{}).Extract(context.Background(), srv.URL+"/post")
	assert.DeepEqual(t, og, &model.OpenGraph{
		Title:       "Go & Friends",
		Description: "A bold description",
		Image:       srv.URL + "/images/cover.png",
		SiteName:    "Example",
		Type:        "article",
		URL:         "https://example.com/canonical",
	})
}

func TestExtract_NothingUseful(t *testing.T) {
	srv := serve(t, "text/html", `<html><head>
<meta property="og:type" content="website">
<meta property="og:url" content="https://example.com/">
</head></html>`)

	og := opengraph.NewExtractor(opengraph.Options{}).Extract(context.Background(), srv.URL)
	assert.Assert(t, og == nil)
}

func TestExtract_FailuresAreNil(t *testing.T) {
	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()
	jsonSrv := serve(t, "application/json", `{"og:title":"x"}`)

	e := opengraph.NewExtractor(opengraph.Options{})
	assert.Assert(t, e.Extract(context.Background(), notFound.URL) == nil)
	assert.Assert(t, e.Extract(context.Background(), jsonSrv.URL) == nil)
	assert.Assert(t, e.Extract(context.Background(), "http://127.0.0.1:1/") == nil)
	assert.Assert(t, e.Extract(context.Background(), "::not a url") == nil)
}

func TestExtract_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	og := opengraph.NewExtractor(opengraph.Options{Timeout: 50 * time.Millisecond}).Extract(context.Background(), srv.URL)
	assert.Assert(t, og == nil)
	assert.Assert(t, time.Since(start) < 2*time.Second)
}

func TestExtract_BodyCap(t *testing.T) {
	// The og tags sit beyond the cap, so nothing is found.
	page := "<html><head>" + strings.Repeat("<!-- padding -->", 1000) +
		`<meta property="og:title" content="Late">` + "</head></html>"
	srv := serve(t, "text/html", page)

	og := opengraph.NewExtractor(opengraph.Options{MaxBodyBytes: 1024}).Extract(context.Background(), srv.URL)
	assert.Assert(t, og == nil)
}

func TestExtract_ExcerptFallback(t *testing.T) {
	body := `<html><head><title>Essay</title>
<meta property="og:title" content="Essay">
</head><body><article>
<h1>Essay</h1>
<p>` + strings.Repeat("Readable paragraph text about bookmarks and how people keep them organised. ", 20) + `</p>
<p>` + strings.Repeat("Another paragraph follows with more words so the article scores well. ", 20) + `</p>
</article></body></html>`
	srv := serve(t, "text/html", body)

	without := opengraph.NewExtractor(opengraph.Options{}).Extract(context.Background(), srv.URL)
	assert.Assert(t, without != nil)
	assert.Equal(t, without.Description, "")

	with := opengraph.NewExtractor(opengraph.Options{ExcerptFallback: true}).Extract(context.Background(), srv.URL)
	assert.Assert(t, with != nil)
	assert.Assert(t, strings.HasPrefix(with.Description, "Readable paragraph text"), with.Description)
}

func TestParse_DropsUnlikelyImages(t *testing.T) {
	page, _ := url.Parse("https://blog.example.com/post")
	og, err := opengraph.Parse(strings.NewReader(`<html><head>
<meta property="og:image" content="javascript:alert(1)">
<meta property="og:image" content="https://blog.example.com/about">
</head></html>`), page)
	assert.NilError(t, err)
	assert.Assert(t, og == nil)
}

func TestParse_ImageOnly(t *testing.T) {
	page, _ := url.Parse("https://blog.example.com/post")
	og, err := opengraph.Parse(strings.NewReader(`<meta property="og:image:url" content="cover.jpg">`), page)
	assert.NilError(t, err)
	assert.Equal(t, og.Image, "https://blog.example.com/cover.jpg")
	assert.Equal(t, og.Title, "")
}

func TestIsLikelyImage(t *testing.T) {
	cases := map[string]bool{
		"https://example.com/a.PNG":                  true,
		"https://example.com/a.jpeg?w=100":           true,
		"http://example.com/images/123":              true,
		"https://pbs.twimg.com/media/abc":            true,
		"https://res.cloudinary.com/x/upload/v1/abc": true,
		"https://example.com/about":                  false,
		"ftp://example.com/a.png":                    false,
		"data:image/png;base64,AAAA":                 false,
		"":                                           false,
	}
	for in, want := range cases {
		assert.Equal(t, opengraph.IsLikelyImage(in), want, in)
	}
}
