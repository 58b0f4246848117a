package harvest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdpalette/internal/domain"
	"cmdpalette/internal/logging"
)

func parse(t *testing.T, page, base string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	if base != "" {
		u, err := url.Parse(base)
		require.NoError(t, err)
		doc.Url = u
	}
	return doc
}

func opts() Options {
	return Options{Logger: logging.Discard()}
}

func TestScrapeSkipsExcludedAndKnownLinks(t *testing.T) {
	page := `<html><body>
		<nav><a href="/a">A</a></nav>
		<main><a href="/b">B</a><a href="/c">C</a></main>
	</body></html>`
	doc := parse(t, page, "https://site.test/")
	existing := []domain.Item{{Name: "C", Action: domain.Navigate("https://site.test/c")}}

	items := Scrape(doc, existing, []string{"nav"}, opts())

	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].Name)
	assert.Equal(t, "https://site.test/b", items[0].Subtitle)
	assert.Equal(t, domain.Navigate("https://site.test/b"), items[0].Action)
	assert.Equal(t, LinkIcon, items[0].Icon)
}

func TestScrapeMatchesRelativeExistingActions(t *testing.T) {
	page := `<a href="/settings">Settings again</a><a href="/other">Other</a>`
	doc := parse(t, page, "https://site.test/")
	existing := []domain.Item{{Name: "Settings", Action: domain.Navigate("/settings")}}

	items := Scrape(doc, existing, nil, opts())

	require.Len(t, items, 1)
	assert.Equal(t, "Other", items[0].Name)
}

func TestScrapeDeduplicatesWithinPage(t *testing.T) {
	page := `<a href="https://x.test/1">One</a><a href="https://x.test/1">Again</a>`
	items := Scrape(parse(t, page, ""), nil, nil, opts())

	require.Len(t, items, 1)
	assert.Equal(t, "One", items[0].Name)
}

func TestScrapeTextFallbacks(t *testing.T) {
	page := `
		<a href="https://x.test/1">  Spaced
		   text </a>
		<a href="https://x.test/2" title="From title"></a>
		<a href="https://x.test/3" aria-label="From label"><img src="i.png"></a>
		<a href="https://x.test/4"></a>`
	items := Scrape(parse(t, page, ""), nil, nil, opts())

	var names []string
	for _, item := range items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"Spaced text", "From title", "From label"}, names)
}

func TestScrapeIgnoresAnchorsWithoutHref(t *testing.T) {
	page := `<a name="top">Top</a><a href="https://x.test/">Home</a>`
	items := Scrape(parse(t, page, ""), nil, nil, opts())

	require.Len(t, items, 1)
	assert.Equal(t, "Home", items[0].Name)
}

func TestScrapeInvalidSelectorIsIgnored(t *testing.T) {
	page := `<div class="skip"><a href="https://x.test/1">One</a></div><a href="https://x.test/2">Two</a>`
	items := Scrape(parse(t, page, ""), nil, []string{"[[[", ".skip"}, opts())

	require.Len(t, items, 1)
	assert.Equal(t, "Two", items[0].Name)
}

func TestScrapeHeadingSubtitles(t *testing.T) {
	page := `<body>
		<h2>Guides</h2>
		<ul><li><a href="https://x.test/g1">Getting started</a></li></ul>
		<section><h3>Reference</h3><p><a href="https://x.test/r1">API</a></p></section>
		<a href="https://x.test/top">Orphan</a>
	</body>`
	doc := parse(t, `<a href="https://x.test/none">No heading</a>`+page, "")

	items := Scrape(doc, nil, nil, Options{HeadingSubtitles: true, Logger: logging.Discard()})

	subtitles := map[string]string{}
	for _, item := range items {
		subtitles[item.Name] = item.Subtitle
	}
	assert.Equal(t, "https://x.test/none", subtitles["No heading"])
	assert.Equal(t, "Guides", subtitles["Getting started"])
	assert.Equal(t, "Reference", subtitles["API"])
	assert.Equal(t, "Reference", subtitles["Orphan"])
}

func TestLoadDocumentFromFileUsesBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(`<a href="docs/intro">Intro</a>`), 0o644))

	doc, err := LoadDocument(context.Background(), path, "https://site.test/app/", nil)
	require.NoError(t, err)

	items := Scrape(doc, nil, nil, opts())
	require.Len(t, items, 1)
	assert.Equal(t, "https://site.test/app/docs/intro", items[0].Action.URL)
}

func TestLoadDocumentFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><base href="/root/"></head><body><a href="page">Page</a></body></html>`))
	}))
	defer srv.Close()

	doc, err := LoadDocument(context.Background(), srv.URL+"/index.html", "", srv.Client())
	require.NoError(t, err)

	items := Scrape(doc, nil, nil, opts())
	require.Len(t, items, 1)
	assert.Equal(t, srv.URL+"/root/page", items[0].Action.URL)
}

func TestLoadDocumentErrors(t *testing.T) {
	_, err := LoadDocument(context.Background(), filepath.Join(t.TempDir(), "missing.html"), "", nil)
	assert.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err = LoadDocument(context.Background(), srv.URL, "", srv.Client())
	assert.Error(t, err)
}
