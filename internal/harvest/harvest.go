// Package harvest turns the links of an HTML page into palette items.
package harvest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/charmbracelet/log"
	"golang.org/x/net/html"

	"cmdpalette/internal/domain"
)

// LinkIcon is the icon given to every harvested item
const LinkIcon = "🔗"

const headingSelector = "h1, h2, h3, h4, h5, h6"

// Options tune a scrape pass
type Options struct {
	// HeadingSubtitles uses the nearest preceding heading as the subtitle
	// instead of the href
	HeadingSubtitles bool
	Logger           *log.Logger
}

// Scrape returns one item per anchor with an href that is not excluded, not
// already an action of existing, and has some text to show.
func Scrape(doc *goquery.Document, existing []domain.Item, excludeSelectors []string, opts Options) []domain.Item {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	matchers := compileSelectors(excludeSelectors, logger)

	seen := make(map[string]bool, len(existing))
	for _, item := range existing {
		if item.Action.IsURL() {
			seen[item.Action.URL] = true
			seen[resolveHref(doc.Url, item.Action.URL)] = true
		}
	}

	var items []domain.Item
	skipped := 0
	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		node := link.Nodes[0]
		raw, _ := link.Attr("href")
		href := resolveHref(doc.Url, raw)

		if excluded(node, matchers) {
			logger.Debug("Link skipped (in excluded element)", "href", href)
			skipped++
			return
		}
		if seen[href] {
			logger.Debug("Link skipped (duplicate)", "href", href)
			skipped++
			return
		}

		text := linkText(link)
		if text == "" {
			logger.Debug("Link skipped (no text)", "href", href)
			skipped++
			return
		}

		subtitle := href
		if opts.HeadingSubtitles {
			if heading := nearestHeading(doc, node); heading != "" {
				subtitle = heading
			}
		}

		items = append(items, domain.Item{
			Icon:     LinkIcon,
			Name:     text,
			Subtitle: subtitle,
			Action:   domain.Navigate(href),
		})
		seen[href] = true
	})

	logger.Debug("Links scraper finished", "found", len(items), "skipped", skipped)
	return items
}

// compileSelectors drops invalid selectors after logging them
func compileSelectors(selectors []string, logger *log.Logger) []cascadia.Selector {
	matchers := make([]cascadia.Selector, 0, len(selectors))
	for _, sel := range selectors {
		m, err := cascadia.Compile(sel)
		if err != nil {
			logger.Error("Invalid exclude selector", "selector", sel, "err", err)
			continue
		}
		matchers = append(matchers, m)
	}
	return matchers
}

// excluded reports whether n or one of its ancestors matches any selector
func excluded(n *html.Node, matchers []cascadia.Selector) bool {
	if len(matchers) == 0 {
		return false
	}
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		for _, m := range matchers {
			if m.Match(cur) {
				return true
			}
		}
	}
	return false
}

func resolveHref(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if base == nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}

// linkText prefers the element text, then title, then aria-label
func linkText(link *goquery.Selection) string {
	if text := collapse(link.Text()); text != "" {
		return text
	}
	if title, ok := link.Attr("title"); ok {
		if text := collapse(title); text != "" {
			return text
		}
	}
	if label, ok := link.Attr("aria-label"); ok {
		return collapse(label)
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// nearestHeading walks up from the link and returns the text of the closest
// heading that precedes it in document order
func nearestHeading(doc *goquery.Document, link *html.Node) string {
	for cur := link; cur != nil && cur.Type != html.DocumentNode; cur = cur.Parent {
		for prev := cur.PrevSibling; prev != nil; prev = prev.PrevSibling {
			if prev.Type != html.ElementNode {
				continue
			}
			sel := doc.FindNodes(prev)
			if sel.Is(headingSelector) {
				if text := collapse(sel.Text()); text != "" {
					return text
				}
				continue
			}
			if inner := sel.Find(headingSelector).Last(); inner.Length() > 0 {
				if text := collapse(inner.Text()); text != "" {
					return text
				}
			}
		}
	}
	return ""
}

// LoadDocument reads an HTML page from an http(s) URL or a file path.
// base, when set, overrides the URL used to resolve relative links.
func LoadDocument(ctx context.Context, source, base string, client *http.Client) (*goquery.Document, error) {
	var (
		r       io.ReadCloser
		pageURL *url.URL
	)

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch page: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch page: HTTP %d", resp.StatusCode)
		}
		r = resp.Body
		pageURL = resp.Request.URL
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open page: %w", err)
		}
		r = f
	}
	defer r.Close()

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	if base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		pageURL = u
	}
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok && pageURL != nil {
		if ref, err := url.Parse(href); err == nil {
			pageURL = pageURL.ResolveReference(ref)
		}
	}
	doc.Url = pageURL
	return doc, nil
}
