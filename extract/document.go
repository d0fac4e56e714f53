package extract

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Document is a fetched page parsed once for extraction. It belongs to a
// single scrape and is discarded afterwards.
type Document struct {
	SourceURL string
	HTML      string
	Root      *html.Node

	query *goquery.Document
	base  *url.URL

	readableOnce sync.Once
	readable     readability.Article
}

// Parse builds a Document from raw HTML. sourceURL resolves relative image
// links and feeds the readability fallback.
func Parse(sourceURL, rawHTML string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("extract: parse html: %w", err)
	}
	base, _ := url.Parse(sourceURL)
	return &Document{
		SourceURL: sourceURL,
		HTML:      rawHTML,
		Root:      root,
		query:     goquery.NewDocumentFromNode(root),
		base:      base,
	}, nil
}

// selection wraps a matched node for attribute and text access.
func (d *Document) selection(n *html.Node) *goquery.Selection {
	return d.query.FindNodes(n)
}

// absolute resolves ref against the page URL. Unresolvable refs are
// returned unchanged.
func (d *Document) absolute(ref string) string {
	if d.base == nil || ref == "" {
		return ref
	}
	u, err := d.base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

// article runs readability at most once per document.
func (d *Document) article() readability.Article {
	d.readableOnce.Do(func() {
		if d.base == nil {
			return
		}
		article, err := readability.FromReader(strings.NewReader(d.HTML), d.base)
		if err != nil {
			slog.Debug("readability: extraction failed", "url", d.SourceURL, "error", err)
			return
		}
		d.readable = article
	})
	return d.readable
}
