// Package scraper turns a product URL into a ProductRecord: it validates the
// URL, fetches the page through the transport chain, runs the retailer's
// extraction strategy and falls back to the generic one.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/use-agent/wishgrab/engine"
	"github.com/use-agent/wishgrab/extract"
	"github.com/use-agent/wishgrab/models"
	"github.com/use-agent/wishgrab/site"
)

// Fetcher retrieves a page. *engine.Chain is the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*engine.FetchResult, error)
}

// MsgExtractionFailed is reported when neither strategy finds a name.
const MsgExtractionFailed = "Could not extract product information from this URL"

// Scraper is stateless between calls and safe for concurrent use.
type Scraper struct {
	fetcher Fetcher
}

// New creates a Scraper that fetches through f.
func New(f Fetcher) *Scraper {
	return &Scraper{fetcher: f}
}

// ScrapeProductURL fetches rawURL and extracts its product data. It never
// returns nil and never panics; every failure is reported in the record.
func (s *Scraper) ScrapeProductURL(ctx context.Context, rawURL string) (rec *models.ProductRecord) {
	start := time.Now()
	defer recoverInto(rawURL, &rec)

	match, serr := validate(rawURL)
	if serr != nil {
		return failed(rawURL, serr)
	}
	if !match.Supported() {
		return failed(rawURL, models.NewScrapeError(models.ErrCodeUnsupportedSite, match.Message, nil))
	}

	result, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return failed(rawURL, fetchFailure(err))
	}

	rec = extractRecord(rawURL, match, result.HTML)
	rec.FetchedVia = result.EngineName
	if rec.Success {
		slog.Info("product scraped",
			"url", rawURL,
			"strategy", rec.Strategy,
			"engine", rec.FetchedVia,
			"elapsed", time.Since(start),
		)
	}
	return rec
}

// ScrapeHTML runs detection and extraction over a document the caller
// already holds. Hosts that are unsupported for fetching are extracted with
// the generic strategy.
func (s *Scraper) ScrapeHTML(rawURL, html string) (rec *models.ProductRecord) {
	defer recoverInto(rawURL, &rec)

	match, serr := validate(rawURL)
	if serr != nil {
		return failed(rawURL, serr)
	}
	if !match.Supported() {
		match.Name = site.Generic
	}
	return extractRecord(rawURL, match, html)
}

// validate requires an absolute http(s) URL with a host.
func validate(rawURL string) (site.Match, *models.ScrapeError) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return site.Match{}, models.NewScrapeError(models.ErrCodeInvalidURL, "URL is required", nil)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return site.Match{}, models.NewScrapeError(models.ErrCodeInvalidURL, "Invalid URL: "+trimmed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return site.Match{}, models.NewScrapeError(models.ErrCodeInvalidURL,
			fmt.Sprintf("Invalid URL %q: scheme must be http or https", trimmed), nil)
	}
	if u.Hostname() == "" {
		return site.Match{}, models.NewScrapeError(models.ErrCodeInvalidURL,
			fmt.Sprintf("Invalid URL %q: missing host", trimmed), nil)
	}
	return site.DetectHost(u.Hostname()), nil
}

func fetchFailure(err error) *models.ScrapeError {
	if engine.IsCancellation(err) {
		return models.NewScrapeError(models.ErrCodeFetchFailed, "request cancelled: "+err.Error(), err)
	}
	return models.NewScrapeError(models.ErrCodeFetchFailed, "Failed to fetch page: "+err.Error(), err)
}

// extractRecord runs the detected strategy and, when it finds no name, the
// generic one. A page is never run through the same strategy twice.
func extractRecord(rawURL string, match site.Match, body string) *models.ProductRecord {
	doc, err := extract.Parse(rawURL, body)
	if err != nil {
		return failed(rawURL, models.NewScrapeError(models.ErrCodeExtractionFailed, MsgExtractionFailed, err))
	}

	strategy, ok := extract.For(match.Name)
	if !ok {
		strategy = extract.Generic()
	}
	data := extract.Run(doc, strategy)
	used := strategy.Name

	if data.Name == "" && used != site.Generic {
		slog.Warn("strategy found no product name, trying generic",
			"url", rawURL, "strategy", used)
		fallback := extract.Run(doc, extract.Generic())
		if fallback.Name != "" {
			data = merge(fallback, data)
			used = site.Generic
		}
	}

	if data.Name == "" {
		return failed(rawURL, models.NewScrapeError(models.ErrCodeExtractionFailed, MsgExtractionFailed, nil))
	}

	return &models.ProductRecord{
		ProductData: data,
		Success:     true,
		SourceURL:   rawURL,
		Strategy:    string(used),
	}
}

// merge fills fields the fallback left empty from the retailer's partial
// result. The record still reports the fallback as its Strategy.
func merge(fallback, partial models.ProductData) models.ProductData {
	if fallback.Price == nil {
		fallback.Price = partial.Price
	}
	if fallback.Description == "" {
		fallback.Description = partial.Description
	}
	if fallback.ImageURL == "" && partial.ImageURL != "" {
		fallback.ImageURL = partial.ImageURL
		fallback.Images = partial.Images
	}
	return fallback
}

func failed(rawURL string, serr *models.ScrapeError) *models.ProductRecord {
	slog.Warn("scrape failed", "url", rawURL, "code", serr.Code, "error", serr)
	return models.Failed(rawURL, serr)
}

func recoverInto(rawURL string, rec **models.ProductRecord) {
	if r := recover(); r != nil {
		slog.Error("panic during scrape", "url", rawURL, "panic", r)
		*rec = models.Failed(rawURL, models.NewScrapeError(
			models.ErrCodeInternal,
			"internal error while scraping",
			fmt.Errorf("panic: %v", r),
		))
	}
}
