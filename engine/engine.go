package engine

import (
	"context"
	"errors"
	"fmt"
)

// Engine is one transport able to retrieve a page's HTML.
type Engine interface {
	// Name returns the transport identifier (e.g. "direct",
	// "proxy:10.0.0.1:3128", "passthrough:api.allorigins.win").
	Name() string

	// Fetch issues a single GET for the request. It must honour ctx.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
}

// FetchResult is the output of a successful engine fetch.
type FetchResult struct {
	HTML       string
	StatusCode int
	FinalURL   string
	EngineName string
}

// Browser-like request headers sent by every transport.
const (
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	acceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
	acceptLanguage = "en-US,en;q=0.9"
)

// maxBody caps how much of a response is read.
const maxBody = 10 << 20

// ErrShortBody marks a response whose body is too short to be a product page.
// Anti-bot interstitials often answer 200 with a near-empty body.
var ErrShortBody = errors.New("response body too short")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
