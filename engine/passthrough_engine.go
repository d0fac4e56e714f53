package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

// URLPlaceholder marks where a passthrough template receives the target URL.
const URLPlaceholder = "{url}"

// PassthroughEngine retrieves pages through a third-party relay service that
// returns the target's raw HTML, e.g. "https://api.allorigins.win/raw?url={url}".
type PassthroughEngine struct {
	name     string
	template string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewPassthroughEngine creates a relay transport. limiter may be nil; when set,
// every request waits for a token so bursts stay within the relay's limits.
func NewPassthroughEngine(template string, limiter *rate.Limiter) (*PassthroughEngine, error) {
	if !strings.Contains(template, URLPlaceholder) {
		return nil, fmt.Errorf("passthrough: template %q lacks %s", template, URLPlaceholder)
	}
	u, err := url.Parse(strings.ReplaceAll(template, URLPlaceholder, ""))
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("passthrough: invalid template %q", template)
	}
	return &PassthroughEngine{
		name:     "passthrough:" + u.Host,
		template: template,
		client:   &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		limiter:  limiter,
	}, nil
}

func (e *PassthroughEngine) Name() string { return e.name }

// RelayURL returns the relay address used for target.
func (e *PassthroughEngine) RelayURL(target string) string {
	return strings.ReplaceAll(e.template, URLPlaceholder, url.QueryEscape(target))
}

func (e *PassthroughEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: rate limiter: %w", e.name, err)
		}
	}

	result, err := doGet(ctx, e.client, e.RelayURL(req.URL), req.Headers, e.name)
	if err != nil {
		return nil, err
	}
	// The relay's own address is of no interest to callers.
	result.FinalURL = req.URL
	return result, nil
}
