package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultMinBodyLength is the shortest body accepted as a real page.
const DefaultMinBodyLength = 100

// Chain tries its engines strictly in order and returns the first usable
// document. A transport is never retried within one Fetch. Chain holds no
// per-request state and is safe for concurrent use.
type Chain struct {
	engines        []Engine
	attemptTimeout time.Duration
	minBodyLength  int
}

// NewChain creates a Chain. attemptTimeout bounds each engine's attempt;
// minBodyLength is the trimmed body length below which a 2xx response still
// counts as a failed attempt.
func NewChain(engines []Engine, attemptTimeout time.Duration, minBodyLength int) *Chain {
	return &Chain{
		engines:        engines,
		attemptTimeout: attemptTimeout,
		minBodyLength:  minBodyLength,
	}
}

// Names lists the engines in the order they are tried.
func (c *Chain) Names() []string {
	names := make([]string, len(c.engines))
	for i, e := range c.engines {
		names[i] = e.Name()
	}
	return names
}

// Fetch retrieves targetURL. On total failure it returns a *FetchError.
func (c *Chain) Fetch(ctx context.Context, targetURL string) (*FetchResult, error) {
	fetchErr := &FetchError{URL: targetURL}

	for _, eng := range c.engines {
		if err := ctx.Err(); err != nil {
			fetchErr.cause = err
			return nil, fetchErr
		}

		result, err := c.attempt(ctx, eng, targetURL)
		if err == nil {
			slog.Debug("transport succeeded", "engine", eng.Name(), "url", targetURL, "bytes", len(result.HTML))
			return result, nil
		}

		fetchErr.Attempts = append(fetchErr.Attempts, Attempt{Engine: eng.Name(), Err: err})
		slog.Debug("transport failed", "engine", eng.Name(), "url", targetURL, "error", err)

		// The caller gave up; the remaining transports would fail the same way.
		if ctxErr := ctx.Err(); ctxErr != nil {
			fetchErr.cause = ctxErr
			return nil, fetchErr
		}
	}

	return nil, fetchErr
}

func (c *Chain) attempt(ctx context.Context, eng Engine, targetURL string) (*FetchResult, error) {
	attemptCtx := ctx
	if c.attemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()
	}

	result, err := eng.Fetch(attemptCtx, &FetchRequest{URL: targetURL})
	if err != nil {
		return nil, err
	}
	if n := len(strings.TrimSpace(result.HTML)); n < c.minBodyLength {
		return nil, fmt.Errorf("%s: %w (%d characters)", eng.Name(), ErrShortBody, n)
	}
	if result.EngineName == "" {
		result.EngineName = eng.Name()
	}
	return result, nil
}

// Attempt records one failed transport attempt.
type Attempt struct {
	Engine string
	Err    error
}

// FetchError reports that no transport produced a usable document, or that
// the caller cancelled before one did.
type FetchError struct {
	URL      string
	Attempts []Attempt

	cause error // context error when cancelled
}

// Cancelled reports whether the fetch stopped because the caller's context ended.
func (e *FetchError) Cancelled() bool {
	return e.cause != nil
}

// Last returns the most recent transport error, or nil if none ran.
func (e *FetchError) Last() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}

func (e *FetchError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("fetch %s: cancelled after %d attempt(s): %v", e.URL, len(e.Attempts), e.cause)
	}
	last := e.Last()
	if last == nil {
		return fmt.Sprintf("fetch %s: no transports configured", e.URL)
	}
	return fmt.Sprintf("fetch %s: all %d transport(s) failed, last: %v", e.URL, len(e.Attempts), last)
}

func (e *FetchError) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return e.Last()
}

// IsCancellation reports whether err stems from the caller cancelling.
func IsCancellation(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Cancelled()
	}
	return errors.Is(err, context.Canceled)
}
