package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/wishgrab/config"
	"github.com/use-agent/wishgrab/models"
	"golang.org/x/time/rate"
)

const (
	limiterIdle  = time.Hour
	sweepEvery   = 5 * time.Minute
	noRefillWait = 60 * time.Second
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet holds one token bucket per Caller ID.
type limiterSet struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	entries map[string]*limiterEntry
}

func newLimiterSet(cfg config.RateLimitConfig) *limiterSet {
	return &limiterSet{
		limit:   rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
		entries: make(map[string]*limiterEntry),
	}
}

func (s *limiterSet) get(id string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[id] = e
	}
	e.lastSeen = now
	return e.limiter
}

// sweep drops buckets not used since cutoff and reports how many remain.
func (s *limiterSet) sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, id)
		}
	}
	return len(s.entries)
}

// wait reports how long the caller must back off before its next request,
// or zero when the request may proceed now.
func (s *limiterSet) wait(id string, now time.Time) time.Duration {
	r := s.get(id, now).ReserveN(now, 1)
	if !r.OK() {
		return noRefillWait
	}
	d := r.DelayFrom(now)
	if d > 0 {
		r.CancelAt(now)
	}
	return d
}

// RateLimit applies a token bucket per Caller: the API key fingerprint when
// Auth ran, the client IP otherwise. Rejections carry Retry-After.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	set := newLimiterSet(cfg)

	go func() {
		ticker := time.NewTicker(sweepEvery)
		defer ticker.Stop()
		for now := range ticker.C {
			set.sweep(now.Add(-limiterIdle))
		}
	}()

	return func(c *gin.Context) {
		if d := set.wait(CallerOf(c).ID, time.Now()); d > 0 {
			c.Header("Retry-After", strconv.Itoa(retrySeconds(d)))
			reject(c, http.StatusTooManyRequests, models.ErrCodeRateLimited,
				"rate limit exceeded, please slow down")
			return
		}
		c.Next()
	}
}

func retrySeconds(d time.Duration) int {
	return int(math.Max(math.Ceil(d.Seconds()), 1))
}
