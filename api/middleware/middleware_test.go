package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/wishgrab/config"
	"github.com/use-agent/wishgrab/models"
)

func init() { gin.SetMode(gin.TestMode) }

// echoCaller reports the Caller each request was accounted to.
func echoCaller(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/who", func(c *gin.Context) { c.JSON(http.StatusOK, CallerOf(c)) })
	return r
}

func get(r http.Handler, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_RecordsKeyFingerprint(t *testing.T) {
	r := echoCaller(Auth(config.AuthConfig{Enabled: true, APIKeys: []string{"secret-one", "secret-two"}}))

	w1 := get(r, "X-API-Key", "secret-one")
	require.Equal(t, http.StatusOK, w1.Code)
	var one Caller
	require.NoError(t, json.Unmarshal(w1.Body.Bytes(), &one))
	assert.True(t, one.Authenticated)
	assert.True(t, strings.HasPrefix(one.ID, "key:"))
	assert.NotContains(t, one.ID, "secret")

	w2 := get(r, "Authorization", "Bearer secret-two")
	require.Equal(t, http.StatusOK, w2.Code)
	var two Caller
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &two))
	assert.NotEqual(t, one.ID, two.ID)

	w3 := get(r, "Authorization", "Bearer secret-one")
	var again Caller
	require.NoError(t, json.Unmarshal(w3.Body.Bytes(), &again))
	assert.Equal(t, one.ID, again.ID)
}

func TestAuth_RejectsWithFailedRecord(t *testing.T) {
	r := echoCaller(Auth(config.AuthConfig{Enabled: true, APIKeys: []string{"k"}}))

	for _, headers := range [][]string{nil, {"X-API-Key", "nope"}, {"Authorization", "Basic k"}} {
		w := get(r, headers...)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var resp models.ScrapeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Nil(t, resp.Data)
		require.NotNil(t, resp.Error)
		assert.Equal(t, models.ErrCodeUnauthorized, resp.Error.Code)
	}
}

func TestAuth_DisabledPassesThrough(t *testing.T) {
	r := echoCaller(Auth(config.AuthConfig{Enabled: false, APIKeys: []string{"k"}}))

	w := get(r)
	require.Equal(t, http.StatusOK, w.Code)
	var caller Caller
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &caller))
	assert.False(t, caller.Authenticated)
	assert.True(t, strings.HasPrefix(caller.ID, "ip:"))
}

func TestRateLimit_BucketPerCaller(t *testing.T) {
	r := echoCaller(
		Auth(config.AuthConfig{Enabled: true, APIKeys: []string{"a", "b"}}),
		RateLimit(config.RateLimitConfig{RequestsPerSecond: 0.1, Burst: 1}),
	)

	assert.Equal(t, http.StatusOK, get(r, "X-API-Key", "a").Code)
	assert.Equal(t, http.StatusOK, get(r, "X-API-Key", "b").Code)

	w := get(r, "X-API-Key", "a")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "10", w.Header().Get("Retry-After"))

	var resp models.ScrapeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, models.ErrCodeRateLimited, resp.Error.Code)
}

func TestLimiterSet_Wait(t *testing.T) {
	now := time.Now()

	s := newLimiterSet(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	assert.Zero(t, s.wait("ip:1", now))
	assert.Equal(t, time.Second, s.wait("ip:1", now))
	// A rejected request does not consume the refill.
	assert.Equal(t, time.Second, s.wait("ip:1", now))
	assert.Zero(t, s.wait("ip:1", now.Add(time.Second)))

	frozen := newLimiterSet(config.RateLimitConfig{RequestsPerSecond: 0, Burst: 1})
	assert.Zero(t, frozen.wait("ip:1", now))
	assert.Equal(t, noRefillWait, frozen.wait("ip:1", now))
}

func TestLimiterSet_Sweep(t *testing.T) {
	now := time.Now()
	s := newLimiterSet(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	s.get("ip:old", now.Add(-2*time.Hour))
	s.get("ip:new", now)

	assert.Equal(t, 1, s.sweep(now.Add(-limiterIdle)))
	_, ok := s.entries["ip:new"]
	assert.True(t, ok)
}

func TestRetrySeconds(t *testing.T) {
	assert.Equal(t, 1, retrySeconds(10*time.Millisecond))
	assert.Equal(t, 2, retrySeconds(1900*time.Millisecond))
	assert.Equal(t, 60, retrySeconds(noRefillWait))
}
