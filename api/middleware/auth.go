package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/wishgrab/config"
	"github.com/use-agent/wishgrab/models"
)

// Auth checks the API key sent as "X-API-Key: <key>" or
// "Authorization: Bearer <key>" and records the matching Caller.
// It passes everything through when auth is disabled.
func Auth(cfg config.AuthConfig) gin.HandlerFunc {
	var digests [][sha256.Size]byte
	for _, k := range cfg.APIKeys {
		if k != "" {
			digests = append(digests, sha256.Sum256([]byte(k)))
		}
	}
	if !cfg.Enabled || len(digests) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := presentedKey(c.Request)
		if key == "" {
			slog.Debug("request without api key", "ip", c.ClientIP(), "path", c.FullPath())
			reject(c, http.StatusUnauthorized, models.ErrCodeUnauthorized,
				"missing API key: send X-API-Key or Authorization: Bearer <key>")
			return
		}

		sum := sha256.Sum256([]byte(key))
		if !knownKey(digests, sum) {
			slog.Warn("request with unknown api key", "ip", c.ClientIP(), "path", c.FullPath())
			reject(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, "invalid API key")
			return
		}

		c.Set(callerKey, keyCaller(sum))
		c.Next()
	}
}

func presentedKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// knownKey compares every digest so timing does not reveal which key matched.
func knownKey(digests [][sha256.Size]byte, sum [sha256.Size]byte) bool {
	found := 0
	for _, d := range digests {
		found |= subtle.ConstantTimeCompare(d[:], sum[:])
	}
	return found == 1
}
