package middleware

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/wishgrab/models"
)

const callerKey = "wishgrab.caller"

// Caller is who a request is accounted to. Raw API keys never leave Auth.
type Caller struct {
	// ID is "key:<fingerprint>" for authenticated callers and "ip:<addr>"
	// for everyone else.
	ID            string
	Authenticated bool
}

// CallerOf returns the caller recorded by Auth, falling back to the client IP.
func CallerOf(c *gin.Context) Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(Caller); ok {
			return caller
		}
	}
	return Caller{ID: "ip:" + c.ClientIP()}
}

func keyCaller(digest [sha256.Size]byte) Caller {
	return Caller{ID: "key:" + hex.EncodeToString(digest[:6]), Authenticated: true}
}

// reject aborts with the failed-record body the scrape endpoints use.
func reject(c *gin.Context, status int, code, message string) {
	rec := models.Failed("", models.NewScrapeError(code, message, nil))
	c.AbortWithStatusJSON(status, models.NewScrapeResponse(rec))
}
