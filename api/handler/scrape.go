package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/wishgrab/models"
	"github.com/use-agent/wishgrab/scraper"
)

// Scrape returns a handler for POST /api/v1/scrape.
func Scrape(sc *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err.Error())
			return
		}

		rec := sc.ScrapeProductURL(c.Request.Context(), req.URL)
		respond(c, rec, start)
	}
}

// Parse returns a handler for POST /api/v1/parse. The caller supplies the
// HTML, so nothing is fetched.
func Parse(sc *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.ParseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err.Error())
			return
		}

		rec := sc.ScrapeHTML(req.URL, req.HTML)
		respond(c, rec, start)
	}
}

// respond writes a ProductRecord with the status matching its error code.
func respond(c *gin.Context, rec *models.ProductRecord, start time.Time) {
	resp := models.NewScrapeResponse(rec)
	resp.Timing = models.TimingInfo{TotalMs: time.Since(start).Milliseconds()}

	status := http.StatusOK
	if !rec.Success {
		status = statusFor(rec.ErrorCode)
	}
	c.JSON(status, resp)
}

func invalidInput(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.ScrapeResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeInvalidInput,
			Message: msg,
		},
	})
}

// statusFor translates error codes to HTTP status codes.
func statusFor(code string) int {
	switch code {
	case models.ErrCodeInvalidURL, models.ErrCodeUnsupportedSite, models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeExtractionFailed:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeFetchFailed:
		return http.StatusBadGateway // 502
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
