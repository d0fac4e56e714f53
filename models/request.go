package models

// ScrapeRequest is the payload for POST /api/v1/scrape.
type ScrapeRequest struct {
	// URL is the product page to scrape. Required; must be an absolute
	// http or https URL (checked again by the scraper).
	URL string `json:"url" binding:"required"`
}

// ParseRequest is the payload for POST /api/v1/parse. It lets a caller that
// already fetched the page run extraction without a second download.
type ParseRequest struct {
	// URL is the page the HTML came from. It selects the strategy.
	URL string `json:"url" binding:"required"`

	// HTML is the raw document.
	HTML string `json:"html" binding:"required"`
}
