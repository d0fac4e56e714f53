package models

// ScrapeResponse is the response for POST /api/v1/scrape and /api/v1/parse.
type ScrapeResponse struct {
	// Success indicates whether a product name was extracted.
	Success bool `json:"success"`

	// Data holds the extracted product. Nil on failure.
	Data *ProductData `json:"data,omitempty"`

	// SourceURL echoes the requested URL.
	SourceURL string `json:"source_url,omitempty"`

	// Strategy names the extraction strategy that produced the name. Other
	// fields may come from the retailer strategy; see ProductRecord.Strategy.
	Strategy string `json:"strategy,omitempty"`

	// FetchedVia names the transport that delivered the page.
	FetchedVia string `json:"fetched_via,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent handling a request.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`
}

// NewScrapeResponse converts a ProductRecord into its API shape.
func NewScrapeResponse(rec *ProductRecord) *ScrapeResponse {
	resp := &ScrapeResponse{
		Success:    rec.Success,
		SourceURL:  rec.SourceURL,
		Strategy:   rec.Strategy,
		FetchedVia: rec.FetchedVia,
	}
	if rec.Success {
		data := rec.ProductData
		if data.Images == nil {
			data.Images = []string{}
		}
		resp.Data = &data
		return resp
	}
	resp.Error = rec.Err().ToDetail()
	return resp
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status     string   `json:"status"` // "healthy" or "degraded"
	Uptime     string   `json:"uptime"`
	Transports []string `json:"transports"`
	Version    string   `json:"version"`
}
