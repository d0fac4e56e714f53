package models

// MaxImages caps ProductData.Images.
const MaxImages = 5

// ProductData holds the extracted product fields. Everything except Name is
// best-effort and may be empty.
type ProductData struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	Images      []string `json:"images"`
}

// ProductRecord is the result of one scrape. Success implies a non-empty Name;
// on failure ErrorCode and ErrorMessage explain why.
type ProductRecord struct {
	ProductData

	Success      bool
	ErrorCode    string
	ErrorMessage string

	// SourceURL is the URL the caller asked for.
	SourceURL string

	// Strategy names the extraction strategy that produced Name
	// ("amazon", "ebay", "walmart", "generic"). When it is "generic" on a
	// retailer host, price, description and images may still come from
	// the retailer strategy, which fills whatever generic left empty.
	Strategy string

	// FetchedVia names the transport that delivered the document
	// (e.g. "direct", "passthrough:api.allorigins.win"). Empty for
	// caller-supplied HTML.
	FetchedVia string
}

// Failed builds an unsuccessful record from a ScrapeError.
func Failed(sourceURL string, err *ScrapeError) *ProductRecord {
	return &ProductRecord{
		ProductData:  ProductData{Images: []string{}},
		SourceURL:    sourceURL,
		ErrorCode:    err.Code,
		ErrorMessage: err.Message,
	}
}

// Err returns the record's failure as a ScrapeError, or nil on success.
func (r *ProductRecord) Err() *ScrapeError {
	if r.Success {
		return nil
	}
	return &ScrapeError{Code: r.ErrorCode, Message: r.ErrorMessage}
}
