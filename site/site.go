// Package site maps product URLs to the extraction strategy that understands
// the retailer's markup.
package site

import (
	"net/url"
	"strings"
)

// Name identifies an extraction strategy.
type Name string

const (
	Amazon  Name = "amazon"
	EBay    Name = "ebay"
	Walmart Name = "walmart"
	Generic Name = "generic"

	// Unsupported marks hosts with bot protection strong enough that fetching
	// is pointless. No strategy carries this name.
	Unsupported Name = "unsupported"
)

// EtsyMessage is returned for Etsy listings.
const EtsyMessage = "Etsy has strong bot protection. Please manually copy the product details from the Etsy page."

// Rule binds a host fragment to a strategy.
type Rule struct {
	Fragment string
	Name     Name

	// Message explains an Unsupported match to the user.
	Message string
}

// rules is matched in order; the first fragment found in the host wins.
var rules = []Rule{
	{Fragment: "etsy.", Name: Unsupported, Message: EtsyMessage},
	{Fragment: "amazon.", Name: Amazon},
	{Fragment: "amzn.", Name: Amazon},
	{Fragment: "ebay.", Name: EBay},
	{Fragment: "walmart.", Name: Walmart},
}

// Match is the detector's verdict for one URL.
type Match struct {
	Name Name
	Host string

	// Message is set when Name is Unsupported.
	Message string
}

// Supported reports whether the page should be fetched at all.
func (m Match) Supported() bool {
	return m.Name != Unsupported
}

// Detect classifies rawURL by its host. Unparseable URLs and unknown hosts
// map to Generic; callers validate URLs before detection.
func Detect(rawURL string) Match {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Match{Name: Generic}
	}
	return DetectHost(u.Hostname())
}

// DetectHost classifies a bare hostname.
func DetectHost(host string) Match {
	host = strings.ToLower(host)
	for _, r := range rules {
		if strings.Contains(host, r.Fragment) {
			return Match{Name: r.Name, Host: host, Message: r.Message}
		}
	}
	return Match{Name: Generic, Host: host}
}
