package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	minDescriptionLen = 20
	maxDescriptionLen = 500
)

var (
	priceNumber = regexp.MustCompile(`\d+(\.\d+)?`)

	amazonSitePrefix = regexp.MustCompile(`(?i)^amazon(\.[a-z]{2,3})*\s*:\s*`)
	amazonBareName   = regexp.MustCompile(`(?i)^amazon(\.[a-z]{2,3})*$`)
	amazonSizeSuffix = regexp.MustCompile(`\._[^/]*_\.([A-Za-z]+)$`)

	ebayTitleSuffix = regexp.MustCompile(`(?i)\s*\|\s*ebay\s*$`)
	ebaySize        = regexp.MustCompile(`/s-l\d+\.([A-Za-z]+)`)
)

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParsePrice reads the first decimal number out of a display price after
// dropping thousands separators. "$1,299.99" yields 1299.99.
func ParsePrice(raw string) (float64, bool) {
	m := priceNumber.FindString(strings.ReplaceAll(raw, ",", ""))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func acceptName(raw string) (string, bool) {
	v := collapseSpace(raw)
	return v, v != ""
}

func acceptPrice(raw string) (float64, bool) {
	return ParsePrice(raw)
}

// acceptDescription keeps descriptions longer than 20 characters,
// truncated to 500.
func acceptDescription(raw string) (string, bool) {
	v := collapseSpace(raw)
	r := []rune(v)
	if len(r) <= minDescriptionLen {
		return "", false
	}
	if len(r) > maxDescriptionLen {
		v = string(r[:maxDescriptionLen])
	}
	return v, true
}

// acceptImage resolves raw against the page and requires an http(s) URL.
func (d *Document) acceptImage(raw string, rewrite Transform) (string, bool) {
	v := d.absolute(strings.TrimSpace(raw))
	if !strings.HasPrefix(v, "http") {
		return "", false
	}
	if rewrite != nil {
		v = rewrite(v)
	}
	return v, v != ""
}

// amazonTitle drops the "Amazon.com:" store prefix. The visible title node
// is otherwise taken as-is; product names may contain " : ".
func amazonTitle(s string) string {
	return strings.TrimSpace(amazonSitePrefix.ReplaceAllString(s, ""))
}

// amazonMetaTitle cleans page metadata titles, which append a
// " : Category" breadcrumb and on non-product pages carry only the
// store name.
func amazonMetaTitle(s string) string {
	s = amazonTitle(s)
	if i := strings.Index(s, " : "); i > 0 {
		s = strings.TrimSpace(s[:i])
	}
	if amazonBareName.MatchString(s) {
		return ""
	}
	return s
}

func ebayTitle(s string) string {
	s = strings.TrimSpace(ebayTitleSuffix.ReplaceAllString(s, ""))
	if strings.EqualFold(s, "ebay") {
		return ""
	}
	return s
}

// amazonImage strips the sizing segment, e.g. "71x._AC_SX679_.jpg" -> "71x.jpg".
func amazonImage(u string) string {
	return amazonSizeSuffix.ReplaceAllString(u, ".$1")
}

// ebayImage requests the largest rendition eBay serves.
func ebayImage(u string) string {
	return ebaySize.ReplaceAllString(u, "/s-l1600.$1")
}

// walmartImage removes the odn* resize parameters.
func walmartImage(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.RawQuery == "" {
		return u
	}
	q := parsed.Query()
	changed := false
	for key := range q {
		if strings.HasPrefix(key, "odn") {
			q.Del(key)
			changed = true
		}
	}
	if !changed {
		return u
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}
