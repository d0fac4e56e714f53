package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ysmood/gson"
)

const jsonLDSelector = `script[type="application/ld+json"]`

// jsonLD reads a field of the first schema.org Product in a JSON-LD block.
func jsonLD(field func(gson.JSON) string) FieldRule {
	return rule(jsonLDSelector, Text).each().with(func(raw string) string {
		if !json.Valid([]byte(raw)) {
			return ""
		}
		product, ok := findProduct(gson.NewFrom(raw), 0)
		if !ok {
			return ""
		}
		return field(product)
	})
}

// findProduct walks arrays and @graph containers looking for an object
// typed Product.
func findProduct(j gson.JSON, depth int) (gson.JSON, bool) {
	if depth > 4 || j.Nil() {
		return j, false
	}
	switch j.Val().(type) {
	case []interface{}:
		for _, item := range j.Arr() {
			if p, ok := findProduct(item, depth+1); ok {
				return p, true
			}
		}
	case map[string]interface{}:
		if isProduct(j.Get("@type")) {
			return j, true
		}
		if graph := j.Get("@graph"); !graph.Nil() {
			return findProduct(graph, depth+1)
		}
	}
	return j, false
}

func isProduct(t gson.JSON) bool {
	switch v := t.Val().(type) {
	case string:
		return strings.EqualFold(v, "Product")
	case []interface{}:
		for _, item := range t.Arr() {
			if isProduct(item) {
				return true
			}
		}
	}
	return false
}

// scalar renders a JSON string or number; anything else is empty.
func scalar(j gson.JSON) string {
	switch v := j.Val().(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func number(j gson.JSON) float64 {
	f, _ := strconv.ParseFloat(scalar(j), 64)
	return f
}

func ldName(p gson.JSON) string        { return scalar(p.Get("name")) }
func ldDescription(p gson.JSON) string { return scalar(p.Get("description")) }

// ldPrice reads offers.price, falling back to lowPrice for aggregate offers.
func ldPrice(p gson.JSON) string {
	offers := p.Get("offers")
	if _, ok := offers.Val().([]interface{}); ok {
		for _, o := range offers.Arr() {
			if v := offerPrice(o); v != "" {
				return v
			}
		}
		return ""
	}
	return offerPrice(offers)
}

func offerPrice(o gson.JSON) string {
	for _, key := range []string{"price", "lowPrice"} {
		if v := scalar(o.Get(key)); v != "" {
			return v
		}
	}
	return ""
}

// ldImage accepts a URL string, an ImageObject, or a list of either.
func ldImage(p gson.JSON) string {
	return imageRef(p.Get("image"))
}

func imageRef(j gson.JSON) string {
	switch j.Val().(type) {
	case string:
		return j.Str()
	case []interface{}:
		for _, item := range j.Arr() {
			if v := imageRef(item); v != "" {
				return v
			}
		}
	case map[string]interface{}:
		return scalar(j.Get("url"))
	}
	return ""
}

// largestDynamicImage picks the biggest rendition from Amazon's
// data-a-dynamic-image map of URL to [width, height].
func largestDynamicImage(raw string) string {
	if !json.Valid([]byte(raw)) {
		return ""
	}
	best, bestArea := "", -1.0
	for u, dims := range gson.NewFrom(raw).Map() {
		d := dims.Arr()
		area := 0.0
		if len(d) == 2 {
			area = number(d[0]) * number(d[1])
		}
		if area > bestArea || (area == bestArea && u < best) {
			best, bestArea = u, area
		}
	}
	return best
}
