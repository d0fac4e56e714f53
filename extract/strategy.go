package extract

import (
	"github.com/use-agent/wishgrab/models"
	"github.com/use-agent/wishgrab/site"
)

// Strategy is an ordered rule cascade per product field. Strategies are
// plain data; Run interprets them.
type Strategy struct {
	Name        site.Name
	Title       []FieldRule
	Price       []FieldRule
	Description []FieldRule
	Image       []FieldRule
	Gallery     []FieldRule

	// ImageRewrite, if set, maps every accepted image URL to the
	// retailer's full-size rendition.
	ImageRewrite Transform
}

// Run extracts product fields from doc. Fields no rule satisfies stay
// zero; Images is never nil.
func Run(doc *Document, s *Strategy) models.ProductData {
	var data models.ProductData

	data.Name, _ = cascade(doc, s.Title, acceptName)
	if price, ok := cascade(doc, s.Price, acceptPrice); ok {
		data.Price = &price
	}
	data.Description, _ = cascade(doc, s.Description, acceptDescription)

	acceptImage := func(raw string) (string, bool) {
		return doc.acceptImage(raw, s.ImageRewrite)
	}
	data.ImageURL, _ = cascade(doc, s.Image, acceptImage)
	data.Images = gallery(doc, data.ImageURL, s.Gallery, acceptImage)
	if data.ImageURL == "" && len(data.Images) > 0 {
		data.ImageURL = data.Images[0]
	}
	return data
}

// cascade returns the first candidate, in rule order, that accept takes.
func cascade[T any](doc *Document, rules []FieldRule, accept func(string) (T, bool)) (T, bool) {
	for _, r := range rules {
		for _, raw := range r.candidates(doc, false) {
			if v, ok := accept(raw); ok {
				return v, true
			}
		}
	}
	var zero T
	return zero, false
}

// gallery collects up to models.MaxImages distinct images, primary first.
func gallery(doc *Document, primary string, rules []FieldRule, accept func(string) (string, bool)) []string {
	images := make([]string, 0, models.MaxImages)
	seen := make(map[string]struct{}, models.MaxImages)
	add := func(u string) {
		if _, dup := seen[u]; dup || len(images) >= models.MaxImages {
			return
		}
		seen[u] = struct{}{}
		images = append(images, u)
	}

	if primary != "" {
		add(primary)
	}
	for _, r := range rules {
		for _, raw := range r.candidates(doc, true) {
			if len(images) >= models.MaxImages {
				return images
			}
			if u, ok := accept(raw); ok {
				add(u)
			}
		}
	}
	return images
}
