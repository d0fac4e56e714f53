package extract

import "github.com/use-agent/wishgrab/site"

var amazon = Strategy{
	Name: site.Amazon,
	Title: []FieldRule{
		rule("span#productTitle").with(amazonTitle),
		rule("h1#title").with(amazonTitle),
		meta("property", "og:title").with(amazonMetaTitle),
		meta("name", "title").with(amazonMetaTitle),
		jsonLD(ldName),
	},
	Price: []FieldRule{
		rule("#corePriceDisplay_desktop_feature_div span.a-offscreen"),
		rule("#corePrice_feature_div span.a-offscreen"),
		rule("span.a-price span.a-offscreen"),
		rule("span.a-price-whole"),
		rule("#priceblock_ourprice"),
		rule("#priceblock_dealprice"),
		rule("#price_inside_buybox"),
		meta("property", "product:price:amount"),
		meta("property", "og:price:amount"),
		jsonLD(ldPrice),
	},
	Description: []FieldRule{
		rule("div#feature-bullets"),
		rule("div#productDescription"),
		meta("property", "og:description"),
		meta("name", "description"),
		jsonLD(ldDescription),
	},
	Image: []FieldRule{
		meta("property", "og:image"),
		rule("img#landingImage", "data-old-hires"),
		rule("img#landingImage", "data-a-dynamic-image").with(largestDynamicImage),
		rule("img#landingImage", "src"),
		rule("img#imgBlkFront", "data-old-hires", "src"),
		rule(`img[data-a-image-name="landingImage"]`, "data-old-hires", "src"),
		jsonLD(ldImage),
	},
	Gallery: []FieldRule{
		rule("img.a-dynamic-image", "data-old-hires", "src"),
		rule("#altImages img", "src"),
		rule("img.imageThumbnail", "src"),
	},
	ImageRewrite: amazonImage,
}

var ebay = Strategy{
	Name: site.EBay,
	Title: []FieldRule{
		rule("h1.x-item-title__mainTitle"),
		rule("h1.x-item-title"),
		meta("property", "og:title").with(ebayTitle),
		jsonLD(ldName),
		rule("h1"),
	},
	Price: []FieldRule{
		rule("div.x-price-primary"),
		rule(`[itemprop="price"]`, "content", Text),
		meta("property", "product:price:amount"),
		jsonLD(ldPrice),
	},
	Description: []FieldRule{
		meta("property", "og:description"),
		meta("name", "description"),
		rule("div.x-item-description"),
		jsonLD(ldDescription),
	},
	Image: []FieldRule{
		meta("property", "og:image"),
		rule("img#icImg", "src", "data-src"),
		rule(`img[itemprop="image"]`, "src", "data-src"),
		jsonLD(ldImage),
	},
	Gallery: []FieldRule{
		rule(".ux-image-carousel-item img", "data-zoom-src", "src", "data-src"),
		rule("img.ux-image-carousel-item", "src", "data-src"),
		rule("img.img-pct", "src"),
	},
	ImageRewrite: ebayImage,
}

var walmart = Strategy{
	Name: site.Walmart,
	Title: []FieldRule{
		rule(`h1[itemprop="name"]`),
		rule("h1#main-title"),
		meta("property", "og:title"),
		jsonLD(ldName),
	},
	Price: []FieldRule{
		rule(`span[itemprop="price"]`, "content", Text),
		rule(`[data-seo-id="hero-price"]`),
		meta("property", "product:price:amount"),
		jsonLD(ldPrice),
	},
	Description: []FieldRule{
		rule(`div[itemprop="description"]`),
		meta("property", "og:description"),
		meta("name", "description"),
		jsonLD(ldDescription),
	},
	Image: []FieldRule{
		rule(`img[itemprop="image"]`, "src"),
		meta("property", "og:image"),
		jsonLD(ldImage),
	},
	Gallery: []FieldRule{
		rule("img.hover-zoom-hero-image", "src"),
		rule("img.prod-hero-image", "src"),
		rule(`[data-testid="vertical-carousel-container"] img`, "src"),
	},
	ImageRewrite: walmartImage,
}

// generic leans on standardized metadata: Open Graph, Twitter cards,
// schema.org microdata and JSON-LD, then readability.
var generic = Strategy{
	Name: site.Generic,
	Title: []FieldRule{
		meta("property", "og:title"),
		meta("name", "twitter:title"),
		meta("property", "twitter:title"),
		jsonLD(ldName),
		rule(`h1[itemprop="name"]`),
		rule(`[itemprop="name"]`, "content"),
		rule(`h1[class*="product"][class*="title"]`),
		rule("title"),
		docMeta(ReadableTitle),
	},
	Price: []FieldRule{
		meta("property", "product:price:amount"),
		meta("property", "og:price:amount"),
		rule(`[itemprop="price"]`, "content", Text),
		jsonLD(ldPrice),
		rule(`span[class*="price"]`),
	},
	Description: []FieldRule{
		meta("property", "og:description"),
		meta("name", "description"),
		meta("name", "twitter:description"),
		rule(`[itemprop="description"]`, "content", Text),
		jsonLD(ldDescription),
		docMeta(ReadableExcerpt),
	},
	Image: []FieldRule{
		meta("property", "og:image"),
		meta("property", "og:image:secure_url"),
		meta("name", "twitter:image"),
		meta("property", "twitter:image"),
		rule(`img[itemprop="image"]`, "src", "data-src"),
		rule(`link[rel="image_src"]`, "href"),
		jsonLD(ldImage),
	},
	Gallery: []FieldRule{
		meta("property", "og:image"),
		meta("property", "og:image:secure_url"),
		meta("name", "twitter:image"),
		rule("img.product-image", "src", "data-src"),
		rule("img.main-image", "src", "data-src"),
	},
}

var strategies = map[site.Name]*Strategy{
	site.Amazon:  &amazon,
	site.EBay:    &ebay,
	site.Walmart: &walmart,
	site.Generic: &generic,
}

// For returns the strategy registered for a site. Unsupported sites have
// none.
func For(name site.Name) (*Strategy, bool) {
	s, ok := strategies[name]
	return s, ok
}

// Generic returns the fallback strategy.
func Generic() *Strategy {
	return &generic
}
