package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/wishgrab/models"
	"github.com/use-agent/wishgrab/site"
)

func mustParse(t *testing.T, sourceURL, body string) *Document {
	t.Helper()
	doc, err := Parse(sourceURL, body)
	require.NoError(t, err)
	return doc
}

func run(t *testing.T, name site.Name, sourceURL, body string) models.ProductData {
	t.Helper()
	s, ok := For(name)
	require.True(t, ok, "no strategy for %s", name)
	return Run(mustParse(t, sourceURL, body), s)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"$1,299.99", 1299.99, true},
		{"1299.99 USD", 1299.99, true},
		{"Only 19.99!", 19.99, true},
		{"US $149.00", 149, true},
		{"$25", 25, true},
		{"Free", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParsePrice(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestAcceptDescription(t *testing.T) {
	_, ok := acceptDescription("Too short to keep.")
	assert.False(t, ok)

	_, ok = acceptDescription(strings.Repeat("x", 20))
	assert.False(t, ok, "exactly 20 characters is rejected")

	got, ok := acceptDescription("  A   perfectly\n\tfine product description.  ")
	require.True(t, ok)
	assert.Equal(t, "A perfectly fine product description.", got)

	got, ok = acceptDescription(strings.Repeat("é", 800))
	require.True(t, ok)
	assert.Equal(t, 500, len([]rune(got)))
}

func TestAmazonTitle(t *testing.T) {
	tests := []struct {
		in, node, meta string
	}{
		{"Amazon.com: Widget", "Widget", "Widget"},
		{"Amazon.co.uk: Widget : Home & Kitchen", "Widget : Home & Kitchen", "Widget"},
		{"amazon.de:Bürostuhl", "Bürostuhl", "Bürostuhl"},
		{"Echo Dot (5th Gen) : Amazon.com: Devices", "Echo Dot (5th Gen) : Amazon.com: Devices", "Echo Dot (5th Gen)"},
		{"Amazon Basics USB Cable", "Amazon Basics USB Cable", "Amazon Basics USB Cable"},
		{"Amazon.com", "Amazon.com", ""},
		{"Amazon.co.uk", "Amazon.co.uk", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.node, amazonTitle(tt.in), tt.in)
		assert.Equal(t, tt.meta, amazonMetaTitle(tt.in), tt.in)
	}
}

func TestImageRewrites(t *testing.T) {
	assert.Equal(t,
		"https://m.media-amazon.com/images/I/71abc.jpg",
		amazonImage("https://m.media-amazon.com/images/I/71abc._AC_SX679_.jpg"))
	assert.Equal(t,
		"https://m.media-amazon.com/images/I/71abc.jpg",
		amazonImage("https://m.media-amazon.com/images/I/71abc.jpg"))
	assert.Equal(t,
		"https://i.ebayimg.com/images/g/xyz/s-l1600.webp",
		ebayImage("https://i.ebayimg.com/images/g/xyz/s-l500.webp"))
	assert.Equal(t,
		"https://i5.walmartimages.com/asr/abc.jpeg",
		walmartImage("https://i5.walmartimages.com/asr/abc.jpeg?odnHeight=450&odnWidth=450&odnBg=FFFFFF"))
	assert.Equal(t,
		"https://i5.walmartimages.com/asr/abc.jpeg?v=2",
		walmartImage("https://i5.walmartimages.com/asr/abc.jpeg?odnHeight=450&v=2"))
}

func TestForUnsupported(t *testing.T) {
	_, ok := For(site.Unsupported)
	assert.False(t, ok)
	assert.Equal(t, site.Generic, Generic().Name)
}

const amazonPage = `<!doctype html><html><head><title>Amazon.com</title></head><body>
<span id="productTitle">
    Acme   Anvil, Heavy Duty
</span>
<div id="corePrice_feature_div"><span class="a-price"><span class="a-offscreen">$1,299.99</span></span></div>
<div id="feature-bullets"><ul>
  <li>Forged from a single block of steel.</li>
  <li>Trusted by coyotes everywhere.</li>
</ul></div>
<img id="landingImage" class="a-dynamic-image"
     data-old-hires="https://m.media-amazon.com/images/I/71main._AC_SL1500_.jpg"
     src="https://m.media-amazon.com/images/I/71main._AC_SX300_.jpg">
<div id="altImages">
  <img src="https://m.media-amazon.com/images/I/71main._AC_US40_.jpg">
  <img src="https://m.media-amazon.com/images/I/41a._AC_US40_.jpg">
  <img src="https://m.media-amazon.com/images/I/41b._AC_US40_.jpg">
  <img src="https://m.media-amazon.com/images/I/41b._AC_US40_.jpg">
  <img src="https://m.media-amazon.com/images/I/41c._AC_US40_.jpg">
  <img src="https://m.media-amazon.com/images/I/41d._AC_US40_.jpg">
  <img src="https://m.media-amazon.com/images/I/41e._AC_US40_.jpg">
</div>
</body></html>`

func TestRunAmazon(t *testing.T) {
	data := run(t, site.Amazon, "https://www.amazon.com/dp/B000", amazonPage)

	assert.Equal(t, "Acme Anvil, Heavy Duty", data.Name)
	require.NotNil(t, data.Price)
	assert.InDelta(t, 1299.99, *data.Price, 1e-9)
	assert.Equal(t, "Forged from a single block of steel. Trusted by coyotes everywhere.", data.Description)
	assert.Equal(t, "https://m.media-amazon.com/images/I/71main.jpg", data.ImageURL)
	assert.Equal(t, []string{
		"https://m.media-amazon.com/images/I/71main.jpg",
		"https://m.media-amazon.com/images/I/41a.jpg",
		"https://m.media-amazon.com/images/I/41b.jpg",
		"https://m.media-amazon.com/images/I/41c.jpg",
		"https://m.media-amazon.com/images/I/41d.jpg",
	}, data.Images)
}

func TestRunAmazonOpenGraphTitle(t *testing.T) {
	body := `<html><head><meta property="og:title" content="Amazon.com: Widget"></head><body></body></html>`
	data := run(t, site.Amazon, "https://www.amazon.com/dp/X", body)

	assert.Equal(t, "Widget", data.Name)
	assert.Nil(t, data.Price)
	assert.Empty(t, data.ImageURL)
	assert.NotNil(t, data.Images)
	assert.Empty(t, data.Images)
}

func TestRunAmazonProductTitleKeepsColon(t *testing.T) {
	body := `<html><head><meta name="title" content="Amazon.com: Star Wars : The Clone Wars : Movies &amp; TV"></head>
<body><span id="productTitle"> Star Wars : The Clone Wars Complete Series </span></body></html>`
	data := run(t, site.Amazon, "https://www.amazon.com/dp/SW", body)
	assert.Equal(t, "Star Wars : The Clone Wars Complete Series", data.Name)

	body = `<html><head><meta name="title" content="Amazon.com: Star Wars : Movies &amp; TV"></head><body></body></html>`
	data = run(t, site.Amazon, "https://www.amazon.com/dp/SW", body)
	assert.Equal(t, "Star Wars", data.Name)
}

func TestRunPriceSkipsRuleWithoutDigits(t *testing.T) {
	body := `<html><head>
<meta property="og:title" content="Hand-thrown Vase">
<meta property="product:price:amount" content="Call for price">
<meta property="og:price:amount" content="42.50">
</head><body></body></html>`
	data := run(t, site.Generic, "https://pottery.example/vase", body)

	assert.Equal(t, "Hand-thrown Vase", data.Name)
	require.NotNil(t, data.Price)
	assert.InDelta(t, 42.50, *data.Price, 1e-9)
}

func TestRunAmazonDynamicImage(t *testing.T) {
	body := `<html><body><span id="productTitle">Lamp</span>
<img id="landingImage" data-a-dynamic-image='{"https://m.media-amazon.com/images/I/small._SX38_.jpg":[38,38],"https://m.media-amazon.com/images/I/big._SX679_.jpg":[679,679]}'>
</body></html>`
	data := run(t, site.Amazon, "https://www.amazon.com/dp/L", body)
	assert.Equal(t, "https://m.media-amazon.com/images/I/big.jpg", data.ImageURL)
}

const ebayPage = `<html><head>
<meta property="og:title" content="Vintage Rangefinder Camera | eBay">
<meta property="og:description" content="Fully working vintage rangefinder with original leather case.">
</head><body>
<h1 class="x-item-title__mainTitle"><span class="ux-textspans">Vintage Rangefinder Camera</span></h1>
<div class="x-price-primary"><span class="ux-textspans">US $149.00</span></div>
<img id="icImg" src="https://i.ebayimg.com/images/g/abc/s-l500.jpg">
<div class="ux-image-carousel-item"><img data-zoom-src="https://i.ebayimg.com/images/g/abc/s-l1600.jpg" src="https://i.ebayimg.com/images/g/abc/s-l140.jpg"></div>
<div class="ux-image-carousel-item"><img src="https://i.ebayimg.com/images/g/def/s-l140.jpg"></div>
</body></html>`

func TestRunEbay(t *testing.T) {
	data := run(t, site.EBay, "https://www.ebay.com/itm/1", ebayPage)

	assert.Equal(t, "Vintage Rangefinder Camera", data.Name)
	require.NotNil(t, data.Price)
	assert.InDelta(t, 149.0, *data.Price, 1e-9)
	assert.Equal(t, "Fully working vintage rangefinder with original leather case.", data.Description)
	assert.Equal(t, "https://i.ebayimg.com/images/g/abc/s-l1600.jpg", data.ImageURL)
	assert.Equal(t, []string{
		"https://i.ebayimg.com/images/g/abc/s-l1600.jpg",
		"https://i.ebayimg.com/images/g/def/s-l1600.jpg",
	}, data.Images)
}

func TestRunEbayOpenGraphTitleSuffix(t *testing.T) {
	body := `<html><head><meta property="og:title" content="Brass Compass | eBay"></head></html>`
	data := run(t, site.EBay, "https://www.ebay.com/itm/2", body)
	assert.Equal(t, "Brass Compass", data.Name)
}

const walmartPage = `<html><body>
<h1 itemprop="name">Great Value Ground Coffee, 24 oz</h1>
<span itemprop="price" content="8.97">$8.97</span>
<div itemprop="description"><p>Medium roast ground coffee with a smooth, balanced flavor.</p></div>
<img itemprop="image" src="https://i5.walmartimages.com/asr/coffee.jpeg?odnHeight=612&odnWidth=612&odnBg=FFFFFF">
<img class="hover-zoom-hero-image" src="https://i5.walmartimages.com/asr/coffee.jpeg?odnHeight=2000&odnWidth=2000">
<img class="hover-zoom-hero-image" src="https://i5.walmartimages.com/asr/coffee-back.jpeg?odnHeight=2000">
</body></html>`

func TestRunWalmart(t *testing.T) {
	data := run(t, site.Walmart, "https://www.walmart.com/ip/123", walmartPage)

	assert.Equal(t, "Great Value Ground Coffee, 24 oz", data.Name)
	require.NotNil(t, data.Price)
	assert.InDelta(t, 8.97, *data.Price, 1e-9)
	assert.Equal(t, "Medium roast ground coffee with a smooth, balanced flavor.", data.Description)
	assert.Equal(t, "https://i5.walmartimages.com/asr/coffee.jpeg", data.ImageURL)
	assert.Equal(t, []string{
		"https://i5.walmartimages.com/asr/coffee.jpeg",
		"https://i5.walmartimages.com/asr/coffee-back.jpeg",
	}, data.Images)
}

func TestRunGenericOpenGraph(t *testing.T) {
	body := `<html><head>
<meta property="og:title" content="Cool Gadget">
<meta property="og:image" content="https://cdn.example/cool.jpg">
</head><body></body></html>`
	data := run(t, site.Generic, "https://unknownshop.example/p/1", body)

	assert.Equal(t, "Cool Gadget", data.Name)
	assert.Nil(t, data.Price)
	assert.Equal(t, "https://cdn.example/cool.jpg", data.ImageURL)
	assert.Equal(t, []string{"https://cdn.example/cool.jpg"}, data.Images)
}

func TestRunGenericJSONLD(t *testing.T) {
	body := `<html><head><title>Shop | Thing</title>
<script type="application/ld+json">{not json</script>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Organization","name":"Shop"}</script>
<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
  {"@type":"BreadcrumbList"},
  {"@type":["Product","Thing"],"name":"Thing Deluxe",
   "description":"The deluxe edition of the thing, now with extra parts.",
   "image":[{"@type":"ImageObject","url":"https://cdn.shop.example/thing.jpg"}],
   "offers":[{"@type":"Offer","price":49.5,"priceCurrency":"USD"}]}
]}
</script></head><body></body></html>`
	data := run(t, site.Generic, "https://shop.example/thing", body)

	assert.Equal(t, "Thing Deluxe", data.Name)
	require.NotNil(t, data.Price)
	assert.InDelta(t, 49.5, *data.Price, 1e-9)
	assert.Equal(t, "The deluxe edition of the thing, now with extra parts.", data.Description)
	assert.Equal(t, "https://cdn.shop.example/thing.jpg", data.ImageURL)
	assert.Equal(t, []string{"https://cdn.shop.example/thing.jpg"}, data.Images)
}

func TestRunGenericImages(t *testing.T) {
	body := `<html><head>
<meta property="og:image" content="/img/front.png">
<meta property="og:image" content="data:image/png;base64,AAAA">
<meta property="og:image" content="https://shop.example/img/front.png">
<meta property="og:image" content="https://shop.example/img/2.png">
<meta property="og:image" content="https://shop.example/img/3.png">
<meta property="og:image" content="https://shop.example/img/4.png">
<meta property="og:image" content="https://shop.example/img/5.png">
<meta property="og:image" content="https://shop.example/img/6.png">
</head><body><h1 class="product-title main">Thing</h1></body></html>`
	data := run(t, site.Generic, "https://shop.example/p/1", body)

	assert.Equal(t, "https://shop.example/img/front.png", data.ImageURL)
	assert.Len(t, data.Images, models.MaxImages)
	assert.Equal(t, data.ImageURL, data.Images[0])
	seen := map[string]bool{}
	for _, u := range data.Images {
		assert.False(t, seen[u], "duplicate %s", u)
		assert.True(t, strings.HasPrefix(u, "http"))
		seen[u] = true
	}
}

func TestRunGenericTitleFallbacks(t *testing.T) {
	body := `<html><head><title>  Fallback   Title </title></head>
<body><h1 class="product-title">Heading Title</h1><span class="sale-price">Now $12.50</span></body></html>`
	data := run(t, site.Generic, "https://shop.example/p/2", body)

	assert.Equal(t, "Heading Title", data.Name)
	require.NotNil(t, data.Price)
	assert.InDelta(t, 12.5, *data.Price, 1e-9)
}

func TestRunGenericReadableExcerpt(t *testing.T) {
	para := "The expedition backpack is built from waterproof ripstop nylon and carries forty liters of gear across any terrain. "
	body := `<html><head><title>Backpack</title></head><body><article>` +
		`<p>` + strings.Repeat(para, 3) + `</p>` +
		`<p>` + strings.Repeat("Padded straps spread the load evenly over long days on the trail. ", 4) + `</p>` +
		`<p>` + strings.Repeat("Every seam is taped and every zipper is sealed against the weather. ", 4) + `</p>` +
		`</article></body></html>`
	data := run(t, site.Generic, "https://outdoor.example/backpack", body)

	assert.Equal(t, "Backpack", data.Name)
	assert.Contains(t, data.Description, "expedition backpack")
}

func TestRunEmptyDocument(t *testing.T) {
	for _, name := range []site.Name{site.Amazon, site.EBay, site.Walmart, site.Generic} {
		data := run(t, name, "https://example.com/", "<html><body><p>nothing here</p></body></html>")
		assert.Empty(t, data.Name, name)
		assert.Nil(t, data.Price, name)
		assert.NotNil(t, data.Images, name)
	}
}
