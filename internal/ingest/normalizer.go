package ingest

import (
	"errors"
	"html"
	"net/url"

	"github.com/microcosm-cc/bluemonday"

	"github.com/didim/welfare-matcher/internal/models"
)

var (
	errMissingName = errors.New("product name is empty")
	errInvalidLink = errors.New("product link is not an absolute http(s) URL")
)

// textPolicy strips every tag; listing text is stored as plain text.
var textPolicy = bluemonday.StrictPolicy()

func plainText(s string) string {
	return normalizeSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// NormalizeProduct turns a listing card into a pending catalog product of
// the source's domain and category.
func NormalizeProduct(raw RawProduct, src SourceConfig) (models.Product, error) {
	name := plainText(raw.Name)
	if name == "" {
		return models.Product{}, errMissingName
	}

	link := CanonicalizeURL(raw.Link)
	if !isHTTPURL(link) {
		return models.Product{}, errInvalidLink
	}

	p := models.Product{
		Name:         name,
		Domain:       src.Domain,
		Category:     src.Category,
		PurchaseLink: link,
		SourceURL:    link,
		Source:       src.ID,
		Status:       models.ProductPending,
	}
	if price, ok := parsePriceKRW(plainText(raw.PriceText)); ok {
		p.Price = price
	}
	if isHTTPURL(raw.ImageURL) {
		p.ImageURL = raw.ImageURL
	}

	tags := mergeUniqueFold(nil, src.DefaultTags)
	for _, t := range raw.Tags {
		tags = appendUnique(tags, plainText(t))
	}
	if tags == nil {
		tags = []string{}
	}
	p.Tags = tags
	return p, nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
