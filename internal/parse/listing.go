// ABOUTME: Search-results page parsing by pattern matching over listing card markup
// ABOUTME: Locates result cards and extracts title, price, image and listing URL with fallbacks

package parse

import (
	"strings"

	"github.com/harper/storefeed/internal/extract"
	"github.com/harper/storefeed/internal/models"
)

// Class markers used by the marketplace's search-results markup.
const (
	CardMarker  = "s-item"
	TitleMarker = "s-item__title"
	PriceMarker = "s-item__price"
)

// ListingOrigin is used to resolve relative listing and image URLs.
const ListingOrigin = "https://www.ebay.com/"

// ghostCardTitle is the title of a template card the results page always
// renders before the real results.
const ghostCardTitle = "Shop on eBay"

// headings are tried in order when looking for a card title
var headings = []string{"h3", "h2", "h4", "h1", "h5", "h6"}

// ParseListingPage extracts listings from a search-results HTML document.
// Only <li> cards whose own class contains CardMarker and whose link points
// at a listing page are kept. Never fails: malformed input yields fewer items.
func ParseListingPage(doc string) []models.Item {
	if doc == "" {
		return []models.Item{}
	}

	items := []models.Item{}
	for _, card := range extract.ClassBlocks(doc, "li", CardMarker) {
		if item, ok := parseCard(card); ok {
			items = append(items, item)
		}
	}
	return items
}

func parseCard(card string) (models.Item, bool) {
	href := extract.Attr(card, "a", "href")
	if !strings.Contains(href, extract.ListingPathMarker) {
		return models.Item{}, false
	}
	href = extract.ResolveURL(href, ListingOrigin)

	title := cardTitle(card)
	if title == ghostCardTitle {
		return models.Item{}, false
	}

	price := extract.NumericPrice(extract.CleanText(extract.ClassText(card, PriceMarker)))

	image := extract.Attr(card, "img", "src")
	if image == "" || strings.HasPrefix(image, "data:") {
		image = extract.Attr(card, "img", "data-src")
	}
	if image != "" {
		image = extract.ResolveURL(image, ListingOrigin)
	}

	item := models.NewItem(extract.ListingID(href, title), title, href, price, image)
	return item, item.Valid()
}

func cardTitle(card string) string {
	for _, h := range headings {
		if title := extract.CleanText(extract.TagText(card, h)); title != "" {
			return title
		}
	}
	if title := extract.CleanText(extract.ClassText(card, TitleMarker)); title != "" {
		return title
	}
	return extract.CleanText(extract.TagText(card, "span"))
}
