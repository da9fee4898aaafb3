// ABOUTME: RSS/Atom feed parsing by pattern matching over raw feed text
// ABOUTME: Converts <item> and <entry> blocks into normalized listing items with price and image fallbacks

package parse

import (
	"github.com/harper/storefeed/internal/extract"
	"github.com/harper/storefeed/internal/models"
)

// ParseFeed extracts listings from an RSS or Atom document. All <item>
// blocks are read first, then all <entry> blocks, so a document mixing both
// vocabularies may yield duplicates. Blocks without a title or link are
// dropped. Never fails: malformed input yields fewer items.
func ParseFeed(doc string) []models.Item {
	if doc == "" {
		return []models.Item{}
	}

	blocks := extract.Blocks(doc, "item")
	blocks = append(blocks, extract.Blocks(doc, "entry")...)

	items := make([]models.Item, 0, len(blocks))
	for _, block := range blocks {
		if item, ok := parseFeedBlock(block); ok {
			items = append(items, item)
		}
	}
	return items
}

func parseFeedBlock(block string) (models.Item, bool) {
	title := extract.DecodeEntities(extract.TagText(block, "title"))

	// RSS carries the link as text, Atom as <link href="..."/>
	link := extract.TagText(block, "link")
	if link == "" {
		link = extract.Attr(block, "link", "href")
	}
	link = extract.ResolveURL(link, ListingOrigin)

	desc := extract.TagText(block, "description")
	if desc == "" {
		desc = extract.TagText(block, "content")
	}
	// descriptions are often entity-escaped HTML
	desc = extract.DecodeEntities(desc)

	price := extract.DollarPrice(title, desc)

	image := extract.Attr(desc, "img", "src")
	if image == "" {
		image = extract.Attr(block, "media:content", "url")
	}

	item := models.NewItem(extract.ListingID(link, title), title, link, price, image)
	return item, item.Valid()
}
