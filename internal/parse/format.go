// ABOUTME: Document format detection and parser dispatch
// ABOUTME: Uses gofeed's feed type sniffing to tell RSS/Atom from HTML results pages

package parse

import (
	"strings"

	"github.com/harper/storefeed/internal/models"
	"github.com/mmcdole/gofeed"
)

// Format names the kind of document a source returns.
type Format string

const (
	FormatFeed    Format = "feed"    // RSS or Atom
	FormatListing Format = "listing" // HTML search-results page
	FormatAuto    Format = "auto"    // sniff the document first
)

// ParseFormat converts a config string into a Format.
func ParseFormat(s string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatFeed, FormatListing, FormatAuto:
		return f, true
	case "rss", "atom":
		return FormatFeed, true
	case "html":
		return FormatListing, true
	default:
		return "", false
	}
}

// Parse runs the parser matching format. FormatAuto sniffs the document and
// falls back to the listing-page parser when it is not a feed.
func Parse(format Format, doc string) []models.Item {
	switch format {
	case FormatFeed:
		return ParseFeed(doc)
	case FormatListing:
		return ParseListingPage(doc)
	default:
		if kind := Sniff(doc); kind == "rss" || kind == "atom" {
			return ParseFeed(doc)
		}
		return ParseListingPage(doc)
	}
}

// Sniff reports what a document looks like: "rss", "atom", "json", "html"
// or "unknown".
func Sniff(doc string) string {
	switch gofeed.DetectFeedType(strings.NewReader(doc)) {
	case gofeed.FeedTypeRSS:
		return "rss"
	case gofeed.FeedTypeAtom:
		return "atom"
	case gofeed.FeedTypeJSON:
		return "json"
	}
	head := doc
	if len(head) > 1024 {
		head = head[:1024]
	}
	head = strings.ToLower(head)
	if strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html") {
		return "html"
	}
	return "unknown"
}
