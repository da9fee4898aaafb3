// ABOUTME: Listing-specific field helpers shared by the feed and listing-page parsers
// ABOUTME: Derives listing ids from URLs, parses prices and resolves relative URLs

package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ListingPathMarker is the path segment that precedes a listing id in marketplace URLs.
const ListingPathMarker = "/itm/"

var (
	dollarPattern  = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]{2})?)`)
	numberPattern  = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)
	nonDigit       = regexp.MustCompile(`[^0-9]`)
	nonPriceSymbol = regexp.MustCompile(`[^0-9.]`)
)

// ListingID derives the display key for a listing. It takes the part of
// rawURL after the first "/itm/", drops the query and fragment, and keeps the
// digits. Titled URLs (/itm/some-title/123) prefer the last all-digit segment.
// Falls back to rawURL, then to title.
func ListingID(rawURL, title string) string {
	if _, after, found := strings.Cut(rawURL, ListingPathMarker); found {
		if i := strings.IndexAny(after, "?#"); i >= 0 {
			after = after[:i]
		}
		segments := strings.Split(after, "/")
		for i := len(segments) - 1; i >= 0; i-- {
			if s := segments[i]; s != "" && nonDigit.FindStringIndex(s) == nil {
				return s
			}
		}
		if id := nonDigit.ReplaceAllString(after, ""); id != "" {
			return id
		}
	}
	if rawURL != "" {
		return rawURL
	}
	return title
}

// DollarPrice returns the first "$12" or "$ 12.34" amount found, searching
// each candidate text in order. Thousands separators are accepted.
// Returns 0 when no candidate contains a price.
func DollarPrice(candidates ...string) float64 {
	for _, text := range candidates {
		if text == "" {
			continue
		}
		m := dollarPattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			return v
		}
	}
	return 0
}

// NumericPrice strips everything but digits and dots from text and parses
// the rest. Range prices ("$10.00 to $20.00") resolve to the lower bound.
// Returns 0 when nothing parsable remains.
func NumericPrice(text string) float64 {
	cleaned := nonPriceSymbol.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(cleaned, 64); err == nil && v >= 0 {
		return v
	}
	if m := numberPattern.FindString(text); m != "" {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64); err == nil {
			return v
		}
	}
	return 0
}

// ResolveURL makes href absolute against base. Protocol-relative URLs get
// the base scheme. Unparsable input is returned unchanged.
func ResolveURL(href, base string) string {
	href = strings.TrimSpace(DecodeEntities(href))
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
