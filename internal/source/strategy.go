// ABOUTME: Candidate source definitions: URL shapes, transports and their priority order
// ABOUTME: Builds the ordered list of fetch strategies tried for a seller

package source

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/harper/storefeed/internal/parse"
)

// Transport selects how a candidate URL is reached.
type Transport string

const (
	Direct Transport = "direct"
	Proxy  Transport = "proxy"
)

// DefaultProxyPrefix is a public read-only proxy that returns the raw body
// of the URL appended to it.
const DefaultProxyPrefix = "https://api.allorigins.win/raw?url="

// Shape is one query layout on the marketplace that lists a seller's items.
type Shape struct {
	Name     string
	Format   parse.Format
	template string // %s is replaced by the escaped seller
	pathArg  bool   // seller goes into the path rather than the query
}

// URL renders the shape for seller.
func (s Shape) URL(seller string) string {
	if s.pathArg {
		return fmt.Sprintf(s.template, url.PathEscape(seller))
	}
	return fmt.Sprintf(s.template, url.QueryEscape(seller))
}

// Known shapes, feeds first.
var (
	SellerFeed       = Shape{Name: "seller-feed", Format: parse.FormatFeed, template: "https://www.ebay.com/sch/i.html?_ssn=%s&_sop=10&_rss=1"}
	SellerFilterFeed = Shape{Name: "seller-filter-feed", Format: parse.FormatFeed, template: "https://www.ebay.com/sch/i.html?_fss=1&_saslop=1&_sasl=%s&_sop=10&_rss=1"}
	StoreFeed        = Shape{Name: "store-feed", Format: parse.FormatFeed, template: "https://www.ebay.com/str/%s?_sop=10&_rss=1", pathArg: true}
	MobileFeed       = Shape{Name: "mobile-feed", Format: parse.FormatFeed, template: "https://m.ebay.com/sch/i.html?_ssn=%s&_sop=10&_rss=1"}
	ListingPage      = Shape{Name: "listing-page", Format: parse.FormatListing, template: "https://www.ebay.com/sch/i.html?_ssn=%s&_sop=10&_ipg=120"}
)

// Shapes lists every known shape in priority order within its format.
var Shapes = []Shape{SellerFeed, SellerFilterFeed, StoreFeed, MobileFeed, ListingPage}

// Group is one (transport, format) step of the fallback order. Every shape of
// the group's format is tried, in Shapes order, before moving on. An auto
// group covers every shape and picks the parser from the fetched document.
type Group struct {
	Transport Transport
	Format    parse.Format
}

func (g Group) String() string {
	return string(g.Transport) + ":" + string(g.Format)
}

// DefaultOrder tries feeds directly, feeds through the proxy, then the
// results page directly and through the proxy.
var DefaultOrder = []Group{
	{Direct, parse.FormatFeed},
	{Proxy, parse.FormatFeed},
	{Direct, parse.FormatListing},
	{Proxy, parse.FormatListing},
}

var ErrInvalidOrder = errors.New("invalid source order")

// ParseOrder reads a comma separated list such as
// "direct:feed,proxy:feed,direct:listing". Duplicate groups are ignored.
func ParseOrder(s string) ([]Group, error) {
	var groups []Group
	seen := make(map[Group]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		transport, format, found := strings.Cut(part, ":")
		if !found {
			return nil, fmt.Errorf("%w: %q is not transport:format", ErrInvalidOrder, part)
		}
		g := Group{Transport: Transport(strings.ToLower(strings.TrimSpace(transport)))}
		if g.Transport != Direct && g.Transport != Proxy {
			return nil, fmt.Errorf("%w: unknown transport %q", ErrInvalidOrder, transport)
		}
		f, ok := parse.ParseFormat(format)
		if !ok {
			return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidOrder, format)
		}
		g.Format = f
		if !seen[g] {
			seen[g] = true
			groups = append(groups, g)
		}
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidOrder)
	}
	return groups, nil
}

// Strategy is a single fetch attempt: where to fetch and how to parse it.
type Strategy struct {
	Transport Transport
	Shape     Shape
	// Parser overrides the shape's format when set.
	Parser parse.Format
}

// Name identifies the strategy in logs and diagnostics, e.g. "proxy/seller-feed".
func (s Strategy) Name() string {
	return string(s.Transport) + "/" + s.Shape.Name
}

// Format is the parser used for the fetched document.
func (s Strategy) Format() parse.Format {
	if s.Parser != "" {
		return s.Parser
	}
	return s.Shape.Format
}

// URL builds the address to fetch for seller.
func (s Strategy) URL(seller, proxyPrefix string) string {
	target := s.Shape.URL(seller)
	if s.Transport == Proxy {
		return ProxyURL(proxyPrefix, target)
	}
	return target
}

// ProxyURL wraps target with a proxy prefix. Prefixes ending in "=" take the
// target as a query value and get it escaped; others get it appended as is.
func ProxyURL(prefix, target string) string {
	if prefix == "" {
		prefix = DefaultProxyPrefix
	}
	if strings.HasSuffix(prefix, "=") {
		return prefix + url.QueryEscape(target)
	}
	return prefix + target
}

// Strategies expands order into concrete strategies. Proxy groups are
// skipped when useProxy is false. A shape reached through the same transport
// by more than one group is only kept at its first position.
func Strategies(order []Group, useProxy bool) []Strategy {
	out := []Strategy{}
	seen := make(map[string]bool)
	for _, g := range order {
		if g.Transport == Proxy && !useProxy {
			continue
		}
		for _, shape := range Shapes {
			if g.Format != parse.FormatAuto && shape.Format != g.Format {
				continue
			}
			s := Strategy{Transport: g.Transport, Shape: shape}
			if g.Format == parse.FormatAuto {
				s.Parser = parse.FormatAuto
			}
			if seen[s.Name()] {
				continue
			}
			seen[s.Name()] = true
			out = append(out, s)
		}
	}
	return out
}
