// ABOUTME: Tests for document sniffing and parser dispatch
// ABOUTME: Checks that feeds and results pages route to the right parser

package parse

import "testing"

func TestSniff(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		expected string
	}{
		{"rss", sellerRSS, "rss"},
		{"atom", sellerAtom, "atom"},
		{"html", resultsPage, "html"},
		{"empty", "", "unknown"},
		{"plain text", "Access Denied", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.doc); got != tt.expected {
				t.Errorf("Sniff() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"feed", FormatFeed, true},
		{"RSS", FormatFeed, true},
		{"html", FormatListing, true},
		{" listing ", FormatListing, true},
		{"auto", FormatAuto, true},
		{"json", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseFormat(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParse_Dispatch(t *testing.T) {
	if n := len(Parse(FormatFeed, sellerRSS)); n != 3 {
		t.Errorf("Parse(feed) = %d items, want 3", n)
	}
	if n := len(Parse(FormatListing, resultsPage)); n != 3 {
		t.Errorf("Parse(listing) = %d items, want 3", n)
	}
	if n := len(Parse(FormatAuto, sellerAtom)); n != 1 {
		t.Errorf("Parse(auto, atom) = %d items, want 1", n)
	}
	if n := len(Parse(FormatAuto, resultsPage)); n != 3 {
		t.Errorf("Parse(auto, html) = %d items, want 3", n)
	}
}
