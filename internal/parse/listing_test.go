// ABOUTME: Test suite for search-results page extraction
// ABOUTME: Validates card filtering, title/price/image fallbacks and URL resolution using inline HTML

package parse

import (
	"testing"

	"github.com/harper/storefeed/internal/models"
)

const resultsPage = `<!DOCTYPE html>
<html><body>
<ul class="srp-results">
  <li class="s-item s-item__pl-on-bottom" data-viewport="">
    <a class="s-item__link" href="https://ebay.com/itm/123456"><div class="s-item__title"><span>Shop on eBay</span></div></a>
  </li>
  <li class="s-item s-item__pl-on-bottom">
    <div class="s-item__image"><img src="https://i.ebayimg.com/images/g/abc/s-l225.jpg" alt=""></div>
    <a class="s-item__link" href="https://www.ebay.com/itm/334455667788?hash=item4ddf&amp;var=0">
      <h3 class="s-item__title"><span class="LIGHT_HIGHLIGHT">New Listing</span>Nikon F3 &amp; Lens</h3>
    </a>
    <span class="s-item__price">$1,250.00</span>
  </li>
  <li class="s-item">
    <a href="/itm/998877"><div class="s-item__title">Polaroid <b>SX-70</b></div></a>
    <img data-src="//i.ebayimg.com/images/g/def/s-l225.webp">
  </li>
  <li class="s-item">
    <a href="https://www.ebay.com/sch/sponsored">Sponsored</a>
    <h3>Ad card</h3>
  </li>
  <li class="srp-river-answer">
    <a href="https://www.ebay.com/itm/111"><h3>Not a result card</h3></a>
  </li>
  <li class="s-item">
    <a href="https://www.ebay.com/itm/4242"><span>Fallback Span Title</span></a>
    <img src="data:image/gif;base64,R0lGOD" data-src="https://i.ebayimg.com/images/g/ghi/s-l225.jpg">
    <span class="s-item__price">See price</span>
  </li>
</ul>
</body></html>`

func TestParseListingPage(t *testing.T) {
	items := ParseListingPage(resultsPage)

	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3: %+v", len(items), items)
	}

	camera := items[0]
	if camera.Title != "New ListingNikon F3 & Lens" {
		t.Errorf("camera.Title = %q", camera.Title)
	}
	if camera.ID != "334455667788" {
		t.Errorf("camera.ID = %q", camera.ID)
	}
	if camera.URL != "https://www.ebay.com/itm/334455667788?hash=item4ddf&var=0" {
		t.Errorf("camera.URL = %q", camera.URL)
	}
	if camera.Price != 1250 {
		t.Errorf("camera.Price = %v, want 1250", camera.Price)
	}
	if camera.Image != "https://i.ebayimg.com/images/g/abc/s-l225.jpg" {
		t.Errorf("camera.Image = %q", camera.Image)
	}

	polaroid := items[1]
	if polaroid.Title != "Polaroid SX-70" {
		t.Errorf("polaroid.Title = %q, want title-class text", polaroid.Title)
	}
	if polaroid.URL != "https://www.ebay.com/itm/998877" {
		t.Errorf("polaroid.URL = %q, want resolved URL", polaroid.URL)
	}
	if polaroid.Price != 0 {
		t.Errorf("polaroid.Price = %v, want 0 without price element", polaroid.Price)
	}
	if polaroid.Image != "https://i.ebayimg.com/images/g/def/s-l225.webp" {
		t.Errorf("polaroid.Image = %q, want data-src fallback", polaroid.Image)
	}

	spanCard := items[2]
	if spanCard.Title != "Fallback Span Title" {
		t.Errorf("spanCard.Title = %q", spanCard.Title)
	}
	if spanCard.Price != 0 {
		t.Errorf("spanCard.Price = %v, want 0 for unparsable price", spanCard.Price)
	}
	if spanCard.Image != "https://i.ebayimg.com/images/g/ghi/s-l225.jpg" {
		t.Errorf("spanCard.Image = %q, want data-src when src is inline data", spanCard.Image)
	}
}

func TestParseListingPage_PlaceholderImage(t *testing.T) {
	doc := `<li class="s-item"><a href="https://www.ebay.com/itm/7"><h3>Bare Card</h3></a></li>`

	items := ParseListingPage(doc)
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Image != models.PlaceholderImage {
		t.Errorf("Image = %q, want placeholder", items[0].Image)
	}
	if items[0].Currency != models.Currency {
		t.Errorf("Currency = %q", items[0].Currency)
	}
}

func TestParseListingPage_CardStartsAtMarkedItem(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		id    string
		title string
	}{
		{
			name:  "card nested in an unmarked list item",
			doc:   `<ul><li class="group"><ul><li class="s-item"><a href="https://www.ebay.com/itm/1"><h3>Lamp</h3></a></li></ul></li></ul>`,
			id:    "1",
			title: "Lamp",
		},
		{
			name:  "unclosed navigation items before the results",
			doc:   `<ul class="nav"><li><a href="/deals">Deals<li><a href="/help">Help</ul><ul class="srp-results"><li class="s-item"><a href="https://www.ebay.com/itm/2"><h3>Chair</h3></a></li></ul>`,
			id:    "2",
			title: "Chair",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := ParseListingPage(tt.doc)
			if len(items) != 1 {
				t.Fatalf("len(items) = %d, want 1: %+v", len(items), items)
			}
			if items[0].ID != tt.id || items[0].Title != tt.title {
				t.Errorf("item = %+v, want id %q title %q", items[0], tt.id, tt.title)
			}
		})
	}
}

func TestParseListingPage_NoCards(t *testing.T) {
	for _, doc := range []string{"", "<html><body><p>Pardon Our Interruption</p></body></html>", sellerRSS} {
		items := ParseListingPage(doc)
		if items == nil || len(items) != 0 {
			t.Errorf("ParseListingPage() = %v, want empty slice", items)
		}
	}
}
