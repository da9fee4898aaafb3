// ABOUTME: Item model representing one normalized marketplace listing
// ABOUTME: Defines the JSON shape returned to callers and the defaults applied to missing fields

package models

// Currency is the only currency listings are reported in.
const Currency = "USD"

// PlaceholderImage is used when no image can be extracted from the source markup.
const PlaceholderImage = "https://i.ebayimg.com/images/g/0kUAAOSw3Fxj4YbW/s-l500.jpg"

// Item is a single listing extracted from a feed or a search-results page.
type Item struct {
	ID       string  `json:"id"`       // Numeric listing id when found, else URL, else title
	Title    string  `json:"title"`    // Decoded listing title
	Price    float64 `json:"price"`    // 0 means unknown
	Currency string  `json:"currency"` // Always Currency
	Image    string  `json:"image"`    // Absolute image URL or PlaceholderImage
	URL      string  `json:"url"`      // Absolute listing URL
}

// NewItem builds an Item, filling the currency and falling back to the
// placeholder image when image is empty. Negative prices are clamped to 0.
func NewItem(id, title, url string, price float64, image string) Item {
	if image == "" {
		image = PlaceholderImage
	}
	if price < 0 {
		price = 0
	}
	return Item{
		ID:       id,
		Title:    title,
		Price:    price,
		Currency: Currency,
		Image:    image,
		URL:      url,
	}
}

// Valid reports whether the item carries the fields required for display.
func (i Item) Valid() bool {
	return i.Title != "" && i.URL != ""
}
