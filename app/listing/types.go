package listing

import (
	"time"
)

// RawListing is the untyped field set an extractor pulls out of one listing
// card or detail page. String fields default to "N/A", numeric text to "".
type RawListing struct {
	Reference string
	Operation string
	Price     string
	Rooms     string
	Bathrooms string
	Surface   string
	Title     string
	Location  string
	Address   string
	URL       string
	Website   string
}

// Listing is one normalized observation of an advertised property. The URL
// identifies the listing; multiple observations of the same URL over time
// accumulate its history.
type Listing struct {
	Reference  string
	Operation  string
	Price      float64
	Rooms      int
	Bathrooms  int
	Surface    float64
	Title      string
	Location   string
	Address    string
	URL        string
	Website    string
	CapturedAt time.Time
}
