package listing

import (
	"github.com/arasmu/andorra-props/app/location"
	"github.com/arasmu/andorra-props/app/textutil"
)

// Builder turns raw extractor output into normalized listing records.
type Builder struct {
	classifier *location.Classifier
}

func NewBuilder() *Builder {
	return &Builder{classifier: location.NewClassifier()}
}

// Run normalizes every text field, parses the numeric ones and resolves the
// location label, confirming special villages against the detail-page
// description when the classifier asks for it. fetch may be nil for sources
// without a description page.
func (b *Builder) Run(raw RawListing, fetch location.DescriptionFetcher) Listing {
	loc := textutil.CleanText(raw.Location)
	loc = b.classifier.Run(loc, fetch)

	return Listing{
		Reference: textutil.CleanText(raw.Reference),
		Operation: textutil.NormalizeOperation(raw.Operation),
		Price:     textutil.ParsePrice(raw.Price),
		Rooms:     textutil.ParseCount(raw.Rooms),
		Bathrooms: textutil.ParseCount(raw.Bathrooms),
		Surface:   textutil.ParseNumber(raw.Surface),
		Title:     textutil.CleanText(raw.Title),
		Location:  loc,
		Address:   textutil.CleanText(raw.Address),
		URL:       raw.URL,
		Website:   raw.Website,
	}
}
