package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/arasmu/andorra-props/app/listing"
)

// ExpofinquesExtractor scrapes expofinques.com, whose sale search renders
// every result as a row of a single wide table.
type ExpofinquesExtractor struct {
	baseExtractor
	origin string
}

func NewExpofinquesExtractor(client *Client, config *Config) (*ExpofinquesExtractor, error) {
	origin, err := siteOrigin(config.Site.URL)
	if err != nil {
		return nil, err
	}
	return &ExpofinquesExtractor{
		baseExtractor: baseExtractor{config: config, client: client},
		origin:        origin,
	}, nil
}

func (e *ExpofinquesExtractor) Run(ctx context.Context) ([]listing.RawListing, error) {
	doc, err := e.client.GetDocument(ctx, e.config.Site.URL)
	if err != nil {
		return nil, err
	}
	return e.parseListingPage(doc), nil
}

func (e *ExpofinquesExtractor) parseListingPage(doc *goquery.Document) []listing.RawListing {
	var results []listing.RawListing

	doc.Find("table#infoListado tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 20 {
			return
		}

		href, ok := cells.Eq(0).Find("a").First().Attr("href")
		if !ok || href == "" {
			return
		}

		propertyType := strings.TrimSpace(cells.Eq(3).Text())
		location := strings.TrimSpace(cells.Eq(4).Text())

		title := strings.TrimSpace(cells.Eq(18).Text())
		if title == "" {
			title = fmt.Sprintf("%s en %s", propertyType, location)
		}

		results = append(results, listing.RawListing{
			Reference: strings.TrimSpace(cells.Eq(2).Text()),
			Operation: "venta",
			Price:     strings.TrimSpace(cells.Eq(5).Text()),
			Rooms:     strings.TrimSpace(cells.Eq(7).Text()),
			Bathrooms: strings.TrimSpace(cells.Eq(8).Text()),
			Surface:   strings.TrimSpace(cells.Eq(6).Text()),
			Title:     title,
			Location:  location,
			Address:   location,
			URL:       e.origin + href,
			Website:   e.config.Site.Website,
		})
	})

	return results
}
