package scrape

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/arasmu/andorra-props/app/listing"
	"github.com/arasmu/andorra-props/app/textutil"
)

// ClausExtractor scrapes 7claus.com. The configured search URL already
// narrows results to flats for sale in Andorra, so the operation is fixed.
type ClausExtractor struct {
	baseExtractor
	origin string
}

func NewClausExtractor(client *Client, config *Config) (*ClausExtractor, error) {
	origin, err := siteOrigin(config.Site.URL)
	if err != nil {
		return nil, err
	}
	return &ClausExtractor{
		baseExtractor: baseExtractor{config: config, client: client},
		origin:        origin,
	}, nil
}

func (e *ClausExtractor) Run(ctx context.Context) ([]listing.RawListing, error) {
	doc, err := e.client.GetDocument(ctx, e.config.Site.URL)
	if err != nil {
		return nil, err
	}
	return e.parseListingPage(doc), nil
}

func (e *ClausExtractor) parseListingPage(doc *goquery.Document) []listing.RawListing {
	var results []listing.RawListing

	doc.Find("div.cardAnuncio").Each(func(_ int, card *goquery.Selection) {
		raw := listing.RawListing{
			Operation: "Venta",
			Address:   textutil.NotAvailable,
			Website:   e.config.Site.Website,
		}

		raw.Title = strings.TrimSpace(card.Find("span.titulo").First().Text())
		raw.Reference = strings.TrimSpace(card.Find("span.contRef").First().Text())

		// The price div stacks price and a per-m² line; keep the first line.
		priceText := strings.TrimSpace(card.Find("div.precio").First().Text())
		raw.Price, _, _ = strings.Cut(priceText, "\n")
		raw.Price = strings.TrimSpace(raw.Price)

		card.Find("li").Each(func(_ int, item *goquery.Selection) {
			divs := item.Find("div")
			if divs.Length() != 2 {
				return
			}
			key := strings.TrimSpace(divs.Eq(0).Text())
			value := strings.TrimSpace(divs.Eq(1).Text())

			switch {
			case strings.Contains(key, "Habs"):
				raw.Rooms = value
			case strings.Contains(key, "Banys"):
				raw.Bathrooms = value
			case strings.Contains(key, "m²") || strings.Contains(key, "m2"):
				raw.Surface = value
			}
		})

		if dataURL, ok := card.Find("div.btnContacto").First().Attr("data-url"); ok && dataURL != "" {
			path, _, _ := strings.Cut(dataURL, "#")
			raw.URL = e.origin + path
		}

		// Titles read "Pis a Carrer Sant Jordi"; the tail names the place.
		if _, place, found := strings.Cut(raw.Title, " a "); found {
			raw.Location = place
		}

		if raw.Title == "" || raw.Price == "" || raw.URL == "" {
			return
		}

		results = append(results, raw)
	})

	return results
}
