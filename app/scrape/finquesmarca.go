package scrape

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/arasmu/andorra-props/app/listing"
	"github.com/arasmu/andorra-props/app/textutil"
)

var (
	fmSurfaceRe   = regexp.MustCompile(`(\d+)\s*m`)
	fmRoomsRe     = regexp.MustCompile(`(?i)(\d+)\s*hab`)
	fmBathroomsRe = regexp.MustCompile(`(?i)(\d+)\s*ba(?:ñ|n)`)
)

// FinquesMarcaExtractor scrapes finquesmarca.com. All results live on a
// single search page with up to 120 cards, so there is no pagination.
type FinquesMarcaExtractor struct {
	baseExtractor
	origin string
}

func NewFinquesMarcaExtractor(client *Client, config *Config) (*FinquesMarcaExtractor, error) {
	origin, err := siteOrigin(config.Site.URL)
	if err != nil {
		return nil, err
	}
	return &FinquesMarcaExtractor{
		baseExtractor: baseExtractor{config: config, client: client},
		origin:        origin,
	}, nil
}

func (e *FinquesMarcaExtractor) Run(ctx context.Context) ([]listing.RawListing, error) {
	doc, err := e.client.GetDocument(ctx, e.config.Site.URL)
	if err != nil {
		return nil, err
	}
	return e.parseListingPage(doc), nil
}

func (e *FinquesMarcaExtractor) parseListingPage(doc *goquery.Document) []listing.RawListing {
	var results []listing.RawListing
	seen := make(map[string]bool)

	doc.Find("a.url-inmueble").Each(func(_ int, anchor *goquery.Selection) {
		// The card carries two identical links; skip the one wrapping the image.
		if anchor.ParentsFiltered("div.img").Length() > 0 {
			return
		}

		path, ok := anchor.Attr("data-path")
		if !ok || path == "" {
			return
		}

		url := e.origin + path
		if seen[url] {
			return
		}
		seen[url] = true

		card := anchor.Closest("div.card")
		if card.Length() == 0 {
			return
		}

		raw := listing.RawListing{
			Reference: textutil.NotAvailable,
			Operation: textutil.NotAvailable,
			Title:     strings.TrimSpace(card.Find("span.contTitulo").First().Text()),
			Location:  strings.TrimSpace(card.Find("div.direccion").First().Text()),
			Address:   textutil.NotAvailable,
			URL:       url,
			Website:   e.config.Site.Website,
		}

		if refText := strings.TrimSpace(card.Find("span.contRef").First().Text()); strings.Contains(refText, "Ref. ") {
			raw.Reference = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(refText, "Ref. ", ""), "-", ""))
		}

		// The second path segment names the operation, e.g. /ca/venda_pis/...
		if parts := strings.Split(url, "/"); len(parts) > 4 {
			raw.Operation = strings.ReplaceAll(parts[4], "_", " ")
		}

		raw.Price = strings.TrimSpace(card.Find("div.precio span").First().Text())

		// Feature list items must be matched one by one: joining them
		// glues "85 m2" and "3 hab" into "85 m23 hab".
		caract := card.Find("div.contCaract").First()
		if caract.Length() > 0 {
			items := caract.Find("li")
			if m := fmSurfaceRe.FindStringSubmatch(strings.TrimSpace(items.First().Text())); m != nil {
				raw.Surface = m[1]
			}
			items.Each(func(_ int, item *goquery.Selection) {
				text := item.Text()
				if raw.Rooms == "" {
					if m := fmRoomsRe.FindStringSubmatch(text); m != nil {
						raw.Rooms = m[1]
					}
				}
				if raw.Bathrooms == "" {
					if m := fmBathroomsRe.FindStringSubmatch(text); m != nil {
						raw.Bathrooms = m[1]
					}
				}
			})
		}

		results = append(results, raw)
	})

	return results
}
