package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/arasmu/andorra-props/app/listing"
	"github.com/arasmu/andorra-props/app/textutil"
)

const naPerPageCap = 100

var (
	naDigitsRe  = regexp.MustCompile(`\d+`)
	naSurfaceRe = regexp.MustCompile(`(\d+)m`)
)

// NouaireExtractor scrapes nouaire.com. The search endpoint paginates in
// blocks of 100, so a first request to the buy page reads the total count
// off the building icon to know how many pages to walk.
type NouaireExtractor struct {
	baseExtractor
	origin string
}

func NewNouaireExtractor(client *Client, config *Config) (*NouaireExtractor, error) {
	origin, err := siteOrigin(config.Site.URL)
	if err != nil {
		return nil, err
	}
	return &NouaireExtractor{
		baseExtractor: baseExtractor{config: config, client: client},
		origin:        origin,
	}, nil
}

func (e *NouaireExtractor) Run(ctx context.Context) ([]listing.RawListing, error) {
	lastPage, err := e.lastPageNumber(ctx)
	if err != nil {
		slog.Warn("Failed to determine page count, scraping first page only", "site", e.Site(), "error", err)
		lastPage = 1
	}
	if lastPage > e.config.Settings.MaxPages {
		lastPage = e.config.Settings.MaxPages
	}

	var results []listing.RawListing
	seen := make(map[string]bool)

	for page := 1; page <= lastPage; page++ {
		pageURL := fmt.Sprintf("%s/prop/buscador/limit:%d/page:%d", e.origin, naPerPageCap, page)

		doc, err := e.client.GetDocument(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			slog.Warn("Failed to fetch page, continuing", "site", e.Site(), "page", page, "error", err)
			continue
		}

		results = append(results, e.parseListingPage(doc, seen)...)
	}

	return results, nil
}

func (e *NouaireExtractor) lastPageNumber(ctx context.Context) (int, error) {
	doc, err := e.client.GetDocument(ctx, e.config.Site.URL)
	if err != nil {
		return 0, err
	}

	count := 0
	icon := doc.Find("i.fa.fa-building").First()
	if icon.Length() > 0 {
		if m := naDigitsRe.FindString(icon.Parent().Text()); m != "" {
			count, _ = strconv.Atoi(m)
		}
	}

	if count <= 0 {
		return 1, nil
	}
	pages := count / naPerPageCap
	if pages < 1 {
		pages = 1
	}
	return pages, nil
}

func (e *NouaireExtractor) parseListingPage(doc *goquery.Document, seen map[string]bool) []listing.RawListing {
	var results []listing.RawListing

	doc.Find("div.row.pt10.pb10").Each(func(_ int, card *goquery.Selection) {
		href, ok := card.Find("a[href]").First().Attr("href")
		if !ok || href == "" {
			return
		}

		url := e.origin + href
		if seen[url] {
			return
		}
		seen[url] = true

		raw := listing.RawListing{
			URL:     url,
			Website: e.config.Site.Website,
		}

		raw.Reference = strings.TrimSpace(card.Find("div.col-xs-12.col-sm-2.hidden-xs a").First().Text())

		// The operation lives on the square icon's title; mobile markup
		// repeats it as a plain span.
		if title, ok := card.Find("i.fa.fa-square").First().Attr("title"); ok && title != "" {
			raw.Operation = title
		} else {
			raw.Operation = strings.TrimSpace(card.Find("div.col-xs-12.visible-xs-inline span").First().Text())
		}

		raw.Title = strings.TrimSpace(card.Find("div.col-xs-4.col-sm-2.hidden-xs").First().Text())
		raw.Location = strings.TrimSpace(card.Find("div.col-xs-8.col-sm-2.hidden-xs").First().Text())

		if raw.Title == "" || raw.Location == "" {
			// Mobile-only markup carries "Operació Tipus en Població" as one link.
			mobileTitle := strings.TrimSpace(card.Find("div.col-xs-12.visible-xs-inline a").First().Text())
			if raw.Title == "" {
				if _, rest, found := strings.Cut(mobileTitle, " "); found {
					raw.Title = textutil.SplitTitle(rest)
				}
			}
			if raw.Location == "" {
				raw.Location = textutil.SplitAddress(mobileTitle)
			}
		}

		if m := naSurfaceRe.FindStringSubmatch(card.Find("div.col-xs-6.col-sm-1").First().Text()); m != nil {
			raw.Surface = m[1]
		}

		raw.Price = strings.TrimSpace(card.Find("div.col-xs-6.col-sm-1.text-right").First().Text())

		card.Find("div.col-xs-6.col-sm-1.strong.text-right").Each(func(_ int, div *goquery.Selection) {
			switch {
			case div.Find("i.fa.fa-bed").Length() > 0:
				raw.Rooms = naDigitsRe.FindString(div.Text())
			case div.Find("i.fa.fa-bath").Length() > 0:
				raw.Bathrooms = naDigitsRe.FindString(div.Text())
			}
		})

		results = append(results, raw)
	})

	return results
}
