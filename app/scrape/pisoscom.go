package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/arasmu/andorra-props/app/listing"
	"github.com/arasmu/andorra-props/app/location"
)

var (
	pcPriceRe   = regexp.MustCompile(`([\d.,]+)\s*€`)
	pcRoomsRe   = regexp.MustCompile(`(?i)(\d+)\s*(?:hab|habitacion|dormitor)`)
	pcBathsRe   = regexp.MustCompile(`(?i)(\d+)\s*ba(?:ñ|n)o`)
	pcSurfaceRe = regexp.MustCompile(`(?i)(\d+)\s*m[²2]`)
)

// PisosComExtractor scrapes pisos.com, a Spanish portal whose Andorra
// search mixes in properties across the border. The search pages link to
// /comprar/ detail pages; each gets fetched for its full data. Non-Andorra
// results survive here and are culled later by the validity gate.
type PisosComExtractor struct {
	baseExtractor
	origin string
}

func NewPisosComExtractor(client *Client, config *Config) (*PisosComExtractor, error) {
	origin, err := siteOrigin(config.Site.URL)
	if err != nil {
		return nil, err
	}
	return &PisosComExtractor{
		baseExtractor: baseExtractor{config: config, client: client},
		origin:        origin,
	}, nil
}

func (e *PisosComExtractor) Run(ctx context.Context) ([]listing.RawListing, error) {
	var results []listing.RawListing
	seen := make(map[string]bool)

	for page := 1; page <= e.config.Settings.MaxPages; page++ {
		pageURL := e.config.Site.URL
		if page > 1 {
			pageURL = fmt.Sprintf("%s%d/", e.config.Site.URL, page)
		}

		doc, err := e.client.GetDocument(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			slog.Warn("Failed to fetch page, stopping", "site", e.Site(), "page", page, "error", err)
			break
		}

		links := e.collectListingURLs(doc, seen)
		if len(links) == 0 {
			break
		}

		for _, url := range links {
			raw, err := e.extractFromDetailPage(ctx, url)
			if err != nil {
				slog.Warn("Failed to extract listing", "site", e.Site(), "url", url, "error", err)
				continue
			}
			results = append(results, raw)
		}
	}

	return results, nil
}

func (e *PisosComExtractor) collectListingURLs(doc *goquery.Document, seen map[string]bool) []string {
	var urls []string

	doc.Find(`a[href*="/comprar/"]`).Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		if href == "" {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = e.origin + href
		}
		if seen[href] {
			return
		}
		seen[href] = true
		urls = append(urls, href)
	})

	return urls
}

func (e *PisosComExtractor) extractFromDetailPage(ctx context.Context, url string) (listing.RawListing, error) {
	doc, err := e.client.GetDocument(ctx, url)
	if err != nil {
		return listing.RawListing{}, err
	}

	raw := e.parseDetailPage(doc, url)
	raw.URL = url
	raw.Website = e.config.Site.Website
	return raw, nil
}

func (e *PisosComExtractor) parseDetailPage(doc *goquery.Document, url string) listing.RawListing {
	raw := listing.RawListing{
		Operation: "venta",
	}

	// Detail URLs end in /comprar/tipo-ubicacion-id/, so the id doubles as
	// a reference.
	segments := strings.Split(strings.Trim(url, "/"), "/")
	raw.Reference = fmt.Sprintf("pisos.com-%s", segments[len(segments)-1])

	raw.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	if raw.Title == "" {
		raw.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	if priceText := strings.TrimSpace(doc.Find(`[class*="price"]`).First().Text()); priceText != "" {
		if m := pcPriceRe.FindStringSubmatch(priceText); m != nil {
			raw.Price = m[1]
		}
	}

	pageText := doc.Text()
	if raw.Price == "" {
		if m := pcPriceRe.FindStringSubmatch(pageText); m != nil {
			raw.Price = m[1]
		}
	}
	if m := pcRoomsRe.FindStringSubmatch(pageText); m != nil {
		raw.Rooms = m[1]
	}
	if m := pcBathsRe.FindStringSubmatch(pageText); m != nil {
		raw.Bathrooms = m[1]
	}
	if m := pcSurfaceRe.FindStringSubmatch(pageText); m != nil {
		raw.Surface = m[1]
	}

	raw.Location = e.locationFromURL(url)
	raw.Address = raw.Location

	return raw
}

// locationFromURL picks the first hyphen-separated URL part that names a
// known Andorran place, e.g. "piso-pas_de_la_casa-123456".
func (e *PisosComExtractor) locationFromURL(url string) string {
	for _, part := range strings.Split(url, "-") {
		if location.InAndorra(part) {
			return strings.ReplaceAll(part, "_", " ")
		}
	}
	return "Andorra"
}
