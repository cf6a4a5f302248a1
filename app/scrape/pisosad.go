package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/arasmu/andorra-props/app/listing"
	"github.com/arasmu/andorra-props/app/textutil"
)

var (
	paPriceRe    = regexp.MustCompile(`([\d.,]+)\s*€`)
	paRoomsRe    = regexp.MustCompile(`(?i)(\d+)\s*(?:habitacion|hab\b|dormitori)`)
	paBathsRe    = regexp.MustCompile(`(?i)(\d+)\s*(?:bany|lavabo|wc)`)
	paSurfaceRe  = regexp.MustCompile(`(?i)(\d+)\s*(?:m[²2]|metre)`)
	paLocationRe = regexp.MustCompile(`/([^/]+)/\d+$`)
	paDigitsRe   = regexp.MustCompile(`^\d+$`)
)

// PisosAdExtractor scrapes pisos.ad. The search pages only expose links, so
// every listing needs a detail-page fetch.
type PisosAdExtractor struct {
	baseExtractor
	origin string
}

func NewPisosAdExtractor(client *Client, config *Config) (*PisosAdExtractor, error) {
	origin, err := siteOrigin(config.Site.URL)
	if err != nil {
		return nil, err
	}
	return &PisosAdExtractor{
		baseExtractor: baseExtractor{config: config, client: client},
		origin:        origin,
	}, nil
}

func (e *PisosAdExtractor) Run(ctx context.Context) ([]listing.RawListing, error) {
	var results []listing.RawListing
	seen := make(map[string]bool)

	for page := 1; page <= e.config.Settings.MaxPages; page++ {
		pageURL := fmt.Sprintf("%s&page=%d", e.config.Site.URL, page)

		doc, err := e.client.GetDocument(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			slog.Warn("Failed to fetch page, stopping", "site", e.Site(), "page", page, "error", err)
			break
		}

		paths := e.collectListingPaths(doc, seen)
		if len(paths) == 0 {
			break
		}

		for _, path := range paths {
			raw, err := e.extractFromDetailPage(ctx, path)
			if err != nil {
				slog.Warn("Failed to extract listing", "site", e.Site(), "path", path, "error", err)
				continue
			}
			results = append(results, raw)
		}
	}

	return results, nil
}

// collectListingPaths keeps only relative sale links that end in a numeric
// listing id, dropping navigation, contact and external links.
func (e *PisosAdExtractor) collectListingPaths(doc *goquery.Document, seen map[string]bool) []string {
	var paths []string

	doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		if href == "" || seen[href] {
			return
		}
		if !strings.Contains(href, "/venda/") || strings.HasPrefix(href, "http") {
			return
		}
		if strings.Contains(href, "wa.me") || strings.Contains(href, "tel:") || strings.Contains(href, "mailto:") {
			return
		}
		if strings.HasSuffix(href, "/tots-subtipus") || strings.HasSuffix(href, "/venda") {
			return
		}

		segments := strings.Split(href, "/")
		if len(segments) < 3 || !paDigitsRe.MatchString(segments[len(segments)-1]) {
			return
		}

		seen[href] = true
		paths = append(paths, href)
	})

	return paths
}

func (e *PisosAdExtractor) extractFromDetailPage(ctx context.Context, path string) (listing.RawListing, error) {
	url := e.origin + path

	doc, err := e.client.GetDocument(ctx, url)
	if err != nil {
		return listing.RawListing{}, err
	}

	raw := e.parseDetailPage(doc, path)
	raw.URL = url
	raw.Website = e.config.Site.Website
	return raw, nil
}

func (e *PisosAdExtractor) parseDetailPage(doc *goquery.Document, path string) listing.RawListing {
	raw := listing.RawListing{
		Operation: "venta",
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	raw.Reference = segments[len(segments)-1]

	raw.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	if len(raw.Title) < 10 && len(segments) >= 2 {
		raw.Title = strings.ReplaceAll(segments[len(segments)-1], "-", " ")
	}

	pageText := doc.Text()

	if m := paPriceRe.FindStringSubmatch(pageText); m != nil {
		raw.Price = m[1]
	}
	if m := paRoomsRe.FindStringSubmatch(pageText); m != nil {
		raw.Rooms = m[1]
	}
	if m := paBathsRe.FindStringSubmatch(pageText); m != nil {
		raw.Bathrooms = m[1]
	}
	if m := paSurfaceRe.FindStringSubmatch(pageText); m != nil {
		raw.Surface = m[1]
	}

	// The path segment before the id names the parish.
	location := "Andorra"
	if m := paLocationRe.FindStringSubmatch(path); m != nil {
		location = strings.ReplaceAll(m[1], "-", " ")
	}
	raw.Location = location
	raw.Address = textutil.NotAvailable

	return raw
}
