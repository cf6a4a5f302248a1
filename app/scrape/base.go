package scrape

import (
	"context"
	"fmt"
	"net/url"
)

// baseExtractor carries what every site extractor shares: the site config,
// the polite HTTP client and the detail-page description fetcher.
type baseExtractor struct {
	config *Config
	client *Client
}

func (b *baseExtractor) Site() string {
	return b.config.Name
}

func (b *baseExtractor) FetchDescription(ctx context.Context, pageURL string) (string, error) {
	return fetchDescription(ctx, b.client, pageURL)
}

// siteOrigin derives "scheme://host" from the configured search URL, used to
// absolutize relative listing links.
func siteOrigin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse site URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("site URL must be absolute: %s", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
