package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// fetchDescription pulls a detail page and reduces it to readable text.
// The location classifier uses this to confirm ambiguous village names.
func fetchDescription(ctx context.Context, client *Client, pageURL string) (string, error) {
	data, err := client.Get(ctx, pageURL)
	if err != nil {
		return "", err
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), parsedURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract readable content: %w", err)
	}

	return strings.TrimSpace(article.TextContent), nil
}
