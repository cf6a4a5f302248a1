package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/temoto/robotstxt"
)

// ErrDisallowed marks URLs the site's robots.txt excludes for our agent.
var ErrDisallowed = fmt.Errorf("path disallowed by robots.txt")

// Client is the shared HTTP client for all extractors: one user agent, a
// per-request timeout, a fixed delay between requests and a robots.txt
// check per host.
type Client struct {
	httpClient *http.Client
	userAgent  string
	delay      time.Duration

	mu        sync.Mutex
	robots    map[string]*robotstxt.RobotsData
	lastFetch time.Time
}

func NewClient(userAgent string, timeout, delay time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		delay:      delay,
		robots:     make(map[string]*robotstxt.RobotsData),
	}
}

// Get fetches a URL honoring robots.txt and the inter-request delay.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	allowed, err := c.allowed(ctx, parsed)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
	}

	c.throttle(ctx)

	return c.fetch(ctx, rawURL)
}

// GetDocument fetches a URL and parses the response as HTML.
func (c *Client) GetDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	data, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es-ES,es;q=0.8,ca;q=0.6,en;q=0.4")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error fetching %s: %d %s", rawURL, resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// allowed consults the host's robots.txt, fetched once per host. Missing or
// unreadable robots.txt allows everything.
func (c *Client) allowed(ctx context.Context, u *url.URL) (bool, error) {
	c.mu.Lock()
	data, ok := c.robots[u.Host]
	c.mu.Unlock()

	if !ok {
		data = c.fetchRobots(ctx, u)
		c.mu.Lock()
		c.robots[u.Host] = data
		c.mu.Unlock()
	}

	if data == nil {
		return true, nil
	}
	return data.TestAgent(u.Path, c.userAgent), nil
}

func (c *Client) fetchRobots(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil
	}
	return data
}

// throttle enforces the inter-request delay, abandoning the wait if the
// context ends first.
func (c *Client) throttle(ctx context.Context) {
	c.mu.Lock()
	wait := c.delay - time.Since(c.lastFetch)
	c.lastFetch = time.Now().Add(wait)
	c.mu.Unlock()

	if wait <= 0 {
		return
	}

	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
