package scrape

import (
	"context"

	"github.com/arasmu/andorra-props/app/listing"
)

// Config is one site's scraping configuration, loaded from a YAML file in
// the sites directory. The file name (without extension) is the site name.
type Config struct {
	Name string `yaml:"-"`

	Site struct {
		URL     string `yaml:"url"`
		Website string `yaml:"website"`
	} `yaml:"site"`

	Settings struct {
		Enabled        bool `yaml:"enabled"`
		ScrapeInterval int  `yaml:"scrape_interval"` // minutes between runs
		MaxPages       int  `yaml:"max_pages"`
		Timeout        int  `yaml:"timeout"` // seconds per request
		Delay          int  `yaml:"delay"`   // milliseconds between requests
	} `yaml:"settings"`
}

// Extractor is one source site's scraping capability: listing-page
// extraction plus on-demand detail-page description fetching for the
// location classifier's confirmation pass.
type Extractor interface {
	Site() string
	Run(ctx context.Context) ([]listing.RawListing, error)
	FetchDescription(ctx context.Context, url string) (string, error)
}
