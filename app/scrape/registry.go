package scrape

import (
	"fmt"
	"time"
)

// NewExtractor builds the extractor for a configured site, keyed by the
// site's config file name.
func NewExtractor(client *Client, config *Config) (Extractor, error) {
	switch config.Name {
	case "finquesmarca":
		return NewFinquesMarcaExtractor(client, config)
	case "nouaire":
		return NewNouaireExtractor(client, config)
	case "expofinques":
		return NewExpofinquesExtractor(client, config)
	case "claus":
		return NewClausExtractor(client, config)
	case "pisosad":
		return NewPisosAdExtractor(client, config)
	case "pisoscom":
		return NewPisosComExtractor(client, config)
	default:
		return nil, fmt.Errorf("no extractor registered for site '%s'", config.Name)
	}
}

// NewSiteClient builds an HTTP client tuned to a site's configured timeout
// and delay.
func NewSiteClient(userAgent string, config *Config) *Client {
	return NewClient(
		userAgent,
		time.Duration(config.Settings.Timeout)*time.Second,
		time.Duration(config.Settings.Delay)*time.Millisecond,
	)
}
