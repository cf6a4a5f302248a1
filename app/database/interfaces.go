package database

import (
	"time"

	"github.com/arasmu/andorra-props/app/listing"
)

type ListingRepository interface {
	UpsertOne(l listing.Listing) (bool, error)
	UpsertBatch(ls []listing.Listing) (int, error)

	GetLatestPerURL() ([]Listing, error)
	GetWithPrice() ([]Listing, error)
	GetHistory(url string) ([]Listing, error)
	GetStale(thresholdDays int) ([]Listing, error)
	GetStats(freshnessDays int) (VigencyStats, error)
	GetObservationCount() (int, error)

	PurgeAll() (int64, error)
}

type SiteRepository interface {
	UpsertSite(name, baseURL string) error
	GetSite(name string) (*Site, error)
	GetSitesDueForScrape() ([]Site, error)
	UpdateSiteScraped(name string, nextScrapeAt time.Time) error
	GetSiteCount() (int, error)
}
