package api

import (
	"time"

	"github.com/arasmu/andorra-props/app/database"
	"github.com/arasmu/andorra-props/app/scrape"
	"github.com/arasmu/andorra-props/app/tasks"
)

// Pinger is the health check's view of the database connection.
type Pinger interface {
	Ping() error
}

var _ Pinger = (*database.DB)(nil)

type Handler struct {
	listingRepo database.ListingRepository
	siteRepo    database.SiteRepository
	configCache *scrape.ConfigCache
	scheduler   tasks.TaskSchedulerInterface
	db          Pinger

	freshnessDays int
	version       string
	startedAt     time.Time
}

// listingResponse is the wire shape of one listing observation.
type listingResponse struct {
	Reference  string    `json:"reference"`
	Operation  string    `json:"operation"`
	Price      float64   `json:"price"`
	Rooms      int       `json:"rooms"`
	Bathrooms  int       `json:"bathrooms"`
	Surface    float64   `json:"surface"`
	Title      string    `json:"title"`
	Location   string    `json:"location"`
	Address    string    `json:"address"`
	URL        string    `json:"url"`
	Website    string    `json:"website"`
	CapturedAt time.Time `json:"captured_at"`
}

func toListingResponse(l database.Listing) listingResponse {
	return listingResponse{
		Reference:  l.Reference,
		Operation:  l.Operation,
		Price:      l.Price,
		Rooms:      l.Rooms,
		Bathrooms:  l.Bathrooms,
		Surface:    l.Surface,
		Title:      l.Title,
		Location:   l.Location,
		Address:    l.Address,
		URL:        l.URL,
		Website:    l.Website,
		CapturedAt: l.CapturedAt,
	}
}
