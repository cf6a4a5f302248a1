package database

import (
	"time"
)

// Listing is one stored observation of an advertised property. The URL is
// the listing's identity; rows sharing a URL across days form its history.
type Listing struct {
	ID         int64
	Reference  string
	Operation  string
	Price      float64
	Rooms      int
	Bathrooms  int
	Surface    float64
	Title      string
	Location   string
	Address    string
	URL        string
	Website    string
	CapturedAt time.Time
}

// VigencyStats summarizes listing freshness at a point in time.
type VigencyStats struct {
	SeenToday      int `json:"seen_today"`
	SeenYesterday  int `json:"seen_yesterday"`
	StaleOver7Days int `json:"stale"`
	Total          int `json:"total"`
}

// Site is a registered source website with its scrape schedule.
type Site struct {
	ID            int64
	Name          string
	BaseURL       string
	LastScrapedAt *time.Time
	NextScrapeAt  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
