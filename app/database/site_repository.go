package database

import (
	"database/sql"
	"fmt"
	"time"
)

// SiteRepo tracks registered source sites and their scrape schedule.
type SiteRepo struct {
	db  *DB
	now func() time.Time
}

var _ SiteRepository = (*SiteRepo)(nil)

func NewSiteRepository(db *DB) *SiteRepo {
	return &SiteRepo{db: db, now: time.Now}
}

// UpsertSite registers a site or updates its base URL.
func (r *SiteRepo) UpsertSite(name, baseURL string) error {
	_, err := r.db.Exec(`
		INSERT INTO sites (name, base_url) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET
			base_url = excluded.base_url,
			updated_at = ?
	`, name, baseURL, fmtTime(r.now()))
	if err != nil {
		return fmt.Errorf("failed to upsert site: %w", err)
	}
	return nil
}

// GetSite returns a registered site by name, or nil when unknown.
func (r *SiteRepo) GetSite(name string) (*Site, error) {
	row := r.db.QueryRow(`
		SELECT id, name, base_url, last_scraped_at, next_scrape_at, created_at, updated_at
		FROM sites WHERE name = ?
	`, name)

	site, err := scanSite(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	return site, nil
}

// GetSitesDueForScrape returns sites never scraped or past their schedule.
func (r *SiteRepo) GetSitesDueForScrape() ([]Site, error) {
	rows, err := r.db.Query(`
		SELECT id, name, base_url, last_scraped_at, next_scrape_at, created_at, updated_at
		FROM sites
		WHERE next_scrape_at IS NULL OR next_scrape_at <= ?
		ORDER BY name
	`, fmtTime(r.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to get due sites: %w", err)
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site row: %w", err)
		}
		sites = append(sites, *site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating site rows: %w", err)
	}

	return sites, nil
}

// UpdateSiteScraped records a completed scrape and the next scheduled one.
func (r *SiteRepo) UpdateSiteScraped(name string, nextScrapeAt time.Time) error {
	now := fmtTime(r.now())
	_, err := r.db.Exec(`
		UPDATE sites
		SET last_scraped_at = ?, next_scrape_at = ?, updated_at = ?
		WHERE name = ?
	`, now, fmtTime(nextScrapeAt), now, name)
	if err != nil {
		return fmt.Errorf("failed to update site schedule: %w", err)
	}
	return nil
}

// GetSiteCount returns the number of registered sites.
func (r *SiteRepo) GetSiteCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM sites`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sites: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSite(row rowScanner) (*Site, error) {
	var site Site
	var lastScraped, nextScrape sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&site.ID, &site.Name, &site.BaseURL,
		&lastScraped, &nextScrape, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if site.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if site.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if lastScraped.Valid {
		t, err := parseTime(lastScraped.String)
		if err != nil {
			return nil, err
		}
		site.LastScrapedAt = &t
	}
	if nextScrape.Valid {
		t, err := parseTime(nextScrape.String)
		if err != nil {
			return nil, err
		}
		site.NextScrapeAt = &t
	}

	return &site, nil
}
