package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/arasmu/andorra-props/app/listing"
)

// ListingRepo implements the vigency model over the listings table: one row
// per (url, calendar day) observation, with same-day re-observations only
// refreshing captured_at.
type ListingRepo struct {
	db *DB

	// now is swapped out in tests to pin calendar days.
	now func() time.Time
}

var _ ListingRepository = (*ListingRepo)(nil)

func NewListingRepository(db *DB) *ListingRepo {
	return &ListingRepo{db: db, now: time.Now}
}

const listingColumns = `id, reference, operation, price, rooms, bathrooms, surface,
	       title, location, address, url, website, captured_at`

// fmtTime renders a timestamp as fixed-width RFC 3339 UTC text, so string
// comparison in SQL is time comparison.
func fmtTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}

// dayRange returns the local calendar day [start, end) containing t.
func dayRange(t time.Time) (time.Time, time.Time) {
	local := t.In(time.Local)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	return start, start.AddDate(0, 0, 1)
}

// UpsertOne records one observation. If the URL was already observed today
// only its captured_at is refreshed; otherwise a new row is inserted with
// captured_at set to now. Returns false only on storage failure, which the
// caller may treat as retryable.
func (r *ListingRepo) UpsertOne(l listing.Listing) (bool, error) {
	now := r.now()
	dayStart, dayEnd := dayRange(now)

	var id int64
	err := r.db.QueryRow(`
		SELECT id FROM listings
		WHERE url = ? AND captured_at >= ? AND captured_at < ?
		LIMIT 1
	`, l.URL, fmtTime(dayStart), fmtTime(dayEnd)).Scan(&id)

	switch {
	case err == sql.ErrNoRows:
		if err := r.insert(r.db.DB, l, now); err != nil {
			return false, fmt.Errorf("failed to insert listing: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("failed to look up same-day listing: %w", err)
	default:
		if _, err := r.db.Exec(`UPDATE listings SET captured_at = ? WHERE id = ?`,
			fmtTime(now), id); err != nil {
			return false, fmt.Errorf("failed to refresh listing: %w", err)
		}
		return true, nil
	}
}

// UpsertBatch records a whole scrape run in one transaction with a single
// shared timestamp. URLs already observed today get captured_at refreshed
// and nothing else; the rest are inserted as new rows. Any failure rolls
// the whole batch back and reports zero processed.
func (r *ListingRepo) UpsertBatch(ls []listing.Listing) (int, error) {
	if len(ls) == 0 {
		return 0, nil
	}

	batchAt := r.now()
	dayStart, dayEnd := dayRange(batchAt)

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	urls := make([]string, 0, len(ls))
	seen := make(map[string]struct{}, len(ls))
	for _, l := range ls {
		if _, ok := seen[l.URL]; ok {
			continue
		}
		seen[l.URL] = struct{}{}
		urls = append(urls, l.URL)
	}

	existing, err := sameDayRows(tx, urls, fmtTime(dayStart), fmtTime(dayEnd))
	if err != nil {
		return 0, err
	}

	count := 0
	for _, l := range ls {
		if id, ok := existing[l.URL]; ok {
			if _, err := tx.Exec(`UPDATE listings SET captured_at = ? WHERE id = ?`,
				fmtTime(batchAt), id); err != nil {
				return 0, fmt.Errorf("failed to refresh listing %s: %w", l.URL, err)
			}
		} else {
			res, err := insertStmt(tx, l, batchAt)
			if err != nil {
				return 0, fmt.Errorf("failed to insert listing %s: %w", l.URL, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return 0, fmt.Errorf("failed to read inserted id: %w", err)
			}
			existing[l.URL] = id
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}

	return count, nil
}

// sameDayRows builds the URL -> row id lookup for today's observations of
// the batch's URL set, in one query.
func sameDayRows(tx *sql.Tx, urls []string, dayStart, dayEnd string) (map[string]int64, error) {
	existing := make(map[string]int64, len(urls))
	if len(urls) == 0 {
		return existing, nil
	}

	placeholders := strings.Repeat("?,", len(urls))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]interface{}, 0, len(urls)+2)
	args = append(args, dayStart, dayEnd)
	for _, u := range urls {
		args = append(args, u)
	}

	rows, err := tx.Query(`
		SELECT id, url FROM listings
		WHERE captured_at >= ? AND captured_at < ? AND url IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to look up same-day listings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var url string
		if err := rows.Scan(&id, &url); err != nil {
			return nil, fmt.Errorf("failed to scan same-day row: %w", err)
		}
		existing[url] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating same-day rows: %w", err)
	}

	return existing, nil
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func insertStmt(e execer, l listing.Listing, capturedAt time.Time) (sql.Result, error) {
	return e.Exec(`
		INSERT INTO listings (
			reference, operation, price, rooms, bathrooms, surface,
			title, location, address, url, website, captured_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.Reference, l.Operation, l.Price, l.Rooms, l.Bathrooms, l.Surface,
		l.Title, l.Location, l.Address, l.URL, l.Website, fmtTime(capturedAt))
}

func (r *ListingRepo) insert(e execer, l listing.Listing, capturedAt time.Time) error {
	_, err := insertStmt(e, l, capturedAt)
	return err
}

// GetLatestPerURL returns one row per distinct URL: the observation with the
// maximum captured_at. Ties resolve arbitrarily.
func (r *ListingRepo) GetLatestPerURL() ([]Listing, error) {
	rows, err := r.db.Query(`
		SELECT ` + listingColumns + `
		FROM listings
		JOIN (SELECT url AS latest_url, MAX(captured_at) AS latest_at
		      FROM listings GROUP BY url) latest
		  ON url = latest.latest_url AND captured_at = latest.latest_at
		GROUP BY url
		ORDER BY captured_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest listings: %w", err)
	}
	return scanListings(rows)
}

// GetWithPrice returns every observation with a known price, newest first.
// This is the dashboard's base query.
func (r *ListingRepo) GetWithPrice() ([]Listing, error) {
	rows, err := r.db.Query(`
		SELECT ` + listingColumns + `
		FROM listings
		WHERE price > 0
		ORDER BY captured_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get priced listings: %w", err)
	}
	return scanListings(rows)
}

// GetHistory returns all observations for one URL, oldest first, for price
// history over time.
func (r *ListingRepo) GetHistory(url string) ([]Listing, error) {
	rows, err := r.db.Query(`
		SELECT `+listingColumns+`
		FROM listings
		WHERE url = ?
		ORDER BY captured_at ASC
	`, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing history: %w", err)
	}
	return scanListings(rows)
}

// GetStale returns the latest observation of every URL not seen within the
// threshold, most recently seen first.
func (r *ListingRepo) GetStale(thresholdDays int) ([]Listing, error) {
	cutoff := r.now().AddDate(0, 0, -thresholdDays)

	rows, err := r.db.Query(`
		SELECT `+listingColumns+`
		FROM listings
		JOIN (SELECT url AS latest_url, MAX(captured_at) AS latest_at
		      FROM listings GROUP BY url) latest
		  ON url = latest.latest_url AND captured_at = latest.latest_at
		WHERE latest.latest_at < ?
		GROUP BY url
		ORDER BY captured_at DESC
	`, fmtTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("failed to get stale listings: %w", err)
	}
	return scanListings(rows)
}

// GetStats returns day-boundary vigency counts against the repository clock.
func (r *ListingRepo) GetStats(freshnessDays int) (VigencyStats, error) {
	var stats VigencyStats

	now := r.now()
	todayStart, _ := dayRange(now)
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	staleCutoff := now.AddDate(0, 0, -freshnessDays)

	err := r.db.QueryRow(`
		SELECT COUNT(DISTINCT url) FROM listings WHERE captured_at >= ?
	`, fmtTime(todayStart)).Scan(&stats.SeenToday)
	if err != nil {
		return stats, fmt.Errorf("failed to count today's listings: %w", err)
	}

	err = r.db.QueryRow(`
		SELECT COUNT(DISTINCT url) FROM listings
		WHERE captured_at >= ? AND captured_at < ?
	`, fmtTime(yesterdayStart), fmtTime(todayStart)).Scan(&stats.SeenYesterday)
	if err != nil {
		return stats, fmt.Errorf("failed to count yesterday's listings: %w", err)
	}

	err = r.db.QueryRow(`
		SELECT COUNT(*) FROM (
			SELECT url, MAX(captured_at) AS latest_at FROM listings GROUP BY url
		) WHERE latest_at < ?
	`, fmtTime(staleCutoff)).Scan(&stats.StaleOver7Days)
	if err != nil {
		return stats, fmt.Errorf("failed to count stale listings: %w", err)
	}

	err = r.db.QueryRow(`SELECT COUNT(DISTINCT url) FROM listings`).Scan(&stats.Total)
	if err != nil {
		return stats, fmt.Errorf("failed to count listings: %w", err)
	}

	return stats, nil
}

// GetObservationCount returns the total number of stored observations.
func (r *ListingRepo) GetObservationCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM listings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count observations: %w", err)
	}
	return count, nil
}

// PurgeAll removes every observation. Administrative use only.
func (r *ListingRepo) PurgeAll() (int64, error) {
	res, err := r.db.Exec(`DELETE FROM listings`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge listings: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read purge count: %w", err)
	}
	return deleted, nil
}

func scanListings(rows *sql.Rows) ([]Listing, error) {
	defer rows.Close()

	var listings []Listing
	for rows.Next() {
		var l Listing
		var capturedAt string
		err := rows.Scan(
			&l.ID, &l.Reference, &l.Operation, &l.Price, &l.Rooms, &l.Bathrooms,
			&l.Surface, &l.Title, &l.Location, &l.Address, &l.URL, &l.Website,
			&capturedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}

		l.CapturedAt, err = parseTime(capturedAt)
		if err != nil {
			return nil, err
		}

		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing rows: %w", err)
	}

	return listings, nil
}
