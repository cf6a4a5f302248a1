package database

import (
	"testing"
	"time"

	"github.com/arasmu/andorra-props/app/listing"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func testListing(url string, price float64) listing.Listing {
	return listing.Listing{
		Reference: "REF-" + url,
		Operation: "Venta",
		Price:     price,
		Rooms:     3,
		Bathrooms: 2,
		Surface:   85,
		Title:     "Piso",
		Location:  "Encamp",
		Address:   "N/A",
		URL:       url,
		Website:   "example.ad",
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var (
	day1Noon = time.Date(2025, 10, 6, 12, 0, 0, 0, time.Local)
	day1Eve  = time.Date(2025, 10, 6, 19, 30, 0, 0, time.Local)
	day2Noon = time.Date(2025, 10, 7, 12, 0, 0, 0, time.Local)
)

func TestUpsertOne_SameDayIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	repo.now = fixedClock(day1Noon)
	ok, err := repo.UpsertOne(testListing("a", 100000))
	if err != nil || !ok {
		t.Fatalf("First upsert failed: ok=%v err=%v", ok, err)
	}

	repo.now = fixedClock(day1Eve)
	ok, err = repo.UpsertOne(testListing("a", 100000))
	if err != nil || !ok {
		t.Fatalf("Same-day upsert failed: ok=%v err=%v", ok, err)
	}

	count, err := repo.GetObservationCount()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 row after same-day re-upsert, got %d", count)
	}

	// The surviving row carries the refreshed timestamp.
	history, err := repo.GetHistory("a")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 history row, got %d", len(history))
	}
	if !history[0].CapturedAt.Equal(day1Eve.UTC().Truncate(time.Second)) {
		t.Errorf("Expected captured_at refreshed to %v, got %v", day1Eve, history[0].CapturedAt)
	}
}

func TestUpsertOne_DifferentDayAddsRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	repo.now = fixedClock(day1Noon)
	if _, err := repo.UpsertOne(testListing("a", 100000)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	repo.now = fixedClock(day2Noon)
	if _, err := repo.UpsertOne(testListing("a", 100000)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	count, _ := repo.GetObservationCount()
	if count != 2 {
		t.Errorf("Expected 2 rows after different-day upsert, got %d", count)
	}
}

func TestUpsertBatch_MixedNewAndExisting(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	repo.now = fixedClock(day1Noon)
	processed, err := repo.UpsertBatch([]listing.Listing{testListing("a", 150000)})
	if err != nil {
		t.Fatalf("Seed batch failed: %v", err)
	}
	if processed != 1 {
		t.Fatalf("Expected 1 processed, got %d", processed)
	}

	// Second batch the same day: "a" exists, "b" is new.
	repo.now = fixedClock(day1Eve)
	processed, err = repo.UpsertBatch([]listing.Listing{
		testListing("a", 150000),
		testListing("b", 200000),
	})
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if processed != 2 {
		t.Errorf("Expected 2 processed, got %d", processed)
	}

	count, _ := repo.GetObservationCount()
	if count != 2 {
		t.Errorf("Expected 2 rows (one refresh, one insert), got %d", count)
	}

	// The existing row's captured_at moved to the batch timestamp and no
	// other field was touched.
	history, err := repo.GetHistory("a")
	if err != nil || len(history) != 1 {
		t.Fatalf("History of 'a': rows=%d err=%v", len(history), err)
	}
	row := history[0]
	if !row.CapturedAt.Equal(day1Eve.UTC().Truncate(time.Second)) {
		t.Errorf("Expected refreshed captured_at, got %v", row.CapturedAt)
	}
	if row.Price != 150000 || row.Reference != "REF-a" {
		t.Errorf("Fields other than captured_at must not change: %+v", row)
	}
}

func TestUpsertBatch_EmptyInput(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	processed, err := repo.UpsertBatch(nil)
	if err != nil {
		t.Fatalf("Empty batch errored: %v", err)
	}
	if processed != 0 {
		t.Errorf("Expected 0 processed for empty batch, got %d", processed)
	}
}

func TestUpsertBatch_DuplicateURLWithinBatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	repo.now = fixedClock(day1Noon)
	processed, err := repo.UpsertBatch([]listing.Listing{
		testListing("a", 100000),
		testListing("a", 110000),
	})
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if processed != 2 {
		t.Errorf("Expected both inputs counted, got %d", processed)
	}

	count, _ := repo.GetObservationCount()
	if count != 1 {
		t.Errorf("Expected a single row for a duplicated URL, got %d", count)
	}

	// First write wins for field values.
	history, _ := repo.GetHistory("a")
	if len(history) != 1 || history[0].Price != 100000 {
		t.Errorf("Expected first record's fields to survive, got %+v", history)
	}
}

func TestVigencyScenario(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	// Day 1: two listings observed.
	repo.now = fixedClock(day1Noon)
	processed, err := repo.UpsertBatch([]listing.Listing{
		testListing("a", 100000),
		testListing("b", 100000),
	})
	if err != nil || processed != 2 {
		t.Fatalf("Day-1 batch: processed=%d err=%v", processed, err)
	}

	// Day 2: only "a" is still advertised.
	repo.now = fixedClock(day2Noon)
	processed, err = repo.UpsertBatch([]listing.Listing{testListing("a", 100000)})
	if err != nil || processed != 1 {
		t.Fatalf("Day-2 batch: processed=%d err=%v", processed, err)
	}

	count, _ := repo.GetObservationCount()
	if count != 3 {
		t.Errorf("Expected 3 total rows, got %d", count)
	}

	latest, err := repo.GetLatestPerURL()
	if err != nil {
		t.Fatalf("GetLatestPerURL failed: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("Expected 2 latest rows, got %d", len(latest))
	}

	byURL := make(map[string]Listing, len(latest))
	for _, l := range latest {
		byURL[l.URL] = l
	}
	if !byURL["a"].CapturedAt.Equal(day2Noon.UTC().Truncate(time.Second)) {
		t.Errorf("Latest 'a' should be the day-2 row, got %v", byURL["a"].CapturedAt)
	}
	if !byURL["b"].CapturedAt.Equal(day1Noon.UTC().Truncate(time.Second)) {
		t.Errorf("Latest 'b' should be the untouched day-1 row, got %v", byURL["b"].CapturedAt)
	}
}

func TestGetStale(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	old := day1Noon.AddDate(0, 0, -10)
	repo.now = fixedClock(old)
	if _, err := repo.UpsertBatch([]listing.Listing{
		testListing("old", 100000),
		testListing("refreshed", 100000),
	}); err != nil {
		t.Fatalf("Seed batch failed: %v", err)
	}

	// "refreshed" is observed again recently; "old" is not.
	repo.now = fixedClock(day1Noon)
	if _, err := repo.UpsertBatch([]listing.Listing{testListing("refreshed", 100000)}); err != nil {
		t.Fatalf("Refresh batch failed: %v", err)
	}

	stale, err := repo.GetStale(7)
	if err != nil {
		t.Fatalf("GetStale failed: %v", err)
	}
	if len(stale) != 1 {
		t.Fatalf("Expected 1 stale listing, got %d", len(stale))
	}
	if stale[0].URL != "old" {
		t.Errorf("Expected 'old' to be stale, got %q", stale[0].URL)
	}
}

func TestGetStats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	// One listing last seen 10 days ago, one yesterday, one today.
	repo.now = fixedClock(day2Noon.AddDate(0, 0, -10))
	if _, err := repo.UpsertBatch([]listing.Listing{testListing("stale", 100000)}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	repo.now = fixedClock(day1Noon)
	if _, err := repo.UpsertBatch([]listing.Listing{testListing("yesterday", 100000)}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	repo.now = fixedClock(day2Noon)
	if _, err := repo.UpsertBatch([]listing.Listing{testListing("today", 100000)}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	stats, err := repo.GetStats(7)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}

	if stats.SeenToday != 1 {
		t.Errorf("SeenToday = %d, expected 1", stats.SeenToday)
	}
	if stats.SeenYesterday != 1 {
		t.Errorf("SeenYesterday = %d, expected 1", stats.SeenYesterday)
	}
	if stats.StaleOver7Days != 1 {
		t.Errorf("StaleOver7Days = %d, expected 1", stats.StaleOver7Days)
	}
	if stats.Total != 3 {
		t.Errorf("Total = %d, expected 3", stats.Total)
	}
}

func TestGetWithPriceAndHistory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	repo.now = fixedClock(day1Noon)
	free := testListing("free", 0)
	if _, err := repo.UpsertBatch([]listing.Listing{testListing("a", 120000), free}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	repo.now = fixedClock(day2Noon)
	if _, err := repo.UpsertBatch([]listing.Listing{testListing("a", 115000)}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	priced, err := repo.GetWithPrice()
	if err != nil {
		t.Fatalf("GetWithPrice failed: %v", err)
	}
	for _, l := range priced {
		if l.Price <= 0 {
			t.Errorf("Priced query returned zero-price row: %+v", l)
		}
	}
	if len(priced) != 2 {
		t.Errorf("Expected 2 priced observations, got %d", len(priced))
	}

	history, err := repo.GetHistory("a")
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 history rows, got %d", len(history))
	}
	if !history[0].CapturedAt.Before(history[1].CapturedAt) {
		t.Error("History must be ordered oldest first")
	}
	if history[0].Price != 120000 || history[1].Price != 115000 {
		t.Errorf("Price history mismatch: %+v", history)
	}
}

func TestPurgeAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingRepository(db)

	repo.now = fixedClock(day1Noon)
	if _, err := repo.UpsertBatch([]listing.Listing{
		testListing("a", 100000),
		testListing("b", 100000),
	}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	deleted, err := repo.PurgeAll()
	if err != nil {
		t.Fatalf("PurgeAll failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted, got %d", deleted)
	}

	count, _ := repo.GetObservationCount()
	if count != 0 {
		t.Errorf("Expected empty table after purge, got %d rows", count)
	}
}
