package database

import (
	"testing"
	"time"
)

func TestSiteRepository_UpsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSiteRepository(db)

	if err := repo.UpsertSite("nouaire", "https://www.nouaire.com"); err != nil {
		t.Fatalf("UpsertSite failed: %v", err)
	}

	site, err := repo.GetSite("nouaire")
	if err != nil {
		t.Fatalf("GetSite failed: %v", err)
	}
	if site == nil {
		t.Fatal("Expected site, got nil")
	}
	if site.BaseURL != "https://www.nouaire.com" {
		t.Errorf("BaseURL = %q", site.BaseURL)
	}
	if site.LastScrapedAt != nil {
		t.Error("New site should have no last_scraped_at")
	}

	// Re-register with a changed URL; no duplicate row.
	if err := repo.UpsertSite("nouaire", "https://nouaire.com"); err != nil {
		t.Fatalf("Second UpsertSite failed: %v", err)
	}
	count, err := repo.GetSiteCount()
	if err != nil {
		t.Fatalf("GetSiteCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 site, got %d", count)
	}

	site, _ = repo.GetSite("nouaire")
	if site.BaseURL != "https://nouaire.com" {
		t.Errorf("Expected updated BaseURL, got %q", site.BaseURL)
	}

	missing, err := repo.GetSite("unknown")
	if err != nil {
		t.Fatalf("GetSite for unknown site errored: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for unknown site")
	}
}

func TestSiteRepository_DueForScrape(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSiteRepository(db)

	base := time.Date(2025, 10, 6, 12, 0, 0, 0, time.Local)
	repo.now = func() time.Time { return base }

	for _, name := range []string{"nouaire", "pisosad"} {
		if err := repo.UpsertSite(name, "https://"+name+".example"); err != nil {
			t.Fatalf("UpsertSite failed: %v", err)
		}
	}

	// Never-scraped sites are due.
	due, err := repo.GetSitesDueForScrape()
	if err != nil {
		t.Fatalf("GetSitesDueForScrape failed: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("Expected 2 due sites, got %d", len(due))
	}

	// Scraping one pushes its schedule into the future.
	if err := repo.UpdateSiteScraped("nouaire", base.Add(12*time.Hour)); err != nil {
		t.Fatalf("UpdateSiteScraped failed: %v", err)
	}

	due, _ = repo.GetSitesDueForScrape()
	if len(due) != 1 || due[0].Name != "pisosad" {
		t.Errorf("Expected only pisosad due, got %+v", due)
	}

	// Past the schedule it becomes due again.
	repo.now = func() time.Time { return base.Add(13 * time.Hour) }
	due, _ = repo.GetSitesDueForScrape()
	if len(due) != 2 {
		t.Errorf("Expected both sites due after schedule passed, got %d", len(due))
	}

	site, _ := repo.GetSite("nouaire")
	if site.LastScrapedAt == nil || !site.LastScrapedAt.Equal(base.UTC().Truncate(time.Second)) {
		t.Errorf("LastScrapedAt not recorded: %+v", site.LastScrapedAt)
	}
}
