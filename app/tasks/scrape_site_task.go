package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arasmu/andorra-props/app/database"
	"github.com/arasmu/andorra-props/app/listing"
	"github.com/arasmu/andorra-props/app/location"
	"github.com/arasmu/andorra-props/app/scrape"
)

// ScrapeSiteTask runs one full scrape of a site: extract raw listings,
// normalize and classify them, gate out the ones not worth tracking and
// batch-upsert the survivors.
type ScrapeSiteTask struct {
	Task
	SiteConfig  *scrape.Config
	extractor   scrape.Extractor
	builder     *listing.Builder
	gate        *listing.Gate
	listingRepo database.ListingRepository
	siteRepo    database.SiteRepository
}

func NewScrapeSiteTask(siteName string, siteConfig *scrape.Config, extractor scrape.Extractor,
	builder *listing.Builder, gate *listing.Gate,
	listingRepo database.ListingRepository, siteRepo database.SiteRepository) *ScrapeSiteTask {
	return &ScrapeSiteTask{
		Task:        NewTask(TaskTypeScrapeSite, siteName),
		SiteConfig:  siteConfig,
		extractor:   extractor,
		builder:     builder,
		gate:        gate,
		listingRepo: listingRepo,
		siteRepo:    siteRepo,
	}
}

func (t *ScrapeSiteTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SiteConfig.Settings.Enabled {
		slog.Debug("Site disabled, skipping", "site", t.SiteName)
		return nil
	}

	rawListings, err := t.extractor.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to extract listings: %w", err)
	}

	rejectedCount := 0
	var accepted []listing.Listing

	for _, raw := range rawListings {
		normalized := t.builder.Run(raw, t.descriptionFetcher(ctx, raw.URL))

		if ok, reason := t.gate.Run(normalized); !ok {
			rejectedCount++
			slog.Debug("Listing rejected", "site", t.SiteName, "url", normalized.URL, "reason", reason)
			continue
		}

		accepted = append(accepted, normalized)
	}

	storedCount := 0
	if len(accepted) > 0 {
		storedCount, err = t.listingRepo.UpsertBatch(accepted)
		if err != nil {
			return fmt.Errorf("failed to store listings: %w", err)
		}
	}

	if err := t.updateSiteSchedule(); err != nil {
		return fmt.Errorf("failed to update site schedule: %w", err)
	}

	slog.Info("Task completed",
		"type", "ScrapeSite",
		"site", t.SiteName,
		"duration", t.GetDuration(),
		"total", len(rawListings),
		"rejected", rejectedCount,
		"stored", storedCount)

	return nil
}

// descriptionFetcher wraps the extractor's detail-page fetch as the lazy
// callback the location classifier expects. The fetch only happens when a
// special-village trigger fires.
func (t *ScrapeSiteTask) descriptionFetcher(ctx context.Context, url string) location.DescriptionFetcher {
	if url == "" {
		return nil
	}
	return func() (string, error) {
		return t.extractor.FetchDescription(ctx, url)
	}
}

func (t *ScrapeSiteTask) updateSiteSchedule() error {
	nextScrape := time.Now().UTC().Add(time.Duration(t.SiteConfig.Settings.ScrapeInterval) * time.Minute)
	return t.siteRepo.UpdateSiteScraped(t.SiteName, nextScrape)
}
