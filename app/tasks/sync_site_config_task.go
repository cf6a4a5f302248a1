package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arasmu/andorra-props/app/database"
	"github.com/arasmu/andorra-props/app/scrape"
)

type SyncSiteConfigTask struct {
	Task
	SiteConfig *scrape.Config
	siteRepo   database.SiteRepository
}

func NewSyncSiteConfigTask(siteName string, siteConfig *scrape.Config, siteRepo database.SiteRepository) *SyncSiteConfigTask {
	return &SyncSiteConfigTask{
		Task:       NewTask(TaskTypeSyncSiteConfig, siteName),
		SiteConfig: siteConfig,
		siteRepo:   siteRepo,
	}
}

func (t *SyncSiteConfigTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := t.siteRepo.UpsertSite(
		t.SiteConfig.Name,
		t.SiteConfig.Site.URL)
	if err != nil {
		slog.Error("Task failed", "type", "SyncSiteConfig", "site", t.SiteName, "error", err)
		return fmt.Errorf("failed to sync site config to database: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncSiteConfig",
		"site", t.SiteName,
		"duration", t.GetDuration())

	return nil
}
