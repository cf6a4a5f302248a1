package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/arasmu/andorra-props/app/cfg"
	"github.com/arasmu/andorra-props/app/database"
	"github.com/arasmu/andorra-props/app/listing"
	"github.com/arasmu/andorra-props/app/scrape"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	listingRepo database.ListingRepository
	siteRepo    database.SiteRepository
	configCache *scrape.ConfigCache
	extractors  map[string]scrape.Extractor
	builder     *listing.Builder
	gate        *listing.Gate
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(configCache *scrape.ConfigCache, listingRepo database.ListingRepository,
	siteRepo database.SiteRepository, extractors map[string]scrape.Extractor,
	builder *listing.Builder, gate *listing.Gate) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		listingRepo: listingRepo,
		siteRepo:    siteRepo,
		configCache: configCache,
		extractors:  extractors,
		builder:     builder,
		gate:        gate,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()

}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	siteConfigs := s.configCache.GetConfigs()
	if len(siteConfigs) == 0 {
		slog.Debug("No site configurations found")
		return
	}

	slog.Debug("Processing site configurations", "count", len(siteConfigs))

	for _, siteConfig := range siteConfigs {
		syncTask := NewSyncSiteConfigTask(siteConfig.Name, siteConfig, s.siteRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncSiteConfigTask", "site", siteConfig.Name, "error", err)
			continue
		}

		if !siteConfig.Settings.Enabled {
			slog.Debug("Site disabled, skipping ScrapeSiteTask", "site", siteConfig.Name)
			continue
		}

		if err := s.enqueueScrapeTask(siteConfig); err != nil {
			slog.Warn("Failed to enqueue ScrapeSiteTask", "site", siteConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	siteConfigs := s.configCache.GetEnabledConfigs()
	if len(siteConfigs) == 0 {
		slog.Debug("No enabled site configurations found")
		return
	}

	dueSites, err := s.siteRepo.GetSitesDueForScrape()
	if err != nil {
		slog.Warn("Failed to get due sites from database", "error", err)
		return
	}

	slog.Debug("Processing due sites for task scheduling", "due", len(dueSites), "enabled", len(siteConfigs))

	for _, site := range dueSites {
		siteConfig, ok := siteConfigs[site.Name]
		if !ok {
			slog.Debug("Due site has no enabled configuration, skipping", "site", site.Name)
			continue
		}

		if err := s.enqueueScrapeTask(siteConfig); err != nil {
			slog.Warn("Failed to enqueue ScrapeSiteTask", "site", siteConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueScrapeTask(siteConfig *scrape.Config) error {
	extractor, ok := s.extractors[siteConfig.Name]
	if !ok {
		return fmt.Errorf("no extractor registered for site '%s'", siteConfig.Name)
	}

	scrapeTask := NewScrapeSiteTask(siteConfig.Name, siteConfig, extractor, s.builder, s.gate, s.listingRepo, s.siteRepo)
	return s.EnqueueTask(scrapeTask)
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 15*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "site", task.GetSiteName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			// The retry goroutine joins the WaitGroup so Stop cannot
			// close the queue while a re-enqueue is still pending.
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
