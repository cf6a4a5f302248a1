package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background scrape processing.
// Example usage:
//
//	scheduler := NewScheduler(configCache, listingRepo, siteRepo, builder, gate)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewScrapeSiteTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
