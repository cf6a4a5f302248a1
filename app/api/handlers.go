package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arasmu/andorra-props/app/cfg"
	"github.com/arasmu/andorra-props/app/database"
	"github.com/arasmu/andorra-props/app/scrape"
	"github.com/arasmu/andorra-props/app/tasks"
)

func NewHandler(configCache *scrape.ConfigCache, listingRepo database.ListingRepository,
	siteRepo database.SiteRepository, db Pinger,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	c := cfg.Get()
	return &Handler{
		listingRepo:   listingRepo,
		siteRepo:      siteRepo,
		configCache:   configCache,
		scheduler:     scheduler,
		db:            db,
		freshnessDays: c.FreshnessWindowDays,
		version:       c.Version,
		startedAt:     time.Now(),
	}
}

// listingFilter captures the dashboard's query parameters.
type listingFilter struct {
	website    string
	location   string
	operation  string
	minPrice   float64
	maxPrice   float64
	rooms      int
	minSurface float64
	maxSurface float64
}

func parseListingFilter(c *gin.Context) listingFilter {
	f := listingFilter{
		website:   c.Query("website"),
		location:  strings.ToLower(c.Query("location")),
		operation: c.Query("operation"),
	}
	f.minPrice, _ = strconv.ParseFloat(c.Query("min_price"), 64)
	f.maxPrice, _ = strconv.ParseFloat(c.Query("max_price"), 64)
	f.rooms, _ = strconv.Atoi(c.Query("rooms"))
	f.minSurface, _ = strconv.ParseFloat(c.Query("min_surface"), 64)
	f.maxSurface, _ = strconv.ParseFloat(c.Query("max_surface"), 64)
	return f
}

func (f listingFilter) matches(l database.Listing) bool {
	if f.website != "" && l.Website != f.website {
		return false
	}
	if f.location != "" && !strings.Contains(strings.ToLower(l.Location), f.location) {
		return false
	}
	if f.operation != "" && !strings.EqualFold(l.Operation, f.operation) {
		return false
	}
	if f.minPrice > 0 && l.Price < f.minPrice {
		return false
	}
	if f.maxPrice > 0 && l.Price > f.maxPrice {
		return false
	}
	if f.rooms > 0 && l.Rooms != f.rooms {
		return false
	}
	if f.minSurface > 0 && l.Surface < f.minSurface {
		return false
	}
	if f.maxSurface > 0 && l.Surface > f.maxSurface {
		return false
	}
	return true
}

// GetListings serves the dashboard's main view: the latest observation of
// every tracked URL with a known price, newest first. With all=true every
// priced observation is returned instead.
func (h *Handler) GetListings(c *gin.Context) {
	var (
		listings []database.Listing
		err      error
	)

	if c.Query("all") == "true" {
		listings, err = h.listingRepo.GetWithPrice()
	} else {
		listings, err = h.listingRepo.GetLatestPerURL()
	}
	if err != nil {
		slog.Error("Database error", "operation", "get_listings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	filter := parseListingFilter(c)

	results := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		if l.Price == 0 {
			continue
		}
		if !filter.matches(l) {
			continue
		}
		results = append(results, toListingResponse(l))
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": results,
		"total":    len(results),
	})
}

// GetListingHistory serves all observations of one URL, oldest first.
func (h *Handler) GetListingHistory(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url query parameter"})
		return
	}

	listings, err := h.listingRepo.GetHistory(url)
	if err != nil {
		slog.Error("Database error", "operation", "get_history", "url", url, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if len(listings) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No observations for URL"})
		return
	}

	results := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		results = append(results, toListingResponse(l))
	}

	c.JSON(http.StatusOK, gin.H{
		"url":          url,
		"observations": results,
		"total":        len(results),
	})
}

// GetStaleListings serves listings whose latest observation is older than the
// requested threshold (defaulting to the freshness window).
func (h *Handler) GetStaleListings(c *gin.Context) {
	days := h.freshnessDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days parameter"})
			return
		}
		days = parsed
	}

	listings, err := h.listingRepo.GetStale(days)
	if err != nil {
		slog.Error("Database error", "operation", "get_stale", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	results := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		results = append(results, toListingResponse(l))
	}

	c.JSON(http.StatusOK, gin.H{
		"threshold_days": days,
		"listings":       results,
		"total":          len(results),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.listingRepo.GetStats(h.freshnessDays)
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	response := gin.H{
		"vigency":        stats,
		"freshness_days": h.freshnessDays,
	}

	if observations, err := h.listingRepo.GetObservationCount(); err == nil {
		response["observations"] = observations
	}
	if siteCount, err := h.siteRepo.GetSiteCount(); err == nil {
		response["sites"] = siteCount
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
	}

	if err := h.db.Ping(); err != nil {
		health["status"] = "unhealthy"
		health["database"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	health["status"] = "ok"
	health["loaded_configurations"] = h.configCache.GetConfigCount()

	if siteCount, err := h.siteRepo.GetSiteCount(); err == nil {
		health["sites"] = siteCount
	}

	c.JSON(http.StatusOK, health)
}

// APISyncSite reloads one site's YAML configuration and re-registers it in
// the database. Requires the API access key.
func (h *Handler) APISyncSite(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing site name parameter"})
		return
	}

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Site configuration not found", "site", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Site configuration not found"})
		return
	}

	site, err := h.siteRepo.GetSite(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_site", "site", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	siteConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "site", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	syncTask := tasks.NewSyncSiteConfigTask(name, siteConfig, h.siteRepo)
	if err := h.scheduler.EnqueueTask(syncTask); err != nil {
		slog.Error("Error enqueueing sync task", "site", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	siteInfo := gin.H{
		"name": name,
		"url":  siteConfig.Site.URL,
	}
	if site != nil {
		siteInfo["last_scraped_at"] = site.LastScrapedAt
		siteInfo["next_scrape_at"] = site.NextScrapeAt
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Configuration reloaded and sync task enqueued",
		"site":    siteInfo,
		"task": gin.H{
			"id":   syncTask.ID,
			"type": syncTask.Type,
		},
	})
}

// APIPurge wipes every stored observation. Requires the API access key.
func (h *Handler) APIPurge(c *gin.Context) {
	deleted, err := h.listingRepo.PurgeAll()
	if err != nil {
		slog.Error("Database error", "operation", "purge", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	slog.Info("Observations purged", "deleted", deleted)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"deleted": deleted,
	})
}
