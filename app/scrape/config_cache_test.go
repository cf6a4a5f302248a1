package scrape

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSiteConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write site config: %v", err)
	}
}

func TestConfigCacheRun(t *testing.T) {
	dir := t.TempDir()

	writeSiteConfig(t, dir, "finquesmarca", `
site:
  url: "https://www.finquesmarca.com/cercador/?AnunciosPorParrilla=120"
  website: "www.finquesmarca.com"
settings:
  enabled: true
  scrape_interval: 1440
`)
	writeSiteConfig(t, dir, "nouaire", `
site:
  url: "https://www.nouaire.com/prop/comprar"
  website: "www.nouaire.com"
settings:
  enabled: false
`)

	cache := NewConfigCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if cache.GetConfigCount() != 2 {
		t.Errorf("Expected 2 configs, got %d", cache.GetConfigCount())
	}

	config, err := cache.GetConfig("finquesmarca")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if config.Name != "finquesmarca" {
		t.Errorf("Expected name 'finquesmarca', got '%s'", config.Name)
	}
	if config.Site.Website != "www.finquesmarca.com" {
		t.Errorf("Unexpected website label: %s", config.Site.Website)
	}
	if config.Settings.ScrapeInterval != 1440 {
		t.Errorf("Expected scrape interval 1440, got %d", config.Settings.ScrapeInterval)
	}

	enabled := cache.GetEnabledConfigs()
	if len(enabled) != 1 {
		t.Fatalf("Expected 1 enabled config, got %d", len(enabled))
	}
	if _, ok := enabled["finquesmarca"]; !ok {
		t.Error("Expected finquesmarca to be enabled")
	}
}

func TestConfigCacheDefaults(t *testing.T) {
	dir := t.TempDir()

	writeSiteConfig(t, dir, "claus", `
site:
  url: "http://www.7claus.com/cercador/pisos/andorra_andorra/"
  website: "www.7claus.com"
settings:
  enabled: true
`)

	cache := NewConfigCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	config, err := cache.GetConfig("claus")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if config.Settings.ScrapeInterval != 720 {
		t.Errorf("Expected default scrape interval 720, got %d", config.Settings.ScrapeInterval)
	}
	if config.Settings.MaxPages != 10 {
		t.Errorf("Expected default max pages 10, got %d", config.Settings.MaxPages)
	}
	if config.Settings.Timeout != 10 {
		t.Errorf("Expected default timeout 10, got %d", config.Settings.Timeout)
	}
	if config.Settings.Delay != 1000 {
		t.Errorf("Expected default delay 1000, got %d", config.Settings.Delay)
	}
}

func TestConfigCacheInvalidConfig(t *testing.T) {
	dir := t.TempDir()

	writeSiteConfig(t, dir, "broken", `
site:
  website: "www.example.com"
settings:
  enabled: true
`)

	cache := NewConfigCache(dir)
	if err := cache.Run(); err == nil {
		t.Error("Expected error for config without site URL")
	}
}

func TestConfigCacheMissingDir(t *testing.T) {
	cache := NewConfigCache("/nonexistent/path")
	if err := cache.Run(); err != nil {
		t.Errorf("Missing sites dir should not be an error: %v", err)
	}
	if cache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 configs, got %d", cache.GetConfigCount())
	}
}

func TestConfigCacheGetConfigNotFound(t *testing.T) {
	cache := NewConfigCache(t.TempDir())
	if _, err := cache.GetConfig("missing"); err == nil {
		t.Error("Expected error for unknown site name")
	}
}
