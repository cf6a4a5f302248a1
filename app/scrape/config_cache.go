package scrape

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ConfigCache loads and holds the per-site YAML configurations.
type ConfigCache struct {
	sitesDir string
	cache    map[string]*Config
	mu       sync.RWMutex
}

func NewConfigCache(sitesDir string) *ConfigCache {
	return &ConfigCache{
		sitesDir: sitesDir,
		cache:    make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.sitesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.sitesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		siteName := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.LoadConfig(siteName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Site configuration loaded", "site", siteName,
			"enabled", config.Settings.Enabled, "scrape_interval", config.Settings.ScrapeInterval)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(siteName string) (*Config, error) {
	configFile := filepath.Join(cc.sitesDir, siteName+".yml")

	config, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	config.Name = siteName

	if err := cc.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[config.Name] = config

	return config, nil
}

func (cc *ConfigCache) GetConfig(siteName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[siteName]
	if !ok {
		return nil, fmt.Errorf("site config with name '%s' not found", siteName)
	}
	return config, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabled := make(map[string]*Config)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabled[k] = v
		}
	}
	return enabled
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Defaults for optional settings
	if config.Settings.ScrapeInterval == 0 {
		config.Settings.ScrapeInterval = 720
	}
	if config.Settings.MaxPages == 0 {
		config.Settings.MaxPages = 10
	}
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = 10
	}
	if config.Settings.Delay == 0 {
		config.Settings.Delay = 1000
	}

	return &config, nil
}

func (cc *ConfigCache) validateConfig(config *Config) error {
	if config.Site.URL == "" {
		return fmt.Errorf("site URL is required")
	}
	if config.Site.Website == "" {
		return fmt.Errorf("site website label is required")
	}
	return nil
}
