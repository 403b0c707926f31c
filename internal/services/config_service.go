package services

import (
	"fmt"

	"retagger/internal/config"
	"retagger/internal/shared"
)

// ConfigService implementation
type ConfigService struct{}

func NewConfigService() *ConfigService {
	return &ConfigService{}
}

// LoadConfig reads configFile over the defaults, so options missing from
// the file keep their default value.
func (cs *ConfigService) LoadConfig(configFile string) (*config.Config, error) {
	cfg := cs.GetDefaultConfig()
	if err := config.LoadConfig(configFile, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaultNamingMasks()
	return cfg, nil
}

func (cs *ConfigService) SaveConfig(configFile string, cfg *config.Config) error {
	return config.SaveConfig(configFile, cfg)
}

func (cs *ConfigService) ValidateConfig(cfg *config.Config) error {
	switch cfg.Catalog {
	case config.CatalogDeezer:
		if cfg.DeezerAPIURL == "" {
			return fmt.Errorf("deezer API URL is required")
		}
	case config.CatalogSpotify:
		if cfg.SpotifyClientID == "" || cfg.SpotifyClientSecret == "" {
			return fmt.Errorf("spotify client id and secret are required")
		}
	default:
		return fmt.Errorf("unknown catalog %q (expected %q or %q)", cfg.Catalog, config.CatalogDeezer, config.CatalogSpotify)
	}
	if cfg.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1")
	}
	if cfg.RelocateOnSave && cfg.OutputDirectory == "" {
		return fmt.Errorf("output directory is required when relocate_on_save is enabled")
	}
	switch cfg.LogFormat {
	case "", "text", "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
	return nil
}

func (cs *ConfigService) GetDefaultConfig() *config.Config {
	return config.Default()
}

func (cs *ConfigService) EnsureConfigExists(configFile string) error {
	if !shared.FileExists(configFile) {
		defaultConfig := cs.GetDefaultConfig()
		return cs.SaveConfig(configFile, defaultConfig)
	}
	return nil
}
