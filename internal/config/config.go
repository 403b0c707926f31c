package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"retagger/internal/merge"
)

const (
	RequestTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultConfigFile = "config/config.json"
)

// Catalog providers.
const (
	CatalogDeezer  = "deezer"
	CatalogSpotify = "spotify"
)

// NamingOptions defines the configurable naming masks
type NamingOptions struct {
	FileMask string `json:"file_mask" yaml:"file_mask"`
}

// GetDefaultNamingMasks returns the default naming masks
func GetDefaultNamingMasks() NamingOptions {
	return NamingOptions{
		FileMask: "{track_number} - {artist} - {title}",
	}
}

// ApplyDefaultNamingMasks applies default naming masks to empty fields
func (cfg *Config) ApplyDefaultNamingMasks() {
	if cfg.NamingMasks.FileMask == "" {
		cfg.NamingMasks.FileMask = GetDefaultNamingMasks().FileMask
	}
}

// Configuration structure
type Config struct {
	Catalog             string        `json:"Catalog" yaml:"catalog"`
	DeezerAPIURL        string        `json:"DeezerAPIURL" yaml:"deezer_api_url"`
	DeezerGatewayURL    string        `json:"DeezerGatewayURL" yaml:"deezer_gateway_url"`
	SpotifyClientID     string        `json:"SpotifyClientID" yaml:"spotify_client_id"`
	SpotifyClientSecret string        `json:"SpotifyClientSecret" yaml:"spotify_client_secret"`
	NavidromeURL        string        `json:"NavidromeURL" yaml:"navidrome_url"`
	NavidromeUsername   string        `json:"NavidromeUsername" yaml:"navidrome_username"`
	NavidromePassword   string        `json:"NavidromePassword" yaml:"navidrome_password"`
	OutputDirectory     string        `json:"OutputDirectory" yaml:"output_directory"`
	RelocateOnSave      bool          `json:"RelocateOnSave" yaml:"relocate_on_save"`
	NamingMasks         NamingOptions `json:"naming" yaml:"naming"`
	Parallelism         int           `json:"Parallelism" yaml:"parallelism"`
	MaxRetryAttempts    int           `json:"MaxRetryAttempts" yaml:"max_retry_attempts"`
	WarningBehavior     string        `json:"WarningBehavior" yaml:"warning_behavior"` // "immediate", "summary", or "silent"
	LogFormat           string        `json:"LogFormat" yaml:"log_format"`             // "text", "json" or "console"
	ServerAddr          string        `json:"ServerAddr" yaml:"server_addr"`
	Tagging             merge.Policy  `json:"tagging" yaml:"tagging"`
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		Catalog:          CatalogDeezer,
		DeezerAPIURL:     "https://api.deezer.com",
		DeezerGatewayURL: "https://www.deezer.com/ajax/gw-light.php",
		NamingMasks:      GetDefaultNamingMasks(),
		Parallelism:      5,
		MaxRetryAttempts: DefaultMaxRetries,
		WarningBehavior:  "summary",
		LogFormat:        "text",
		ServerAddr:       "127.0.0.1:8765",
		Tagging:          merge.DefaultPolicy(),
	}
}

// Clone returns a copy of cfg that can be changed without affecting cfg.
func (cfg *Config) Clone() *Config {
	c := *cfg
	return &c
}

// CreateDirIfNotExists creates a directory if it does not exist
func CreateDirIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

func isYAML(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by the
// file extension. Fields missing from the file keep the values already in
// config.
func LoadConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if isYAML(filePath) {
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to unmarshal config: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// SaveConfig saves configuration to a JSON or YAML file
func SaveConfig(filePath string, config *Config) error {
	var (
		data []byte
		err  error
	)
	if isYAML(filePath) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := CreateDirIfNotExists(filepath.Dir(filePath)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// envOverrides maps environment variables onto config fields.
var envOverrides = []struct {
	name string
	set  func(*Config, string)
}{
	{"RETAGGER_CATALOG", func(c *Config, v string) { c.Catalog = v }},
	{"RETAGGER_OUTPUT_DIR", func(c *Config, v string) { c.OutputDirectory = v }},
	{"SPOTIFY_CLIENT_ID", func(c *Config, v string) { c.SpotifyClientID = v }},
	{"SPOTIFY_CLIENT_SECRET", func(c *Config, v string) { c.SpotifyClientSecret = v }},
	{"NAVIDROME_URL", func(c *Config, v string) { c.NavidromeURL = v }},
	{"NAVIDROME_USERNAME", func(c *Config, v string) { c.NavidromeUsername = v }},
	{"NAVIDROME_PASSWORD", func(c *Config, v string) { c.NavidromePassword = v }},
}

// ApplyEnv loads envFile (if it exists) into the process environment and
// then copies every set override variable into cfg.
func ApplyEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}
	for _, o := range envOverrides {
		if v, ok := os.LookupEnv(o.name); ok && v != "" {
			o.set(cfg, v)
		}
	}
	return nil
}
