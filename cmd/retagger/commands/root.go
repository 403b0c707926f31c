// Package commands implements the retagger command line.
package commands

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"retagger/internal/config"
	"retagger/internal/services"
	"retagger/internal/shared"
)

var (
	configFile string
	debug      bool
	logFormat  string
	noColor    bool
	envFile    string
)

// NewRootCommand builds the command tree.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "retagger",
		Version: version,
		Short:   "Fill in FLAC tags from an online music catalog.",
		Long: fmt.Sprintf(`retagger (v%s)

Reads the tags of local FLAC files, looks each track up in Deezer or
Spotify, merges the remote metadata into the local tags under a
configurable policy and writes the result back.`, version),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			shared.InitializeColors(noColor)
			debug = debug || shared.IsDebugMode()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultConfigFile, "Path to the config file (JSON or YAML)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional file with environment overrides")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text, json or console")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output")

	rootCmd.AddCommand(
		NewScanCommand(),
		NewShowCommand(),
		NewFetchCommand(),
		NewSaveCommand(),
		NewServeCommand(),
		NewConfigCommand(),
	)
	return rootCmd
}

// loadConfig reads the config file, writing the defaults out on first run,
// then applies environment overrides and command-line flags.
func loadConfig() (*config.Config, error) {
	configService := services.NewConfigService()
	if err := configService.EnsureConfigExists(configFile); err != nil {
		return nil, fmt.Errorf("failed to create config %s: %w", configFile, err)
	}
	cfg, err := configService.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configFile, err)
	}
	if err := config.ApplyEnv(cfg, envFile); err != nil {
		return nil, err
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if err := configService.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func initConfigAndServices() (*config.Config, *services.ServiceContainer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	httpClient := &http.Client{Timeout: config.RequestTimeout}
	container, err := services.NewServiceContainer(cfg, httpClient, debug)
	if err != nil {
		return nil, nil, err
	}
	if debug {
		container.Logger.Debug("using %s catalog, config %s", cfg.Catalog, configFile)
	}
	return cfg, container, nil
}

// printWarnings shows collected warnings when the configuration asks for a
// summary at the end of a command.
func printWarnings(cfg *config.Config, container *services.ServiceContainer) {
	if cfg.WarningBehavior == "summary" && container.WarningCollector.HasWarnings() {
		container.WarningCollector.PrintSummary()
	}
}

// expandPaths replaces directory arguments with the regular files directly
// inside them.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Type().IsRegular() {
				paths = append(paths, filepath.Join(arg, e.Name()))
			}
		}
	}
	return paths, nil
}

// loadTracks inserts every path into the collection and returns the ones
// that loaded.
func loadTracks(container *services.ServiceContainer, paths []string) []string {
	var loaded []string
	for _, p := range paths {
		if err := container.Collection.Insert(p); err != nil {
			container.Logger.Warning("skipping %s: %v", p, err)
			continue
		}
		loaded = append(loaded, p)
	}
	return loaded
}
