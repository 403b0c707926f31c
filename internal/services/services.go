package services

import (
	"fmt"
	"net/http"
	"time"

	"retagger/internal/api/deezer"
	"retagger/internal/api/navidrome"
	"retagger/internal/api/spotify"
	"retagger/internal/catalog"
	"retagger/internal/config"
	"retagger/internal/core/library"
	"retagger/internal/core/tagger"
	"retagger/internal/interfaces"
	"retagger/internal/shared"
)

var (
	_ interfaces.ConfigService           = (*ConfigService)(nil)
	_ interfaces.FileSystemService       = (*FileSystemService)(nil)
	_ interfaces.LoggerService           = (*ConsoleLogger)(nil)
	_ interfaces.LoggerService           = (*JSONLogger)(nil)
	_ interfaces.WarningCollectorService = (*shared.WarningCollector)(nil)
)

// ServiceContainer holds all application services
type ServiceContainer struct {
	Config           interfaces.ConfigService
	Catalog          catalog.Client
	Notifier         interfaces.LibraryNotifier
	FileSystem       interfaces.FileSystemService
	Logger           interfaces.LoggerService
	WarningCollector *shared.WarningCollector
	Loader           *library.Loader
	Collection       *library.Collection
	Assembler        *catalog.Assembler
	Tagger           *tagger.Tagger
}

// NewServiceContainer creates a new service container with all services initialized
func NewServiceContainer(cfg *config.Config, httpClient *http.Client, debug bool) (*ServiceContainer, error) {
	// Create logger first as other services may need it
	logger := NewLogger(cfg.LogFormat)
	logger.SetDebugMode(debug)

	warningCollector := shared.NewWarningCollector(cfg.WarningBehavior != "silent")
	warningCollector.SetImmediate(cfg.WarningBehavior == "immediate")
	fileSystem := NewFileSystemService(cfg)

	catalogClient, err := NewCatalogClient(cfg, httpClient, debug)
	if err != nil {
		return nil, err
	}

	loader := library.NewLoader(cfg.Tagging.Separator, logger, warningCollector)
	collection := library.NewCollection(loader)
	assembler := catalog.NewAssembler(catalogClient, catalog.NewAlbumCache(), debug)
	tg := tagger.New(cfg, collection, assembler, loader, fileSystem, logger, warningCollector)

	var notifier interfaces.LibraryNotifier
	if cfg.NavidromeURL != "" {
		notifier = navidrome.NewNavidromeClient(cfg.NavidromeURL, cfg.NavidromeUsername, cfg.NavidromePassword, httpClient)
		tg.SetNotifier(notifier)
	}

	return &ServiceContainer{
		Config:           NewConfigService(),
		Catalog:          catalogClient,
		Notifier:         notifier,
		FileSystem:       fileSystem,
		Logger:           logger,
		WarningCollector: warningCollector,
		Loader:           loader,
		Collection:       collection,
		Assembler:        assembler,
		Tagger:           tg,
	}, nil
}

// NewCatalogClient builds the catalog client selected in cfg.
func NewCatalogClient(cfg *config.Config, httpClient *http.Client, debug bool) (catalog.Client, error) {
	switch cfg.Catalog {
	case config.CatalogDeezer, "":
		client := deezer.NewClient(cfg.DeezerAPIURL, cfg.DeezerGatewayURL, httpClient)
		client.SetDebug(debug)
		if cfg.MaxRetryAttempts > 0 {
			client.SetRetryPolicy(cfg.MaxRetryAttempts, time.Second)
		}
		return client, nil
	case config.CatalogSpotify:
		if cfg.SpotifyClientID == "" || cfg.SpotifyClientSecret == "" {
			return nil, spotify.ErrMissingCredentials
		}
		return spotify.NewSpotifyClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret), nil
	default:
		return nil, fmt.Errorf("unknown catalog %q", cfg.Catalog)
	}
}
