// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/okmt/cliploop/internal/api/httpapi"
	"github.com/okmt/cliploop/internal/app/filter"
	"github.com/okmt/cliploop/internal/app/loop"
	"github.com/okmt/cliploop/internal/app/notification"
	"github.com/okmt/cliploop/internal/app/session"
	"github.com/okmt/cliploop/internal/app/source"
	"github.com/okmt/cliploop/internal/app/visibility"
	"github.com/okmt/cliploop/internal/infra/audio"
	"github.com/okmt/cliploop/internal/infra/config"
	"github.com/okmt/cliploop/internal/infra/itunes"
	"github.com/okmt/cliploop/internal/infra/logger"
	"github.com/okmt/cliploop/internal/infra/spotify"
	"github.com/okmt/cliploop/internal/infra/store"
)

var (
	app        = kingpin.New("cliploop-server", "cliploop clip loop server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// list-filters command
	listFiltersCmd = app.Command("list-filters", "List available filters and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Handle list-filters command
	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Level:  "info",
		Output: "stdout",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	if err := validateFilterConfig(cfg); err != nil {
		return fmt.Errorf("invalid filter config: %w", err)
	}

	ctx := context.Background()

	// Catalog clients, created only for configured providers
	var spotifyClient source.SpotifyClient
	if cfg.HasProvider("spotify") {
		client, err := spotify.New(ctx, spotify.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			RefreshToken: cfg.Spotify.RefreshToken,
			Market:       cfg.Spotify.Market,
		})
		if err != nil {
			return fmt.Errorf("failed to create Spotify client: %w", err)
		}
		spotifyClient = client
	}

	var itunesClient source.ITunesClient
	if cfg.HasProvider("itunes") {
		itunesClient = itunes.New(itunes.Config{Country: cfg.ITunes.Country})
	}

	providerChain, err := source.NewProviderChainFromConfig(cfg, spotifyClient, itunesClient)
	if err != nil {
		return fmt.Errorf("failed to create provider chain: %w", err)
	}

	// Audio backend: speaker plus the two fixed playback channels
	if err := audio.InitSpeaker(); err != nil {
		return fmt.Errorf("failed to initialize audio: %w", err)
	}
	fetcher := audio.NewFetcher()
	chanA := audio.NewChannel(fetcher)
	chanB := audio.NewChannel(fetcher)

	// Loop engine and session
	coord, err := loop.NewCoordinator(loop.Config{
		FadeDuration:     cfg.Playback.FadeDuration(),
		LeadTime:         cfg.Playback.LeadTime(),
		FadePollInterval: cfg.Playback.FadePollInterval(),
		ProgressInterval: cfg.Playback.ProgressPollInterval(),
	}, chanA, chanB)
	if err != nil {
		return fmt.Errorf("failed to create loop coordinator: %w", err)
	}

	sessionMgr := session.NewManager(coord)
	defer sessionMgr.Close()

	visController := visibility.NewController(sessionMgr, cfg.Playback.VisibilityThreshold)

	// Notifications: pump engine events to subscribers
	notifier := notification.NewManager()
	defer notifier.Close()
	go pumpEvents(sessionMgr, notifier)

	// HTTP API
	apiHandler := httpapi.NewHandler(
		sessionMgr,
		providerChain,
		visController,
		store.NewPostStore(),
		buildFilterChain(cfg),
		notifier,
		httpapi.Config{
			AdminToken:    cfg.Admin.Token,
			UploadsDir:    cfg.Uploads.Dir,
			MaxUploadSize: int64(cfg.Uploads.MaxSizeMB) << 20,
		},
	)

	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: h2c.NewHandler(apiHandler.Routes(), &http2.Server{}),
	}

	serverErrCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")
	return nil
}

// pumpEvents forwards loop engine events to the notification manager.
func pumpEvents(sessionMgr *session.Manager, notifier *notification.Manager) {
	for ev := range sessionMgr.Events() {
		payload := map[string]any{
			"state": ev.State.String(),
		}
		if ev.Clip != nil {
			payload["clip_id"] = ev.Clip.ID
			payload["title"] = ev.Clip.Title
		}
		notifier.Broadcast(ev.Type.String(), payload)
	}
}

// buildFilterChain assembles the acceptance filter chain from config.
// Filter configs are validated up front by validateFilterConfig.
func buildFilterChain(cfg *config.Config) *filter.Chain {
	chain := filter.NewChain()
	for name, factory := range filter.GetRegistered() {
		fcfg, ok := cfg.Filters[name]
		if !ok || !fcfg.Enabled {
			continue
		}
		f := factory()
		if err := f.ValidateConfig(fcfg.Settings); err != nil {
			zlog.Warn().Msgf("skipping filter with invalid config: filter=%s error=%v", name, err)
			continue
		}
		chain.Add(f)
		zlog.Info().Msgf("registered filter: name=%s", name)
	}
	return chain
}

// printFilters prints available filters.
func printFilters() {
	fmt.Println("Available Filters:")
	for _, factory := range filter.GetRegistered() {
		f := factory()
		codes := strings.Join(f.ReturnCodes(), ", ")
		fmt.Printf("  %-30s - %s [codes: %s]\n", f.Name(), f.Description(), codes)
	}
}

// validateFilterConfig validates filter configurations.
func validateFilterConfig(cfg *config.Config) error {
	registry := filter.GetRegistered()

	for filterName, filterCfg := range cfg.Filters {
		if !filterCfg.Enabled {
			continue
		}

		factory, exists := registry[filterName]
		if !exists {
			return fmt.Errorf("unknown filter: %s", filterName)
		}

		f := factory()
		if err := f.ValidateConfig(filterCfg.Settings); err != nil {
			return fmt.Errorf("filter %s: %w", filterName, err)
		}
	}

	return nil
}
