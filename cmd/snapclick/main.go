package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/petems/snapclick/internal/app"
	"github.com/petems/snapclick/internal/audio"
	"github.com/petems/snapclick/internal/clicker"
	"github.com/petems/snapclick/internal/config"
	"github.com/petems/snapclick/internal/inject"
	"github.com/petems/snapclick/internal/intercept"
	"github.com/petems/snapclick/internal/logging"
	"github.com/petems/snapclick/internal/notify"
	"github.com/petems/snapclick/internal/permissions"
	"github.com/petems/snapclick/internal/store"
	"github.com/petems/snapclick/internal/tray"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func main() {
	// Load config from XDG/Library/AppData
	cfg, err := config.Load()
	if err != nil {
		// Use default logger if config fails to load
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Initialize logger with configured level
	log := logging.NewWithLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Scheme store, seeded with presets on first run
	schemes, err := store.Open(cfg.SchemesFile(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open scheme store")
	}

	// Start cue is optional; clicking works without an audio device
	cue, err := audio.New(cfg.Cue, log)
	if err != nil {
		log.Warn().Err(err).Msg("Start cue unavailable")
		cue = audio.Nop{}
	}
	defer cue.Close()

	engine := clicker.New(clicker.Config{
		Pointer:   inject.New(),
		Cue:       cue,
		PressHold: cfg.PressHold(),
		Logger:    log,
	})

	// The key tap is only installed while monitoring
	interceptor := intercept.New(intercept.Config{
		Hook:        intercept.NewPlatformHook(),
		Permissions: permissions.NewChecker(cfg.PromptPermissions),
		Logger:      log,
		QueueSize:   cfg.Intercept.QueueSize,
	})

	notifier := notify.New(notify.NewPlatformBackend(log), cfg.Notifications, log)
	go notifier.Run(ctx)

	// Create tray UI first (we'll pass it to app)
	trayUI := tray.New(nil, cfg, notifier, schemes.Path(), Version, Commit) // App reference set below

	// Create app with tray as status updater
	application := app.New(app.Config{
		Interceptor:   interceptor,
		Executor:      engine,
		Store:         schemes,
		Notifier:      notifier,
		StatusUpdater: trayUI,
		Logger:        log,
	})

	// Set app reference in tray
	trayUI.SetApp(application)

	go application.Run(ctx)

	if cfg.WatchSchemes {
		go func() {
			reload := func() {
				if err := application.ReloadSchemes(); err != nil {
					log.Warn().Err(err).Msg("Ignoring scheme file change")
				}
			}
			if err := schemes.Watch(ctx, reload); err != nil {
				log.Warn().Err(err).Msg("Scheme file watcher stopped")
			}
		}()
	}

	log.Info().Str("version", Version).Str("schemes", schemes.Path()).Msg("SnapClick starting...")

	if cfg.AutoStart {
		if err := application.AutoStart(); err != nil {
			log.Warn().Err(err).Msg("Monitoring not started")
		}
	}

	shutdown := func() {
		sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer scancel()
		if err := application.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("Shutdown error")
		}
		engine.Wait()
	}

	// Setup shutdown signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Shutting down...")
		shutdown()
		os.Exit(0)
	}()

	// Start tray UI - MUST run on main thread
	if err := trayUI.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Tray error")
	}

	log.Info().Msg("Shutting down...")
	cancel()
	shutdown()
}
