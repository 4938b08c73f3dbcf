package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v3"

	"github.com/biocat-io/biocat/pkg/api"
	"github.com/biocat-io/biocat/pkg/config"
	"github.com/biocat-io/biocat/pkg/core"
	"github.com/biocat-io/biocat/pkg/history"
	"github.com/biocat-io/biocat/pkg/log"
	"github.com/biocat-io/biocat/pkg/search"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the search API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Listen address (overrides config)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), c.String("listen"))
		},
	}
}

// serve runs the HTTP API until interrupted. SIGHUP or a config file
// change reloads the collection toggles without restarting the server.
func serve(ctx context.Context, configPath, listenOverride string) error {
	logger := log.ForService("serve")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	registry := core.GetGlobalRegistry()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warnf("failed to close store: %v", err)
		}
	}()

	if err := createProvidersFromConfig(registry, cfg, store); err != nil {
		return fmt.Errorf("creating providers: %w", err)
	}
	defer func() {
		if err := registry.Close(); err != nil {
			logger.Warnf("failed to close registry: %v", err)
		}
	}()

	hub := history.NewHub(0)
	recorder := history.NewRecorder(store, hub)
	defer func() {
		if err := recorder.Close(); err != nil {
			logger.Warnf("failed to close recorder: %v", err)
		}
	}()

	searcher := search.NewService(registry, recorder)
	server := api.NewServer(registry, searcher, recorder, hub)

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)

	addr := cfg.ListenAddr
	if listenOverride != "" {
		addr = listenOverride
	}

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      api.CorsMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // firehose connections are long-lived
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Signal handling - includes SIGHUP for reload
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	// Configuration reload state
	var cfgMutex sync.Mutex
	currentConfig := cfg

	// Set up filesystem watcher for the config file
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warnf("failed to create config file watcher: %v", err)
	} else {
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Warnf("failed to close config file watcher: %v", err)
			}
		}()

		if err := watcher.Add(configPath); err != nil {
			logger.Warnf("failed to watch config file %s: %v", configPath, err)
		} else {
			logger.Infof("watching config file for changes: %s", configPath)
		}
	}

	var watchEvents chan fsnotify.Event
	var watchErrors chan error
	if watcher != nil {
		watchEvents = watcher.Events
		watchErrors = watcher.Errors
	}

	shutdown := func() error {
		logger.Infof("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}

	for {
		select {
		case err := <-serverErr:
			return fmt.Errorf("http server: %w", err)
		case <-ctx.Done():
			return shutdown()
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				logger.Infof("received SIGHUP, reloading configuration")
				if err := reloadConfiguration(configPath, registry, store, &cfgMutex, &currentConfig); err != nil {
					logger.Errorf("failed to reload configuration: %v", err)
				} else {
					logger.Infof("configuration reloaded")
				}
			case syscall.SIGINT, syscall.SIGTERM:
				return shutdown()
			}
		case event, ok := <-watchEvents:
			if !ok {
				continue
			}
			// Editors often replace the file instead of writing in place.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				logger.Infof("config file changed (%s), reloading configuration", event.Op)

				if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					time.Sleep(200 * time.Millisecond)
					if _, err := os.Stat(configPath); os.IsNotExist(err) {
						logger.Warnf("config file removed and not replaced, skipping reload")
						continue
					}
					if err := watcher.Add(configPath); err != nil {
						logger.Warnf("failed to re-add config file to watcher: %v", err)
					}
				} else {
					time.Sleep(100 * time.Millisecond)
				}

				if err := reloadConfiguration(configPath, registry, store, &cfgMutex, &currentConfig); err != nil {
					logger.Errorf("failed to reload configuration after file change: %v", err)
				} else {
					logger.Infof("configuration reloaded after file change")
				}
			}
		case err, ok := <-watchErrors:
			if !ok {
				continue
			}
			logger.Warnf("config file watcher error: %v", err)
		}
	}
}

// reloadConfiguration re-reads the config file and reconciles enabled
// collections against the provider registry. Searches running during a
// reload keep the provider instance they already resolved.
func reloadConfiguration(configPath string, registry *core.Registry, store core.Querier, cfgMutex *sync.Mutex, currentConfig **config.Config) error {
	cfgMutex.Lock()
	defer cfgMutex.Unlock()

	logger := log.ForService("serve")

	newCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading new config: %w", err)
	}

	active := registry.GetAllProviders()

	for _, ct := range core.AllCollectionTypes() {
		_, running := active[ct]
		enabled := newCfg.CollectionEnabled(ct.String())

		switch {
		case enabled && !running:
			logger.Infof("enabling collection: %s", ct)
			if err := registry.CreateProvider(ct, store); err != nil {
				return fmt.Errorf("creating provider %s: %w", ct, err)
			}
		case !enabled && running:
			logger.Infof("disabling collection: %s", ct)
			if err := registry.RemoveProvider(ct); err != nil {
				logger.Warnf("failed to remove provider %s: %v", ct, err)
			}
		}
	}

	*currentConfig = newCfg
	return nil
}
