package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ivlebedev/cubox-daily/app/api"
	"github.com/ivlebedev/cubox-daily/app/cfg"
	"github.com/ivlebedev/cubox-daily/app/cubox"
	"github.com/ivlebedev/cubox-daily/app/database"
	"github.com/ivlebedev/cubox-daily/app/note"
	"github.com/ivlebedev/cubox-daily/app/scheduler"
	"github.com/ivlebedev/cubox-daily/app/settings"
	syncer "github.com/ivlebedev/cubox-daily/app/sync"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogging(appCfg)

	slog.Info("Starting cubox-daily", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open state database: %v", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Debug("Migrations applied", "version", version, "dirty", dirty)

	states := database.NewStateRepository(db)

	// A crash mid-pass leaves the persisted syncing marker set; it is not
	// the source of truth for mutual exclusion, so reset it unconditionally
	// before the first pass.
	if err := states.SetSyncing(false); err != nil {
		log.Fatalf("Failed to reset syncing marker: %v", err)
	}

	settingsStore := settings.NewStore(appCfg.SettingsFile)
	if err := settingsStore.Load(); err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	snap := settingsStore.Get()

	httpClient := &http.Client{}
	client := cubox.NewClient(httpClient, snap.Domain, snap.APIKey, appCfg.UserAgent)

	vault := note.NewVault(appCfg.VaultDir)
	sink := note.NewSink(vault)
	images := syncer.NewImageStore(vault, httpClient, appCfg.UserAgent)
	formatter := syncer.NewFormatter(client, images)
	engine := syncer.NewEngine(client, sink, formatter, states, settingsStore)

	if appCfg.Once {
		runOnce(engine)
		return
	}

	syncScheduler := scheduler.NewScheduler(engine,
		time.Duration(snap.SyncIntervalMinutes)*time.Minute)
	syncScheduler.Start()
	defer syncScheduler.Stop()

	watcher := settings.NewWatcher(settingsStore)
	watcher.Subscribe(func(s settings.Settings) {
		client.UpdateConfig(s.Domain, s.APIKey)
		syncScheduler.UpdateInterval(time.Duration(s.SyncIntervalMinutes) * time.Minute)
	})
	if err := watcher.Start(); err != nil {
		slog.Warn("Settings watcher disabled", "error", err)
	} else {
		defer watcher.Stop()
	}

	handler := api.NewHandler(engine, states, settingsStore)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // a manual sync pass runs inside the request
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler and watcher are stopped via defer
	slog.Info("Shutdown complete")
}

func runOnce(engine *syncer.Engine) {
	result, err := engine.Run(context.Background())
	if err != nil {
		log.Fatalf("Sync failed: %v", err)
	}
	slog.Info("Sync pass finished", "status", string(result.Status), "appended", result.Appended)
}

func setupLogging(appCfg *cfg.Cfg) {
	var out io.Writer = os.Stderr
	if appCfg.LogFile != "" {
		out = &lumberjack.Logger{
			Filename:   appCfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
}
