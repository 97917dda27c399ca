package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/lysyi3m/oscar-feed/app/api"
	"github.com/lysyi3m/oscar-feed/app/cfg"
	"github.com/lysyi3m/oscar-feed/app/config"
	"github.com/lysyi3m/oscar-feed/app/database"
	"github.com/lysyi3m/oscar-feed/app/ical"
	"github.com/lysyi3m/oscar-feed/app/logging"
	"github.com/lysyi3m/oscar-feed/app/tasks"
)

func main() {
	os.Exit(run())
}

// run returns the process exit status so deferred cleanup always happens.
func run() int {
	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		// go-flags prints its own parse errors
		var flagsErr *flags.Error
		if !errors.As(err, &flagsErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 2
	}
	if appCfg == nil {
		return 0
	}

	logging.Setup(os.Stderr, appCfg.Verbosity)

	slog.Info("Starting oscar-feed", "version", appCfg.Version)

	conf, err := config.NewLoader(appCfg.ConfigPath).Load()
	if err != nil {
		slog.Error("Failed to load configuration", "path", appCfg.ConfigPath, "error", err)
		return 1
	}
	slog.Info("Configuration loaded", "path", appCfg.ConfigPath, "users", len(conf.Users))

	var shiftRepo database.ShiftRepository
	if appCfg.DBPath != "" {
		db, err := database.NewConnection(appCfg.DBPath)
		if err != nil {
			slog.Error("Failed to open shift archive", "path", appCfg.DBPath, "error", err)
			return 1
		}
		defer db.Close()

		version, dirty, err := database.RunMigrations(db)
		if err != nil {
			slog.Error("Failed to migrate shift archive", "error", err)
			return 1
		}
		slog.Debug("Shift archive ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

		shiftRepo = database.NewShiftRepository(db)
	}

	writer := ical.NewWriter(conf.OutputDir)
	syncer := tasks.NewSyncer(conf,
		ical.NewFetcher(&http.Client{}, appCfg.UserAgent, conf.Portal.GetTimeout()),
		ical.NewGenerator(appCfg.Version),
		writer,
		shiftRepo,
		appCfg.GetRetention(),
		appCfg.UserAgent)

	if appCfg.Serve {
		return serve(appCfg, conf, syncer, writer, shiftRepo)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userTasks := make([]tasks.TaskInterface, 0, len(conf.Users))
	for _, user := range conf.Users {
		userTasks = append(userTasks, tasks.NewSyncUserTask(user, syncer))
	}

	if err := tasks.RunOnce(ctx, userTasks, appCfg.WorkerCount); err != nil {
		slog.Error("Sync finished with errors", "error", err)
		return 1
	}

	slog.Info("Sync finished", "users", len(conf.Users))
	return 0
}

func serve(appCfg *cfg.Cfg, conf *config.Config, syncer *tasks.Syncer, writer *ical.Writer, shiftRepo database.ShiftRepository) int {
	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.GetSyncInterval())
	scheduler := tasks.NewScheduler(syncer, conf.Users, appCfg.GetSyncInterval(), appCfg.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(conf, writer, shiftRepo, scheduler, appCfg.Version)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := serveHTTP(httpServer, sigChan); err != nil {
		slog.Error("Server error", "error", err)
		return 1
	}
	return 0
}

// serveHTTP runs httpServer until a signal arrives or the server fails, then
// shuts it down. It returns the server failure, if any.
func serveHTTP(httpServer *http.Server, signals <-chan os.Signal) error {
	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var serverErr error
	select {
	case sig := <-signals:
		slog.Info("Received signal", "signal", sig.String())
	case serverErr = <-serverErrChan:
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return serverErr
}
