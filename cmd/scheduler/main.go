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

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/extension-scheduler/internal/alarms"
	"github.com/example/extension-scheduler/internal/application"
	"github.com/example/extension-scheduler/internal/backup"
	"github.com/example/extension-scheduler/internal/config"
	httptransport "github.com/example/extension-scheduler/internal/http"
	"github.com/example/extension-scheduler/internal/management"
	"github.com/example/extension-scheduler/internal/persistence/sqlite"
	"github.com/example/extension-scheduler/internal/recurrence"
	"github.com/example/extension-scheduler/internal/verification"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := func() string { return uuid.NewString() }
	now := time.Now

	bridge := management.NewBridgeClient(cfg.BridgeURL, cfg.BridgeTimeout)

	// The timer sink and the dispatcher reference each other through the
	// rule service, so the sink is created first with a late-bound handler.
	var dispatcher *alarms.Dispatcher
	sink := alarms.NewTimerSink(func(fireCtx context.Context, name string) {
		dispatcher.HandleAlarm(fireCtx, name)
	})
	defer sink.Close()

	scheduler := alarms.NewScheduler(sink, now, logger)
	ruleService := application.NewRuleService(storage, scheduler, idGenerator, logger)
	dispatcher = alarms.NewDispatcher(ruleService, bridge, now, logger)

	if err := ruleService.Load(ctx); err != nil {
		logger.Error("failed to load persisted rules", "error", err)
		os.Exit(1)
	}

	var verifier *verification.Client
	if cfg.VerifiedListURL != "" {
		verifier = verification.NewClient(cfg.VerifiedListURL, cfg.BridgeTimeout, cfg.VerificationTTL, now)
	}

	backupService := backup.NewService(storage, ruleService, cfg.BackupDir, now, logger)

	tokenHash := cfg.APIToken
	if tokenHash != "" && !application.IsTokenHash(tokenHash) {
		tokenHash, err = application.CreateTokenHash(cfg.APIToken, application.DefaultArgon2idParams)
		if err != nil {
			logger.Error("failed to hash API token", "error", err)
			os.Exit(1)
		}
	}

	ruleHandler := httptransport.NewRuleHandler(ruleService, recurrence.NewEngine(now), logger)
	extensionHandler := newExtensionHandler(bridge, verifier, logger)
	backupHandler := httptransport.NewBackupHandler(backupService, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Rules:      ruleHandler,
		Extensions: extensionHandler,
		Backups:    backupHandler,
		Metrics:    promhttp.Handler(),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RequireToken(tokenHash, logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("extension scheduler API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func newExtensionHandler(bridge *management.BridgeClient, verifier *verification.Client, logger *slog.Logger) *httptransport.ExtensionHandler {
	if verifier == nil {
		// A typed nil would dodge the handler's nil check.
		return httptransport.NewExtensionHandler(bridge, nil, logger)
	}
	return httptransport.NewExtensionHandler(bridge, verifier, logger)
}
