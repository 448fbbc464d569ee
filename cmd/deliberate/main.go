// Command deliberate runs the deliberation orchestration HTTP/WebSocket
// server: it wires the Credential Store, Provider Router, persistence
// layer, Event Hub, and Orchestrator, then serves the request surface
// described in SPEC_FULL.md ยง6.
package main

import (
	"context"
	"flag"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/codeready-toolchain/deliberate/pkg/api"
	"github.com/codeready-toolchain/deliberate/pkg/config"
	"github.com/codeready-toolchain/deliberate/pkg/credstore"
	"github.com/codeready-toolchain/deliberate/pkg/credstore/ageseal"
	"github.com/codeready-toolchain/deliberate/pkg/database"
	"github.com/codeready-toolchain/deliberate/pkg/events"
	"github.com/codeready-toolchain/deliberate/pkg/orchestrator"
	"github.com/codeready-toolchain/deliberate/pkg/provider"
	"github.com/codeready-toolchain/deliberate/pkg/services"
	"github.com/codeready-toolchain/deliberate/pkg/services/pgrepo"
)

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "path to configuration directory")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Warn("no .env file loaded, continuing with process environment", "path", envPath, "error", err)
	}

	cfg, err := config.Load(filepath.Join(*configDir, "deliberate.yaml"))
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbCfg := database.LoadConfigFromEnv()
	if err := dbCfg.Validate(); err != nil {
		log.Error("invalid database configuration", "error", err)
		os.Exit(1)
	}
	dbClient, err := database.NewClient(ctx, dbCfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.Error("error closing database client", "error", err)
		}
	}()
	log.Info("connected to postgres and applied migrations")

	keyPath := getEnv("DELIBERATE_AGE_KEY", filepath.Join(*configDir, "identity.age"))
	if err := ageseal.GenerateIdentityFile(keyPath); err != nil {
		log.Error("failed to provision age identity", "error", err)
		os.Exit(1)
	}
	protector, err := ageseal.LoadFromFile(keyPath)
	if err != nil {
		log.Error("failed to load age identity", "error", err)
		os.Exit(1)
	}

	sessionRepo := pgrepo.NewSessionRepository(dbClient.DB())
	messageRepo := pgrepo.NewMessageRepository(dbClient.DB())
	feedbackRepo := pgrepo.NewFeedbackRepository(dbClient.DB())
	credentialRepo := pgrepo.NewCredentialRepository(dbClient.DB())
	eventLogRepo := pgrepo.NewEventLogRepository(dbClient.DB())

	sessionService := services.NewSessionService(sessionRepo, log)
	messageService := services.NewMessageService(messageRepo)
	feedbackService := services.NewFeedbackService(feedbackRepo)
	credentialStore := credstore.NewStore(credentialRepo, protector, log)
	resolver := &services.CredentialResolver{Store: credentialStore}

	router := provider.NewRouter(resolver, cfg.MaxRetries, log)
	hub := events.NewHub(eventLogRepo, log)
	connManager := events.NewConnectionManager(hub, 5*time.Second, log)

	orchCfg := orchestrator.DefaultConfig()
	orchCfg.ContextTurnsToSend = cfg.Orchestration.ContextTurnsToSend
	orchCfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	orch := orchestrator.New(sessionService, messageService, feedbackService, router, hub, orchCfg, log)

	server := api.NewServer(dbClient, sessionService, messageService, feedbackService, credentialStore, orch, connManager, eventLogRepo)

	addr := ":" + getEnv("HTTP_PORT", "8080")
	log.Info("starting deliberate", "addr", addr, "config_dir", *configDir)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(addr) }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server exited", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	}
}
