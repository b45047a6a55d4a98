package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"assetbase/internal/assets"
	"assetbase/internal/auth"
	"assetbase/internal/categories"
	"assetbase/internal/config"
	"assetbase/internal/db"
	"assetbase/internal/httpserver"
	"assetbase/internal/logging"
	"assetbase/internal/metrics"
	"assetbase/internal/reports"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	dbConn, err := db.Open(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()

	if err := db.RunMigrations(cfg.Database.URL); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	userStore := auth.NewStore(dbConn)
	if cfg.Auth.SeedUsersPath != "" {
		if err := userStore.SeedFromFile(ctx, cfg.Auth.SeedUsersPath); err != nil {
			log.Fatalf("seed users: %v", err)
		}
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret)
	sessions := auth.NewSessionManager(cfg.Auth.SessionKey)
	authSvc := auth.NewService(userStore, tokens)

	var oauth *auth.GithubProvider
	if cfg.Github.ClientID != "" {
		oauth = auth.NewGithubProvider(cfg.Github.ClientID, cfg.Github.ClientSecret, cfg.BaseURL)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	authHandler := &auth.Handler{
		Service:  authSvc,
		Sessions: sessions,
		OAuth:    oauth,
		Logger:   logger,
		Metrics:  collector,
	}

	handler := httpserver.NewRouter(httpserver.RouterDeps{
		Logger:         logger,
		AuthHandler:    authHandler,
		Assets:         &assets.Handler{Store: assets.NewStore(dbConn), Logger: logger},
		Categories:     &categories.Handler{Store: categories.NewStore(dbConn), Logger: logger},
		Reports:        &reports.Handler{Store: reports.NewStore(dbConn), Logger: logger},
		Tokens:         tokens,
		Sessions:       sessions,
		Metrics:        collector,
		Gatherer:       registry,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})
	server := httpserver.New(cfg.HTTPAddr, handler, logger)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("http server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
