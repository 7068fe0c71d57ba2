package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/driftwatch-systems/driftwatch/internal/config"
	"github.com/driftwatch-systems/driftwatch/internal/connectors"
	"github.com/driftwatch-systems/driftwatch/internal/handlers"
	"github.com/driftwatch-systems/driftwatch/internal/logging"
	"github.com/driftwatch-systems/driftwatch/internal/ratelimit"
	"github.com/driftwatch-systems/driftwatch/internal/repository"
	"github.com/driftwatch-systems/driftwatch/internal/server"
	"github.com/driftwatch-systems/driftwatch/internal/service"
	"github.com/driftwatch-systems/driftwatch/internal/signals"
	"github.com/driftwatch-systems/driftwatch/internal/suggest"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)

	connString := cfg.Database.Postgres.ConnString()

	// Run database migrations
	log.Println("Running database migrations...")
	m, err := migrate.New("file://migrations", connString)
	if err != nil {
		log.Fatalf("Failed to initialize migrations: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Initialize repository
	repo, err := repository.NewPostgresRepository(context.Background(), connString)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer repo.Close()

	// Connectors are constructed once per deployment from explicit
	// configs and injected via the registry.
	var conns []connectors.Connector
	if cfg.Connectors.Splunk.Enabled {
		conns = append(conns, connectors.NewSplunk(connectors.SplunkConfig{
			BaseURL:  cfg.Connectors.Splunk.BaseURL,
			Username: cfg.Connectors.Splunk.Username,
			Password: cfg.Connectors.Splunk.Password,
		}))
	}
	if cfg.Connectors.Sentinel.Enabled {
		conns = append(conns, connectors.NewSentinel(connectors.SentinelConfig{
			BaseURL:      cfg.Connectors.Sentinel.BaseURL,
			TenantID:     cfg.Connectors.Sentinel.TenantID,
			ClientID:     cfg.Connectors.Sentinel.ClientID,
			ClientSecret: cfg.Connectors.Sentinel.ClientSecret,
		}))
	}
	registry := connectors.NewRegistry(conns...)

	// Suggestion backend: absence is a typed state, not a nil check.
	var suggester suggest.Suggester = suggest.Disabled{}
	if cfg.Suggester.APIKey != "" {
		suggester = suggest.NewOpenAISuggester(suggest.OpenAIConfig{
			APIKey:      cfg.Suggester.APIKey,
			Model:       cfg.Suggester.Model,
			Temperature: cfg.Suggester.Temperature,
		})
		log.Printf("Suggestion backend configured (model %s)", cfg.Suggester.Model)
	} else {
		log.Println("No suggestion backend configured; autofix will return 503")
	}

	var limiter ratelimit.RateLimiter = &ratelimit.NoOpRateLimiter{}
	if cfg.RateLimit.Enabled {
		limiter, err = ratelimit.NewRedisRateLimiter(cfg.RateLimit.RedisURL, cfg.RateLimit.Limit, cfg.RateLimit.Window)
		if err != nil {
			log.Fatalf("Failed to initialize rate limiter: %v", err)
		}
	}
	defer limiter.Close()

	sampler := signals.NewRandomSampler(time.Now().UnixNano())

	svc := service.NewService(repo, registry, suggester, sampler)
	handler := handlers.NewHandler(svc, logger)
	router := server.NewRouter(handler, limiter)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("driftwatch listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}
