package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gestaogado/internal/config"
	"gestaogado/internal/infra"
	"gestaogado/internal/repository"
	"gestaogado/internal/router"
	"gestaogado/internal/scheduler"
	"gestaogado/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Redis backs the job queues and the report cache; without it the API
	// still serves every request, only async work and caching are off.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, running without queues and cache")
			rdb = nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
	webhookCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("webhook"))
	mailer := infra.NewMailer(cfg, smtpCB)
	webhook := infra.NewWebhookClient(cfg.WebhookURL, webhookCB)

	dispatcher := worker.NewDispatcher(rdb)
	cache := infra.NewCache(rdb, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	svcs := router.NewServices(cfg, db, cache, dispatcher)

	// Worker handlers are wired here (composition root) so that the pool has
	// access to every infrastructure dependency.
	if rdb != nil {
		handlers := &worker.WorkerHandlers{
			Relatorio: worker.NewRelatorioWorker(repository.NewVendaRepository(db), dispatcher, cfg.PDFStoragePath),
		}
		if mailer.Enabled() {
			handlers.Email = worker.NewEmailWorker(mailer)
		} else {
			log.Warn().Msg("SMTP_HOST not set, e-mail jobs will be dropped")
		}
		if webhook != nil {
			handlers.Webhook = worker.NewWebhookWorker(webhook)
		}
		worker.StartWorkerPool(ctx, rdb, handlers, cfg.WorkerPoolSize)
	}

	var snapshots repository.SnapshotRepository
	if cfg.MongoURI != "" {
		snapshots, err = repository.NewMongoSnapshotRepository(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Warn().Err(err).Msg("mongodb unavailable, daily snapshots disabled")
			snapshots = nil
		}
	}

	sched := scheduler.NewScheduler(cfg, svcs.Notificacoes, svcs.Relatorios, snapshots)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	r := router.New(cfg, db, rdb, svcs, smtpCB, webhookCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("gestaogado backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	sched.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if snapshots != nil {
		_ = snapshots.Close(shutdownCtx)
	}
	log.Info().Msg("server exited")
}
