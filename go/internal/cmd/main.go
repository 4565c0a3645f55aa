package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mpeters/draftwire/go/internal/draft/outbox"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_PRETTY") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, dbCfg, err := setupDatabase()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up database")
	}
	defer database.Close()

	// NATS is optional: without it the coordinator still works, clients just
	// poll state instead of receiving push events.
	var nc *nats.Conn
	var publisher *outbox.JetStreamPublisher
	if cfg.NATS.Enabled {
		jsCfg := outbox.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATS.URL
		publisher, err = outbox.NewJetStreamPublisher(jsCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to NATS JetStream")
		}
		defer publisher.Close()

		nc, err = nats.Connect(cfg.NATS.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to NATS")
		}
		defer nc.Close()
	}

	services, err := setupServices(database, cfg, nc)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up services")
	}

	if publisher != nil {
		startOutboxRelay(ctx, cfg, dbCfg.DSN(), services.Outbox, publisher)
	}

	go func() {
		if err := services.Runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("sweeper runner stopped")
		}
	}()

	if err := services.Gateway.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start gateway")
	}

	server := setupServer(cfg, services)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
}

// startOutboxRelay runs the outbox-to-JetStream relay: the LISTEN/NOTIFY
// listener for low latency when configured, always the polling worker as
// the at-least-once backstop.
func startOutboxRelay(ctx context.Context, cfg *Config, dsn string, repo *outbox.Repository, publisher outbox.Publisher) {
	workerCfg := outbox.Config{
		PollInterval: cfg.OutboxPollInterval(),
		BatchSize:    cfg.Outbox.BatchSize,
	}
	worker := outbox.NewWorker(repo, publisher, workerCfg)
	if err := worker.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start outbox worker")
	}
	go func() {
		<-ctx.Done()
		if err := worker.Stop(); err != nil {
			log.Error().Err(err).Msg("outbox worker stop error")
		}
	}()

	if cfg.Outbox.UseListener {
		listenerCfg := outbox.DefaultListenerConfig()
		listenerCfg.DatabaseURL = dsn
		listenerCfg.BatchSize = cfg.Outbox.BatchSize
		listener, err := outbox.NewListener(repo, publisher, listenerCfg)
		if err != nil {
			log.Error().Err(err).Msg("failed to create outbox listener, relying on polling worker")
			return
		}
		go func() {
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("outbox listener stopped")
			}
		}()
	}
}
