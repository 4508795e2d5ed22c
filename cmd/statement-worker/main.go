package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/coprogest/coprogest-backend/internal/amqp"
	"github.com/coprogest/coprogest-backend/internal/config"
	"github.com/coprogest/coprogest-backend/internal/metrics"
	"github.com/coprogest/coprogest-backend/internal/repository/postgres"
	"github.com/coprogest/coprogest-backend/internal/repository/storage"
	"github.com/coprogest/coprogest-backend/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// The statement worker consumes statement generation jobs from the broker,
// computes the settlement run, renders the PDF and archives it to S3.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.AMQP.URL == "" {
		log.Fatal().Msg("AMQP_URL is required for the statement worker")
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	metrics.Register()

	documentRepo, err := storage.NewS3DocumentRepository(context.Background(), cfg.S3)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 document storage")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to AMQP broker")
	}
	defer amqpClient.Close()

	condominiumRepo := postgres.NewCondominiumRepository(pool)
	unitRepo := postgres.NewUnitRepository(pool)
	chargeRepo := postgres.NewChargeRepository(pool)
	statementRepo := postgres.NewStatementRepository(pool)

	aggregationService := service.NewAggregationService(condominiumRepo, chargeRepo)
	settlementService := service.NewSettlementService(unitRepo, aggregationService)
	statementService := service.NewStatementService(condominiumRepo, statementRepo, settlementService, documentRepo, amqpClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down worker...")
		cancel()
	}()

	log.Info().Str("queue", cfg.AMQP.Queue).Msg("Statement worker started")

	err = amqpClient.ConsumeStatementJobs(ctx, func(msg *amqp.StatementJobMessage) error {
		_, err := statementService.GenerateAndArchive(ctx, msg.CondominiumID, msg.PeriodStart, msg.PeriodEnd)
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Consumer stopped")
	}

	log.Info().Msg("Worker exited")
}
