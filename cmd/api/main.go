package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coprogest/coprogest-backend/internal/config"
	"github.com/coprogest/coprogest-backend/internal/handler"
	"github.com/coprogest/coprogest-backend/internal/metrics"
	"github.com/coprogest/coprogest-backend/internal/middleware"
	"github.com/coprogest/coprogest-backend/internal/repository/postgres"
	"github.com/coprogest/coprogest-backend/internal/repository/storage"
	"github.com/coprogest/coprogest-backend/internal/service"
	"github.com/coprogest/coprogest-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	coamqp "github.com/coprogest/coprogest-backend/internal/amqp"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Run migrations before accepting traffic when requested
	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		log.Info().Msg("Migrations applied")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Register Prometheus metrics
	metrics.Register()

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	condominiumRepo := postgres.NewCondominiumRepository(pool)
	unitRepo := postgres.NewUnitRepository(pool)
	chargeRepo := postgres.NewChargeRepository(pool)
	statementRepo := postgres.NewStatementRepository(pool)

	// Initialize S3 document storage when credentials are configured
	var documentRepo storage.DocumentRepository
	if cfg.S3.AccessKeyID != "" || cfg.S3.Endpoint != "" {
		s3Repo, err := storage.NewS3DocumentRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 document storage")
		}
		documentRepo = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("S3 document storage enabled")
	} else {
		log.Warn().Msg("S3 document storage disabled: no credentials configured")
	}

	// Initialize AMQP client when a broker URL is configured
	var amqpClient *coamqp.Client
	if cfg.AMQP.URL != "" {
		amqpClient, err = coamqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to AMQP broker")
		}
		defer amqpClient.Close()
		log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("AMQP statement jobs enabled")
	} else {
		log.Warn().Msg("AMQP disabled: asynchronous statement generation unavailable")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, condominiumRepo)
	condominiumService := service.NewCondominiumService(condominiumRepo)
	unitService := service.NewUnitService(unitRepo)
	chargeService := service.NewChargeService(chargeRepo)
	aggregationService := service.NewAggregationService(condominiumRepo, chargeRepo)
	settlementService := service.NewSettlementService(unitRepo, aggregationService)
	invoiceService := service.NewInvoiceService(chargeRepo, documentRepo)

	var jobPublisher service.StatementJobPublisher
	if amqpClient != nil {
		jobPublisher = amqpClient
	}
	statementService := service.NewStatementService(condominiumRepo, statementRepo, settlementService, documentRepo, jobPublisher)

	// Initialize WebSocket hub and wire real-time events into services
	hub := websocket.NewHub()
	unitService.SetEventPublisher(hub)
	chargeService.SetEventPublisher(hub)
	settlementService.SetEventPublisher(hub)
	statementService.SetEventPublisher(hub)

	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, authService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket JWT validator")
	}

	// Initialize auth middleware and per-subject rate limiter
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, authService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	condominiumHandler := handler.NewCondominiumHandler(condominiumService)
	unitHandler := handler.NewUnitHandler(unitService)
	chargeHandler := handler.NewChargeHandler(chargeService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	settlementHandler := handler.NewSettlementHandler(settlementService, statementService)
	statementHandler := handler.NewStatementHandler(statementService)
	wsHandler := handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Prometheus metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// WebSocket endpoint for real-time updates
	e.GET("/ws", wsHandler.HandleWS)

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, authHandler, condominiumHandler, unitHandler, chargeHandler, invoiceHandler, settlementHandler, statementHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
