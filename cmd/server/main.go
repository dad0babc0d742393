package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/adapter/ai/anthropic"
	"github.com/seu-repo/jarvis/internal/adapter/ai/gemini"
	"github.com/seu-repo/jarvis/internal/adapter/ai/openai"
	"github.com/seu-repo/jarvis/internal/adapter/cache"
	"github.com/seu-repo/jarvis/internal/adapter/grpc/server"
	"github.com/seu-repo/jarvis/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/jarvis/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/jarvis/internal/adapter/http/fiber/routes"
	"github.com/seu-repo/jarvis/internal/adapter/queue"
	"github.com/seu-repo/jarvis/internal/adapter/speech/elevenlabs"
	"github.com/seu-repo/jarvis/internal/adapter/storage/postgres"
	"github.com/seu-repo/jarvis/internal/adapter/telegram"
	"github.com/seu-repo/jarvis/internal/adapter/vault"
	wsAdapter "github.com/seu-repo/jarvis/internal/adapter/websocket"
	"github.com/seu-repo/jarvis/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/jarvis/internal/observability/telemetry"
	"github.com/seu-repo/jarvis/internal/ports"
	"github.com/seu-repo/jarvis/internal/service/auth"
	"github.com/seu-repo/jarvis/internal/service/calendar"
	"github.com/seu-repo/jarvis/internal/service/channel"
	"github.com/seu-repo/jarvis/internal/service/contact"
	"github.com/seu-repo/jarvis/internal/service/email"
	"github.com/seu-repo/jarvis/internal/service/expense"
	"github.com/seu-repo/jarvis/internal/service/health"
	"github.com/seu-repo/jarvis/internal/service/memory"
	"github.com/seu-repo/jarvis/internal/service/orchestrator"
	"github.com/seu-repo/jarvis/internal/service/persona"
	"github.com/seu-repo/jarvis/internal/service/router"
	"github.com/seu-repo/jarvis/internal/service/worker"
	"github.com/seu-repo/jarvis/pkg/config"
)

const serviceName = "jarvis"

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Vault.Enabled {
		secrets, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token, logger)
		if err != nil {
			logger.Fatal("Failed to create Vault client", zap.Error(err))
		}
		if err := cfg.ApplySecrets(ctx, secrets); err != nil {
			logger.Fatal("Failed to load secrets from Vault", zap.Error(err))
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	logger.Info("Starting Jarvis",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	// 3. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(cfg.OpenTelemetry.ServiceName, cfg.OpenTelemetry.Jaeger.Endpoint, cfg.App.Version)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 4. Initialize PostgreSQL
	db, err := postgres.NewConnection(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// 5. Initialize Redis Cache, or an in-process one for single-node setups
	var redisCache ports.Cache
	if cfg.Redis.URL != "" {
		redisCache, err = cache.NewRedisCache(cfg.Redis.URL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
	} else {
		logger.Warn("Redis URL not set, using in-memory cache")
		redisCache = cache.NewLocalCache(time.Minute, logger)
	}
	defer redisCache.Close()

	// 6. Initialize Message Queue (optional)
	var messageQueue ports.MessageQueue
	if cfg.Queue.URL != "" {
		messageQueue, err = queue.New(cfg.Queue.Driver, cfg.Queue.URL, cfg.Queue.Group, logger)
		if err != nil {
			logger.Fatal("Failed to connect to message queue", zap.Error(err))
		}
		defer messageQueue.Close()
	}

	// 7. Repositories
	userRepo := postgres.NewUserRepository(db, logger)
	contactRepo := postgres.NewContactRepository(db, logger)
	expenseRepo := postgres.NewExpenseRepository(db, logger)
	calendarRepo := postgres.NewCalendarRepository(db, logger)

	// 8. Provider clients, one circuit breaker each
	breakers := circuitbreaker.NewManagerWithDefaults(circuitbreaker.Settings{
		MaxRequests:         uint32(cfg.CircuitBreaker.MaxRequests),
		Interval:            cfg.CircuitBreaker.Interval,
		Timeout:             cfg.CircuitBreaker.Timeout,
		ConsecutiveFailures: uint32(cfg.CircuitBreaker.ConsecutiveFailures),
	}, logger)
	httpClientFor := func(name string) circuitbreaker.Doer {
		client := newHTTPClient(cfg.CircuitBreaker.HTTPTimeout)
		if !cfg.CircuitBreaker.Enabled {
			return client
		}
		return circuitbreaker.NewHTTPClient(client, breakers.Get(name), logger)
	}

	geminiClient, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.CircuitBreaker.HTTPTimeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create Gemini client", zap.Error(err))
	}

	// The persona runs on Claude; Gemini stands in when no Anthropic key is set.
	var personaBackend ports.Generator = geminiClient
	if cfg.Anthropic.APIKey != "" {
		personaBackend = anthropic.NewClient(cfg.Anthropic.APIKey, logger,
			anthropic.WithModel(cfg.Anthropic.Model),
			anthropic.WithBaseURL(cfg.Anthropic.BaseURL),
			anthropic.WithHTTPClient(httpClientFor("anthropic")),
		)
	}

	openaiClient := openai.NewClient(openai.Config{
		APIKey:             cfg.OpenAI.APIKey,
		BaseURL:            cfg.OpenAI.BaseURL,
		ChatModel:          cfg.OpenAI.ChatModel,
		EmbeddingModel:     cfg.OpenAI.EmbeddingModel,
		TranscriptionModel: cfg.OpenAI.TranscriptionModel,
	}, httpClientFor("openai"), logger)

	var synthesizer ports.Synthesizer
	if cfg.ElevenLabs.APIKey != "" {
		synthesizer = elevenlabs.NewClient(elevenlabs.Config{
			APIKey:  cfg.ElevenLabs.APIKey,
			VoiceID: cfg.ElevenLabs.VoiceID,
			Model:   cfg.ElevenLabs.Model,
			BaseURL: cfg.ElevenLabs.BaseURL,
		}, httpClientFor("elevenlabs"), logger)
	} else {
		logger.Warn("ElevenLabs API key not set, replies will be text only")
	}

	mailer, err := email.NewService(&email.Config{
		Provider:       cfg.Email.Provider,
		FromEmail:      cfg.Email.From,
		FromName:       cfg.Email.FromName,
		SendGridAPIKey: cfg.Email.APIKey,
		SMTPHost:       cfg.Email.SMTPHost,
		SMTPPort:       cfg.Email.SMTPPort,
		SMTPUsername:   cfg.Email.SMTPUsername,
		SMTPPassword:   cfg.Email.SMTPPassword,
		SMTPUseTLS:     cfg.Email.SMTPUseTLS,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create email service", zap.Error(err))
	}

	loc, err := time.LoadLocation(cfg.Region.Timezone)
	if err != nil {
		logger.Fatal("Invalid timezone", zap.String("timezone", cfg.Region.Timezone), zap.Error(err))
	}

	// 9. Domain handlers and the orchestrator
	domainHandlers := []ports.DomainHandler{
		calendar.NewHandler(openaiClient, calendar.NewService(calendarRepo, loc, logger).WithInvites(mailer), logger),
		email.NewHandler(openaiClient, email.NewTools(mailer, logger), logger),
		contact.NewHandler(openaiClient, contact.NewService(contactRepo, logger), logger),
		expense.NewHandler(openaiClient, expense.NewService(expenseRepo, openaiClient, logger), logger),
	}

	wsHub := wsAdapter.NewHub(logger)
	go wsHub.Run(ctx)

	orch, err := orchestrator.NewOrchestrator(
		router.NewRouter(geminiClient, logger),
		domainHandlers,
		persona.NewRewriter(personaBackend, logger),
		wsHub,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to build orchestrator", zap.Error(err))
	}

	// 10. Channels
	memoryService := memory.NewService(redisCache, logger)
	assistantChannel := channel.NewService(orch, openaiClient, synthesizer, memoryService, logger)

	tokens := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessTokenDuration, cfg.JWT.RefreshTokenDuration, redisCache, logger)
	authService := auth.NewService(userRepo, tokens, logger)
	if cfg.Owner.Email != "" {
		if err := authService.EnsureOwner(ctx, "owner", cfg.Owner.Name, cfg.Owner.Email, cfg.Owner.Password); err != nil {
			logger.Fatal("Failed to seed owner account", zap.Error(err))
		}
	}

	var telegramHandler *handlers.TelegramHandler
	if cfg.Telegram.BotToken != "" {
		bot, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.BaseURL, httpClientFor("telegram"), logger)
		if err != nil {
			logger.Fatal("Failed to create Telegram client", zap.Error(err))
		}
		telegramChannel := assistantChannel
		if !cfg.Telegram.Speak {
			telegramChannel = channel.NewService(orch, openaiClient, nil, memoryService, logger)
		}
		telegramHandler = handlers.NewTelegramHandler(telegramChannel, bot, redisCache, cfg.Telegram.WebhookSecret, logger)

		if cfg.Telegram.WebhookURL != "" {
			if err := bot.SetWebhook(ctx, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); err != nil {
				logger.Error("Failed to register Telegram webhook", zap.Error(err))
			}
		}
	}

	if messageQueue != nil {
		if err := worker.NewAssistant(messageQueue, assistantChannel, logger).Start(); err != nil {
			logger.Fatal("Failed to start assistant worker", zap.Error(err))
		}
	}

	// 11. Health
	healthService := health.NewService(&health.Config{
		Version:  cfg.App.Version,
		DB:       sqlDB,
		Cache:    redisCache,
		Queue:    messageQueue,
		Breakers: breakers,
	}, logger)

	// 12. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		BodyLimit:             cfg.HTTP.BodyLimit,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	}
	if cfg.CircuitBreaker.Enabled {
		app.Use("/api", middleware.CircuitBreaker(breakers.Get("api"), logger))
	}

	// Metrics endpoint for Prometheus
	if cfg.Prometheus.Enabled {
		metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			metricsHandler(c.Context())
			return nil
		})
	}

	routes.Register(app, routes.Deps{
		AuthService: authService,
		RBAC:        auth.NewRBACService(logger),
		Auth:        handlers.NewAuthHandler(authService, logger),
		Assistant:   handlers.NewAssistantHandler(assistantChannel, logger),
		Memory:      handlers.NewMemoryHandler(memoryService, logger),
		Telegram:    telegramHandler,
		Health:      health.NewFiberHandler(healthService),
		Hub:         wsHub,
		Socket:      wsAdapter.NewAssistantHandler(assistantChannel, logger),
	})

	// 13. gRPC health server
	var grpcServer *server.GRPCServer
	if cfg.GRPC.Enabled {
		grpcServer = server.NewGRPCServer(healthService, logger)
		go grpcServer.WatchReadiness(ctx, 15*time.Second)
		go func() {
			logger.Info("Starting gRPC Server", zap.Int("port", cfg.GRPC.Port))
			lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
			if err != nil {
				logger.Fatal("Failed to listen for gRPC", zap.Error(err))
			}
			if err := grpcServer.Serve(lis); err != nil {
				logger.Fatal("gRPC Server failed", zap.Error(err))
			}
		}()
	}

	// 14. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 15. Graceful Shutdown
	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.Stop()
	}

	logger.Info("Server exited gracefully")
}
