package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/noah-isme/codecontest-api/internal/config"
	"github.com/noah-isme/codecontest-api/internal/database"
	"github.com/noah-isme/codecontest-api/internal/events"
	"github.com/noah-isme/codecontest-api/internal/handler"
	"github.com/noah-isme/codecontest-api/internal/middleware"
	"github.com/noah-isme/codecontest-api/internal/repository"
	"github.com/noah-isme/codecontest-api/internal/router"
	"github.com/noah-isme/codecontest-api/internal/security"
	"github.com/noah-isme/codecontest-api/internal/service"
	"github.com/noah-isme/codecontest-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	repos, ping, closeStore := connectStore(cfg, logger)
	defer closeStore()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	var publisher events.Publisher = events.Nop{}
	if redisClient != nil || natsConn != nil {
		publisher = events.NewBus(redisClient, natsConn, cfg.EventsChannel, logger)
	}

	issuer, err := security.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		log.Fatalf("failed to configure token issuer: %v", err)
	}

	analyzer, err := newAnalyzer(cfg, logger)
	if err != nil {
		log.Fatalf("failed to configure analyzer: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	authService := service.NewAuthService(repos.Users, issuer, validate, logger)
	contestService := service.NewContestService(repos.Contests, redisClient, publisher, validate, logger, service.ContestServiceConfig{
		ActiveCacheTTL: cfg.ActiveContestCacheTTL,
	})
	plagiarismService := service.NewPlagiarismService(analyzer, repos.Analyses, publisher, validate, logger)
	submissionService := service.NewSubmissionService(repos.Contests, repos.Submissions, plagiarismService, redisClient, publisher, validate, logger, service.SubmissionServiceConfig{
		DuplicatePolicy: cfg.SubmissionDuplicatePolicy,
		Cooldown:        cfg.SubmissionCooldown,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSOrigins,
		AccessLog:    cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		ContestHandler:    handler.NewContestHandler(contestService, logger),
		QuestionHandler:   handler.NewQuestionHandler(contestService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		PlagiarismHandler: handler.NewPlagiarismHandler(plagiarismService, logger),
		JWTMiddleware:     middleware.JWTProtected(authService, logger),
		StorePing:         ping,
		Analyzer:          plagiarismService,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().
		Str("address", cfg.HTTPAddress()).
		Str("driver", cfg.DatabaseDriver).
		Bool("analyzer", plagiarismService.Available()).
		Msg("server started")

	waitForShutdown(app)
}

func connectStore(cfg config.Config, logger zerolog.Logger) (repository.Set, handler.Pinger, func()) {
	switch cfg.DatabaseDriver {
	case config.DriverMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}

		store := repository.NewMongoStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to ensure mongo indexes")
		}

		return repository.NewMongoSet(store), store.Ping, func() { disconnectMongo(client) }
	default:
		connect := database.ConnectPostgres
		if cfg.DatabaseDriver == config.DriverSQLite {
			connect = database.ConnectSQLite
		}

		db, err := connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			log.Fatalf("failed to access database handle: %v", err)
		}

		return repository.NewGormSet(db), sqlDB.PingContext, func() { _ = sqlDB.Close() }
	}
}

func disconnectMongo(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Printf("mongo disconnect failed: %v", err)
	}
}

// newAnalyzer returns nil when no model is configured so every analysis falls back to the mock verdict.
func newAnalyzer(cfg config.Config, logger zerolog.Logger) (ai.Analyzer, error) {
	if !cfg.AnalyzerEnabled() {
		logger.Warn().Str("provider", cfg.AIProvider).Msg("plagiarism analyzer disabled, using mock analysis")
		return nil, nil
	}

	analyzer, err := ai.NewOpenAIAnalyzer(ai.OpenAIConfig{
		Provider:    cfg.AIProvider,
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		BaseURL:     cfg.OpenAIEndpoint,
		APIVersion:  cfg.OpenAIAPIVersion,
		Deployment:  cfg.OpenAIDeployment,
		MaxTokens:   cfg.AIMaxTokens,
		Temperature: cfg.AITemperature,
		Timeout:     cfg.AITimeout,
		RateLimit:   cfg.AIRateLimitRPS,
		Burst:       cfg.AIRateLimitBurst,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	return analyzer, nil
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
