package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/crypto-dashboard/internal/client"
	"github.com/yourorg/crypto-dashboard/internal/config"
	"github.com/yourorg/crypto-dashboard/internal/handler"
	"github.com/yourorg/crypto-dashboard/internal/kafka"
	"github.com/yourorg/crypto-dashboard/internal/market"
	"github.com/yourorg/crypto-dashboard/internal/middleware"
	"github.com/yourorg/crypto-dashboard/internal/repository"
	"github.com/yourorg/crypto-dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if cfg.CoinGecko.APIKey == "" {
		logger.Warn("CoinGecko API key is not set, using unauthenticated rate limits")
	}
	if cfg.CoinMarketCap.APIKey == "" {
		logger.Warn("CoinMarketCap API key is not set, fallback source disabled")
	}

	// Connect to database
	db, err := connectToDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	tradeRepo := repository.NewTradeRepository(db, logger)
	knowledgeRepo := repository.NewKnowledgeRepository(db, logger)

	// Initialize upstream clients
	geckoClient := client.NewCoinGeckoClient(cfg.CoinGecko, logger)
	cmcClient := client.NewCoinMarketCapClient(cfg.CoinMarketCap, logger)
	analyzerClient := client.NewAnalyzerClient(cfg.Analyzer, logger)
	transcriptFetcher := client.NewTranscriptFetcher(logger)

	// Market data resolver state lives here and only here; a restart
	// clears all caches and counters.
	quota := market.NewQuota(cfg.CoinMarketCap.MonthlyCallLimit, cfg.Resolver.QuotaWindow)
	store := market.NewStore(quota)
	resolver := market.NewResolver(geckoClient, cmcClient, geckoClient, geckoClient, store, cfg.Resolver, logger)

	// Optional Kafka event producer
	var producer *kafka.Producer
	var publisher service.EventPublisher
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ClientID, logger)
		defer producer.Close()
		publisher = producer
	}

	// Initialize services
	tradeService := service.NewTradeService(tradeRepo, logger)
	knowledgeService := service.NewKnowledgeService(knowledgeRepo, resolver, publisher, cfg.Kafka.Topics["knowledgeEvents"], logger)
	categoryService := service.NewCategoryService(geckoClient, store, cfg.Resolver, logger)
	analysisService := service.NewAnalysisService(analyzerClient, transcriptFetcher, publisher, cfg.Kafka.Topics["analysisEvents"], logger)

	// Optional Redis response cache
	var responseCache *middleware.ResponseCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		responseCache = middleware.NewResponseCache(redisClient, cfg.Redis.Prefix, cfg.Redis.CacheDuration, logger)
	}

	// Initialize handlers
	marketHandler := handler.NewMarketHandler(resolver, logger)
	categoryHandler := handler.NewCategoryHandler(categoryService, logger)
	tradeHandler := handler.NewTradeHandler(tradeService, logger)
	knowledgeHandler := handler.NewKnowledgeHandler(knowledgeService, logger)
	analysisHandler := handler.NewAnalysisHandler(analysisService, logger)
	revalidateHandler := handler.NewRevalidateHandler(responseCache, logger)

	// Set up HTTP server with Gin
	router := setupRouter(
		marketHandler,
		categoryHandler,
		tradeHandler,
		knowledgeHandler,
		analysisHandler,
		revalidateHandler,
		responseCache,
		logger,
		cfg,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

func createLogger(level string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	// Create logger config
	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func connectToDB(dbConfig config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName,
		dbConfig.SSLMode,
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}

func setupRouter(
	marketHandler *handler.MarketHandler,
	categoryHandler *handler.CategoryHandler,
	tradeHandler *handler.TradeHandler,
	knowledgeHandler *handler.KnowledgeHandler,
	analysisHandler *handler.AnalysisHandler,
	revalidateHandler *handler.RevalidateHandler,
	responseCache *middleware.ResponseCache,
	logger *zap.Logger,
	cfg *config.Config,
) *gin.Engine {
	router := gin.New()

	// Use middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.RateLimit(cfg.RateLimit))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// API routes
	api := router.Group("/api")
	if responseCache != nil {
		api.Use(responseCache.Middleware())
	}
	{
		// Trading data
		api.GET("/balances", tradeHandler.GetBalances)
		api.GET("/trades", tradeHandler.GetTrades)
		api.GET("/pnl", tradeHandler.GetPnl)

		// Market data
		api.POST("/coinmarketcap", marketHandler.ResolveSymbols)
		api.GET("/coins/:id", marketHandler.GetCoin)
		api.GET("/coins/:id/history", marketHandler.GetCoinHistory)
		api.GET("/categories", categoryHandler.GetCategories)
		api.GET("/categories/:id", categoryHandler.GetCategory)

		// Knowledge base
		api.POST("/knowledge", knowledgeHandler.CreateKnowledge)
		api.GET("/knowledge", knowledgeHandler.GetKnowledge)

		// Analysis delegation
		api.POST("/autofetch", analysisHandler.Autofetch)
		api.POST("/analyze-youtube", analysisHandler.AnalyzeYoutube)
		api.POST("/transcript", analysisHandler.Transcript)

		// Cache invalidation (requires service key)
		revalidate := api.Group("")
		revalidate.Use(middleware.ServiceAuthMiddleware(cfg.ServiceKey, logger))
		revalidate.POST("/revalidate", revalidateHandler.Revalidate)
	}

	return router
}
