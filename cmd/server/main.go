package main

import (
	"context"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"portfolio-advisor/internal/advisor"
	"portfolio-advisor/internal/allocation"
	"portfolio-advisor/internal/bot"
	"portfolio-advisor/internal/cache"
	"portfolio-advisor/internal/catalog"
	"portfolio-advisor/internal/config"
	"portfolio-advisor/internal/db"
	"portfolio-advisor/internal/handler"
	"portfolio-advisor/internal/job"
	"portfolio-advisor/internal/repository"
	"portfolio-advisor/internal/service"
	"portfolio-advisor/pkg/logger"
	"portfolio-advisor/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "portfolio-advisor/docs"
)

var (
	loadEnvFunc           = godotenv.Load
	loadConfigFunc        = config.Load
	initPostgresFunc      = db.InitPostgres
	initRedisFunc         = cache.InitRedis
	initTracerFunc        = tracing.InitTracer
	runMigrationsFunc     = repository.RunMigrations
	loadCatalogFunc       = catalog.Load
	newOpenAIClientFunc   = func(apiKey, model string) advisor.LLMClient { return advisor.NewOpenAIClient(apiKey, model) }
	startRetentionJobFunc = func(j *job.ConversationRetention, ctx context.Context) {
		go func() {
			if err := j.Start(ctx); err != nil {
				log.Error().Err(err).Msg("conversation retention job stopped")
			}
		}()
	}
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Portfolio Advisor API
// @version         1.0
// @description     Questionnaire driven asset allocation with ETF recommendations and an advisor chat.

// @host      localhost:8080
// @BasePath  /
func main() {
	_ = loadEnvFunc()

	cfg := loadConfigFunc()
	logger.SetGlobalLogger(logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := initPostgresFunc(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Warn().Err(err).Msg("postgres unavailable, persistence disabled")
		pool = nil
	}
	if pool != nil {
		defer pool.Close()
	}
	redisClient, err := initRedisFunc(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, allocation cache disabled")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	tp, tracer, err := initTracerFunc(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer")
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	etfCatalog, err := loadCatalogFunc(cfg.ETFCatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load ETF catalog")
	}
	log.Info().Int("etfs", etfCatalog.Len()).Str("path", cfg.ETFCatalogPath).Msg("ETF catalog loaded")

	// Storage-backed components stay nil interfaces without Postgres.
	var (
		portfolioRepo service.PortfolioRepository
		conversations advisor.ConversationStore
		pruner        job.MessagePruner
	)
	if pool != nil {
		if err := runMigrationsFunc(ctx, pool, tracer); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		portfolioRepo = repository.NewPortfolioRepository(pool, tracer)
		convRepo := repository.NewConversationRepository(pool, tracer)
		conversations = convRepo
		pruner = convRepo
	}

	allocationCache := cache.NewAllocationCache(redisClient, time.Duration(cfg.AllocationCacheTTL)*time.Second, tracer)
	portfolioService := service.NewPortfolioService(tracer, portfolioRepo, allocationCache, allocation.NewEngine(nil), etfCatalog)

	var llm advisor.LLMClient
	if cfg.OpenAIAPIKey != "" {
		llm = newOpenAIClientFunc(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	advisorService := advisor.NewAdvisorService(tracer, llm, portfolioService, conversations, cfg.AdvisorMaxHistory)

	retention := job.NewConversationRetention(tracer, pruner, cfg.ChatRetentionDays, cfg.ChatRetentionCron)
	startRetentionJobFunc(retention, ctx)

	var botAdvisor bot.Advisor
	if advisorService.Enabled() {
		botAdvisor = advisorService
	}
	if _, err := startTelegramBotFunc(cfg.TelegramBotToken, portfolioService, etfCatalog, botAdvisor); err != nil {
		log.Error().Err(err).Msg("telegram bot disabled")
	}

	h := newHandlerFunc(tracer, portfolioService, advisorService, etfCatalog)

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.ServiceName))
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              httpAddr(cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()
	log.Info().Str("addr", srv.Addr).Msg("HTTP server started")

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info().Msg("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server exiting")
}

func httpAddr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	cfg.MaxAge = 12 * time.Hour
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
