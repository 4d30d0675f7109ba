package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	ossignal "os/signal"
	"strconv"
	"syscall"
	"time"

	"portfolio-advisor/internal/allocation"
	"portfolio-advisor/internal/cache"
	"portfolio-advisor/internal/catalog"
	"portfolio-advisor/internal/config"
	"portfolio-advisor/internal/db"
	mcpserver "portfolio-advisor/internal/mcp"
	"portfolio-advisor/internal/repository"
	"portfolio-advisor/internal/service"
	"portfolio-advisor/pkg/logger"
	"portfolio-advisor/pkg/tracing"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

const maxRequestBody int64 = 1 << 20

var (
	errHTTPDisabled = errors.New("MCP_HTTP_ENABLED must be true when MCP_TRANSPORT=http")
	errNoAuthToken  = errors.New("MCP_AUTH_TOKEN is required when MCP_TRANSPORT=http")
)

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	initPostgresFunc  = db.InitPostgres
	initRedisFunc     = cache.InitRedis
	initTracerFunc    = tracing.InitTracer
	runMigrationsFunc = repository.RunMigrations
	loadCatalogFunc   = catalog.Load
	newMCPServerFunc  = mcpserver.NewServer
	newMCPHandlerFunc = mcpserver.NewHTTPTransportHandler

	serveStdio = func(ctx context.Context, server *sdkmcp.Server) error {
		return server.Run(ctx, &sdkmcp.StdioTransport{})
	}
	listenHTTP   = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTP = func(ctx context.Context, srv *http.Server) error { return srv.Shutdown(ctx) }
	notifySignal = ossignal.Notify
	awaitSignal  = func(quit <-chan os.Signal) { <-quit }
	fatalf       = func(err error, msg string) { log.Fatal().Err(err).Msg(msg) }
)

func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()
	// stdout carries the stdio transport.
	logger.SetGlobalLogger(logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, cfg.OTLPEndpoint)
	if err != nil {
		fatalf(err, "failed to initialize tracer")
		return
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	etfs, err := loadCatalogFunc(cfg.ETFCatalogPath)
	if err != nil {
		fatalf(err, "failed to load ETF catalog")
		return
	}

	// Both stores are optional here: without postgres the tools still answer
	// catalog questions, and without redis allocations are recomputed.
	var portfolios service.PortfolioRepository
	if pool, err := initPostgresFunc(ctx, cfg.DatabaseURL); err != nil {
		log.Warn().Err(err).Msg("postgres unavailable, portfolio lookups disabled")
	} else if pool != nil {
		defer pool.Close()
		if err := runMigrationsFunc(ctx, pool, tracer); err != nil {
			fatalf(err, "failed to run migrations")
			return
		}
		portfolios = repository.NewPortfolioRepository(pool, tracer)
	}

	allocCache := cache.NewAllocationCache(nil, 0, tracer)
	if rdb, err := initRedisFunc(ctx, cfg.RedisURL); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, allocation cache disabled")
	} else if rdb != nil {
		defer rdb.Close()
		allocCache = cache.NewAllocationCache(rdb, time.Duration(cfg.AllocationCacheTTL)*time.Second, tracer)
	}

	svc := service.NewPortfolioService(tracer, portfolios, allocCache, allocation.NewEngine(nil), etfs)
	server := newMCPServerFunc(tracer, svc, etfs, mcpserver.ServerConfig{
		RequestTimeout: time.Duration(cfg.MCPRequestTimeoutSecs) * time.Second,
		Logger:         slog.New(slog.NewTextHandler(os.Stderr, nil)),
	})

	if err := serve(ctx, cancel, cfg, server); err != nil {
		fatalf(err, "mcp server failed")
	}
}

func serve(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, server *sdkmcp.Server) error {
	switch cfg.MCPTransport {
	case "", "stdio":
		log.Info().Msg("MCP server listening on stdio")
		return serveStdio(ctx, server)
	case "http":
		return runHTTPMode(ctx, cancel, cfg, server)
	default:
		return fmt.Errorf("unsupported MCP_TRANSPORT %q", cfg.MCPTransport)
	}
}

// httpOptions validates the HTTP transport settings.
func httpOptions(cfg *config.Config) (mcpserver.HTTPHandlerConfig, error) {
	if !cfg.MCPHTTPEnabled {
		return mcpserver.HTTPHandlerConfig{}, errHTTPDisabled
	}
	tokens := mcpserver.ParseAuthTokens(cfg.MCPAuthToken)
	if len(tokens) == 0 {
		return mcpserver.HTTPHandlerConfig{}, errNoAuthToken
	}
	return mcpserver.HTTPHandlerConfig{
		AuthTokens:      tokens,
		RateLimitPerMin: cfg.MCPRateLimitPerMin,
		MaxBodyBytes:    maxRequestBody,
	}, nil
}

func runHTTPMode(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, server *sdkmcp.Server) error {
	opts, err := httpOptions(cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.MCPHTTPBind, strconv.Itoa(cfg.MCPHTTPPort)),
		Handler:           newMCPHandlerFunc(server, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := listenHTTP(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", srv.Addr).Msg("mcp http listener stopped")
		}
	}()
	log.Info().Str("addr", srv.Addr).Int("tokens", len(opts.AuthTokens)).Msg("MCP HTTP server started")

	quit := make(chan os.Signal, 1)
	notifySignal(quit, syscall.SIGINT, syscall.SIGTERM)
	awaitSignal(quit)
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := shutdownHTTP(shutdownCtx, srv); err != nil {
		return fmt.Errorf("mcp server forced to shutdown: %w", err)
	}
	log.Info().Msg("MCP HTTP server stopped")
	return nil
}
