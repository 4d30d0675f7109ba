package main

import (
	"context"
	"errors"
	"net"
	"os"
	ossignal "os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"portfolio-advisor/internal/advisor"
	"portfolio-advisor/internal/allocation"
	"portfolio-advisor/internal/cache"
	"portfolio-advisor/internal/catalog"
	"portfolio-advisor/internal/config"
	"portfolio-advisor/internal/db"
	"portfolio-advisor/internal/repository"
	"portfolio-advisor/internal/service"
	"portfolio-advisor/internal/tui"
	"portfolio-advisor/pkg/logger"
	"portfolio-advisor/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bm "github.com/charmbracelet/wish/bubbletea"
	lm "github.com/charmbracelet/wish/logging"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	gossh "golang.org/x/crypto/ssh"
)

type ctxKey string

const userContextKey ctxKey = "ssh-user"

var errNoDatabase = errors.New("DATABASE_URL not set")

// userStore is the slice of the ssh_users repository the server needs.
type userStore interface {
	FindByFingerprint(ctx context.Context, fingerprint string) (*repository.SSHUser, error)
	UpdateLastLogin(ctx context.Context, userID int64) error
	SetPortfolio(ctx context.Context, userID int64, portfolioID string) error
}

var (
	loadEnvFunc         = godotenv.Load
	loadConfigFunc      = config.Load
	initPostgresFunc    = db.InitPostgres
	initRedisFunc       = cache.InitRedis
	initTracerFunc      = tracing.InitTracer
	runMigrationsFunc   = repository.RunMigrations
	loadCatalogFunc     = catalog.Load
	newOpenAIClientFunc = func(apiKey, model string) advisor.LLMClient { return advisor.NewOpenAIClient(apiKey, model) }
	newSSHServerFunc    = wish.NewServer
	startSSHServerFunc  = func(srv *ssh.Server) error { return srv.ListenAndServe() }
	shutdownSSHFunc     = func(srv *ssh.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify   = ossignal.Notify
	waitForSignalFunc   = func(quit <-chan os.Signal) { <-quit }
	fatalf              = func(err error, msg string) { log.Fatal().Err(err).Msg(msg) }
)

func main() {
	_ = loadEnvFunc()

	cfg := loadConfigFunc()
	logger.SetGlobalLogger(logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := initPostgresFunc(ctx, cfg.DatabaseURL)
	if err != nil {
		fatalf(err, "ssh server requires postgres for key authentication")
		return
	}
	if pool == nil {
		fatalf(errNoDatabase, "ssh server requires postgres for key authentication")
		return
	}
	defer pool.Close()

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
		fatalf(err, "failed to initialize tracer")
		return
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	if err := runMigrationsFunc(ctx, pool, tracer); err != nil {
		fatalf(err, "failed to run migrations")
		return
	}

	etfCatalog, err := loadCatalogFunc(cfg.ETFCatalogPath)
	if err != nil {
		fatalf(err, "failed to load ETF catalog")
		return
	}

	users := repository.NewSSHUserRepository(pool, tracer)
	switch n, err := users.CountActive(ctx); {
	case err != nil:
		log.Warn().Err(err).Msg("could not count ssh users")
	case n == 0:
		log.Warn().Msg("no active ssh_users rows, every login will be rejected")
	default:
		log.Info().Int("active_users", n).Msg("ssh users loaded")
	}
	allocationCache := cache.NewAllocationCache(redisClient, time.Duration(cfg.AllocationCacheTTL)*time.Second, tracer)
	portfolioService := service.NewPortfolioService(tracer,
		repository.NewPortfolioRepository(pool, tracer), allocationCache, allocation.NewEngine(nil), etfCatalog)

	var llm advisor.LLMClient
	if cfg.OpenAIAPIKey != "" {
		llm = newOpenAIClientFunc(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	advisorService := advisor.NewAdvisorService(tracer, llm, portfolioService,
		repository.NewConversationRepository(pool, tracer), cfg.AdvisorMaxHistory)

	base := tui.Services{
		Portfolios: portfolioService,
		Catalog:    etfCatalog,
	}
	if advisorService.Enabled() {
		base.Advisor = advisorService
	}

	srv, err := newSSHServerFunc(
		wish.WithAddress(net.JoinHostPort(cfg.SSHBind, strconv.Itoa(cfg.SSHPort))),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(publicKeyHandler(users)),
		wish.WithMiddleware(
			bm.Middleware(teaHandler(base, users)),
			activeterm.Middleware(),
			lm.Middleware(),
		),
	)
	if err != nil {
		fatalf(err, "failed to create ssh server")
		return
	}

	go func() {
		if err := startSSHServerFunc(srv); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			fatalf(err, "ssh listen")
		}
	}()
	log.Info().Str("addr", srv.Addr).Msg("SSH server started")

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info().Msg("Shutting down SSH server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownSSHFunc(srv, shutdownCtx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		log.Error().Err(err).Msg("SSH server forced to shutdown")
		return
	}
	log.Info().Msg("SSH server exiting")
}

// publicKeyHandler admits keys registered in ssh_users and stashes the user on
// the connection context.
func publicKeyHandler(users userStore) ssh.PublicKeyHandler {
	return func(ctx ssh.Context, key ssh.PublicKey) bool {
		fingerprint := gossh.FingerprintSHA256(key)
		user, err := users.FindByFingerprint(ctx, fingerprint)
		if err != nil {
			log.Error().Err(err).Str("fingerprint", fingerprint).Msg("ssh user lookup failed")
			return false
		}
		if user == nil {
			log.Warn().Str("fingerprint", fingerprint).Str("remote", ctx.RemoteAddr().String()).Msg("rejected unknown ssh key")
			return false
		}
		ctx.SetValue(userContextKey, user)
		return true
	}
}

func teaHandler(base tui.Services, users userStore) bm.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		user, _ := s.Context().Value(userContextKey).(*repository.SSHUser)
		svc := sessionServices(s.Context(), base, users, user, s.Command())

		m := tui.NewAppModel(svc)
		if pty, _, ok := s.Pty(); ok {
			m.SetSize(pty.Window.Width, pty.Window.Height)
		}
		return m, []tea.ProgramOption{tea.WithAltScreen()}
	}
}

// sessionServices binds the session to a portfolio. A portfolio id passed as
// the ssh command wins and is remembered; otherwise the stored one is used.
func sessionServices(ctx context.Context, base tui.Services, users userStore, user *repository.SSHUser, args []string) tui.Services {
	svc := base
	if user == nil {
		return svc
	}
	svc.UserID = user.ID
	svc.Username = user.Username
	svc.PortfolioID = user.PortfolioID

	if err := users.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to record ssh login")
	}

	requested := requestedPortfolio(args)
	if requested == "" || requested == svc.PortfolioID {
		return svc
	}
	if base.Portfolios != nil {
		if _, err := base.Portfolios.GetPortfolio(ctx, requested); err != nil {
			log.Warn().Err(err).Str("portfolio_id", requested).Msg("requested portfolio not found, keeping stored one")
			return svc
		}
	}
	if err := users.SetPortfolio(ctx, user.ID, requested); err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to remember portfolio")
	}
	svc.PortfolioID = requested
	return svc
}

func requestedPortfolio(args []string) string {
	if len(args) == 0 {
		return ""
	}
	id, err := uuid.Parse(strings.TrimSpace(args[0]))
	if err != nil {
		return ""
	}
	return id.String()
}
