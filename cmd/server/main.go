package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-bridge/auth"
	"github.com/jrsteele09/go-auth-bridge/bearer"
	"github.com/jrsteele09/go-auth-bridge/instrumentation"
	"github.com/jrsteele09/go-auth-bridge/internal/config"
	"github.com/jrsteele09/go-auth-bridge/provider"
	"github.com/jrsteele09/go-auth-bridge/ratelimit"
	ratelimitrepofakes "github.com/jrsteele09/go-auth-bridge/ratelimit/repofakes"
	"github.com/jrsteele09/go-auth-bridge/server"
	"github.com/jrsteele09/go-auth-bridge/sessions"
	sessionrepofakes "github.com/jrsteele09/go-auth-bridge/sessions/repofakes"
	"github.com/jrsteele09/go-auth-bridge/storage/redisstore"
	"github.com/jrsteele09/go-auth-bridge/storage/sqlitestore"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return fmt.Errorf("config.New: %w", err)
	}
	configureLogging(c)
	displayAppname(c.GetAppName())

	repos, err := openRepos(c)
	if err != nil {
		return err
	}
	defer func() {
		if err := repos.close(); err != nil {
			log.Err(err).Msg("closing store")
		}
	}()

	var (
		metrics       *instrumentation.Metrics
		serverOptions []server.ServerOption
	)
	if c.GetMetricsEnabled() {
		exporter, err := instrumentation.NewPrometheusExporter(c.GetAppName())
		if err != nil {
			return err
		}
		defer func() {
			_ = exporter.Shutdown(context.Background())
		}()
		otel.SetMeterProvider(exporter.MeterProvider())

		metrics, err = instrumentation.NewMetrics(exporter.MeterProvider())
		if err != nil {
			return err
		}
		serverOptions = append(serverOptions, server.WithMetricsHandler(exporter.Handler()))
	}

	resolver, err := newResolver(c, repos, metrics)
	if err != nil {
		return err
	}

	log.Info().Stringer("allowed_origins", c.GetAllowedOrigins()).Bool("metrics", c.GetMetricsEnabled()).Msg("http config")
	handler, err := server.New(c, resolver, serverOptions...)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	if err := waitForStopSignal(serveErr); err != nil {
		return err
	}
	return shutdown(httpServer)
}

func configureLogging(c config.EnvConfig) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// storeRepos are the limiter and session repos of the configured backend
type storeRepos struct {
	attempts ratelimit.Repo
	sessions sessions.Repo
	close    func() error
}

func openRepos(c config.StoreConfig) (*storeRepos, error) {
	switch backend := c.GetStoreBackend(); backend {
	case config.StoreBackendSQLite:
		if err := os.MkdirAll(filepath.Dir(c.GetSQLitePath()), 0o750); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
		db, err := sqlitestore.NewDB(c.GetSQLitePath())
		if err != nil {
			return nil, fmt.Errorf("sqlitestore.NewDB: %w", err)
		}
		log.Info().Str("path", c.GetSQLitePath()).Msg("using sqlite store")
		return &storeRepos{
			attempts: sqlitestore.NewRateLimitRepo(db),
			sessions: sqlitestore.NewSessionRepo(db),
			close:    db.Close,
		}, nil

	case config.StoreBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: c.GetRedisAddr()})
		if err := client.Ping(context.Background()).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", c.GetRedisAddr(), err)
		}
		store, err := redisstore.New(client, c.GetRedisKeyPrefix())
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("using redis store")
		return &storeRepos{
			attempts: store.RateLimits(),
			sessions: store.Sessions(),
			close:    store.Close,
		}, nil

	case config.StoreBackendMemory:
		log.Warn().Msg("using in-memory store, records are lost on restart")
		return &storeRepos{
			attempts: ratelimitrepofakes.NewFakeAttemptRepo(),
			sessions: sessionrepofakes.NewFakeSessionRepo(),
			close:    func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", backend)
	}
}

// newResolver wires the resolver; metrics may be nil.
func newResolver(c config.Config, repos *storeRepos, metrics *instrumentation.Metrics) (*auth.Resolver, error) {
	key, err := c.GetTokenKey()
	if err != nil {
		return nil, err
	}
	sealer, err := bearer.NewSealer(key)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.New(repos.attempts,
		ratelimit.WithThreshold(c.GetLockoutThreshold()),
		ratelimit.WithWindow(c.GetLockoutWindow()),
	)

	var storeOptions []sessions.StoreOption
	if c.GetSessionCacheEnabled() {
		storeOptions = append(storeOptions, sessions.WithClaimCache())
	}

	resolverOptions := []auth.ResolverOption{auth.WithMetrics(metrics)}
	if c.GetStrictFailureCounting() {
		resolverOptions = append(resolverOptions, auth.WithStrictFailureCounting())
	}

	return auth.NewResolver(auth.Dependencies{
		Codec:    bearer.NewCodec(sealer),
		Limiter:  limiter,
		Sessions: sessions.NewStore(repos.sessions, storeOptions...),
		Provider: provider.NewClient(c.GetProviderURL(), provider.WithTimeout(c.GetProviderTimeout())),
	}, resolverOptions...)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal(serveErr <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
		return nil
	case err := <-serveErr:
		return err
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
