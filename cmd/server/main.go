package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"gangland/internal/account"
	"gangland/internal/audit"
	"gangland/internal/auth"
	"gangland/internal/auth/ticketcache"
	"gangland/internal/auth/token"
	"gangland/internal/catalog"
	"gangland/internal/platform/config"
	"gangland/internal/platform/httpserver"
	"gangland/internal/platform/logger"
	"gangland/internal/platform/metrics"
	"gangland/internal/platform/middleware"
	platformredis "gangland/internal/platform/redis"
	"gangland/internal/profile"
	"gangland/internal/shop"
	"gangland/internal/soap"
	httptransport "gangland/internal/transport/http"
	"gangland/internal/user/store"
	"gangland/pkg/platform/circuit"
	authmw "gangland/pkg/platform/middleware/auth"
)

const requestTimeout = 30 * time.Second

// tokenService issues tokens at /auth/token and validates them on bearer routes.
type tokenService interface {
	auth.TokenIssuer
	authmw.TokenValidator
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	seeded, err := catalog.Seed(cfg.Content.BaseDir, cfg.Content.UserDir)
	if err != nil {
		return fmt.Errorf("seed %s: %w", cfg.Content.UserDir, err)
	}
	if seeded {
		log.Info("copied base content", "from", cfg.Content.BaseDir, "to", cfg.Content.UserDir)
	}
	content, err := catalog.Load(cfg.Content.UserDir)
	if err != nil {
		return err
	}

	users, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN,
		store.WithLogger(log),
		store.WithWipe(cfg.Database.Wipe),
	)
	if err != nil {
		return err
	}
	defer closeWith(log, "user store", users.Close)

	m := metrics.New()
	healthChecks := map[string]httptransport.HealthCheck{"store": users.Ping}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var cache *ticketcache.RedisCache
	if redisClient != nil {
		defer closeWith(log, "redis", redisClient.Close)
		cache = ticketcache.NewRedisCache(redisClient.Client)
		healthChecks["redis"] = redisClient.Health
	}

	sink, err := newAuditSink(ctx, cfg.Audit, log)
	if err != nil {
		return err
	}
	auditor := audit.NewPublisher(sink, audit.WithLogger(log), audit.WithObserver(m))
	defer closeWith(log, "audit publisher", auditor.Close)

	var tokens tokenService
	if cfg.Auth.SignedTokens {
		tokens = token.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.TokenTTL)
	} else {
		tokens = token.NewLegacyService(cfg.Auth.TokenTTL)
	}

	accountOpts := []account.Option{
		account.WithLogger(log),
		account.WithAuditPublisher(auditor),
		account.WithMetrics(m),
	}
	authOpts := []auth.Option{
		auth.WithLogger(log),
		auth.WithAuditPublisher(auditor),
		auth.WithMetrics(m),
	}
	if cache != nil {
		accountOpts = append(accountOpts, account.WithTicketCache(cache, cfg.Redis.TicketCacheTTL))
		authOpts = append(authOpts, auth.WithTicketCache(cache))
	}

	accounts := account.New(users, account.Defaults{Inventory: content.Inventory, Save: content.Save}, accountOpts...)
	registry, err := soap.NewRegistry(accounts.Methods()...)
	if err != nil {
		return err
	}
	dispatcher := soap.NewDispatcher(registry,
		soap.WithLogger(log),
		soap.WithObserver(m),
		soap.WithPretty(cfg.SOAPPretty),
	)

	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Metrics:        m,
		MetricsHandler: promhttp.Handler(),
		SOAP:           dispatcher,
		Modules: []httptransport.Module{
			catalog.NewHandler(content, log),
			auth.NewHandler(auth.NewService(users, tokens, authOpts...), log),
			shop.NewHandler(
				shop.NewService(users, content.Consumables(), content.Inventory,
					shop.WithLogger(log),
					shop.WithAuditPublisher(auditor),
					shop.WithMetrics(m),
				),
				tokens, log),
			profile.NewHandler(
				profile.NewService(users, profile.Defaults{Inventory: content.Inventory, Save: content.Save},
					profile.WithLogger(log),
					profile.WithAuditPublisher(auditor),
					profile.WithMinXPLevel(cfg.Profile.MinXPLevel),
				),
				tokens, log),
		},
		HealthChecks:   healthChecks,
		Limiter:        middleware.NewMapLimiter(cfg.Limits.RPS, cfg.Limits.Burst, 10*time.Minute),
		TrustProxy:     cfg.TrustProxy,
		RequestTimeout: requestTimeout,
	})

	srv := httpserver.New(cfg.Addr, router,
		httpserver.WithWriteTimeout(requestTimeout+5*time.Second),
		httpserver.WithErrorLogger(log),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting gangland", "addr", cfg.Addr, "db_driver", cfg.Database.Driver, "signed_tokens", cfg.Auth.SignedTokens)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func newAuditSink(ctx context.Context, cfg config.Audit, log *slog.Logger) (audit.Sink, error) {
	if len(cfg.Brokers) == 0 {
		return audit.NewLogSink(log), nil
	}
	sink, err := audit.NewKafkaSink(ctx, cfg.Brokers, cfg.Topic, log,
		audit.WithFallback(audit.NewLogSink(log), circuit.New("audit-kafka")),
	)
	if err != nil {
		return nil, fmt.Errorf("audit kafka sink: %w", err)
	}
	return sink, nil
}

func closeWith(log *slog.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Warn("close failed", "resource", name, "error", err)
	}
}
