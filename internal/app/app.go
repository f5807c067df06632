package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"logolate/go_backend/internal/app/config"
	apphttp "logolate/go_backend/internal/app/http"
	"logolate/go_backend/internal/app/http/handlers"
	"logolate/go_backend/internal/domain/cart"
	"logolate/go_backend/internal/domain/catalog"
	"logolate/go_backend/internal/domain/quote"
	pdfgen "logolate/go_backend/internal/domain/quote/pdf/gofpdf"
	"logolate/go_backend/internal/infra/backend"
	"logolate/go_backend/internal/infra/cache"
	"logolate/go_backend/internal/infra/db/postgres"
)

const shutdownTimeout = 15 * time.Second

// NewBackend builds the REST backend client from cfg.
func NewBackend(cfg config.Config, log *zap.Logger) (*backend.Client, error) {
	return backend.New(backend.Config{
		BaseURL: cfg.BackendURL,
		Token:   cfg.BackendToken,
		Timeout: cfg.BackendTimeout,
	}, log.Named("backend"))
}

// Run wires the service and serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives.
func Run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := NewBackend(cfg, log)
	if err != nil {
		return err
	}

	var journal quote.Journal = quote.NopJournal{}
	if cfg.DatabaseURL != "" {
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		defer db.Close()
		j := postgres.NewJournal(db)
		if err := j.Migrate(ctx); err != nil {
			return err
		}
		journal = j
		log.Info("quote journal enabled")
	}

	var catalogCache catalog.Cache = cache.NewMemoryCache(cfg.CatalogCacheTTL)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, using in-memory catalog cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			catalogCache = cache.NewRedisCache(rdb, cfg.CatalogCacheTTL)
			log.Info("catalog cache on redis", zap.String("addr", cfg.RedisAddr))
		}
	}

	carts := cart.NewRegistry(cfg.CartIdleTTL, func(sessionID string) {
		log.Debug("cart session expired", zap.String("session", sessionID))
	})
	defer carts.Close()

	catalogSvc := catalog.NewService(client, catalogCache, cfg.CatalogLimits, log.Named("catalog"))
	assembler := quote.NewAssembler(quote.Deps{
		Products: client,
		Budgets:  client,
		Settings: client,
		Sender:   client,
		Journal:  journal,
	}, quote.Config{
		FallbackAdminEmail: cfg.AdminFallbackEmail,
		Validity:           cfg.QuoteValidity,
	}, log.Named("quote"))

	h := handlers.New(carts, catalogSvc, assembler, client, pdfgen.New(log), log.Named("http"))
	router := apphttp.NewRouter(cfg, h, log.Named("http"))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, "storefront"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
