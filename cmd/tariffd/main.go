// Package main запускает HTTP-сервер сервиса тарифов.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/tariff-core/internal/config"
	"github.com/mmeshcher/tariff-core/internal/discount"
	"github.com/mmeshcher/tariff-core/internal/handler"
	"github.com/mmeshcher/tariff-core/internal/middleware"
	"github.com/mmeshcher/tariff-core/internal/service"
	"github.com/mmeshcher/tariff-core/internal/tariff"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	provider, store, source, err := openDiscounts(cfg)
	if err != nil {
		sugar.Fatalw("discount source initialization error", "source", source, "error", err.Error())
	}
	if store != nil {
		defer store.Close()
	}
	sugar.Infow("discount source ready", "source", source)

	svc := service.NewService(provider, store)

	if cfg.AdminSecret == "" {
		sugar.Warn("ADMIN_SECRET is empty, admin routes are unreachable")
	}
	authMiddleware := middleware.NewAuthMiddleware(cfg.AdminSecret)
	h := handler.NewHandler(svc, logger, authMiddleware)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting tariff server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

// openDiscounts выбирает источник скидок: PostgreSQL, Redis, удалённый сервис
// или встроенная таблица, в порядке приоритета.
func openDiscounts(cfg *config.Config) (tariff.DiscountProvider, discount.Store, string, error) {
	switch {
	case cfg.DatabaseURI != "":
		s, err := discount.NewPostgresStore(cfg.DatabaseURI)
		if err != nil {
			return nil, nil, "postgres", err
		}
		return s, s, "postgres", nil
	case cfg.RedisAddress != "":
		s, err := discount.NewRedisStore(cfg.RedisAddress)
		if err != nil {
			return nil, nil, "redis", err
		}
		return s, s, "redis", nil
	case cfg.DiscountServiceAddress != "":
		return discount.NewClient(cfg.DiscountServiceAddress), nil, "remote", nil
	default:
		return discount.NewStatic(discount.DefaultRates()), nil, "static", nil
	}
}
