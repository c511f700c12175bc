package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shop-backend/internal/cart"
	"shop-backend/internal/catalog"
	"shop-backend/internal/checkout"
	"shop-backend/internal/config"
	"shop-backend/internal/db"
	"shop-backend/internal/events"
	"shop-backend/internal/httpapi"
	"shop-backend/internal/order"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- DB ---
	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	catalogRepo := catalog.NewPostgresRepository(pool)
	if cfg.SeedDemoData {
		if err := catalog.Seed(ctx, catalogRepo, logger); err != nil {
			logger.Fatal("seed catalog", zap.Error(err))
		}
	}

	// --- optional cart view cache ---
	var viewCache cart.ViewCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			logger.Fatal("redis connect", zap.Error(err))
		}
		defer rdb.Close()
		viewCache = cart.NewRedisViewCache(rdb, cfg.CartCacheTTL, logger)
		logger.Info("cart view cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	// --- optional order events ---
	var publisher checkout.EventPublisher
	if cfg.AMQPURL != "" {
		conn, err := events.Dial(cfg.AMQPURL)
		if err != nil {
			logger.Fatal("rabbitmq connect", zap.Error(err))
		}
		defer conn.Close()

		pub, err := events.NewPublisher(conn)
		if err != nil {
			logger.Fatal("rabbitmq publisher", zap.Error(err))
		}
		defer pub.Close()
		publisher = pub
		logger.Info("order events enabled")
	}

	// --- services ---
	cartRepo := cart.NewPostgresRepository(pool)
	cartSvc := cart.NewService(cartRepo, catalogRepo, viewCache, logger)
	engine := checkout.NewEngine(pool, viewCache, publisher, logger)
	orderRepo := order.NewPostgresRepository(pool)

	// --- HTTP ---
	cartHandler := httpapi.NewCartHandler(cartSvc, logger)
	paymentHandler := httpapi.NewPaymentHandler(engine, orderRepo, logger)
	router := httpapi.NewRouter(cartHandler, paymentHandler, logger, cfg.CORSAllowOrigins)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("fatal error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)
	cancel()

	logger.Info("shutdown complete")
}
