package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/venturemagnate/paper-trading/internal/api"
	"github.com/venturemagnate/paper-trading/internal/auth"
	"github.com/venturemagnate/paper-trading/internal/cache"
	"github.com/venturemagnate/paper-trading/internal/config"
	"github.com/venturemagnate/paper-trading/internal/database"
	"github.com/venturemagnate/paper-trading/internal/kafka"
	"github.com/venturemagnate/paper-trading/internal/prices"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	defer db.Close()

	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		if err := db.Migrate(path); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	startingBalance, err := decimal.NewFromString(cfg.Trading.StartingBalance)
	if err != nil {
		logger.Fatal("invalid starting balance", zap.String("value", cfg.Trading.StartingBalance))
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		// Sessions won't survive a restart without a configured secret.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			logger.Fatal("failed to generate session secret", zap.Error(err))
		}
		secret = hex.EncodeToString(buf)
		logger.Warn("JWT_SECRET not set, using a random per-process secret")
	}

	sessions := auth.NewSessions(secret, cfg.Auth.CookieName, cfg.Auth.CookiePath)
	resolver := prices.NewResolver(cfg.Providers.FinnhubKey, cfg.Providers.AlphaVantageKey)
	priceCache := cache.NewPrices(cfg.Redis.Addr, cfg.Redis.Password)
	defer priceCache.Close()

	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic)
		defer producer.Close()
	}

	handler := api.NewHandler(db, resolver, priceCache, producer, sessions, logger, startingBalance)

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           api.SetupRoutes(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if len(cfg.Kafka.Brokers) > 0 {
		consumer := kafka.NewTickConsumer(cfg.Kafka.Brokers, cfg.Kafka.TicksTopic, cfg.Kafka.TicksGroup, db, logger)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				logger.Error("tick consumer stopped", zap.Error(err))
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}()

	logger.Info("paper-trading server listening", zap.String("addr", httpServer.Addr))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server failed", zap.Error(err))
	}
}
