// Command auction-server starts the PhoenixPME auction HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/phoenixpme/auction-service/internal/clock"
	"github.com/phoenixpme/auction-service/internal/config"
	"github.com/phoenixpme/auction-service/internal/ledger"
	ledgerpg "github.com/phoenixpme/auction-service/internal/ledger/postgres"
	"github.com/phoenixpme/auction-service/internal/limiter"
	"github.com/phoenixpme/auction-service/internal/migrate"
	"github.com/phoenixpme/auction-service/internal/notify"
	"github.com/phoenixpme/auction-service/internal/notify/natspub"
	"github.com/phoenixpme/auction-service/internal/notify/redispub"
	"github.com/phoenixpme/auction-service/internal/repository"
	"github.com/phoenixpme/auction-service/internal/repository/memory"
	"github.com/phoenixpme/auction-service/internal/repository/postgres"
	"github.com/phoenixpme/auction-service/internal/server/httpapi"
	"github.com/phoenixpme/auction-service/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, wires the service, and serves
// HTTP until interrupted.
func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(".")
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.JWTKey == "" {
		logger.Fatal("missing JWT_KEY")
	}

	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.ServerAddress),
		zap.String("store", cfg.Store),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		store     repository.AuctionStore
		users     repository.UserRepository
		lim       limiter.Limiter
		ledgerCli ledger.Client
	)
	switch cfg.Store {
	case "memory":
		store = memory.NewAuctionStore()
		users = memory.NewUserRepo()
		lim = limiter.Noop{}
		ledgerCli = ledger.NewInMemory()
	default:
		if err := migrate.Up(ctx, cfg.PostgresDSN); err != nil {
			logger.Fatal("migrate up", zap.Error(err))
		}
		db, err := postgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("postgres connect", zap.Error(err))
		}
		defer db.Close()

		store = postgres.NewAuctionStore(db)
		users = postgres.NewUserRepo(db)
		lim = limiter.NewPostgres(db.Pool, 15*time.Minute, 5, 15*time.Minute)
		ledgerCli = ledgerpg.NewLedger(db)
	}

	sinks := notify.Multi{notify.NewLogSink(logger)}
	if cfg.RedisAddr != "" {
		pub, err := redispub.New(cfg.RedisAddr, cfg.RedisPassword, 0)
		if err != nil {
			logger.Fatal("redis publisher", zap.Error(err))
		}
		defer func() { _ = pub.Close() }()
		sinks = append(sinks, pub)
	}
	if cfg.NATSURL != "" {
		pub, err := natspub.New(cfg.NATSURL)
		if err != nil {
			logger.Fatal("nats publisher", zap.Error(err))
		}
		defer pub.Close()
		sinks = append(sinks, pub)
	}

	feeRate, err := service.ParseFeeRate(cfg.FeeRate)
	if err != nil {
		logger.Fatal("fee rate", zap.Error(err))
	}
	auctionSvc := service.NewAuctionService(store, ledgerCli, sinks, clock.System{}, service.AuctionConfig{
		FeeRate:         feeRate,
		MinBidIncrement: cfg.MinBidIncrement,
		PlatformAddress: cfg.PlatformAddress,
		DefaultDuration: cfg.DefaultAuctionDuration,
	})
	authSvc := service.NewAuthService(users, []byte(cfg.JWTKey), cfg.AccessTTL, lim)

	api := httpapi.New(authSvc, auctionSvc, []byte(cfg.JWTKey), logger)
	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.ServerAddress))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
