package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"stock_compare/internal/app/di"
	"stock_compare/internal/app/router"
	"stock_compare/internal/feature/chart/renderer"
	charthandler "stock_compare/internal/feature/chart/transport/handler"
	chartusecase "stock_compare/internal/feature/chart/usecase"
	priceshandler "stock_compare/internal/feature/prices/transport/handler"
	symbollisthandler "stock_compare/internal/feature/symbollist/transport/handler"
	symbollistusecase "stock_compare/internal/feature/symbollist/usecase"
	"stock_compare/internal/platform/config"
	infradb "stock_compare/internal/platform/db"
	platformhandler "stock_compare/internal/platform/http/handler"
	"stock_compare/internal/platform/logging"
	infraredis "stock_compare/internal/platform/redis"
)

func main() {
	cfg := config.Load()

	logCloser, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		slog.Error("failed to set up logger", "error", err)
		os.Exit(1)
	}
	if logCloser != nil {
		defer func() { _ = logCloser.Close() }()
	}

	// db
	db, err := infradb.Open(infradb.LoadConfigFromEnv())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if err := infradb.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Redis
	var rdb *redisv9.Client
	if cfg.CatalogCacheEnabled {
		if tmp, err := infraredis.NewRedisClient(infraredis.LoadConfig()); err != nil {
			slog.Warn("Redis unavailable. Running without cache.", "error", err)
		} else if tmp != nil {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// Upstream provider
	market, err := di.NewMarket(cfg.PriceProvider, cfg.FetchConcurrency)
	if err != nil {
		slog.Error("failed to create price provider", "error", err)
		os.Exit(1)
	}

	// Usecase
	symbolUC := symbollistusecase.NewSymbolUsecase(di.NewSymbolRepository(db, rdb))
	fetchUC := di.NewFetchUsecase(market, cfg.FetchConcurrency, cfg.UpstreamRatePerMinute)
	chartUC := chartusecase.NewChartUsecase(fetchUC, di.NewSymbolCatalog(symbolUC))

	// Handler
	chartCfg := renderer.Config{HeightRatio: cfg.ChartHeightRatio}
	handlers := router.Handlers{
		Health: platformhandler.NewHealthHandler(healthChecks(db, rdb)...),
		Symbol: symbollisthandler.NewSymbolHandler(symbolUC),
		Series: priceshandler.NewSeriesHandler(fetchUC),
		Chart:  charthandler.NewChartHandler(chartUC, chartCfg, cfg.AllowOrigin),
	}

	// ルータ生成
	r := router.NewRouter(handlers, cfg.CORSAllowOrigins)

	// WebSocketのチャートセッションはハイジャック済みでShutdownが待たないため、
	// ベースコンテキストを閉じて終了させる
	baseCtx, endSessions := context.WithCancel(context.Background())
	defer endSessions()

	srv := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(endSessions)

	go func() {
		slog.Info("server listening", "addr", cfg.BindAddr, "provider", cfg.PriceProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}

// healthChecks は /healthz で確認する依存先です。Redisはキャッシュなので任意扱いです。
func healthChecks(db *gorm.DB, rdb *redisv9.Client) []platformhandler.Check {
	checks := []platformhandler.Check{{
		Name:     "db",
		Required: true,
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if rdb != nil {
		checks = append(checks, platformhandler.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	return checks
}
