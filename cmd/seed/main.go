package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"stock_compare/internal/app/di"
	symbollistadapters "stock_compare/internal/feature/symbollist/adapters"
	symbollistusecase "stock_compare/internal/feature/symbollist/usecase"
	"stock_compare/internal/platform/config"
	infradb "stock_compare/internal/platform/db"
	"stock_compare/internal/platform/logging"
	infraredis "stock_compare/internal/platform/redis"
)

func main() {
	cfg := config.Load()
	file := flag.String("file", cfg.SymbolSeedFile, "symbol catalog YAML file")
	flag.Parse()

	if _, err := logging.Setup(cfg.LogLevel, ""); err != nil {
		slog.Error("failed to set up logger", "error", err)
		os.Exit(1)
	}

	symbols, err := symbollistadapters.LoadSeedFile(*file)
	if err != nil {
		slog.Error("failed to load seed file", "file", *file, "error", err)
		os.Exit(1)
	}

	db, err := infradb.Open(infradb.LoadConfigFromEnv())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if err := infradb.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// サーバーのキャッシュを無効化するためRedisが設定されていれば経由する
	rdb, err := infraredis.NewRedisClient(infraredis.LoadConfig())
	if err != nil {
		slog.Warn("Redis unavailable; cached catalog reads expire on their TTL", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	uc := symbollistusecase.NewSymbolUsecase(di.NewSymbolRepository(db, rdb))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := uc.Seed(ctx, symbols); err != nil {
		slog.Error("failed to seed symbols", "error", err)
		os.Exit(1)
	}
	slog.Info("seed ok", "file", *file, "symbols", len(symbols))
}
