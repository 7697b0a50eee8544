// Package db はシンボルカタログ用のgorm接続を提供します。
package db

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stock_compare/internal/feature/symbollist/domain/entity"
)

const (
	// DefaultSQLitePath はホスト未設定時に使用するSQLiteファイルです。
	DefaultSQLitePath = "./stock_compare.db"
	// DefaultConnectTimeout は接続リトライを諦めるまでの時間です。
	DefaultConnectTimeout = 60 * time.Second

	retryInterval = 3 * time.Second
)

// Config はデータベース接続設定を保持します。
type Config struct {
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	InstanceName string // Cloud SQL の接続名（project:region:instance）
	SSLMode      string
	SQLitePath   string
}

// Opener はDSNからgorm接続を開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	return Config{
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
		SSLMode:      os.Getenv("DB_SSLMODE"),
		SQLitePath:   os.Getenv("SQLITE_PATH"),
	}
}

// UsePostgres はPostgreSQLに接続すべき設定かを返します。
// ホストもCloud SQLインスタンスも無い場合はSQLiteを使用します。
func (c Config) UsePostgres() bool {
	return c.Host != "" || c.InstanceName != ""
}

// BuildDSN はPostgreSQL用のkeyword/value形式DSNを生成します。
// InstanceName が設定されている場合はCloud SQLのUnixソケットを優先します。
func BuildDSN(cfg Config) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	if cfg.InstanceName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.InstanceName, cfg.User, cfg.Password, cfg.Name, sslmode)
	}
	port := cfg.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, port, cfg.User, cfg.Password, cfg.Name, sslmode)
}

// ConnectWithRetry は timeout に達するまで一定間隔で接続を再試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err)
		time.Sleep(min(retryInterval, remaining))
	}
}

// Open は設定に応じてPostgreSQLまたはSQLiteに接続します。
func Open(cfg Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	if cfg.UsePostgres() {
		open := func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gcfg)
		}
		return ConnectWithRetry(BuildDSN(cfg), DefaultConnectTimeout, open)
	}

	path := cfg.SQLitePath
	if path == "" {
		path = DefaultSQLitePath
	}
	slog.Info("using sqlite", "path", path)
	db, err := gorm.Open(sqlite.Open(path), gcfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return db, nil
}

// Migrate はカタログのテーブルを作成・更新します。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entity.Symbol{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
