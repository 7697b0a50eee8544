package di

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	chartusecase "stock_compare/internal/feature/chart/usecase"
	symboladapters "stock_compare/internal/feature/symbollist/adapters"
	symbolusecase "stock_compare/internal/feature/symbollist/usecase"
	"stock_compare/internal/platform/cache"
)

// NewSymbolRepository creates the gorm-backed catalog repository.
// If Redis is available, reads are served through the Redis cache.
func NewSymbolRepository(db *gorm.DB, rdb *redis.Client) symbolusecase.SymbolRepository {
	repo := symboladapters.NewSymbolRepository(db)
	if rdb == nil {
		return repo
	}
	// TTL 0 は毎回「次の朝8時まで」を計算する
	return cache.NewCachingSymbolRepository(rdb, time.Duration(0), repo, "symbols")
}

// symbolLookup は SymbolUsecase を chart の SymbolCatalog に変換するアダプターです。
type symbolLookup struct {
	uc *symbolusecase.SymbolUsecase
}

var _ chartusecase.SymbolCatalog = (*symbolLookup)(nil)

// NewSymbolCatalog exposes the symbol catalog to the chart usecase.
func NewSymbolCatalog(uc *symbolusecase.SymbolUsecase) chartusecase.SymbolCatalog {
	return &symbolLookup{uc: uc}
}

func (l *symbolLookup) Lookup(ctx context.Context, codes []string) (map[string]chartusecase.SymbolInfo, error) {
	found, err := l.uc.Lookup(ctx, codes)
	if err != nil {
		return nil, err
	}
	out := make(map[string]chartusecase.SymbolInfo, len(found))
	for code, s := range found {
		out[code] = chartusecase.SymbolInfo{Passthrough: s.Passthrough, Currency: s.Currency}
	}
	return out, nil
}
