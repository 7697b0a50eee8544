package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stock_compare/internal/feature/symbollist/domain/entity"
)

// setupTestDB はテスト用のインメモリSQLiteデータベースを準備します。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	// インメモリDBは接続ごとに別物になるため、接続を1本に固定する
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&entity.Symbol{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

// insertSymbol はテスト用の銘柄データをデータベースに作成します。
func insertSymbol(t *testing.T, db *gorm.DB, s entity.Symbol) *entity.Symbol {
	t.Helper()
	require.NoError(t, db.Create(&s).Error, "failed to seed symbol")
	return &s
}

func codes(symbols []entity.Symbol) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, s.Code)
	}
	return out
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	insertSymbol(t, db, entity.Symbol{Code: "MSFT", Name: "Microsoft Corporation", Market: "NASDAQ", Currency: "USD", IsActive: true, SortKey: 3})
	insertSymbol(t, db, entity.Symbol{Code: "AAPL", Name: "Apple Inc.", Market: "NASDAQ", Currency: "USD", IsActive: true, SortKey: 1})
	insertSymbol(t, db, entity.Symbol{Code: "USDJPY=X", Name: "USD/JPY", Market: "FX", Currency: "JPY", Passthrough: true, IsActive: true, SortKey: 2})
	insertSymbol(t, db, entity.Symbol{Code: "7203.T", Name: "Toyota Motor", Market: "TSE", Currency: "JPY", IsActive: false, SortKey: 4})
	insertSymbol(t, db, entity.Symbol{Code: "AAL", Name: "American Airlines 100%", Market: "NASDAQ", Currency: "USD", IsActive: true, SortKey: 5})
}

// TestSymbolGorm_ListActive はアクティブな銘柄のみがsort_key順に返されることを検証します。
func TestSymbolGorm_ListActive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		setupFunc     func(t *testing.T, db *gorm.DB)
		expectedCodes []string
	}{
		{
			name:          "success: returns active symbols sorted by sort_key",
			setupFunc:     seedCatalog,
			expectedCodes: []string{"AAPL", "USDJPY=X", "MSFT", "AAL"},
		},
		{
			name:          "success: returns empty list when no symbols",
			setupFunc:     func(t *testing.T, db *gorm.DB) {},
			expectedCodes: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupTestDB(t)
			tt.setupFunc(t, db)
			repo := NewSymbolRepository(db)

			symbols, err := repo.ListActive(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCodes, codes(symbols))
		})
	}
}

// TestSymbolGorm_ListActive_FieldValues はListActiveが返す銘柄の全フィールド値が正しいことを検証します。
func TestSymbolGorm_ListActive_FieldValues(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewSymbolRepository(db)
	expected := insertSymbol(t, db, entity.Symbol{Code: "USDJPY=X", Name: "USD/JPY", Market: "FX", Currency: "JPY", Passthrough: true, IsActive: true, SortKey: 42})

	symbols, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, symbols, 1)

	s := symbols[0]
	assert.Equal(t, expected.ID, s.ID)
	assert.Equal(t, "USD/JPY", s.Name)
	assert.Equal(t, "FX", s.Market)
	assert.Equal(t, "JPY", s.Currency)
	assert.True(t, s.Passthrough)
	assert.True(t, s.IsActive)
	assert.Equal(t, 42, s.SortKey)
	assert.False(t, s.UpdatedAt.IsZero(), "UpdatedAt should be set")
}

// TestSymbolGorm_Search はコード前方一致・名前部分一致の検索を検証します。
func TestSymbolGorm_Search(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		query         string
		limit         int
		expectedCodes []string
	}{
		{name: "code prefix, case-insensitive", query: "aa", limit: 20, expectedCodes: []string{"AAPL", "AAL"}},
		{name: "name substring", query: "soft", limit: 20, expectedCodes: []string{"MSFT"}},
		{name: "code is prefix only", query: "APL", limit: 20, expectedCodes: []string{}},
		{name: "special characters", query: "usdjpy=", limit: 20, expectedCodes: []string{"USDJPY=X"}},
		{name: "inactive symbols excluded", query: "toyota", limit: 20, expectedCodes: []string{}},
		{name: "limit applied after ordering", query: "a", limit: 1, expectedCodes: []string{"AAPL"}},
		{name: "percent is literal", query: "%", limit: 20, expectedCodes: []string{"AAL"}},
		{name: "underscore is literal", query: "_", limit: 20, expectedCodes: []string{}},
	}

	db := setupTestDB(t)
	seedCatalog(t, db)
	repo := NewSymbolRepository(db)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			symbols, err := repo.Search(context.Background(), tt.query, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCodes, codes(symbols))
		})
	}
}

// TestSymbolGorm_FindByCodes は登録済みのコードだけが返されることを検証します。
func TestSymbolGorm_FindByCodes(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	seedCatalog(t, db)
	repo := NewSymbolRepository(db)

	symbols, err := repo.FindByCodes(context.Background(), []string{"USDJPY=X", "NOPE", "7203.T"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"USDJPY=X", "7203.T"}, codes(symbols), "inactive symbols still resolve")

	symbols, err = repo.FindByCodes(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

// TestSymbolGorm_Upsert はコードをキーに挿入と更新が行われることを検証します。
func TestSymbolGorm_Upsert(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewSymbolRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, []entity.Symbol{
		{Code: "AAPL", Name: "Apple", Market: "NASDAQ", Currency: "USD", IsActive: true, SortKey: 1},
		{Code: "EURUSD=X", Name: "EUR/USD", Market: "FX", Currency: "USD", IsActive: true, SortKey: 2},
	}))
	require.NoError(t, repo.Upsert(ctx, []entity.Symbol{
		{Code: "EURUSD=X", Name: "Euro / US Dollar", Market: "FX", Currency: "USD", Passthrough: true, IsActive: false, SortKey: 9},
	}))
	require.NoError(t, repo.Upsert(ctx, nil))

	var all []entity.Symbol
	require.NoError(t, db.Order("code").Find(&all).Error)
	require.Len(t, all, 2)
	assert.Equal(t, "AAPL", all[0].Code)

	eur := all[1]
	assert.Equal(t, "Euro / US Dollar", eur.Name)
	assert.True(t, eur.Passthrough)
	assert.False(t, eur.IsActive)
	assert.Equal(t, 9, eur.SortKey)
}

// TestSymbolGorm_ContextCancellation はコンテキストがキャンセルされた場合の動作を検証します。
func TestSymbolGorm_ContextCancellation(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewSymbolRepository(db)
	seedCatalog(t, db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// SQLiteはキャンセル済みコンテキストで常にエラーを返すとは限らない
	_, err := repo.ListActive(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
