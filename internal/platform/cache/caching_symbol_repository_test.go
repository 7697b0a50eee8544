package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_compare/internal/feature/symbollist/domain/entity"
)

// mockSymbolRepository はテスト用のSymbolRepositoryモック実装です。
type mockSymbolRepository struct {
	listActiveFn  func(ctx context.Context) ([]entity.Symbol, error)
	searchFn      func(ctx context.Context, query string, limit int) ([]entity.Symbol, error)
	findByCodesFn func(ctx context.Context, codes []string) ([]entity.Symbol, error)
	upsertFn      func(ctx context.Context, symbols []entity.Symbol) error
}

func (m *mockSymbolRepository) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return nil, nil
}

func (m *mockSymbolRepository) Search(ctx context.Context, query string, limit int) ([]entity.Symbol, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockSymbolRepository) FindByCodes(ctx context.Context, codes []string) ([]entity.Symbol, error) {
	if m.findByCodesFn != nil {
		return m.findByCodesFn(ctx, codes)
	}
	return nil, nil
}

func (m *mockSymbolRepository) Upsert(ctx context.Context, symbols []entity.Symbol) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, symbols)
	}
	return nil
}

var aapl = []entity.Symbol{{Code: "AAPL", Name: "Apple Inc.", Currency: "USD", IsActive: true, SortKey: 1}}

// TestNewCachingSymbolRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingSymbolRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{name: "zero ttl expires at 8am", ttl: 0, expectedTTL: 0, expectedNamespace: "symbols"},
		{name: "negative ttl expires at 8am", ttl: -time.Minute, expectedTTL: 0, expectedNamespace: "symbols"},
		{name: "custom values preserved", ttl: 10 * time.Minute, namespace: "custom", expectedTTL: 10 * time.Minute, expectedNamespace: "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingSymbolRepository(nil, tt.ttl, &mockSymbolRepository{}, tt.namespace)
			assert.Equal(t, tt.expectedTTL, repo.ttl)
			assert.Equal(t, tt.expectedNamespace, repo.namespace)

			exp := repo.expiry()
			assert.Greater(t, exp, time.Duration(0))
			assert.LessOrEqual(t, exp, 24*time.Hour)
		})
	}
}

// TestCachingSymbolRepository_Search_NilRedis はRedisがnilの場合にキャッシュをバイパスすることを検証します。
func TestCachingSymbolRepository_Search_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockSymbolRepository{searchFn: func(ctx context.Context, query string, limit int) ([]entity.Symbol, error) {
		return aapl, nil
	}}
	repo := NewCachingSymbolRepository(nil, 5*time.Minute, inner, "symbols")

	got, err := repo.Search(context.Background(), "AA", 20)
	require.NoError(t, err)
	assert.Equal(t, aapl, got)
}

// TestCachingSymbolRepository_Search_CacheHit はキャッシュヒット時に内部リポジトリを呼ばないことを検証します。
func TestCachingSymbolRepository_Search_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, _ := json.Marshal(aapl)
	mock.ExpectGet("symbols:search:aa:20").SetVal(string(cached))

	inner := &mockSymbolRepository{searchFn: func(ctx context.Context, query string, limit int) ([]entity.Symbol, error) {
		t.Error("inner repository should not be called on cache hit")
		return nil, nil
	}}

	repo := NewCachingSymbolRepository(rdb, 5*time.Minute, inner, "symbols")
	got, err := repo.Search(context.Background(), "AA", 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "AAPL", got[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingSymbolRepository_Search_CacheMiss はキャッシュミス時にDBから取得してキャッシュに保存することを検証します。
func TestCachingSymbolRepository_Search_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected, _ := json.Marshal(aapl)
	mock.ExpectGet("symbols:search:usd_jpy:5").RedisNil()
	mock.ExpectSet("symbols:search:usd_jpy:5", expected, 5*time.Minute).SetVal("OK")

	inner := &mockSymbolRepository{searchFn: func(ctx context.Context, query string, limit int) ([]entity.Symbol, error) {
		assert.Equal(t, "USD JPY", query, "inner receives the original query")
		return aapl, nil
	}}

	repo := NewCachingSymbolRepository(rdb, 5*time.Minute, inner, "symbols")
	got, err := repo.Search(context.Background(), "USD JPY", 5)
	require.NoError(t, err)
	assert.Equal(t, aapl, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingSymbolRepository_ListActive_CorruptedCache は破損したキャッシュを削除してDBにフォールバックすることを検証します。
func TestCachingSymbolRepository_ListActive_CorruptedCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected, _ := json.Marshal(aapl)
	mock.ExpectGet("symbols:active").SetVal("invalid json")
	mock.ExpectDel("symbols:active").SetVal(1)
	mock.ExpectSet("symbols:active", expected, 5*time.Minute).SetVal("OK")

	inner := &mockSymbolRepository{listActiveFn: func(ctx context.Context) ([]entity.Symbol, error) {
		return aapl, nil
	}}

	repo := NewCachingSymbolRepository(rdb, 5*time.Minute, inner, "symbols")
	got, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, aapl, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingSymbolRepository_ListActive_InnerError は内部リポジトリのエラーが伝播され、キャッシュされないことを検証します。
func TestCachingSymbolRepository_ListActive_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedErr := errors.New("database error")
	mock.ExpectGet("symbols:active").RedisNil()

	inner := &mockSymbolRepository{listActiveFn: func(ctx context.Context) ([]entity.Symbol, error) {
		return nil, expectedErr
	}}

	repo := NewCachingSymbolRepository(rdb, 5*time.Minute, inner, "symbols")
	_, err := repo.ListActive(context.Background())
	assert.ErrorIs(t, err, expectedErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingSymbolRepository_FindByCodes_NotCached はFindByCodesがRedisを経由しないことを検証します。
func TestCachingSymbolRepository_FindByCodes_NotCached(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	inner := &mockSymbolRepository{findByCodesFn: func(ctx context.Context, codes []string) ([]entity.Symbol, error) {
		return aapl, nil
	}}

	repo := NewCachingSymbolRepository(rdb, 5*time.Minute, inner, "symbols")
	got, err := repo.FindByCodes(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	assert.Equal(t, aapl, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingSymbolRepository_Upsert_Invalidation はUpsert後に名前空間内のキャッシュが無効化されることを検証します。
func TestCachingSymbolRepository_Upsert_Invalidation(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "symbols:*", 200).SetVal([]string{"symbols:active", "symbols:search:aa:20"}, 0)
	mock.ExpectDel("symbols:active", "symbols:search:aa:20").SetVal(2)

	innerCalled := false
	inner := &mockSymbolRepository{upsertFn: func(ctx context.Context, symbols []entity.Symbol) error {
		innerCalled = true
		return nil
	}}

	repo := NewCachingSymbolRepository(rdb, 5*time.Minute, inner, "symbols")
	require.NoError(t, repo.Upsert(context.Background(), aapl))
	assert.True(t, innerCalled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingSymbolRepository_Upsert_InnerError は内部リポジトリのエラー時にキャッシュを触らないことを検証します。
func TestCachingSymbolRepository_Upsert_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedErr := errors.New("upsert error")
	inner := &mockSymbolRepository{upsertFn: func(ctx context.Context, symbols []entity.Symbol) error {
		return expectedErr
	}}

	repo := NewCachingSymbolRepository(rdb, 5*time.Minute, inner, "symbols")
	assert.ErrorIs(t, repo.Upsert(context.Background(), aapl), expectedErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSafe はsafe関数がRedisキーで問題となる文字を正しくエスケープすることを検証します。
func TestSafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"BRK A", "BRK_A"},
		{"key:value", "key_value"},
		{"a*", "a_"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, safe(tt.input))
		})
	}
}
