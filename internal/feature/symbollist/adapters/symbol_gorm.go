// Package adapters はsymbollistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_compare/internal/feature/symbollist/domain/entity"
	"stock_compare/internal/feature/symbollist/usecase"
)

// symbolGorm はSymbolRepositoryインターフェースのgorm実装です。SQLiteとPostgreSQLの両方で動作します。
type symbolGorm struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolGorm)(nil)

// NewSymbolRepository は指定されたDB接続でsymbolGormリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db}
}

// ListActive はsort_key順にすべてのアクティブな銘柄を返します。
func (r *symbolGorm) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	var symbols []entity.Symbol
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Order("code ASC").
		Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// Search はコードの前方一致または名前の部分一致（大文字小文字を区別しない）でアクティブな銘柄を検索します。
func (r *symbolGorm) Search(ctx context.Context, query string, limit int) ([]entity.Symbol, error) {
	q := escapeLike(strings.ToLower(query))
	var symbols []entity.Symbol
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where(`(LOWER(code) LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\')`, q+"%", "%"+q+"%").
		Order("sort_key ASC").
		Order("code ASC").
		Limit(limit).
		Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// FindByCodes は指定されたコードの銘柄を返します。未登録のコードは無視します。
func (r *symbolGorm) FindByCodes(ctx context.Context, codes []string) ([]entity.Symbol, error) {
	if len(codes) == 0 {
		return []entity.Symbol{}, nil
	}
	var symbols []entity.Symbol
	if err := r.db.WithContext(ctx).
		Where("code IN ?", codes).
		Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// Upsert はコードをキーに銘柄を挿入または更新します。
func (r *symbolGorm) Upsert(ctx context.Context, symbols []entity.Symbol) error {
	if len(symbols) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "market", "currency", "passthrough", "is_active", "sort_key", "updated_at"}),
		}).
		Create(&symbols).Error
}

// escapeLike はLIKEパターンのワイルドカードをエスケープします。
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
