// Package usecase implements the business logic for symbol-related operations.
package usecase

import (
	"context"
	"strings"

	"stock_compare/internal/feature/symbollist/domain/entity"
)

const (
	// DefaultSearchLimit is used when the caller does not ask for a limit.
	DefaultSearchLimit = 20
	// MaxSearchLimit caps the number of search results.
	MaxSearchLimit = 100
)

// SymbolRepository abstracts the persistence layer for symbol (ticker) data.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	ListActive(ctx context.Context) ([]entity.Symbol, error)
	Search(ctx context.Context, query string, limit int) ([]entity.Symbol, error)
	FindByCodes(ctx context.Context, codes []string) ([]entity.Symbol, error)
	Upsert(ctx context.Context, symbols []entity.Symbol) error
}

// SymbolUsecase provides business logic for symbol operations.
type SymbolUsecase struct {
	repo SymbolRepository
}

// NewSymbolUsecase creates a new SymbolUsecase with the given repository.
func NewSymbolUsecase(r SymbolRepository) *SymbolUsecase {
	return &SymbolUsecase{repo: r}
}

// ListActiveSymbols returns all active symbols from the repository.
func (u *SymbolUsecase) ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error) {
	return u.repo.ListActive(ctx)
}

// SearchSymbols returns active symbols whose code starts with query or whose
// name contains it. An empty query matches nothing. limit is clamped to
// [1, MaxSearchLimit]; zero or negative selects DefaultSearchLimit.
func (u *SymbolUsecase) SearchSymbols(ctx context.Context, query string, limit int) ([]entity.Symbol, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entity.Symbol{}, nil
	}
	switch {
	case limit <= 0:
		limit = DefaultSearchLimit
	case limit > MaxSearchLimit:
		limit = MaxSearchLimit
	}
	return u.repo.Search(ctx, query, limit)
}

// Lookup returns the catalog entries for codes, keyed by code. Unknown codes
// are absent from the result.
func (u *SymbolUsecase) Lookup(ctx context.Context, codes []string) (map[string]entity.Symbol, error) {
	symbols, err := u.repo.FindByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	out := make(map[string]entity.Symbol, len(symbols))
	for _, s := range symbols {
		out[s.Code] = s
	}
	return out, nil
}

// Seed inserts or updates the given symbols, keyed by code.
func (u *SymbolUsecase) Seed(ctx context.Context, symbols []entity.Symbol) error {
	return u.repo.Upsert(ctx, symbols)
}
