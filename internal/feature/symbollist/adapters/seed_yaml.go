package adapters

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"stock_compare/internal/feature/symbollist/domain/entity"
)

// seedFile は銘柄マスタのYAMLファイルの形式です。
//
//	symbols:
//	  - code: AAPL
//	    name: Apple Inc.
//	    market: NASDAQ
//	    currency: USD
//	  - code: USDJPY=X
//	    name: USD/JPY
//	    market: FX
//	    currency: JPY
//	    passthrough: true
type seedFile struct {
	Symbols []seedSymbol `yaml:"symbols"`
}

type seedSymbol struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Market      string `yaml:"market"`
	Currency    string `yaml:"currency"`
	Passthrough bool   `yaml:"passthrough"`
	Active      *bool  `yaml:"active"` // 省略時はtrue
	SortKey     *int   `yaml:"sort_key"`
}

// LoadSeedFile はYAMLファイルから銘柄マスタを読み込みます。
// sort_key が省略された銘柄にはファイル内の順序を使います。
func LoadSeedFile(path string) ([]entity.Symbol, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(b)
}

// ParseSeed はYAMLの内容を検証して銘柄に変換します。
func ParseSeed(b []byte) ([]entity.Symbol, error) {
	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Symbols))
	out := make([]entity.Symbol, 0, len(f.Symbols))
	for i, s := range f.Symbols {
		code := strings.TrimSpace(s.Code)
		if code == "" {
			return nil, fmt.Errorf("seed entry %d: code is required", i)
		}
		if _, dup := seen[code]; dup {
			return nil, fmt.Errorf("seed entry %d: duplicate code %q", i, code)
		}
		seen[code] = struct{}{}

		sym := entity.Symbol{
			Code:        code,
			Name:        strings.TrimSpace(s.Name),
			Market:      strings.TrimSpace(s.Market),
			Currency:    strings.ToUpper(strings.TrimSpace(s.Currency)),
			Passthrough: s.Passthrough,
			IsActive:    s.Active == nil || *s.Active,
			SortKey:     i + 1,
		}
		if sym.Name == "" {
			sym.Name = code
		}
		if s.SortKey != nil {
			sym.SortKey = *s.SortKey
		}
		out = append(out, sym)
	}
	return out, nil
}
