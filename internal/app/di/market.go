// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"
	"log/slog"

	"stock_compare/internal/feature/prices/usecase"
	"stock_compare/internal/platform/externalapi/twelvedata"
	"stock_compare/internal/platform/externalapi/yahoo"
	infrahttp "stock_compare/internal/platform/http"
	"stock_compare/internal/shared/ratelimiter"
)

const (
	ProviderTwelveData = "twelvedata"
	ProviderYahoo      = "yahoo"
)

// UserAgent is sent to upstream providers that do not require a specific agent.
const UserAgent = "stock_compare/1.0"

// NewMarket creates the upstream price provider selected by name, with its HTTP client.
// maxConns bounds concurrent connections to the provider host.
func NewMarket(provider string, maxConns int) (usecase.MarketRepository, error) {
	switch provider {
	case "", ProviderTwelveData:
		cfg := twelvedata.LoadConfig()
		if cfg.TwelveDataAPIKey == "" {
			slog.Warn("TWELVE_DATA_API_KEY is not set; upstream requests will be rejected")
		}
		httpClient := infrahttp.NewHTTPClient(infrahttp.ClientOptions{
			Timeout:         cfg.Timeout,
			MaxConnsPerHost: maxConns,
			UserAgent:       UserAgent,
		})
		return twelvedata.NewTwelveDataMarket(cfg, httpClient), nil
	case ProviderYahoo:
		cfg := yahoo.LoadConfig()
		httpClient := infrahttp.NewHTTPClient(infrahttp.ClientOptions{
			Timeout:         cfg.Timeout,
			MaxConnsPerHost: maxConns,
		})
		return yahoo.NewYahooMarket(cfg, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown price provider %q", provider)
	}
}

// NewFetchUsecase creates the Series Fetcher with a shared per-minute rate limiter.
func NewFetchUsecase(market usecase.MarketRepository, concurrency, ratePerMinute int) *usecase.FetchUsecase {
	return usecase.NewFetchUsecase(market, ratelimiter.NewPerMinute(ratePerMinute), concurrency)
}
