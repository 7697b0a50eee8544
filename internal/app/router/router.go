// Package router はHTTPルーティングを定義します。
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	charthandler "stock_compare/internal/feature/chart/transport/handler"
	priceshandler "stock_compare/internal/feature/prices/transport/handler"
	symbollisthandler "stock_compare/internal/feature/symbollist/transport/handler"
	"stock_compare/internal/platform/http/handler"
)

// Handlers はルーターに登録するハンドラーの集合です。
type Handlers struct {
	Health *handler.HealthHandler
	Symbol *symbollisthandler.SymbolHandler
	Series *priceshandler.SeriesHandler
	Chart  *charthandler.ChartHandler
}

// NewRouter はルーターを生成します。
// allowOrigins が空の場合はすべてのオリジンを許可します。
func NewRouter(h Handlers, allowOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(corsConfig(allowOrigins)))

	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)

	// 銘柄カタログ（検索・オートコンプリート用）
	r.GET("/symbols", h.Symbol.List)
	r.GET("/symbols/search", h.Symbol.Search)

	// 上流プロバイダーの終値をそのまま返す
	r.GET("/series", h.Series.GetSeriesHandler)

	chart := r.Group("/chart")
	{
		chart.GET("/datasets", h.Chart.GetDatasetsHandler)
		chart.GET("/ws", h.Chart.ServeWS)
	}

	return r
}

func corsConfig(allowOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(allowOrigins) == 0 || contains(allowOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowOrigins
	}
	return cfg
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
