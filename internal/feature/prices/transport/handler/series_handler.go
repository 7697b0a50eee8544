// Package handler はpricesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"

	"stock_compare/internal/feature/prices/domain/entity"
	"stock_compare/internal/feature/prices/transport/http/dto"
	"stock_compare/internal/feature/prices/usecase"
)

// FetchUsecase は日次終値取得のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type FetchUsecase interface {
	FetchSeries(ctx context.Context, symbols []string, start, end civil.Date) ([]entity.RawSeries, error)
}

// SeriesHandler は日次終値のHTTPリクエストを処理します。
type SeriesHandler struct {
	uc FetchUsecase
}

// NewSeriesHandler は指定されたusecaseでSeriesHandlerの新しいインスタンスを生成します。
func NewSeriesHandler(uc FetchUsecase) *SeriesHandler {
	return &SeriesHandler{uc: uc}
}

// GetSeriesHandler は銘柄ごとの日次終値をリクエスト順にJSONで返します。
//
// エンドポイント例:
// GET /series?symbols=AAPL,USDJPY=X&start=2024-01-02&end=2024-03-29
func (h *SeriesHandler) GetSeriesHandler(c *gin.Context) {
	start, err := civil.ParseDate(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid start: %q", c.Query("start"))})
		return
	}
	end, err := civil.ParseDate(c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid end: %q", c.Query("end"))})
		return
	}
	if start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must not be after end"})
		return
	}

	symbols := []string{}
	for _, s := range strings.Split(c.Query("symbols"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) > usecase.MaxSymbols {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("at most %d symbols", usecase.MaxSymbols)})
		return
	}

	series, err := h.uc.FetchSeries(c.Request.Context(), symbols, start, end)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.SeriesResponse, 0, len(series))
	for _, s := range series {
		points := make([]dto.PointResponse, 0, len(s.Points))
		for _, p := range s.Points {
			points = append(points, dto.PointResponse{Date: p.Date, Price: p.Price})
		}
		out = append(out, dto.SeriesResponse{Symbol: s.Symbol, Points: points})
	}

	c.JSON(http.StatusOK, out)
}
