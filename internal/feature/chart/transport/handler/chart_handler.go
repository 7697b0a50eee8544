// Package handler はchartフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"stock_compare/internal/feature/chart/domain/entity"
	"stock_compare/internal/feature/chart/renderer"
	"stock_compare/internal/feature/chart/session"
	"stock_compare/internal/feature/chart/transport/http/dto"
	"stock_compare/internal/feature/chart/usecase"
)

const (
	// DefaultViewportHeight はクライアントが高さを送らなかった場合の値です。
	DefaultViewportHeight = 800
	// MaxMessageBytes はクライアントから受け付ける1メッセージの上限です。
	MaxMessageBytes = 16 << 10
)

// ChartUsecase はチャート用データセット構築のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ChartUsecase interface {
	BuildDatasets(ctx context.Context, sel usecase.Selection) (usecase.Datasets, error)
}

// ChartHandler はチャートのHTTP/WebSocketリクエストを処理します。
type ChartHandler struct {
	uc       ChartUsecase
	cfg      renderer.Config
	upgrader websocket.Upgrader
}

// NewChartHandler は新しいChartHandlerを生成します。
// allowOrigin が nil の場合は同一オリジンのみWebSocket接続を受け付けます。
func NewChartHandler(uc ChartUsecase, cfg renderer.Config, allowOrigin func(origin string) bool) *ChartHandler {
	h := &ChartHandler{uc: uc, cfg: cfg}
	if allowOrigin != nil {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			return allowOrigin(r.Header.Get("Origin"))
		}
	}
	return h
}

// GetDatasetsHandler は選択状態から正規化済みデータセットをJSONで返します。
//
// エンドポイント例:
// GET /chart/datasets?symbols=AAPL,USDJPY=X&start=2024-01-02&end=2024-03-29&passthrough=USDJPY=X
func (h *ChartHandler) GetDatasetsHandler(c *gin.Context) {
	window, err := entity.ParseDateWindow(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sel := usecase.Selection{Symbols: splitList(c.Query("symbols")), Window: window}
	// passthrough が未指定なら銘柄マスタの設定に従う。空文字は「なし」を明示する
	if v, ok := c.GetQuery("passthrough"); ok {
		sel.Passthrough = splitList(v)
	}

	ds, err := h.uc.BuildDatasets(c.Request.Context(), sel)
	if err != nil {
		status := http.StatusBadGateway
		if isInputError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.toResponse(ds))
}

// ServeWS はWebSocketに昇格し、接続が閉じるまでチャートセッションを実行します。
// セッションはリクエストのコンテキストが終わると閉じます（サーバーのシャットダウンを含む）。
//
// エンドポイント例:
// GET /chart/ws?viewportHeight=900&dark=true
func (h *ChartHandler) ServeWS(c *gin.Context) {
	height, err := strconv.Atoi(c.DefaultQuery("viewportHeight", strconv.Itoa(DefaultViewportHeight)))
	if err != nil || height <= 0 {
		height = DefaultViewportHeight
	}
	dark, _ := strconv.ParseBool(c.DefaultQuery("dark", "false"))

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade がエラーレスポンスを書き込み済み
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(MaxMessageBytes)

	s := session.New(conn, h.uc, session.Options{ViewportHeight: height, Dark: dark, Renderer: h.cfg})
	slog.Info("chart session opened", "remote", c.ClientIP(), "viewportHeight", height, "dark", dark)
	if err := s.Run(c.Request.Context()); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("chart session ended with error", "remote", c.ClientIP(), "error", err)
		return
	}
	slog.Info("chart session closed", "remote", c.ClientIP())
}

func (h *ChartHandler) toResponse(ds usecase.Datasets) dto.DatasetsResponse {
	out := dto.DatasetsResponse{
		Empty:  ds.Empty(),
		Window: dto.WindowResponse{Start: ds.Window.Start.String(), End: ds.Window.End.String()},
		Series: make([]dto.SeriesResponse, 0, len(ds.Series)),
	}
	if out.Empty {
		out.Message = h.cfg.EmptyMessage
		if out.Message == "" {
			out.Message = renderer.DefaultEmptyMessage
		}
	}
	for _, s := range ds.Series {
		sr := dto.SeriesResponse{
			Symbol:      s.Symbol,
			Passthrough: s.Passthrough,
			Unit:        s.Unit,
			Baseline:    s.Baseline,
			Points:      make([]dto.PointResponse, 0, len(s.Points)),
		}
		for _, p := range s.Points {
			sr.Points = append(sr.Points, dto.PointResponse{
				Date:  p.Date.String(),
				Ts:    p.Timestamp.UnixMilli(),
				Value: p.Value,
				Raw:   p.RawValue,
			})
		}
		out.Series = append(out.Series, sr)
	}
	return out
}

// isInputError はリクエストの形が不正なことを示すエラーかを判定します。
func isInputError(err error) bool {
	return errors.Is(err, entity.ErrInvalidWindow) ||
		errors.Is(err, usecase.ErrTooManySymbols) ||
		errors.Is(err, usecase.ErrShapeMismatch) ||
		errors.Is(err, usecase.ErrMalformedDate) ||
		errors.Is(err, usecase.ErrDuplicateDate)
}

// splitList はカンマ区切りの値を分割し、空白と空要素を取り除きます。
func splitList(v string) []string {
	out := []string{}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
