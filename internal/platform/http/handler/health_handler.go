// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const checkTimeout = 2 * time.Second

// Check は依存先（DB・Redisなど）の疎通確認です。
type Check struct {
	Name string
	// Required が false の場合、失敗しても全体のステータスは ok のままです。
	Required bool
	Ping     func(ctx context.Context) error
}

// HealthHandler は /healthz を処理します。
type HealthHandler struct {
	checks []Check
}

// NewHealthHandler は新しいHealthHandlerを生成します。Ping が nil のチェックは無視します。
func NewHealthHandler(checks ...Check) *HealthHandler {
	h := &HealthHandler{}
	for _, c := range checks {
		if c.Ping != nil {
			h.checks = append(h.checks, c)
		}
	}
	return h
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// 必須の依存先が応答しない場合は503を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	status, results := h.run(c.Request.Context())
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}

	if c.Request.Method == http.MethodHead {
		c.Status(code)
		return
	}
	body := gin.H{"status": status}
	if len(results) > 0 {
		body["checks"] = results
	}
	c.JSON(code, body)
}

func (h *HealthHandler) run(ctx context.Context) (string, map[string]string) {
	status := "ok"
	if len(h.checks) == 0 {
		return status, nil
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	for _, chk := range h.checks {
		if err := chk.Ping(ctx); err != nil {
			results[chk.Name] = err.Error()
			if chk.Required {
				status = "unavailable"
			}
			continue
		}
		results[chk.Name] = "ok"
	}
	return status, results
}
