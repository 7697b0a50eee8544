// Package ratelimiter は上流API呼び出しの頻度を制限します。
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter は interval あたり limit 回までの呼び出しを許可します。
// 複数のgoroutineから同時に使用できます。
type RateLimiter struct {
	limiter  *rate.Limiter
	limit    int
	interval time.Duration
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// limit が0以下の場合は無制限になります。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 || interval <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	every := interval / time.Duration(limit)
	return &RateLimiter{
		limiter:  rate.NewLimiter(rate.Every(every), limit),
		limit:    limit,
		interval: interval,
	}
}

// NewPerMinute は1分あたり perMinute 回のRateLimiterを生成します。
func NewPerMinute(perMinute int) *RateLimiter {
	return NewRateLimiter(perMinute, time.Minute)
}

// Wait はトークンが得られるまで待機します。ctx がキャンセルされた場合はエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	r := rl.limiter.Reserve()
	if !r.OK() {
		return rl.limiter.Wait(ctx)
	}
	delay := r.Delay()
	if delay == 0 {
		return nil
	}

	slog.Debug("[RATE LIMIT] waiting", "limit", rl.limit, "interval", rl.interval, "delay", delay)
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}
