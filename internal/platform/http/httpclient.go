// Package http は上流プロバイダー呼び出し用のHTTPクライアントを提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

// ClientOptions は上流APIクライアントの設定です。
type ClientOptions struct {
	Timeout time.Duration // リクエスト全体のタイムアウト
	// MaxConnsPerHost は同一ホストへの同時接続数の上限です。
	// 銘柄ごとの並列取得数に合わせます。0 は無制限です。
	MaxConnsPerHost int
	UserAgent       string // 空でなければ全リクエストに付与
}

// NewHTTPClient は外部API呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト（デフォルトより短い）
//   - MaxIdleConnsPerHost: 並列取得数と同じだけアイドル接続を残す
//   - TLSHandshakeTimeout: HTTPSハンドシェイクの最大時間
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にカスタムクライアントを使用すること
func NewHTTPClient(opts ClientOptions) *http.Client {
	idlePerHost := opts.MaxConnsPerHost
	if idlePerHost <= 0 {
		idlePerHost = http.DefaultMaxIdleConnsPerHost
	}
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: idlePerHost,
		MaxConnsPerHost:     opts.MaxConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	var rt http.RoundTripper = t
	if opts.UserAgent != "" {
		rt = &userAgentTransport{next: t, userAgent: opts.UserAgent}
	}
	return &http.Client{Timeout: opts.Timeout, Transport: rt}
}

type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (u *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", u.userAgent)
	return u.next.RoundTrip(r)
}
