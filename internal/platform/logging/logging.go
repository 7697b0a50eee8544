// Package logging はプロセス全体のslogロガーを設定します。
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel は LOG_LEVEL の値をslogのレベルに変換します。未知の値は Info です。
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewHandler は stdout（と filename があればローテーションするファイル）に出力するハンドラーを返します。
// 返される io.Closer はファイル出力を閉じます。ファイル出力がない場合は nil です。
func NewHandler(stdout io.Writer, level, filename string) (slog.Handler, io.Closer, error) {
	w := stdout
	var closer io.Closer
	if filename != "" {
		if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
			return nil, nil, err
		}
		logWriter := &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    25,
			MaxBackups: 10,
			MaxAge:     14,
			Compress:   true,
		}
		w = io.MultiWriter(stdout, logWriter)
		closer = logWriter
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return h, closer, nil
}

// Setup はデフォルトロガーを差し替えます。
func Setup(level, filename string) (io.Closer, error) {
	h, closer, err := NewHandler(os.Stdout, level, filename)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(h))
	return closer, nil
}
