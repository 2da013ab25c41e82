package log

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options 控制日志级别与可选的滚动文件输出。
type Options struct {
	Level string // debug|info|warn|error，空值为 info

	// File 非空时，日志同时写入该文件（按大小滚动）。
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// New 返回写入到 w 的 slog.Logger（默认 level=INFO）。
// 注意：stdout=数据，日志应始终写 stderr（由调用方传入）。
func New(w io.Writer, opts Options) *slog.Logger {
	if opts.File != "" {
		w = io.MultiWriter(w, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    valueOr(opts.MaxSizeMB, 16),
			MaxBackups: valueOr(opts.MaxBackups, 3),
		})
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(opts.Level)})
	return slog.New(h)
}

// ParseLevel 解析级别字符串；无法识别时回退到 INFO。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Discard 返回丢弃所有输出的 logger，供测试与未初始化路径使用。
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func valueOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
