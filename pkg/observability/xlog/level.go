// level.go 日志级别定义与解析
package xlog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level 日志级别，底层复用 slog.Level 的数值语义
type Level = slog.Level

// 级别常量
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// ParseLevel 解析级别字符串
//
// 支持大小写不敏感的 debug/info/warn/warning/error。
// 解析失败返回 [ErrInvalidLevel] 包装错误和 LevelInfo 兜底值。
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// MustParseLevel 解析级别字符串，失败时 panic
// 仅用于初始化阶段的常量级别
func MustParseLevel(s string) Level {
	l, err := ParseLevel(s)
	if err != nil {
		panic(err)
	}
	return l
}
