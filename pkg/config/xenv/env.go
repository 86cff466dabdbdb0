package xenv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/subosito/gotenv"

	"github.com/omeyang/logkit/pkg/observability/xlog"
)

// ErrEmptyPath .env 文件路径为空
var ErrEmptyPath = errors.New("xenv: empty env file path")

// Load 加载 .env 文件到进程环境
//
// 已存在的环境变量不覆盖，适合本地开发时补充缺省值。
// 不传路径时加载当前目录的 .env。
func Load(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			return ErrEmptyPath
		}
	}
	if err := gotenv.Load(paths...); err != nil {
		return fmt.Errorf("xenv: load: %w", err)
	}
	return nil
}

// Overload 加载 .env 文件并覆盖已存在的环境变量
func Overload(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			return ErrEmptyPath
		}
	}
	if err := gotenv.OverLoad(paths...); err != nil {
		return fmt.Errorf("xenv: overload: %w", err)
	}
	return nil
}

// Get 读取环境变量，未设置或为空时返回 fallback
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Vars 返回进程环境变量快照，敏感值已替换为掩码
//
// prefixes 非空时只保留任一前缀命中的变量。键按字典序排序，输出确定。
func Vars(prefixes ...string) []slog.Attr {
	environ := os.Environ()
	attrs := make([]slog.Attr, 0, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !matchPrefix(key, prefixes) {
			continue
		}
		if xlog.IsSensitiveKey(key) {
			value = xlog.RedactedValue
		}
		attrs = append(attrs, slog.String(key, value))
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })
	return attrs
}

// LogVars 把环境变量快照记录到 logger，敏感值已脱敏
//
// 典型用法是服务启动时输出一次，便于排查环境差异。
func LogVars(ctx context.Context, logger xlog.Logger, prefixes ...string) {
	if logger == nil {
		return
	}
	attrs := Vars(prefixes...)
	logger.Info(ctx, "environment variables",
		slog.Int("count", len(attrs)),
		slog.Attr{Key: "env", Value: slog.GroupValue(attrs...)},
	)
}

// matchPrefix 判断键是否命中任一前缀，前缀列表为空时全部命中
func matchPrefix(key string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
