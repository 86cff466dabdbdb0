package xlog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/logkit/pkg/observability/xlog"
)

// readOTLPLines 读取并解析 OTLP 日志文件的全部行
func readOTLPLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "每行应为合法 JSON: %s", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestSetupEmptyName(t *testing.T) {
	l, err := xlog.Setup("", xlog.Config{})
	assert.ErrorIs(t, err, xlog.ErrEmptyName)
	assert.Nil(t, l)
}

func TestSetupIdempotent(t *testing.T) {
	restore := xlog.SetConsoleWriterForTest(&bytes.Buffer{})
	defer restore()
	t.Cleanup(func() { _ = xlog.Shutdown() })

	dir := t.TempDir()
	first, err := xlog.Setup("idempotent", xlog.Config{
		FilePath: filepath.Join(dir, "app.log"),
	})
	require.NoError(t, err)

	// 同名二次调用返回同一实例，不同配置被忽略
	second, err := xlog.Setup("idempotent", xlog.Config{
		FilePath: filepath.Join(dir, "other.log"),
		Format:   xlog.FormatText,
	})
	require.NoError(t, err)
	assert.Same(t, first, second)

	// 两次调用合计只打开了首个文件
	_, err = os.Stat(filepath.Join(dir, "app.log"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "other.log"))
	assert.True(t, os.IsNotExist(err), "二次调用的配置不应生效")
}

func TestSetupDistinctNames(t *testing.T) {
	restore := xlog.SetConsoleWriterForTest(&bytes.Buffer{})
	defer restore()
	t.Cleanup(func() { _ = xlog.Shutdown() })

	a, err := xlog.Setup("svc-a", xlog.Config{})
	require.NoError(t, err)
	b, err := xlog.Setup("svc-b", xlog.Config{})
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestSetupWritesOTLPFile(t *testing.T) {
	restore := xlog.SetConsoleWriterForTest(&bytes.Buffer{})
	defer restore()
	t.Cleanup(func() { _ = xlog.Shutdown() })

	path := filepath.Join(t.TempDir(), "svc.log")
	logger, err := xlog.Setup("otlp-file", xlog.Config{
		FilePath:       path,
		ServiceName:    "orders",
		Environment:    "staging",
		ServiceVersion: "2.0.0",
	})
	require.NoError(t, err)

	logger.Info(context.Background(), "order created",
		xlog.Extra(map[string]any{
			"message":  "raw body",
			"order_id": "ord-1",
		})...)

	entries := readOTLPLines(t, path)
	require.Len(t, entries, 1)
	entry := entries[0]

	assert.Equal(t, "order created", entry["body"])
	res := entry["resource"].(map[string]any)
	assert.Equal(t, "orders", res["service.name"])
	assert.Equal(t, "staging", res["deployment.environment"])

	attrs := entry["attributes"].(map[string]any)
	assert.Equal(t, "raw body", attrs["log_message"])
	assert.Equal(t, "ord-1", attrs["order_id"])
	assert.NotContains(t, attrs, "message")
}

func TestSetupSanitizeAppliedOncePerLogger(t *testing.T) {
	restore := xlog.SetConsoleWriterForTest(&bytes.Buffer{})
	defer restore()
	t.Cleanup(func() { _ = xlog.Shutdown() })

	path := filepath.Join(t.TempDir(), "once.log")
	first, err := xlog.Setup("sanitize-once", xlog.Config{FilePath: path})
	require.NoError(t, err)
	second, err := xlog.Setup("sanitize-once", xlog.Config{FilePath: path})
	require.NoError(t, err)

	ctx := context.Background()
	first.Info(ctx, "one", slog.String("message", "a"))
	second.Info(ctx, "two", slog.String("message", "b"))

	entries := readOTLPLines(t, path)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		attrs := entry["attributes"].(map[string]any)
		// 改写恰好一次：log_message 存在，二次改写产物不存在
		_, hasRenamed := attrs["log_message"]
		assert.True(t, hasRenamed)
		assert.NotContains(t, attrs, "message")
		assert.NotContains(t, attrs, "log_log_message")
	}
}

func TestSetupConsoleAndFileLevels(t *testing.T) {
	var console bytes.Buffer
	restore := xlog.SetConsoleWriterForTest(&console)
	defer restore()
	t.Cleanup(func() { _ = xlog.Shutdown() })

	path := filepath.Join(t.TempDir(), "levels.log")
	logger, err := xlog.Setup("levels", xlog.Config{
		FilePath:     path,
		ConsoleLevel: xlog.LevelWarn,
		FileLevel:    xlog.LevelDebug,
	})
	require.NoError(t, err)

	ctx := context.Background()
	logger.Debug(ctx, "file only")
	logger.Warn(ctx, "both targets")

	entries := readOTLPLines(t, path)
	require.Len(t, entries, 2, "文件侧 Debug 级别应收到两条")

	out := console.String()
	assert.NotContains(t, out, "file only")
	assert.Contains(t, out, "both targets")
}

func TestSetupSetLevelAdjustsAllTargets(t *testing.T) {
	var console bytes.Buffer
	restore := xlog.SetConsoleWriterForTest(&console)
	defer restore()
	t.Cleanup(func() { _ = xlog.Shutdown() })

	path := filepath.Join(t.TempDir(), "dyn.log")
	logger, err := xlog.Setup("dyn-level", xlog.Config{
		FilePath:     path,
		ConsoleLevel: xlog.LevelInfo,
		FileLevel:    xlog.LevelInfo,
	})
	require.NoError(t, err)

	ctx := context.Background()
	logger.Debug(ctx, "dropped everywhere")

	logger.SetLevel(xlog.LevelDebug)
	logger.Debug(ctx, "now visible")

	entries := readOTLPLines(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "now visible", entries[0]["body"])
	assert.Contains(t, console.String(), "now visible")
}

func TestSetupTextFormat(t *testing.T) {
	restore := xlog.SetConsoleWriterForTest(&bytes.Buffer{})
	defer restore()
	t.Cleanup(func() { _ = xlog.Shutdown() })

	path := filepath.Join(t.TempDir(), "text.log")
	logger, err := xlog.Setup("text-format", xlog.Config{
		FilePath: path,
		Format:   xlog.FormatText,
	})
	require.NoError(t, err)

	logger.Info(context.Background(), "plain line")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=\"plain line\"")
}

func TestSetupInvalidFormat(t *testing.T) {
	restore := xlog.SetConsoleWriterForTest(&bytes.Buffer{})
	defer restore()
	t.Cleanup(func() { _ = xlog.Shutdown() })

	_, err := xlog.Setup("bad-format", xlog.Config{
		FilePath: filepath.Join(t.TempDir(), "bad.log"),
		Format:   "xml",
	})
	assert.ErrorIs(t, err, xlog.ErrInvalidFormat)
}

func TestShutdownClearsRegistry(t *testing.T) {
	restore := xlog.SetConsoleWriterForTest(&bytes.Buffer{})
	defer restore()

	path := filepath.Join(t.TempDir(), "cycle.log")
	first, err := xlog.Setup("cycle", xlog.Config{FilePath: path})
	require.NoError(t, err)

	require.NoError(t, xlog.Shutdown())

	// Shutdown 后同名重建得到新实例
	second, err := xlog.Setup("cycle", xlog.Config{FilePath: path})
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	require.NoError(t, xlog.Shutdown())
}
