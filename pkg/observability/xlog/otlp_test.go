package xlog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/logkit/pkg/observability/xlog"
)

// decodeOTLPLine 解析单行 OTLP JSON 输出
func decodeOTLPLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line, "应有输出")
	require.NotContains(t, line, "\n", "单条记录应为一行")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	return entry
}

func TestNewOTLPHandlerNilWriter(t *testing.T) {
	t.Parallel()

	h, err := xlog.NewOTLPHandler(nil, nil)
	assert.ErrorIs(t, err, xlog.ErrNilOutput)
	assert.Nil(t, h)
}

func TestOTLPHandlerEnvelope(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := xlog.NewOTLPHandler(&buf, &xlog.OTLPHandlerOptions{
		ServiceName:    "payments",
		Environment:    "production",
		ServiceVersion: "1.4.2",
	})
	require.NoError(t, err)

	logger := slog.New(h)
	logger.LogAttrs(context.Background(), slog.LevelWarn, "quota low",
		slog.Int("remaining", 3),
	)

	entry := decodeOTLPLine(t, &buf)

	assert.Equal(t, "quota low", entry["body"])
	assert.Equal(t, "WARN", entry["severityText"])
	assert.Equal(t, float64(13), entry["severityNumber"])

	// 时间戳为 RFC3339Nano UTC
	ts, ok := entry["timestamp"].(string)
	require.True(t, ok)
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, parsed.Location())

	// 无 span 时追踪字段为全零占位
	assert.Equal(t, "00000000000000000000000000000000", entry["traceId"])
	assert.Equal(t, "0000000000000000", entry["spanId"])

	res, ok := entry["resource"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "payments", res["service.name"])
	assert.Equal(t, "production", res["deployment.environment"])
	assert.Equal(t, "1.4.2", res["service.version"])
	assert.NotEmpty(t, res["service.instance.id"], "实例 ID 应自动生成")

	attrs, ok := entry["attributes"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), attrs["remaining"])
}

func TestOTLPHandlerExcludesStandardAttrNames(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := xlog.NewOTLPHandler(&buf, nil)
	require.NoError(t, err)

	logger := slog.New(h)
	logger.LogAttrs(context.Background(), slog.LevelInfo, "hello",
		slog.String("message", "should vanish"),
		slog.String("asctime", "should vanish"),
		slog.String("timestamp", "should vanish"),
		slog.String("body", "should vanish"),
		slog.String("kept", "ok"),
	)

	entry := decodeOTLPLine(t, &buf)
	attrs, ok := entry["attributes"].(map[string]any)
	require.True(t, ok)

	assert.NotContains(t, attrs, "message")
	assert.NotContains(t, attrs, "asctime")
	assert.NotContains(t, attrs, "timestamp")
	assert.NotContains(t, attrs, "body")
	assert.Equal(t, "ok", attrs["kept"])

	// 信封字段不受属性影响
	assert.Equal(t, "hello", entry["body"])
}

func TestOTLPHandlerTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := xlog.NewOTLPHandler(&buf, nil)
	require.NoError(t, err)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(),
		trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		}))

	slog.New(h).LogAttrs(ctx, slog.LevelInfo, "in span")

	entry := decodeOTLPLine(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["traceId"])
	assert.Equal(t, "00f067aa0ba902b7", entry["spanId"])
}

func TestOTLPHandlerSpecialCharacters(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := xlog.NewOTLPHandler(&buf, nil)
	require.NoError(t, err)

	msg := "用户登录 \"quoted\" <tag> \n newline \t tab ☃"
	slog.New(h).LogAttrs(context.Background(), slog.LevelInfo, msg,
		slog.String("路径", "/命名空间/foo"),
	)

	entry := decodeOTLPLine(t, &buf)
	assert.Equal(t, msg, entry["body"], "特殊字符经 JSON 往返后应无损")
	attrs := entry["attributes"].(map[string]any)
	assert.Equal(t, "/命名空间/foo", attrs["路径"])
}

func TestOTLPHandlerLargeAttributeSet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := xlog.NewOTLPHandler(&buf, nil)
	require.NoError(t, err)

	attrs := make([]slog.Attr, 0, 100)
	for i := 0; i < 100; i++ {
		attrs = append(attrs, slog.Int(fmt.Sprintf("key_%03d", i), i))
	}
	slog.New(h).LogAttrs(context.Background(), slog.LevelInfo, "big", attrs...)

	entry := decodeOTLPLine(t, &buf)
	got := entry["attributes"].(map[string]any)
	require.Len(t, got, 100)
	assert.Equal(t, float64(0), got["key_000"])
	assert.Equal(t, float64(99), got["key_099"])
}

func TestOTLPHandlerValueKinds(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := xlog.NewOTLPHandler(&buf, nil)
	require.NoError(t, err)

	when := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	slog.New(h).LogAttrs(context.Background(), slog.LevelInfo, "kinds",
		slog.String("s", "v"),
		slog.Int64("i", -7),
		slog.Uint64("u", 7),
		slog.Float64("f", 1.5),
		slog.Bool("b", true),
		slog.Duration("d", 90*time.Second),
		slog.Time("t", when),
		slog.Any("raw", map[string]int{"n": 1}),
		slog.Any("unserializable", func() {}),
	)

	entry := decodeOTLPLine(t, &buf)
	attrs := entry["attributes"].(map[string]any)

	assert.Equal(t, "v", attrs["s"])
	assert.Equal(t, float64(-7), attrs["i"])
	assert.Equal(t, float64(7), attrs["u"])
	assert.Equal(t, 1.5, attrs["f"])
	assert.Equal(t, true, attrs["b"])
	assert.Equal(t, "1m30s", attrs["d"])
	assert.Equal(t, "2026-03-01T12:00:00Z", attrs["t"])
	assert.Equal(t, map[string]any{"n": float64(1)}, attrs["raw"])
	// 不可序列化值降级为字符串表示，整行仍是合法 JSON
	assert.IsType(t, "", attrs["unserializable"])
}

func TestOTLPHandlerGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := xlog.NewOTLPHandler(&buf, nil)
	require.NoError(t, err)

	logger := slog.New(h).WithGroup("request").With(slog.String("method", "GET"))
	logger.LogAttrs(context.Background(), slog.LevelInfo, "grouped",
		slog.String("path", "/health"),
	)

	entry := decodeOTLPLine(t, &buf)
	attrs := entry["attributes"].(map[string]any)
	req, ok := attrs["request"].(map[string]any)
	require.True(t, ok, "分组属性应嵌套在分组名下")
	assert.Equal(t, "GET", req["method"])
	assert.Equal(t, "/health", req["path"])
}

func TestOTLPHandlerGroupedReservedNameKept(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := xlog.NewOTLPHandler(&buf, nil)
	require.NoError(t, err)

	slog.New(h).LogAttrs(context.Background(), slog.LevelInfo, "nested",
		slog.Group("payload", slog.String("message", "inner")),
	)

	entry := decodeOTLPLine(t, &buf)
	attrs := entry["attributes"].(map[string]any)
	payload, ok := attrs["payload"].(map[string]any)
	require.True(t, ok)
	// 排除规则只作用于顶层，分组内部的键原样保留
	assert.Equal(t, "inner", payload["message"])
}

func TestOTLPHandlerEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := xlog.NewOTLPHandler(&buf, &xlog.OTLPHandlerOptions{Level: slog.LevelWarn})
	require.NoError(t, err)

	ctx := context.Background()
	assert.False(t, h.Enabled(ctx, slog.LevelInfo))
	assert.True(t, h.Enabled(ctx, slog.LevelWarn))
	assert.True(t, h.Enabled(ctx, slog.LevelError))
}

func TestSeverityNumberMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level xlog.Level
		want  int
	}{
		{xlog.LevelDebug, 5},
		{xlog.LevelDebug + 1, 5},
		{xlog.LevelInfo, 9},
		{xlog.LevelInfo + 1, 9},
		{xlog.LevelWarn, 13},
		{xlog.LevelError, 17},
		{xlog.LevelError + 4, 17},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, xlog.SeverityNumberForTest(tt.level), "level=%v", tt.level)
	}
}
