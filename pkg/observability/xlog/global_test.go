package xlog_test

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/logkit/pkg/observability/xlog"
)

func TestDefaultLazyInit(t *testing.T) {
	xlog.ResetDefault()
	t.Cleanup(xlog.ResetDefault)

	first := xlog.Default()
	require.NotNil(t, first)
	assert.Same(t, first, xlog.Default(), "重复获取应返回同一实例")
	assert.Equal(t, xlog.LevelInfo, first.GetLevel())
}

func TestSetDefault(t *testing.T) {
	xlog.ResetDefault()
	t.Cleanup(xlog.ResetDefault)

	var buf bytes.Buffer
	custom, cleanup, err := xlog.New().SetOutput(&buf).Build()
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	xlog.SetDefault(custom)
	assert.Same(t, custom, xlog.Default())

	// nil 被忽略
	xlog.SetDefault(nil)
	assert.Same(t, custom, xlog.Default())
}

func TestGlobalFunctions(t *testing.T) {
	xlog.ResetDefault()
	t.Cleanup(xlog.ResetDefault)

	var buf bytes.Buffer
	custom, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetLevel(xlog.LevelDebug).
		Build()
	require.NoError(t, err)
	defer func() { _ = cleanup() }()
	xlog.SetDefault(custom)

	ctx := context.Background()
	xlog.Debug(ctx, "global debug")
	xlog.Info(ctx, "global info")
	xlog.Warn(ctx, "global warn")
	xlog.Error(ctx, "global error")
	xlog.Log(ctx, xlog.LevelInfo, "global log")
	xlog.Stack(ctx, "global stack")

	out := buf.String()
	for _, want := range []string{
		"global debug", "global info", "global warn",
		"global error", "global log", "global stack",
	} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "goroutine", "Stack 应附带堆栈")
}

func TestDefaultConcurrentInit(t *testing.T) {
	xlog.ResetDefault()
	t.Cleanup(xlog.ResetDefault)

	const n = 16
	loggers := make([]xlog.LoggerWithLevel, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loggers[i] = xlog.Default()
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, loggers[0], loggers[i], "并发初始化应得到同一实例")
	}
}
