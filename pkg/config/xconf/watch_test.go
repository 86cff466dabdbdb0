package xconf_test

import (
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/logkit/pkg/config/xconf"
)

func TestWatchRejectsBytesConfig(t *testing.T) {
	t.Parallel()

	cfg, err := xconf.NewFromBytes([]byte("a: 1"), xconf.FormatYAML)
	require.NoError(t, err)

	_, err = xconf.Watch(cfg, nil)
	assert.ErrorIs(t, err, xconf.ErrNotReloadable)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "app.yaml", "level: info\n")
	cfg, err := xconf.New(path)
	require.NoError(t, err)

	var reloaded atomic.Bool
	var callbackErr atomic.Value
	w, err := xconf.Watch(cfg, func(c xconf.Config, err error) {
		if err != nil {
			callbackErr.Store(err)
			return
		}
		reloaded.Store(true)
	}, xconf.WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	w.StartAsync()

	// 给监视循环一点启动时间后修改文件
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("level: debug\n"), 0o600))

	require.Eventually(t, reloaded.Load, 3*time.Second, 20*time.Millisecond,
		"写入后应触发重载回调")
	assert.Nil(t, callbackErr.Load())
	assert.Equal(t, "debug", cfg.Client().String("level"))
}

func TestWatchStopIdempotent(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "app.yaml", "a: 1\n")
	cfg, err := xconf.New(path)
	require.NoError(t, err)

	w, err := xconf.Watch(cfg, nil)
	require.NoError(t, err)

	w.StartAsync()
	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop(), "重复 Stop 应为空操作")
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "app.yaml", "level: info\n")
	cfg, err := xconf.New(path)
	require.NoError(t, err)

	var calls atomic.Int32
	w, err := xconf.Watch(cfg, func(xconf.Config, error) {
		calls.Add(1)
	}, xconf.WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	w.StartAsync()
	time.Sleep(50 * time.Millisecond)

	// 同目录下无关文件的变更不应触发回调
	writeFile(t, dir, "other.yaml", "b: 2\n")
	time.Sleep(200 * time.Millisecond)

	assert.Zero(t, calls.Load())
}
