package xlog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omeyang/logkit/pkg/observability/xlog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    xlog.Level
		wantErr bool
	}{
		{"debug", "debug", xlog.LevelDebug, false},
		{"info", "info", xlog.LevelInfo, false},
		{"warn", "warn", xlog.LevelWarn, false},
		{"warning 别名", "warning", xlog.LevelWarn, false},
		{"error", "error", xlog.LevelError, false},
		{"大写", "ERROR", xlog.LevelError, false},
		{"混合大小写", "Info", xlog.LevelInfo, false},
		{"带空白", "  warn  ", xlog.LevelWarn, false},
		{"空串默认 Info", "", xlog.LevelInfo, false},
		{"非法值", "verbose", xlog.LevelInfo, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := xlog.ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, xlog.ErrInvalidLevel)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMustParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, xlog.LevelDebug, xlog.MustParseLevel("debug"))
	assert.Panics(t, func() { xlog.MustParseLevel("nope") })
}
