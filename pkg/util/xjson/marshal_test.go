package xjson

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPretty(t *testing.T) {
	got := Pretty(map[string]int{"a": 1})
	assert.Contains(t, got, "\"a\": 1")

	// channel 不可序列化，应降级而非 panic
	got = Pretty(map[string]any{"ch": make(chan int)})
	assert.Contains(t, got, "<marshal error:")
}

func TestCompact(t *testing.T) {
	got := Compact(map[string]string{"k": "v"})
	assert.JSONEq(t, `{"k":"v"}`, got)

	got = Compact(func() {})
	assert.Contains(t, got, "<marshal error:")
}

func TestSafe(t *testing.T) {
	t.Run("可序列化值原样返回", func(t *testing.T) {
		v := map[string]any{"nested": []int{1, 2, 3}}
		got := Safe(v)
		_, err := json.Marshal(got)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	})

	t.Run("nil 原样返回", func(t *testing.T) {
		assert.Nil(t, Safe(nil))
	})

	t.Run("不可序列化值降级为字符串", func(t *testing.T) {
		got := Safe(make(chan int))
		s, ok := got.(string)
		require.True(t, ok)
		assert.NotEmpty(t, s)
		_, err := json.Marshal(got)
		assert.NoError(t, err)
	})
}
