package xrotate

import "time"

// WithClockForTest 注入时钟函数（仅用于测试时间触发逻辑）。
func WithClockForTest(fn func() time.Time) SizeTimeOption {
	return func(c *sizeTimeConfig) { c.now = fn }
}
