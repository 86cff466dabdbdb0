package xjson

import (
	"encoding/json"
	"fmt"
)

// Pretty 将任意值序列化为格式化的 JSON 字符串。
// 用于日志和调试输出。序列化失败时返回 "<marshal error: ...>"。
func Pretty(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("<marshal error: %v>", err)
	}
	return string(data)
}

// Compact 将任意值序列化为单行 JSON 字符串。
// 序列化失败时返回 "<marshal error: ...>"。
func Compact(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<marshal error: %v>", err)
	}
	return string(data)
}

// Safe 返回一个保证可被 encoding/json 序列化的值。
//
// 如果 v 本身可序列化，原样返回；否则降级为 fmt.Sprintf("%v") 的字符串表示。
// 用于构造"输出必须是合法 JSON"的日志格式（如 OTLP 行格式）：
// 带有循环引用、channel、func 等不可序列化字段的值不会让整行输出失效。
func Safe(v any) any {
	if v == nil {
		return nil
	}
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return v
}
