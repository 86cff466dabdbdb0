// redact.go 敏感字段脱敏
//
// 配合 Builder.SetReplaceAttr 使用：匹配敏感命名模式的属性值
// 在输出前替换为固定掩码，日志中永不出现明文凭证。
package xlog

import (
	"log/slog"
	"strings"
)

// RedactedValue 脱敏后的掩码值
const RedactedValue = "***REDACTED***"

// defaultSensitivePatterns 默认敏感命名模式，按子串匹配（大小写不敏感）
var defaultSensitivePatterns = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"api_key",
	"apikey",
	"credential",
	"private_key",
	"authorization",
}

// IsSensitiveKey 判断字段名是否命中敏感命名模式
//
// extra 为调用方追加的模式，与默认模式合并判断。
func IsSensitiveKey(key string, extra ...string) bool {
	lower := strings.ToLower(key)
	for _, p := range defaultSensitivePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	for _, p := range extra {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// RedactAttrs 返回脱敏用的属性替换函数
//
// 命中敏感模式的属性值替换为 [RedactedValue]，分组内的属性同样生效。
//
// 示例：
//
//	logger, cleanup, _ := xlog.New().
//		SetReplaceAttr(xlog.RedactAttrs("session_id")).
//		Build()
func RedactAttrs(extra ...string) ReplaceAttrFunc {
	return func(_ []string, a slog.Attr) slog.Attr {
		if IsSensitiveKey(a.Key, extra...) {
			return slog.String(a.Key, RedactedValue)
		}
		return a
	}
}
