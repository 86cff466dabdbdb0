package xlog

import "io"

// SetConsoleWriterForTest 替换注册表 console 输出目标，返回恢复函数
//
// 仅用于测试，避免注册表测试污染 stderr。
func SetConsoleWriterForTest(w io.Writer) (restore func()) {
	old := consoleWriter
	consoleWriter = w
	return func() { consoleWriter = old }
}

// SeverityNumberForTest 暴露级别映射供黑盒测试验证
func SeverityNumberForTest(level Level) int {
	return severityNumber(level)
}
