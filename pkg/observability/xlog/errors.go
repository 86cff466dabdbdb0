// errors.go 包级哨兵错误
package xlog

import "errors"

var (
	// ErrNilHandler handler 装饰器收到 nil 底层 handler
	ErrNilHandler = errors.New("xlog: handler cannot be nil")

	// ErrNilOutput 输出目标为 nil
	ErrNilOutput = errors.New("xlog: output cannot be nil")

	// ErrEmptyName 注册表中的 logger 名称为空
	ErrEmptyName = errors.New("xlog: logger name cannot be empty")

	// ErrInvalidLevel 无法识别的级别字符串
	ErrInvalidLevel = errors.New("xlog: invalid level")

	// ErrInvalidFormat 无法识别的输出格式
	ErrInvalidFormat = errors.New("xlog: invalid format")
)
