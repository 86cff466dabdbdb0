package xrotate

import "errors"

// 配置校验和运行时错误
var (
	// ErrEmptyFilename 文件名为空
	ErrEmptyFilename = errors.New("xrotate: filename is required")

	// ErrInvalidRotateSize RotateSize 值无效（必须在 1B~10GiB 范围内）
	ErrInvalidRotateSize = errors.New("xrotate: invalid RotateSize")

	// ErrInvalidInterval RotateInterval 值无效（必须 > 0）
	ErrInvalidInterval = errors.New("xrotate: invalid RotateInterval")

	// ErrWriteTooLarge 单次写入超过 RotateSize，无法放入任何一个日志文件
	ErrWriteTooLarge = errors.New("xrotate: write length exceeds RotateSize")

	// ErrInvalidMaxSize MaxSizeMB 值无效（必须在 1~10240 范围内）
	ErrInvalidMaxSize = errors.New("xrotate: invalid MaxSizeMB")

	// ErrInvalidMaxBackups MaxBackups 值无效（必须在 0~1024 范围内）
	ErrInvalidMaxBackups = errors.New("xrotate: invalid MaxBackups")

	// ErrInvalidMaxAge MaxAgeDays 值无效（必须在 0~3650 范围内）
	ErrInvalidMaxAge = errors.New("xrotate: invalid MaxAgeDays")

	// ErrNoCleanupPolicy MaxBackups 和 MaxAgeDays 不能同时为 0
	ErrNoCleanupPolicy = errors.New("xrotate: no cleanup policy configured")

	// ErrClosed 轮转器已关闭
	ErrClosed = errors.New("xrotate: rotator is closed")
)
