package xlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/omeyang/logkit/pkg/observability/xrotate"
)

// ReplaceAttrFunc 属性替换函数类型
//
// 用于日志治理场景：字段重命名、敏感信息脱敏、字段过滤等。
// 返回修改后的属性，如果返回空 Key 的 Attr，该属性会被移除。
//
// 参数：
//   - groups: 当前属性所在的分组路径（如 ["request", "headers"]）
//   - a: 原始属性
type ReplaceAttrFunc func(groups []string, a slog.Attr) slog.Attr

// 输出格式
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatOTLP = "otlp"
)

// Builder 日志配置构建器
type Builder struct {
	output         io.Writer
	level          Level
	levelVar       *slog.LevelVar
	format         string
	addSource      bool
	enableEnrich   bool // 是否启用追踪信息自动注入
	enableSanitize bool // 是否启用保留名清洗
	serviceName    string
	environment    string
	serviceVersion string
	replaceAttr    ReplaceAttrFunc // 属性替换函数（用于治理）
	rotator        xrotate.Rotator
	onError        func(error) // 内部错误回调（Handler.Handle 失败时）
	err            error
}

// New 创建配置构建器
func New() *Builder {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)

	return &Builder{
		output:         os.Stderr,
		level:          LevelInfo,
		levelVar:       levelVar,
		format:         FormatText,
		enableEnrich:   true, // 默认启用追踪信息注入
		enableSanitize: true, // 默认启用保留名清洗
	}
}

// SetOutput 设置日志输出目标
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if b.err != nil {
		return b
	}
	if w == nil {
		b.err = ErrNilOutput
		return b
	}
	b.output = w
	return b
}

// SetLevel 设置日志级别
func (b *Builder) SetLevel(level Level) *Builder {
	b.level = level
	b.levelVar.Set(slog.Level(level))
	return b
}

// SetLevelString 通过字符串设置日志级别
func (b *Builder) SetLevelString(s string) *Builder {
	if b.err != nil {
		return b
	}
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置输出格式：text、json 或 otlp
func (b *Builder) SetFormat(format string) *Builder {
	if b.err != nil {
		return b
	}
	normalized := strings.ToLower(strings.TrimSpace(format))
	if normalized == "" {
		// 空值视为使用默认格式，避免误把“没填”变成配置错误。
		b.format = FormatText
		return b
	}
	switch normalized {
	case FormatText, FormatJSON, FormatOTLP:
		b.format = normalized
	default:
		b.err = fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
	return b
}

// SetAddSource 是否在日志中添加源码位置
func (b *Builder) SetAddSource(enable bool) *Builder {
	b.addSource = enable
	return b
}

// SetEnrich 是否启用追踪信息自动注入（trace_id / span_id）
//
// 默认启用。启用时日志会自动从 context 的 SpanContext 提取追踪信息。
func (b *Builder) SetEnrich(enable bool) *Builder {
	b.enableEnrich = enable
	return b
}

// SetSanitize 是否启用保留属性名清洗
//
// 默认启用。关闭后调用方传入的 message、asctime 等保留键会原样进入
// 格式化层，与固定字段冲突的后果由调用方自行承担。
func (b *Builder) SetSanitize(enable bool) *Builder {
	b.enableSanitize = enable
	return b
}

// SetService 设置服务标识（服务名、部署环境、版本）
//
// otlp 格式下写入每条记录的 resource 块；其他格式下在 Build 时
// 通过 handler.WithAttrs 注入为固定属性，避免热路径重复拼装。
func (b *Builder) SetService(name, environment, version string) *Builder {
	b.serviceName = name
	b.environment = environment
	b.serviceVersion = version
	return b
}

// SetRotation 设置日志轮转（大小 + 时间双触发）
//
// 输出目标切换为轮转器，cleanup 函数负责关闭。
func (b *Builder) SetRotation(filename string, opts ...xrotate.SizeTimeOption) *Builder {
	if b.err != nil {
		return b
	}
	rotator, err := xrotate.NewSizeAndTime(filename, opts...)
	if err != nil {
		b.err = err
		return b
	}
	b.rotator = rotator
	b.output = rotator
	return b
}

// SetOnError 设置内部错误回调
//
// 当 Handler.Handle() 失败时（如磁盘满、权限问题、writer 异常），
// 会调用此回调。默认策略仍然"不向外返回错误、不 panic"，
// 但允许业务把内部错误接到 metrics/告警系统。
//
// 注意事项：
//   - 回调在热路径同步执行，应保持轻量
//   - 内置递归保护：如果回调内部触发日志错误，不会导致无限递归
//   - 回调失败不会影响日志写入的返回值
func (b *Builder) SetOnError(fn func(error)) *Builder {
	b.onError = fn
	return b
}

// SetReplaceAttr 设置属性替换函数（日志治理）
//
// 用于在日志输出前对属性进行处理，支持字段重命名、敏感信息脱敏、
// 字段过滤、值格式化等场景。脱敏场景可直接使用 [RedactAttrs]。
//
// 仅对 text/json 格式生效，otlp 格式的字段治理走固定信封结构。
func (b *Builder) SetReplaceAttr(fn ReplaceAttrFunc) *Builder {
	b.replaceAttr = fn
	return b
}

// Build 构建 Logger 实例
//
// 返回值：
//   - LoggerWithLevel: 日志实例，同时支持动态级别控制
//   - func() error: 清理函数，用于释放资源（如关闭轮转器）
//   - error: 配置错误
func (b *Builder) Build() (LoggerWithLevel, func() error, error) {
	if b.err != nil {
		return nil, nil, b.err
	}

	opts := &slog.HandlerOptions{
		Level:     b.levelVar,
		AddSource: b.addSource,
	}
	if b.replaceAttr != nil {
		opts.ReplaceAttr = b.replaceAttr
	}

	var handler slog.Handler
	switch b.format {
	case FormatJSON:
		handler = slog.NewJSONHandler(b.output, opts)
	case FormatOTLP:
		h, err := NewOTLPHandler(b.output, &OTLPHandlerOptions{
			Level:          b.levelVar,
			AddSource:      b.addSource,
			ServiceName:    b.serviceName,
			Environment:    b.environment,
			ServiceVersion: b.serviceVersion,
		})
		if err != nil {
			return nil, nil, err
		}
		handler = h
	default:
		handler = slog.NewTextHandler(b.output, opts)
	}

	// 启用追踪信息注入
	if b.enableEnrich {
		eh, err := NewEnrichHandler(handler)
		if err != nil {
			return nil, nil, err
		}
		handler = eh
	}

	// 非 otlp 格式的服务标识作为固定属性一次性注入
	if b.format != FormatOTLP && b.serviceName != "" {
		handler = handler.WithAttrs([]slog.Attr{
			slog.String("service", b.serviceName),
			slog.String("environment", b.environment),
			slog.String("version", b.serviceVersion),
		})
	}

	// 创建 logger
	// 初始化共享指针，确保派生 logger (With/WithGroup) 能正确共享状态
	logger := &xlogger{
		handler:        handler,
		levelVars:      []*slog.LevelVar{b.levelVar},
		onError:        b.onError,
		errorCount:     new(atomic.Uint64), // 共享错误计数器
		addSource:      b.addSource,        // 传递源码位置设置，用于热路径优化
		inErrorHandler: new(atomic.Bool),   // 共享递归保护标记
	}

	// 保留名清洗装饰器最外层安装，记录在进入任何下游前完成改写
	if b.enableSanitize {
		logger.applySanitize()
	}

	cleanup := b.createCleanup()

	return logger, cleanup, nil
}

// createCleanup 创建清理函数
func (b *Builder) createCleanup() func() error {
	var once sync.Once
	rotator := b.rotator

	return func() error {
		var err error
		once.Do(func() {
			if rotator != nil {
				err = rotator.Close()
			}
		})
		return err
	}
}
