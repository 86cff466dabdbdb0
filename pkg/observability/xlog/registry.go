// registry.go 具名 logger 注册表
//
// Setup 按名称幂等构建 logger：同名二次调用返回首次创建的实例，
// 不重复打开文件、不重复安装装饰器。进程退出前调用 Shutdown
// 统一释放全部轮转器资源。
package xlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/logkit/pkg/observability/xrotate"
)

// Config 具名 logger 配置
//
// 字段带 koanf 标签，可直接由 xconf 从 JSON/YAML 配置文件反序列化。
// 零值可用：不写文件、console 输出 Info 级别 text 格式。
type Config struct {
	// FilePath 日志文件路径，空表示只输出到 console
	FilePath string `koanf:"file_path"`

	// ConsoleLevel console 输出级别，零值为 Info
	ConsoleLevel Level `koanf:"console_level"`

	// FileLevel 文件输出级别，零值为 Info
	FileLevel Level `koanf:"file_level"`

	// Format 文件输出格式：text、json 或 otlp，空值为 otlp
	// console 输出始终为 text 格式
	Format string `koanf:"format"`

	// ServiceName 服务名
	ServiceName string `koanf:"service_name"`

	// Environment 部署环境（如 production、staging）
	Environment string `koanf:"environment"`

	// ServiceVersion 服务版本
	ServiceVersion string `koanf:"service_version"`

	// AddSource 是否记录调用位置
	AddSource bool `koanf:"add_source"`

	// RotateSize 单文件大小阈值（字节），零值用默认 20MiB
	RotateSize int64 `koanf:"rotate_size"`

	// RotateInterval 时间轮转间隔，零值用默认 24h
	RotateInterval time.Duration `koanf:"rotate_interval"`

	// MaxBackups 归档保留数量，0 表示不清理
	MaxBackups int `koanf:"max_backups"`

	// DisableCompress 关闭归档 gzip 压缩，零值保持压缩开启
	DisableCompress bool `koanf:"disable_compress"`

	// DisableSanitize 关闭保留属性名清洗，零值保持清洗开启
	DisableSanitize bool `koanf:"disable_sanitize"`
}

// consoleWriter console 侧输出目标，测试中可替换
var consoleWriter io.Writer = os.Stderr

// registry 进程级注册表
var registry = struct {
	mu       sync.Mutex
	loggers  map[string]*xlogger
	cleanups map[string]func() error
}{
	loggers:  make(map[string]*xlogger),
	cleanups: make(map[string]func() error),
}

// Setup 按名称获取或创建 logger
//
// 幂等：同名调用返回首次创建的实例，后续调用的 cfg 被忽略，
// 保留名清洗装饰器只在首次创建时安装一次。
// 不同名称互不影响，各自持有独立的输出与级别控制。
func Setup(name string, cfg Config) (LoggerWithLevel, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if l, ok := registry.loggers[name]; ok {
		return l, nil
	}

	logger, cleanup, err := buildFromConfig(name, cfg)
	if err != nil {
		return nil, fmt.Errorf("xlog: setup %q: %w", name, err)
	}

	registry.loggers[name] = logger
	registry.cleanups[name] = cleanup
	return logger, nil
}

// Shutdown 关闭全部已注册 logger 的底层资源并清空注册表
//
// 进程退出前调用，保证轮转器缓冲落盘、文件句柄释放。
func Shutdown() error {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	var firstErr error
	for name, cleanup := range registry.cleanups {
		if err := cleanup(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("xlog: shutdown %q: %w", name, err)
		}
	}
	registry.loggers = make(map[string]*xlogger)
	registry.cleanups = make(map[string]func() error)
	return firstErr
}

// buildFromConfig 按配置组装双目标 logger
//
// console 侧固定 text 格式输出到 stderr，文件侧按 Format 选择格式化器，
// 经轮转器落盘。两侧各持一个 LevelVar，SetLevel 同步调整。
func buildFromConfig(name string, cfg Config) (*xlogger, func() error, error) {
	consoleVar := new(slog.LevelVar)
	consoleVar.Set(slog.Level(cfg.ConsoleLevel))

	consoleHandler := slog.NewTextHandler(consoleWriter, &slog.HandlerOptions{
		Level:     consoleVar,
		AddSource: cfg.AddSource,
	})

	levelVars := []*slog.LevelVar{consoleVar}
	handlers := []slog.Handler{consoleHandler}

	var rotator xrotate.Rotator
	if cfg.FilePath != "" {
		opts := []xrotate.SizeTimeOption{
			xrotate.WithSizeTimeCompress(!cfg.DisableCompress),
			// 轮转器内部错误不回写日志链路，直接输出到 stderr
			xrotate.WithSizeTimeOnError(func(err error) {
				fmt.Fprintf(os.Stderr, "xlog: rotate %q: %v\n", name, err)
			}),
		}
		if cfg.RotateSize > 0 {
			opts = append(opts, xrotate.WithRotateSize(cfg.RotateSize))
		}
		if cfg.RotateInterval > 0 {
			opts = append(opts, xrotate.WithRotateInterval(cfg.RotateInterval))
		}
		if cfg.MaxBackups > 0 {
			opts = append(opts, xrotate.WithSizeTimeMaxBackups(cfg.MaxBackups))
		}

		r, err := xrotate.NewSizeAndTime(cfg.FilePath, opts...)
		if err != nil {
			return nil, nil, err
		}
		rotator = r

		fileVar := new(slog.LevelVar)
		fileVar.Set(slog.Level(cfg.FileLevel))

		fileHandler, err := newFileHandler(rotator, fileVar, cfg)
		if err != nil {
			_ = rotator.Close()
			return nil, nil, err
		}
		levelVars = append(levelVars, fileVar)
		handlers = append(handlers, fileHandler)
	}

	handler := newTeeHandler(handlers...)

	eh, err := NewEnrichHandler(handler)
	if err != nil {
		if rotator != nil {
			_ = rotator.Close()
		}
		return nil, nil, err
	}

	logger := &xlogger{
		handler:        eh,
		levelVars:      levelVars,
		errorCount:     new(atomic.Uint64),
		addSource:      cfg.AddSource,
		inErrorHandler: new(atomic.Bool),
	}
	if !cfg.DisableSanitize {
		logger.applySanitize()
	}

	var once sync.Once
	cleanup := func() error {
		var err error
		once.Do(func() {
			if rotator != nil {
				err = rotator.Close()
			}
		})
		return err
	}
	return logger, cleanup, nil
}

// newFileHandler 按配置格式创建文件侧格式化器
func newFileHandler(w xrotate.Rotator, level *slog.LevelVar, cfg Config) (slog.Handler, error) {
	format := cfg.Format
	if format == "" {
		format = FormatOTLP
	}
	switch format {
	case FormatOTLP:
		return NewOTLPHandler(w, &OTLPHandlerOptions{
			Level:          level,
			AddSource:      cfg.AddSource,
			ServiceName:    cfg.ServiceName,
			Environment:    cfg.Environment,
			ServiceVersion: cfg.ServiceVersion,
		})
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: cfg.AddSource,
		}), nil
	case FormatText:
		return slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: cfg.AddSource,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, cfg.Format)
	}
}
