package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/logkit/pkg/config/xconf"
	"github.com/omeyang/logkit/pkg/config/xenv"
	"github.com/omeyang/logkit/pkg/observability/xlog"
	"github.com/omeyang/logkit/pkg/observability/xrotate"
)

// usageError 表示参数错误，run() 映射为退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createEmitCommand(),
		createRotateCommand(),
		createCheckCommand(),
		createEnvCommand(),
	}
}

// createEmitCommand 创建 emit 子命令（写入测试日志）。
func createEmitCommand() *cli.Command {
	return &cli.Command{
		Name:  "emit",
		Usage: "按指定格式写入测试日志",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "日志文件路径（必需）",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "输出格式 (text/json/otlp)",
				Value: xlog.FormatOTLP,
			},
			&cli.StringFlag{
				Name:  "level",
				Usage: "日志级别 (debug/info/warn/error)",
				Value: "info",
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "写入条数",
				Value:   1,
			},
			&cli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Usage:   "日志消息体",
				Value:   "logkitctl test record",
			},
			&cli.StringFlag{
				Name:  "service",
				Usage: "服务名（写入 resource）",
				Value: "logkitctl",
			},
			&cli.IntFlag{
				Name:  "rotate-size",
				Usage: "单文件大小阈值（字节），0 使用默认值",
			},
			&cli.DurationFlag{
				Name:  "rotate-interval",
				Usage: "时间轮转间隔，0 使用默认值",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cmdEmit(ctx, cmd, cmd.Root().Writer)
		},
	}
}

// cmdEmit 写入测试日志。
func cmdEmit(ctx context.Context, cmd *cli.Command, out io.Writer) error {
	file := cmd.String("file")
	if file == "" {
		return &usageError{msg: "emit 需要 --file 参数"}
	}
	count := int(cmd.Int("count"))
	if count <= 0 {
		return &usageError{msg: fmt.Sprintf("无效条数: %d", count)}
	}
	level, err := xlog.ParseLevel(cmd.String("level"))
	if err != nil {
		return &usageError{msg: err.Error()}
	}

	var rotateOpts []xrotate.SizeTimeOption
	if size := cmd.Int("rotate-size"); size > 0 {
		rotateOpts = append(rotateOpts, xrotate.WithRotateSize(size))
	}
	if interval := cmd.Duration("rotate-interval"); interval > 0 {
		rotateOpts = append(rotateOpts, xrotate.WithRotateInterval(interval))
	}

	logger, cleanup, err := xlog.New().
		SetRotation(file, rotateOpts...).
		SetFormat(cmd.String("format")).
		SetLevel(xlog.LevelDebug).
		SetService(cmd.String("service"), "cli", Version).
		Build()
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	msg := cmd.String("message")
	start := time.Now()
	for i := 0; i < count; i++ {
		logger.Log(ctx, level, msg, slog.Int("seq", i))
	}

	fmt.Fprintf(out, "已写入 %d 条 %s 格式日志到 %s (耗时 %s)\n",
		count, cmd.String("format"), file, time.Since(start).Round(time.Millisecond))
	return nil
}

// createRotateCommand 创建 rotate 子命令（手动轮转）。
func createRotateCommand() *cli.Command {
	return &cli.Command{
		Name:  "rotate",
		Usage: "对日志文件执行一次手动轮转",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "日志文件路径（必需）",
			},
			&cli.BoolFlag{
				Name:  "no-compress",
				Usage: "跳过归档压缩",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return cmdRotate(cmd, cmd.Root().Writer)
		},
	}
}

// cmdRotate 执行一次手动轮转。
func cmdRotate(cmd *cli.Command, out io.Writer) error {
	file := cmd.String("file")
	if file == "" {
		return &usageError{msg: "rotate 需要 --file 参数"}
	}

	rotator, err := xrotate.NewSizeAndTime(file,
		xrotate.WithSizeTimeCompress(!cmd.Bool("no-compress")))
	if err != nil {
		return err
	}
	defer func() { _ = rotator.Close() }()

	if err := rotator.Rotate(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s 已轮转\n", file)
	return nil
}

// createCheckCommand 创建 check 子命令（校验配置）。
func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "校验配置文件中的 logging 段并列出具名 logger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径（必需，.yaml/.yml/.json）",
			},
			&cli.StringFlag{
				Name:  "path",
				Usage: "logging 配置段路径",
				Value: "logging",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return cmdCheck(cmd, cmd.Root().Writer)
		},
	}
}

// cmdCheck 校验配置文件并列出 logger。
func cmdCheck(cmd *cli.Command, out io.Writer) error {
	path := cmd.String("config")
	if path == "" {
		return &usageError{msg: "check 需要 --config 参数"}
	}

	cfg, err := xconf.New(path)
	if err != nil {
		return err
	}

	configs, err := xconf.Loggers(cfg, cmd.String("path"))
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		fmt.Fprintf(out, "%s: 未发现具名 logger 配置\n", path)
		return nil
	}

	fmt.Fprintf(out, "%s: %d 个具名 logger\n", path, len(configs))
	for name, lc := range configs {
		format := lc.Format
		if format == "" {
			format = xlog.FormatOTLP
		}
		target := lc.FilePath
		if target == "" {
			target = "(仅 console)"
		}
		fmt.Fprintf(out, "  %s: format=%s file=%s\n", name, format, target)
	}
	return nil
}

// createEnvCommand 创建 env 子命令（脱敏输出环境变量）。
func createEnvCommand() *cli.Command {
	return &cli.Command{
		Name:  "env",
		Usage: "加载 .env 文件并脱敏输出环境变量",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   ".env 文件路径（可选，不加载时只输出当前环境）",
			},
			&cli.StringFlag{
				Name:    "prefix",
				Aliases: []string{"p"},
				Usage:   "只输出指定前缀的变量",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return cmdEnv(cmd, cmd.Root().Writer)
		},
	}
}

// cmdEnv 加载 .env 并脱敏输出。
func cmdEnv(cmd *cli.Command, out io.Writer) error {
	if file := cmd.String("file"); file != "" {
		if err := xenv.Load(file); err != nil {
			return err
		}
	}

	var prefixes []string
	if p := cmd.String("prefix"); p != "" {
		prefixes = append(prefixes, p)
	}

	for _, attr := range xenv.Vars(prefixes...) {
		fmt.Fprintf(out, "%s=%s\n", attr.Key, attr.Value.String())
	}
	return nil
}
