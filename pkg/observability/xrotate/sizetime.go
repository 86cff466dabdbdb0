package xrotate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/omeyang/logkit/pkg/util/xfile"

	"github.com/klauspost/compress/gzip"
)

// SizeAndTime 默认配置值
const (
	// DefaultRotateSize 默认单个日志文件大小阈值（20 MiB）
	DefaultRotateSize = 20 * 1024 * 1024

	// DefaultRotateInterval 默认时间触发间隔（每天一次）
	DefaultRotateInterval = 24 * time.Hour

	// maxRotateSize 单个日志文件大小阈值上限（10 GiB）
	maxRotateSize = 10 * 1024 * 1024 * 1024

	// maxSizeTimeBackups 归档文件数量上限
	maxSizeTimeBackups = 1024

	// logFilePerm 日志文件权限，与 lumberjack 默认值一致
	logFilePerm = 0600
)

// sizeTimeConfig 双触发轮转器配置
type sizeTimeConfig struct {
	// RotateSize 单个日志文件大小阈值（字节）
	// 写入将导致文件超过此阈值时触发轮转
	// 默认值 DefaultRotateSize，必须在 1~maxRotateSize 范围内
	RotateSize int64

	// RotateInterval 时间触发间隔
	// 距上次轮转（或创建）超过此间隔时触发轮转
	// 默认值 DefaultRotateInterval，必须 > 0
	RotateInterval time.Duration

	// MaxBackups 保留的归档文件数量
	// 超过此数量时删除最旧的归档，0 表示不清理
	MaxBackups int

	// Compress 是否 gzip 压缩归档文件，默认开启
	Compress bool

	// OnError 可选的错误回调函数
	//
	// 压缩失败、归档清理失败等内部操作错误通过此回调上报。默认为 nil（静默忽略）。
	//
	// 安全约束：回调函数不得向同一 Rotator 写入数据，否则会导致递归死锁。
	// 推荐输出到 os.Stderr 或独立的日志通道。
	OnError func(error)

	// now 时钟函数，仅用于测试注入
	now func() time.Time
}

// SizeTimeOption 双触发轮转器配置选项函数
type SizeTimeOption func(*sizeTimeConfig)

// WithRotateSize 设置单个日志文件大小阈值（字节）
func WithRotateSize(bytes int64) SizeTimeOption {
	return func(c *sizeTimeConfig) {
		c.RotateSize = bytes
	}
}

// WithRotateInterval 设置时间触发间隔
func WithRotateInterval(d time.Duration) SizeTimeOption {
	return func(c *sizeTimeConfig) {
		c.RotateInterval = d
	}
}

// WithSizeTimeMaxBackups 设置保留的归档文件数量，0 表示不清理
func WithSizeTimeMaxBackups(n int) SizeTimeOption {
	return func(c *sizeTimeConfig) {
		c.MaxBackups = n
	}
}

// WithSizeTimeCompress 设置是否压缩归档文件
func WithSizeTimeCompress(compress bool) SizeTimeOption {
	return func(c *sizeTimeConfig) {
		c.Compress = compress
	}
}

// WithSizeTimeOnError 设置错误回调函数
//
// 设计决策: 不使用 slog 等日志库记录内部错误，避免 Rotator 作为日志输出目标时
// 产生递归写入（写失败 → 打日志 → 再写失败 → 栈溢出/死锁）。
// 回调函数不得向同一 Rotator 写入数据。
func WithSizeTimeOnError(fn func(error)) SizeTimeOption {
	return func(c *sizeTimeConfig) {
		c.OnError = fn
	}
}

// sizeTimeRotator 大小 + 时间双触发的 Rotator 实现
//
// 每次写入前评估两个触发条件：
//  1. 大小：本次写入会使文件超过 RotateSize
//  2. 时间：当前时刻已到达或越过 nextRollover
//
// 大小条件先评估（只需累加待写入数据长度）；两个条件同时满足时只执行一次轮转。
// 轮转时先切换活动文件再压缩归档，压缩失败不会让轮转器失去可用的活动文件。
type sizeTimeRotator struct {
	cfg  sizeTimeConfig
	path string // 规范化后的活动文件路径

	mu           sync.Mutex // 保护以下全部可变状态，覆盖"判定→关闭→归档→重开"临界区
	file         *os.File
	size         int64     // 当前活动文件字节数
	seq          int       // 归档序号，进程内单调递增
	nextRollover time.Time // 下一次时间触发时刻
	closed       bool
}

// NewSizeAndTime 创建大小 + 时间双触发的日志轮转器
//
// 参数:
//   - filename: 日志文件路径（必需），父目录不存在时自动创建（权限 0750）
//   - opts: 可选配置项
//
// 时间触发的锚点是轮转器的创建时刻：首个时间触发点为创建时刻 + RotateInterval，
// 之后每次轮转（无论由哪个条件触发）都把时钟重置为该次轮转时刻 + RotateInterval。
// 不按本地午夜对齐。
//
// 活动文件已存在时以追加方式打开，已有字节数计入大小阈值。
func NewSizeAndTime(filename string, opts ...SizeTimeOption) (Rotator, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}

	cfg := sizeTimeConfig{
		RotateSize:     DefaultRotateSize,
		RotateInterval: DefaultRotateInterval,
		Compress:       true,
		now:            time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := validateSizeTimeConfig(&cfg); err != nil {
		return nil, err
	}

	safePath, err := xfile.SanitizePath(filename)
	if err != nil {
		return nil, err
	}
	if err := xfile.EnsureDir(safePath); err != nil {
		return nil, err
	}

	r := &sizeTimeRotator{
		cfg:  cfg,
		path: safePath,
	}
	if err := r.openExistingOrNew(); err != nil {
		return nil, err
	}
	r.nextRollover = cfg.now().Add(cfg.RotateInterval)
	return r, nil
}

// validateSizeTimeConfig 验证双触发轮转器配置
func validateSizeTimeConfig(cfg *sizeTimeConfig) error {
	if cfg.RotateSize <= 0 || cfg.RotateSize > maxRotateSize {
		return fmt.Errorf("%w: got %d, want 1~%d", ErrInvalidRotateSize, cfg.RotateSize, int64(maxRotateSize))
	}
	if cfg.RotateInterval <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidInterval, cfg.RotateInterval)
	}
	if cfg.MaxBackups < 0 || cfg.MaxBackups > maxSizeTimeBackups {
		return fmt.Errorf("%w: got %d, want 0~%d", ErrInvalidMaxBackups, cfg.MaxBackups, maxSizeTimeBackups)
	}
	return nil
}

// openExistingOrNew 打开活动文件（追加模式），并以实际文件大小初始化计数器
func (r *sizeTimeRotator) openExistingOrNew() error {
	//#nosec G304 -- 路径已经过 xfile.SanitizePath 净化
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerm)
	if err != nil {
		return fmt.Errorf("xrotate: open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("xrotate: stat log file: %w", err)
	}
	r.file = f
	r.size = info.Size()
	return nil
}

// Write 实现 io.Writer 接口
//
// 触发条件满足时先轮转再写入。轮转失败（如归档重命名失败但活动文件仍可用）
// 通过 OnError 上报，本次写入继续尝试；只有活动文件不可用时才返回错误。
func (r *sizeTimeRotator) Write(p []byte) (n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, ErrClosed
	}
	if int64(len(p)) > r.cfg.RotateSize {
		return 0, fmt.Errorf("%w: write %d bytes, RotateSize %d", ErrWriteTooLarge, len(p), r.cfg.RotateSize)
	}

	// 上一次轮转重开失败后的自愈路径：每次写入独立重试打开活动文件
	if r.file == nil {
		if err := r.openExistingOrNew(); err != nil {
			return 0, err
		}
	}

	if r.shouldRollover(len(p), r.cfg.now()) {
		if err := r.rotate(); err != nil {
			// 活动文件切换失败是唯一向调用方返回的轮转错误
			return 0, err
		}
	}

	n, err = r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// shouldRollover 判定本次写入前是否需要轮转
//
// 大小条件先评估：已有字节数加上待写入长度严格超过阈值时触发。
// 时间条件：当前时刻到达或越过 nextRollover 时触发。
//
// 纯判定函数：不推进任何计数器，重复调用（无写入/轮转介入）结果稳定。
// 调用方必须持有 r.mu。
func (r *sizeTimeRotator) shouldRollover(pending int, now time.Time) bool {
	if r.size+int64(pending) > r.cfg.RotateSize {
		return true
	}
	return !now.Before(r.nextRollover)
}

// rotate 执行一次轮转。调用方必须持有 r.mu。
//
// 顺序刻意安排为：关闭 → 重命名 → 重开活动文件 → 压缩归档。
// 活动文件先于压缩恢复可用，压缩失败只保留未压缩归档并通过 OnError 上报，
// 不影响轮转完成。
func (r *sizeTimeRotator) rotate() error {
	now := r.cfg.now()

	if r.file != nil {
		if err := r.file.Close(); err != nil {
			r.reportError(fmt.Errorf("xrotate: close active file: %w", err))
		}
	}

	r.seq++
	archive := r.archiveName(now)
	renamed := true
	if err := os.Rename(r.path, archive); err != nil {
		// 重命名失败（如归档目标被占用）：保留原文件继续追加，仅上报
		renamed = false
		r.reportError(fmt.Errorf("xrotate: rename to archive: %w", err))
	}

	if err := r.openExistingOrNew(); err != nil {
		r.file = nil
		return err
	}

	r.nextRollover = now.Add(r.cfg.RotateInterval)

	if renamed {
		if r.cfg.Compress {
			if err := compressArchive(archive); err != nil {
				r.reportError(fmt.Errorf("xrotate: compress archive: %w", err))
			}
		}
		if r.cfg.MaxBackups > 0 {
			r.pruneArchives()
		}
	}
	return nil
}

// archiveName 生成归档文件路径：<前缀>-<UTC 时间戳>.<序号><扩展名>
//
// 例: app.log → app-20240101T030405.000.7.log
func (r *sizeTimeRotator) archiveName(now time.Time) string {
	ext := filepath.Ext(r.path)
	prefix := strings.TrimSuffix(r.path, ext)
	ts := now.UTC().Format("20060102T150405.000")
	return fmt.Sprintf("%s-%s.%d%s", prefix, ts, r.seq, ext)
}

// compressArchive 将归档文件 gzip 压缩为 <archive>.gz，成功后删除原文件
//
// 文件句柄使用 defer 保证释放，压缩中途失败时清理残留的 .gz 文件。
func compressArchive(src string) (err error) {
	//#nosec G304 -- src 由 archiveName 基于已净化路径生成
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	dst := src + ".gz"
	//#nosec G304
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, logFilePerm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			// 压缩未完成，移除半成品，保留未压缩归档作为回退
			_ = os.Remove(dst)
		}
	}()

	gw := gzip.NewWriter(out)
	if _, err = io.Copy(gw, in); err != nil {
		return err
	}
	if err = gw.Close(); err != nil {
		return err
	}

	_ = in.Close()
	return os.Remove(src)
}

// pruneArchives 删除超出 MaxBackups 的最旧归档。调用方必须持有 r.mu。
//
// 归档文件名以 UTC 时间戳开头，字典序即时间序，按文件名排序后保留最新 N 个。
func (r *sizeTimeRotator) pruneArchives() {
	archives, err := r.listArchives()
	if err != nil {
		r.reportError(fmt.Errorf("xrotate: list archives: %w", err))
		return
	}
	if len(archives) <= r.cfg.MaxBackups {
		return
	}
	sort.Strings(archives)
	for _, old := range archives[:len(archives)-r.cfg.MaxBackups] {
		if err := os.Remove(old); err != nil {
			r.reportError(fmt.Errorf("xrotate: remove old archive: %w", err))
		}
	}
}

// listArchives 列出当前活动文件对应的所有归档（含已压缩和未压缩）
func (r *sizeTimeRotator) listArchives() ([]string, error) {
	dir := filepath.Dir(r.path)
	ext := filepath.Ext(r.path)
	base := strings.TrimSuffix(filepath.Base(r.path), ext)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var archives []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, base+"-") {
			continue
		}
		if strings.HasSuffix(name, ext) || strings.HasSuffix(name, ext+".gz") {
			archives = append(archives, filepath.Join(dir, name))
		}
	}
	return archives, nil
}

// reportError 通过回调上报内部错误
//
// 回调 panic 被 recover 隔离，防止日志错误通知反向中断业务主流程。
func (r *sizeTimeRotator) reportError(err error) {
	if err != nil && r.cfg.OnError != nil {
		defer func() { recover() }() //nolint:errcheck // recover 返回值无需检查
		r.cfg.OnError(err)
	}
}

// Rotate 手动触发轮转
func (r *sizeTimeRotator) Rotate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	return r.rotate()
}

// Close 实现 io.Closer 接口
//
// 关闭后调用 Write 或 Rotate 将返回 [ErrClosed]。重复调用 Close 也返回 [ErrClosed]。
func (r *sizeTimeRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.closed = true
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}
