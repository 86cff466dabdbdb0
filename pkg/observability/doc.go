// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展，含保留名清洗与 OTLP 格式化
//   - xrotate: 日志文件轮转（大小/时间双触发与 lumberjack 两种实现）
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 自动从 context 中提取追踪信息注入日志
//   - 支持动态级别控制
package observability
