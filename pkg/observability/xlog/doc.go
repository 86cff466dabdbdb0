// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、轮转）
//   - 具名 logger 注册表（[Setup]，同名幂等复用）
//   - 保留属性名清洗（[SanitizeExtra]、[Extra]、[SanitizeHandler]，默认启用）
//   - OTLP 风格 JSON 行格式化（[NewOTLPHandler]，文件侧采集器按行消费）
//   - 自动从 context 注入 trace_id、span_id（[EnrichHandler]，默认启用）
//   - 动态级别调整（运行时热更新）
//   - 全局 Logger 便利函数
//   - 延迟求值（Lazy* 系列函数）
//
// # 保留属性名
//
// 记录层与格式化层占用了 message、asctime、time、level、msg、source、
// body、severity_text 等字段名。调用方在附加元数据里复用这些名字时，
// 清洗层在记录进入格式化层前把冲突键改写为 log_ 前缀的安全名：
//
//	logger.Info(ctx, "user login",
//	    xlog.Extra(map[string]any{
//	        "message": "raw payload", // 输出为 log_message
//	        "user_id": 42,
//	    })...)
//
// 清洗永不修改调用方的映射，非映射输入原样通过。
//
// # 创建 Logger
//
// 使用 Builder 模式（first-error-wins：遇到第一个配置错误后，后续 Set 操作被跳过）。
// Builder 为一次性使用：调用 [Builder.Build] 后不可复用，需通过 [New] 创建新实例。
// Builder 方法：SetLevel、SetFormat、SetOutput、SetRotation、SetService、
// SetEnrich、SetSanitize、SetOnError、SetReplaceAttr。
//
// 服务场景推荐 [Setup]：按名称幂等构建双目标（console + file）logger，
// 文件侧经大小/时间双触发轮转落盘，配置结构可直接由 xconf 反序列化。
//
// [Builder.SetReplaceAttr] 支持日志治理场景（字段重命名、敏感信息脱敏、字段过滤），
// 脱敏可直接使用 [RedactAttrs]。
//
// # 全局 Logger
//
// 适用于脚手架、小工具等简单场景，服务端推荐依赖注入。
//
//   - [Default]: 获取全局 Logger（惰性初始化：stderr、Info 级别、text 格式）
//   - [SetDefault]: 替换全局 Logger（nil 会被忽略）
//   - [ResetDefault]: 重置为未初始化状态（仅用于测试）
//   - [Debug]、[Info]、[Warn]、[Error]、[Log]: 全局便利函数，签名为 (ctx, msg, ...slog.Attr)
//   - [Stack]: 全局便利函数，记录带堆栈的错误日志
//
// # 日志级别
//
// LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)。
// 可通过 [ParseLevel] 从字符串解析。
//
// # 派生 Logger 与级别控制
//
// [Logger.With] 和 [Logger.WithGroup] 返回 [Logger] 接口（不含 [Leveler]）。
// 底层实现同时实现了 [LoggerWithLevel]，可通过类型断言获取级别控制能力。
// 派生 logger 共享父级的 LevelVar，动态级别变更会同步生效。
//
// # EnrichHandler 注意事项
//
// 当对启用了 enrich 的 logger 调用 WithGroup 时，trace_id、span_id 注入字段
// 会被归入 group 下（slog handler 架构的固有限制）。如需追踪字段保持在顶层，
// 避免对启用 enrich 的 logger 调用 WithGroup。
package xlog
