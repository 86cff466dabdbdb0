// Package xconf 提供统一的配置加载和解析功能，基于 koanf 实现。
//
// # 设计理念
//
// xconf 定位为最小化配置加载器，负责文件/字节数据的加载、反序列化和热重载。
// 不负责配置治理（必选字段校验、默认值注入、环境变量覆盖），
// 这些能力由上层按需实现。
//
//   - 工厂函数：New, NewFromBytes
//   - Client() 暴露底层 koanf 实例
//   - 增值功能：并发安全的 Reload、类型安全的 Unmarshal
//   - 日志入口：Loggers / SetupLoggers 直接产出 xlog 的具名 logger
//
// # 支持的格式
//
//   - YAML（默认，推荐）：.yaml, .yml
//   - JSON：.json
//
// # 并发安全
//
// Reload() 成功解析后整体替换 koanf 实例，读取方拿到的要么是旧配置
// 要么是新配置，不会看到半成品。Client() 返回的指针在 Reload() 后仍然
// 有效，但指向旧配置（快照语义）。推荐每次需要时调用 Client()，
// 不要长期缓存返回的指针。
//
// # 配置监视
//
// 支持文件变更监视和自动重载（基于 fsnotify）。
// 特性：监视目录、内置防抖、并发安全、支持 vim/emacs 原子写入。
// 从 bytes 创建的 Config 不支持监视。
// 典型用途是配合 xlog 的动态级别：配置变更后在回调中 SetLevel。
package xconf
