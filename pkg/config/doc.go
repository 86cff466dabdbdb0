// Package config 提供配置相关的子包。
//
// 子包列表：
//   - xconf: 配置加载与热重载，基于 koanf 与 fsnotify
//   - xenv: .env 文件加载与环境变量脱敏输出
package config
