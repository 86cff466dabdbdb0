// loggers.go 日志配置的类型化加载入口
package xconf

import (
	"fmt"

	"github.com/omeyang/logkit/pkg/observability/xlog"
)

// Loggers 从配置的指定路径反序列化具名 logger 配置表
//
// 配置形如（YAML）：
//
//	logging:
//	  app:
//	    file_path: /var/log/app.log
//	    service_name: app
//	  audit:
//	    file_path: /var/log/audit.log
//	    format: json
//
// 调用 Loggers(cfg, "logging") 得到 map["app"/"audit"]xlog.Config，
// 随后逐个传入 xlog.Setup。
func Loggers(cfg Config, path string) (map[string]xlog.Config, error) {
	var out map[string]xlog.Config
	if err := cfg.Unmarshal(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetupLoggers 反序列化并注册全部具名 logger
//
// 任一 logger 构建失败立即返回错误，已注册的由 xlog.Shutdown 统一回收。
func SetupLoggers(cfg Config, path string) (map[string]xlog.LoggerWithLevel, error) {
	configs, err := Loggers(cfg, path)
	if err != nil {
		return nil, err
	}

	loggers := make(map[string]xlog.LoggerWithLevel, len(configs))
	for name, lc := range configs {
		l, err := xlog.Setup(name, lc)
		if err != nil {
			return nil, fmt.Errorf("xconf: setup logger %q: %w", name, err)
		}
		loggers[name] = l
	}
	return loggers, nil
}
