// Package xfile 提供日志文件路径相关的安全工具。
//
// 本包服务于 xrotate 等需要在磁盘上创建日志文件的组件：
//
//   - SanitizePath: 路径格式净化（空字节、相对路径穿越、目录路径）
//   - EnsureDir: 确保文件的父目录存在（默认权限 0750）
//
// # 安全边界
//
// SanitizePath 只做格式净化，不做目录隔离。穿越检测按路径段精确匹配，
// 只有 ".." 作为独立段时才被拒绝，"app..2024.log" 这类合法文件名不受影响。
// 包含空字节（\x00）的路径一律拒绝：Linux 内核会在空字节处截断路径，
// 导致 Go 代码与操作系统看到的路径不一致。
//
// # 错误处理
//
// 预定义错误变量支持 [errors.Is] 判断：
//
//	_, err := xfile.SanitizePath("../etc/passwd")
//	if errors.Is(err, xfile.ErrPathTraversal) {
//	    // 处理路径穿越
//	}
package xfile
