package xfile

import (
	"fmt"
	"path/filepath"
	"strings"
)

// hasDotDotSegment 检测路径中是否包含 ".." 作为独立路径段。
// 逐字符扫描实现零分配。'/' 和 '\' 都视为分隔符，
// 以便在 Linux 上同样拦截 Windows 风格的穿越写法。
func hasDotDotSegment(path string) bool {
	i := 0
	for i < len(path) {
		if path[i] == '/' || path[i] == '\\' {
			i++
			continue
		}
		j := i
		for j < len(path) && path[j] != '/' && path[j] != '\\' {
			j++
		}
		if j-i == 2 && path[i] == '.' && path[i+1] == '.' {
			return true
		}
		i = j
	}
	return false
}

// isWindowsStylePath 检测 Windows 风格的驱动器路径（"C:\..."、"C:foo"）
// 和反斜杠开头的路径（根路径 "\foo"、UNC "\\server\..."）。
//
// 设计决策: 在 Linux 上反斜杠是合法文件名字符，但以驱动器号或反斜杠开头的
// 路径几乎总是跨平台拼接错误，为避免语义歧义统一拒绝。
func isWindowsStylePath(path string) bool {
	if len(path) >= 2 && isASCIILetter(path[0]) && path[1] == ':' {
		return true
	}
	return len(path) >= 1 && path[0] == '\\'
}

func isASCIILetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// SanitizePath 对日志文件路径进行格式净化和规范化。
//
// 检查项：
//   - 空路径、空字节
//   - 显式目录路径（以 "/" 或 "\" 结尾）
//   - Windows 风格路径（驱动器号、UNC）
//   - 相对路径穿越（".." 作为独立路径段）
//
// 返回 filepath.Clean 规范化后的路径。绝对路径被接受：本函数不做目录隔离，
// 日志文件放在哪个目录由调用方决定。
func SanitizePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required: %w", ErrEmptyPath)
	}
	if strings.ContainsRune(filename, 0) {
		return "", fmt.Errorf("filename contains null byte: %w", ErrNullByte)
	}
	// 尾随分隔符表示目录，必须在 Clean 之前检查（Clean 会移除尾部斜杠）
	if strings.HasSuffix(filename, "/") || strings.HasSuffix(filename, "\\") {
		return "", fmt.Errorf("path is a directory: %w", ErrInvalidPath)
	}
	if isWindowsStylePath(filename) {
		return "", fmt.Errorf("windows-style path %q: %w", filename, ErrInvalidPath)
	}

	cleaned := filepath.Clean(filename)
	if hasDotDotSegment(cleaned) {
		return "", fmt.Errorf("path %q: %w", filename, ErrPathTraversal)
	}
	return cleaned, nil
}
