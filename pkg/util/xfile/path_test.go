package xfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "普通相对路径", input: "logs/app.log", want: "logs/app.log"},
		{name: "绝对路径", input: "/var/log/app.log", want: "/var/log/app.log"},
		{name: "冗余斜杠被规范化", input: "logs//app.log", want: "logs/app.log"},
		{name: "当前目录段被消除", input: "./logs/./app.log", want: "logs/app.log"},
		{name: "空路径", input: "", wantErr: ErrEmptyPath},
		{name: "空字节", input: "app\x00.log", wantErr: ErrNullByte},
		{name: "目录路径", input: "logs/", wantErr: ErrInvalidPath},
		{name: "反斜杠结尾", input: "logs\\", wantErr: ErrInvalidPath},
		{name: "相对路径穿越", input: "../etc/passwd", wantErr: ErrPathTraversal},
		{name: "中间穿越段", input: "logs/../../etc/passwd", wantErr: ErrPathTraversal},
		{name: "反斜杠穿越", input: "..\\etc\\passwd", wantErr: ErrPathTraversal},
		{name: "点点前缀文件名合法", input: "logs/..config.log", want: "logs/..config.log"},
		{name: "双点中缀文件名合法", input: "app..2024.log", want: "app..2024.log"},
		{name: "Windows 驱动器路径", input: "C:\\logs\\app.log", wantErr: ErrInvalidPath},
		{name: "Windows 驱动器相对路径", input: "C:app.log", wantErr: ErrInvalidPath},
		{name: "UNC 路径", input: "\\\\server\\share\\app.log", wantErr: ErrInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePath(tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("创建多级父目录", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "a", "b", "c.log")
		require.NoError(t, EnsureDir(filename))

		info, err := os.Stat(filepath.Join(tmpDir, "a", "b"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, os.FileMode(DefaultDirPerm), info.Mode().Perm())
	})

	t.Run("目录已存在不报错", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "exists.log")
		require.NoError(t, EnsureDir(filename))
		require.NoError(t, EnsureDir(filename))
	})

	t.Run("无父目录的文件名", func(t *testing.T) {
		assert.NoError(t, EnsureDir("bare.log"))
	})

	t.Run("空文件名", func(t *testing.T) {
		err := EnsureDir("")
		assert.ErrorIs(t, err, ErrEmptyPath)
	})

	t.Run("缺少执行位的权限", func(t *testing.T) {
		err := EnsureDirWithPerm(filepath.Join(tmpDir, "x", "y.log"), 0600)
		assert.ErrorIs(t, err, ErrInvalidPerm)
	})
}

func FuzzSanitizePath(f *testing.F) {
	f.Add("logs/app.log")
	f.Add("../escape")
	f.Add("a\x00b")
	f.Add("C:\\windows")
	f.Fuzz(func(t *testing.T, path string) {
		got, err := SanitizePath(path)
		if err != nil {
			return
		}
		// 净化成功的路径不应再包含穿越段或空字节
		if hasDotDotSegment(got) {
			t.Errorf("sanitized path %q still contains dotdot segment", got)
		}
		for i := 0; i < len(got); i++ {
			if got[i] == 0 {
				t.Errorf("sanitized path %q contains null byte", got)
			}
		}
	})
}
