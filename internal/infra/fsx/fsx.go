package fsx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// PathTypeConflictError 表示目标路径类型冲突（例如期望文件但实际是目录）。
type PathTypeConflictError struct {
	Path string
	Want string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("目标路径类型冲突：%q（期望 %s，实际 %s）", e.Path, e.Want, e.Got)
}

func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

// OS 是默认的真实文件系统。
var OS afero.Fs = afero.NewOsFs()

// WriteFileAtomicReplace 在 dir 下原子写入 name（同目录临时文件 + rename），已存在则覆盖。
// cache / report 使用该函数。
func WriteFileAtomicReplace(fs afero.Fs, dir, name string, data []byte) error {
	return writeFileAtomic(fs, dir, name, data)
}

// WriteFileAtomicNoOverwrite 与 WriteFileAtomicReplace 相同，但目标已存在时返回 os.ErrExist。
// NFO 等 sidecar 使用该函数：不覆盖用户已有文件。
func WriteFileAtomicNoOverwrite(fs afero.Fs, dir, name string, data []byte) error {
	dst := filepath.Join(filepath.Clean(dir), name)
	fi, err := fs.Stat(dst)
	switch {
	case err == nil && fi.IsDir():
		return &PathTypeConflictError{Path: dst, Want: "file", Got: "dir"}
	case err == nil && !fi.Mode().IsRegular():
		return &PathTypeConflictError{Path: dst, Want: "regular file", Got: fi.Mode().Type().String()}
	case err == nil:
		return os.ErrExist
	case !os.IsNotExist(err):
		return err
	}
	return writeFileAtomic(fs, dir, name, data)
}

func writeFileAtomic(fs afero.Fs, dir, name string, data []byte) error {
	if fs == nil {
		fs = OS
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(dir, name)

	// 临时文件前缀带 '.'，避免污染媒体库视图。
	tmp, err := afero.TempFile(fs, dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	renamed := false
	defer func() {
		_ = tmp.Close()
		if !renamed {
			_ = fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := fs.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	if err := fs.Rename(tmpName, dst); err != nil {
		return err
	}
	renamed = true
	return nil
}
