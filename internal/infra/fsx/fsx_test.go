package fsx

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

type failRenameFs struct{ afero.Fs }

func (f failRenameFs) Rename(oldname, newname string) error { return os.ErrPermission }

func TestWriteFileAtomicReplace_SuccessAndNoTempLeft(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := filepath.Join(string(filepath.Separator), "lib")

	if err := WriteFileAtomicReplace(fs, dir, "a.nfo", []byte("hello")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := WriteFileAtomicReplace(fs, dir, "a.nfo", []byte("again")); err != nil {
		t.Fatalf("覆盖写入不应报错：%v", err)
	}

	b, err := afero.ReadFile(fs, filepath.Join(dir, "a.nfo"))
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "again" {
		t.Fatalf("内容不一致：%q", string(b))
	}

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".a.nfo.tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}

func TestWriteFileAtomic_RenameFail_CleanupTemp(t *testing.T) {
	fs := failRenameFs{afero.NewMemMapFs()}
	dir := filepath.Join(string(filepath.Separator), "lib")

	if err := WriteFileAtomicReplace(fs, dir, "a.nfo", []byte("hello")); err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("不应留下任何文件：%d", len(entries))
	}
}

func TestWriteFileAtomicNoOverwrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := filepath.Join(string(filepath.Separator), "lib")

	if err := WriteFileAtomicNoOverwrite(fs, dir, "a.nfo", []byte("first")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	err := WriteFileAtomicNoOverwrite(fs, dir, "a.nfo", []byte("second"))
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("期望 os.ErrExist，实际：%v", err)
	}
	b, _ := afero.ReadFile(fs, filepath.Join(dir, "a.nfo"))
	if string(b) != "first" {
		t.Fatalf("已有文件被覆盖：%q", string(b))
	}
}

func TestWriteFileAtomicNoOverwrite_TargetConflictDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := filepath.Join(string(filepath.Separator), "lib")
	if err := fs.MkdirAll(filepath.Join(dir, "a.nfo"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	err := WriteFileAtomicNoOverwrite(fs, dir, "a.nfo", []byte("hello"))
	if !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际：%T %v", err, err)
	}
}
