// Package scan 在目录树中发现待处理的视频文件。
package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/filename"
)

// StateDir 是批量运行在 root 下写报告的目录，扫描时永久排除。
const StateDir = ".filmmatch"

// ScanVideos 扫描 root 下的视频文件，并应用目录排除规则。
//
// 规则：
// - 永久排除：<root>/.filmmatch/
// - excludeDirs：来自配置文件，均视为相对 root 的路径（若是绝对路径，则按绝对路径处理）
// - 同目录已有同名 .nfo 的文件标记 HasNFO（是否跳过由调用方决定）
//
// 扫描阶段只做 stat，不读文件内容。
func ScanVideos(fs afero.Fs, root string, excludeDirs []string) ([]domain.VideoFile, error) {
	root = filepath.Clean(root)
	excluded := buildExcluded(root, excludeDirs)

	files := make([]domain.VideoFile, 0, 128)
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if isExcluded(path, excluded) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		name := info.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !filename.IsVideoExt(ext) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		v := domain.VideoFile{
			AbsPath: path,
			RelPath: rel,
			Base:    strings.TrimSuffix(name, filepath.Ext(name)),
			Ext:     ext,
			Size:    info.Size(),
		}
		v.HasNFO, err = afero.Exists(fs, v.NFOPath())
		if err != nil {
			return err
		}
		files = append(files, v)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 强制稳定输出，避免不同文件系统的遍历顺序差异。
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

func buildExcluded(root string, excludeDirs []string) []string {
	excluded := make([]string, 0, 1+len(excludeDirs))
	excluded = append(excluded, filepath.Join(root, StateDir))

	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if filepath.IsAbs(x) {
			excluded = append(excluded, filepath.Clean(x))
			continue
		}
		excluded = append(excluded, filepath.Clean(filepath.Join(root, x)))
	}

	sort.Strings(excluded)
	return excluded
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if isUnder(path, base) {
			return true
		}
	}
	return false
}

func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	return strings.HasPrefix(path, base+string(filepath.Separator))
}
