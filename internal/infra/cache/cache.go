package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/John-Robertt/filmmatch/internal/infra/fsx"
)

// Store 提供 <root>/pages/<source>/<sha1(url)>.html 的页面缓存。
//
// 约束：
// - dry-run：只允许读（ReadOnly=true）
// - TTL<=0 表示缓存永不过期
type Store struct {
	Fs       afero.Fs
	Root     string
	ReadOnly bool
	TTL      time.Duration

	now func() time.Time
}

var ErrReadOnly = errors.New("cache: read-only")

func New(fs afero.Fs, root string, ttl time.Duration, readOnly bool) *Store {
	if fs == nil {
		fs = fsx.OS
	}
	return &Store{
		Fs:       fs,
		Root:     filepath.Clean(strings.TrimSpace(root)),
		ReadOnly: readOnly,
		TTL:      ttl,
		now:      time.Now,
	}
}

// PagePath 返回某个来源下某个 URL 的缓存路径。
func (s *Store) PagePath(source, rawURL string) (string, error) {
	src, err := cleanSource(source)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(rawURL) == "" {
		return "", fmt.Errorf("url 不能为空")
	}
	sum := sha1.Sum([]byte(strings.TrimSpace(rawURL)))
	return filepath.Join(s.Root, "pages", src, hex.EncodeToString(sum[:])+".html"), nil
}

// ReadPage 读取未过期的缓存；不存在或已过期时 ok=false。
func (s *Store) ReadPage(source, rawURL string) ([]byte, bool, error) {
	path, err := s.PagePath(source, rawURL)
	if err != nil {
		return nil, false, err
	}
	fi, err := s.Fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if s.TTL > 0 && s.now().Sub(fi.ModTime()) > s.TTL {
		return nil, false, nil
	}
	b, err := afero.ReadFile(s.Fs, path)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *Store) WritePage(source, rawURL string, body []byte) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	path, err := s.PagePath(source, rawURL)
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomicReplace(s.Fs, filepath.Dir(path), filepath.Base(path), body)
}

var sourceNameRE = regexp.MustCompile(`^[a-z0-9_]+$`)

func cleanSource(p string) (string, error) {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return "", fmt.Errorf("source 不能为空")
	}
	// 最小约束：避免路径穿越；来源名本身是枚举（站点名 / iafd）。
	if !sourceNameRE.MatchString(p) {
		return "", fmt.Errorf("非法 source：%q", p)
	}
	return p, nil
}
