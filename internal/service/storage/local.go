package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/weiwangfds/lzydiary/config"
)

// LocalStorage 本地磁盘存储
// 文件保存在 <LocalRoot>/<bucket>/<key>，由HTTP服务以静态文件方式对外提供
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage 创建本地存储
func NewLocalStorage(cfg config.StorageConfig) (*LocalStorage, error) {
	if cfg.LocalRoot == "" {
		return nil, errors.New("local storage requires local_root")
	}
	dir := filepath.Join(cfg.LocalRoot, cfg.Bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create local storage dir: %w", err)
	}
	base := cfg.PublicBaseURL
	if base == "" {
		base = "/uploads"
	}
	return &LocalStorage{dir: dir, baseURL: joinURL(base, cfg.Bucket)}, nil
}

// Name 提供商名称
func (s *LocalStorage) Name() string {
	return "local"
}

// Dir 存储目录
func (s *LocalStorage) Dir() string {
	return s.dir
}

// BaseURL 存储目录对外的访问前缀
func (s *LocalStorage) BaseURL() string {
	return s.baseURL
}

// Upload 写入文件
func (s *LocalStorage) Upload(ctx context.Context, key string, data []byte, _ string, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathOf(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !overwrite {
		flags = os.O_CREATE | os.O_WRONLY | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrObjectExists
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// PublicURL 返回访问地址
func (s *LocalStorage) PublicURL(key string) string {
	return joinURL(s.baseURL, key)
}

// pathOf 拒绝跳出存储目录的 key
func (s *LocalStorage) pathOf(key string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	path := filepath.Join(s.dir, clean)
	if !strings.HasPrefix(path, filepath.Clean(s.dir)+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key: %s", key)
	}
	return path, nil
}
