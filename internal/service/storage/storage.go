// Package storage 提供日记图片的对象存储
// 支持本地磁盘、阿里云OSS、腾讯云COS、七牛云Kodo、MinIO 和 AWS S3
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/weiwangfds/lzydiary/config"
	"github.com/weiwangfds/lzydiary/internal/logger"
)

// ErrObjectExists 禁止覆盖时目标对象已存在
var ErrObjectExists = errors.New("object already exists")

// ErrUnsupportedProvider 未知的存储提供商
var ErrUnsupportedProvider = errors.New("unsupported storage provider")

// BlobStorage 对象存储接口
type BlobStorage interface {
	// Name 提供商名称，用于日志
	Name() string

	// Upload 上传对象
	// overwrite 为 false 且对象已存在时返回 ErrObjectExists
	Upload(ctx context.Context, key string, data []byte, contentType string, overwrite bool) error

	// PublicURL 返回对象的公开访问地址
	PublicURL(key string) string
}

// New 根据配置创建存储实例
// provider 为 none 时返回 nil，调用方需要把它视为"未配置存储"
func New(cfg config.StorageConfig) (BlobStorage, error) {
	var (
		s   BlobStorage
		err error
	)

	switch cfg.Provider {
	case "", "none":
		logger.Warnf("[存储] 未配置图片存储，带图片的日记将无法保存")
		return nil, nil
	case "local":
		s, err = NewLocalStorage(cfg)
	case "aliyun":
		s, err = NewAliyunStorage(cfg)
	case "tencent":
		s, err = NewTencentStorage(cfg)
	case "qiniu":
		s, err = NewQiniuStorage(cfg)
	case "minio":
		s, err = NewMinioStorage(cfg)
	case "s3":
		s, err = NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	logger.Infof("[存储] 使用 %s 存储，bucket: %s", s.Name(), cfg.Bucket)
	return s, nil
}

// DetectContentType 根据文件内容识别MIME类型
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

// ExtensionOf 按内容识别扩展名（不含点），不信任客户端文件名
// 无法识别时使用 jpg
func ExtensionOf(data []byte) string {
	if ext := strings.TrimPrefix(mimetype.Detect(data).Extension(), "."); ext != "" {
		return ext
	}
	return "jpg"
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
