package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tencentyun/cos-go-sdk-v5"
	"github.com/weiwangfds/lzydiary/config"
)

// TencentStorage 腾讯云COS存储
type TencentStorage struct {
	client  *cos.Client
	baseURL string
}

// NewTencentStorage 创建腾讯云COS存储
func NewTencentStorage(cfg config.StorageConfig) (*TencentStorage, error) {
	bucketURL := cfg.Endpoint
	if bucketURL == "" {
		if cfg.Region == "" {
			return nil, fmt.Errorf("tencent cos requires endpoint or region")
		}
		bucketURL = fmt.Sprintf("https://%s.cos.%s.myqcloud.com", cfg.Bucket, cfg.Region)
	}

	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bucket URL: %w", err)
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		},
	})

	return &TencentStorage{client: client, baseURL: cfg.PublicBaseURL}, nil
}

// Name 提供商名称
func (s *TencentStorage) Name() string {
	return "tencent"
}

// Upload 上传到COS
// COS 没有原子的禁止覆盖选项，先检查对象是否存在
func (s *TencentStorage) Upload(ctx context.Context, key string, data []byte, contentType string, overwrite bool) error {
	if !overwrite {
		exists, err := s.client.Object.IsExist(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to check object in tencent cos: %w", err)
		}
		if exists {
			return ErrObjectExists
		}
	}

	opt := &cos.ObjectPutOptions{}
	if contentType != "" {
		opt.ObjectPutHeaderOptions = &cos.ObjectPutHeaderOptions{ContentType: contentType}
	}
	if _, err := s.client.Object.Put(ctx, key, bytes.NewReader(data), opt); err != nil {
		return fmt.Errorf("failed to upload file to tencent cos: %w", err)
	}
	return nil
}

// PublicURL 返回访问地址
func (s *TencentStorage) PublicURL(key string) string {
	if s.baseURL != "" {
		return joinURL(s.baseURL, key)
	}
	return s.client.Object.GetObjectURL(key).String()
}
