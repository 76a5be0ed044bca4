package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/weiwangfds/lzydiary/config"
)

// AliyunStorage 阿里云OSS存储
type AliyunStorage struct {
	bucket  *oss.Bucket
	baseURL string
}

// NewAliyunStorage 创建阿里云OSS存储
func NewAliyunStorage(cfg config.StorageConfig) (*AliyunStorage, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		if cfg.Region == "" {
			return nil, fmt.Errorf("aliyun oss requires endpoint or region")
		}
		endpoint = fmt.Sprintf("https://oss-%s.aliyuncs.com", cfg.Region)
	}

	client, err := oss.New(endpoint, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create aliyun oss client: %w", err)
	}

	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", cfg.Bucket, err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		base = virtualHostURL(endpoint, cfg.Bucket)
	}

	return &AliyunStorage{bucket: bucket, baseURL: base}, nil
}

// Name 提供商名称
func (s *AliyunStorage) Name() string {
	return "aliyun"
}

// Upload 上传到OSS，禁止覆盖时使用 x-oss-forbid-overwrite
func (s *AliyunStorage) Upload(ctx context.Context, key string, data []byte, contentType string, overwrite bool) error {
	options := []oss.Option{oss.WithContext(ctx), oss.ForbidOverWrite(!overwrite)}
	if contentType != "" {
		options = append(options, oss.ContentType(contentType))
	}

	if err := s.bucket.PutObject(key, bytes.NewReader(data), options...); err != nil {
		if svcErr, ok := err.(oss.ServiceError); ok && svcErr.Code == "FileAlreadyExists" {
			return ErrObjectExists
		}
		return fmt.Errorf("failed to upload file to aliyun oss: %w", err)
	}
	return nil
}

// PublicURL 返回访问地址
func (s *AliyunStorage) PublicURL(key string) string {
	return joinURL(s.baseURL, key)
}

// virtualHostURL 把 https://oss-cn-hangzhou.aliyuncs.com 变成 https://bucket.oss-cn-hangzhou.aliyuncs.com
func virtualHostURL(endpoint, bucket string) string {
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return joinURL(endpoint, bucket)
	}
	u.Host = bucket + "." + u.Host
	u.Path = ""
	return u.String()
}
