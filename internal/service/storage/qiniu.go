package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/qiniu/go-sdk/v7/auth/qbox"
	qstorage "github.com/qiniu/go-sdk/v7/storage"
	"github.com/weiwangfds/lzydiary/config"
)

// QiniuStorage 七牛云Kodo存储
type QiniuStorage struct {
	mac      *qbox.Mac
	bucket   string
	domain   string
	uploader *qstorage.FormUploader
}

// NewQiniuStorage 创建七牛云Kodo存储
// 七牛的公开访问需要绑定域名，public_base_url 或 endpoint 必须配置其一
func NewQiniuStorage(cfg config.StorageConfig) (*QiniuStorage, error) {
	mac := qbox.NewMac(cfg.AccessKey, cfg.SecretKey)

	var region *qstorage.Region
	if cfg.Region != "" {
		r, ok := qstorage.GetRegionByID(qstorage.RegionID(cfg.Region))
		if !ok {
			return nil, fmt.Errorf("unknown qiniu region: %s", cfg.Region)
		}
		region = &r
	} else {
		r, err := qstorage.GetRegion(cfg.AccessKey, cfg.Bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to get qiniu region: %w", err)
		}
		region = r
	}

	domain := cfg.PublicBaseURL
	if domain == "" {
		domain = cfg.Endpoint
	}
	if domain == "" {
		return nil, fmt.Errorf("qiniu kodo requires public_base_url or endpoint")
	}

	uploader := qstorage.NewFormUploader(&qstorage.Config{
		Region:   region,
		UseHTTPS: cfg.UseSSL,
	})

	return &QiniuStorage{mac: mac, bucket: cfg.Bucket, domain: domain, uploader: uploader}, nil
}

// Name 提供商名称
func (s *QiniuStorage) Name() string {
	return "qiniu"
}

// Upload 表单上传
// scope 为 bucket:key 时允许覆盖，只有 bucket 时为仅新增
func (s *QiniuStorage) Upload(ctx context.Context, key string, data []byte, contentType string, overwrite bool) error {
	scope := s.bucket
	if overwrite {
		scope = s.bucket + ":" + key
	}
	policy := qstorage.PutPolicy{Scope: scope}
	token := policy.UploadToken(s.mac)

	extra := qstorage.PutExtra{MimeType: contentType}
	var ret qstorage.PutRet
	if err := s.uploader.Put(ctx, &ret, token, key, bytes.NewReader(data), int64(len(data)), &extra); err != nil {
		return fmt.Errorf("failed to upload file to qiniu kodo: %w", err)
	}
	return nil
}

// PublicURL 返回访问地址
func (s *QiniuStorage) PublicURL(key string) string {
	return qstorage.MakePublicURLv2(s.domain, key)
}
