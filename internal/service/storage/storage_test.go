package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/lzydiary/config"
)

// 最小的PNG文件头
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestNewByProvider(t *testing.T) {
	t.Run("未配置存储", func(t *testing.T) {
		s, err := New(config.StorageConfig{Provider: "none"})
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("未知提供商", func(t *testing.T) {
		_, err := New(config.StorageConfig{Provider: "ftp"})
		assert.ErrorIs(t, err, ErrUnsupportedProvider)
	})

	t.Run("本地存储", func(t *testing.T) {
		s, err := New(config.StorageConfig{Provider: "local", Bucket: "diary-images", LocalRoot: t.TempDir()})
		require.NoError(t, err)
		assert.Equal(t, "local", s.Name())
	})
}

func TestLocalStorageUpload(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(config.StorageConfig{Bucket: "diary-images", LocalRoot: root, PublicBaseURL: "/uploads"})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "d1/1700000000000-0.png", pngHeader, "image/png", true))
	data, err := os.ReadFile(filepath.Join(root, "diary-images", "d1", "1700000000000-0.png"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "/uploads/diary-images/d1/1700000000000-0.png", s.PublicURL("d1/1700000000000-0.png"))

	t.Run("允许覆盖", func(t *testing.T) {
		require.NoError(t, s.Upload(ctx, "d1/1700000000000-0.png", []byte("new"), "", true))
		data, err := os.ReadFile(filepath.Join(root, "diary-images", "d1", "1700000000000-0.png"))
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), data)
	})

	t.Run("禁止覆盖", func(t *testing.T) {
		err := s.Upload(ctx, "d1/1700000000000-0.png", []byte("again"), "", false)
		assert.ErrorIs(t, err, ErrObjectExists)
	})

	t.Run("路径不能跳出存储目录", func(t *testing.T) {
		require.NoError(t, s.Upload(ctx, "../../escape.txt", []byte("x"), "", true))
		assert.NoFileExists(t, filepath.Join(root, "escape.txt"))
		assert.FileExists(t, filepath.Join(root, "diary-images", "escape.txt"))
	})

	t.Run("已取消的上下文", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, s.Upload(cancelled, "d1/x.png", pngHeader, "", true), context.Canceled)
	})
}

func TestExtensionOf(t *testing.T) {
	assert.Equal(t, "png", ExtensionOf(pngHeader))
	// 带脚本尾巴的PNG仍按内容识别
	assert.Equal(t, "png", ExtensionOf(append(append([]byte{}, pngHeader...), "<script>alert(1)</script>"...)))
	assert.Equal(t, "jpg", ExtensionOf([]byte{0x00, 0x01, 0x02, 0x03}))
	assert.Equal(t, "image/png", DetectContentType(pngHeader))
}

func TestPublicURLs(t *testing.T) {
	t.Run("阿里云", func(t *testing.T) {
		s, err := NewAliyunStorage(config.StorageConfig{Region: "cn-hangzhou", Bucket: "diary-images", AccessKey: "ak", SecretKey: "sk"})
		require.NoError(t, err)
		assert.Equal(t, "https://diary-images.oss-cn-hangzhou.aliyuncs.com/d1/a.png", s.PublicURL("d1/a.png"))
	})

	t.Run("腾讯云", func(t *testing.T) {
		s, err := NewTencentStorage(config.StorageConfig{Region: "ap-beijing", Bucket: "diary-1250000000", AccessKey: "ak", SecretKey: "sk"})
		require.NoError(t, err)
		assert.Equal(t, "https://diary-1250000000.cos.ap-beijing.myqcloud.com/d1/a.png", s.PublicURL("d1/a.png"))
	})

	t.Run("MinIO", func(t *testing.T) {
		s, err := NewMinioStorage(config.StorageConfig{Endpoint: "localhost:9000", Bucket: "diary-images", AccessKey: "ak", SecretKey: "sk"})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000/diary-images/d1/a.png", s.PublicURL("d1/a.png"))
	})

	t.Run("S3", func(t *testing.T) {
		s, err := NewS3Storage(config.StorageConfig{Region: "us-east-1", Bucket: "diary-images", AccessKey: "ak", SecretKey: "sk"})
		require.NoError(t, err)
		assert.Equal(t, "https://diary-images.s3.us-east-1.amazonaws.com/d1/a.png", s.PublicURL("d1/a.png"))
	})

	t.Run("七牛云", func(t *testing.T) {
		s, err := NewQiniuStorage(config.StorageConfig{Region: "z0", Bucket: "diary-images", PublicBaseURL: "https://img.example.com", AccessKey: "ak", SecretKey: "sk"})
		require.NoError(t, err)
		assert.Equal(t, "https://img.example.com/d1/a.png", s.PublicURL("d1/a.png"))
	})
}
