package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "diary-images", cfg.Storage.Bucket)
	assert.Equal(t, 5*time.Second, cfg.Auth.SessionTimeout)
	assert.Equal(t, 6, cfg.Auth.MinPasswordLength)
	assert.Equal(t, 10*time.Second, cfg.Geocode.Timeout)
	assert.Equal(t, "LZYDiary/1.0 (personal diary)", cfg.Geocode.UserAgent)
	assert.Empty(t, cfg.Auth.AdminKey)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	file := filepath.Join(dir, "custom.yaml")
	content := []byte(`
server:
  port: 9000
storage:
  provider: minio
  bucket: photos
geocode:
  timeout: 3s
`)
	require.NoError(t, os.WriteFile(file, content, 0o644))

	t.Setenv("LZYDIARY_SERVER_PORT", "9100")
	t.Setenv("LZYDIARY_AUTH_ADMIN_KEY", "secret")

	cfg, err := Load(file)
	require.NoError(t, err)

	// 环境变量优先于配置文件
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "minio", cfg.Storage.Provider)
	assert.Equal(t, "photos", cfg.Storage.Bucket)
	assert.Equal(t, 3*time.Second, cfg.Geocode.Timeout)
	assert.Equal(t, "secret", cfg.Auth.AdminKey)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("未知存储提供商", func(t *testing.T) {
		t.Setenv("LZYDIARY_STORAGE_PROVIDER", "ftp")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("未知数据库驱动", func(t *testing.T) {
		t.Setenv("LZYDIARY_DATABASE_DRIVER", "oracle")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("配置文件不存在", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}
