// Package config 负责加载应用配置
// 配置来源优先级: 环境变量(LZYDIARY_前缀) > config.yaml > 默认值
// 启动时会先尝试加载工作目录下的 .env 文件
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "LZYDIARY"

// Config 应用总配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Geocode  GeocodeConfig  `mapstructure:"geocode"`
	Upload   UploadConfig   `mapstructure:"upload"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port" validate:"min=1,max=65535"`
	Mode         string   `mapstructure:"mode" validate:"oneof=debug release test"`
	ReadTimeout  int      `mapstructure:"read_timeout"`  // 秒
	WriteTimeout int      `mapstructure:"write_timeout"` // 秒
	EnableHTTPS  bool     `mapstructure:"enable_https"`
	EnableHTTP2  bool     `mapstructure:"enable_http2"`
	TLSCertFile  string   `mapstructure:"tls_cert_file" validate:"required_if=EnableHTTPS true"`
	TLSKeyFile   string   `mapstructure:"tls_key_file" validate:"required_if=EnableHTTPS true"`
	AllowOrigins []string `mapstructure:"allow_origins"`
	// TrustedProxies 可信反向代理的IP或网段，为空时忽略 X-Forwarded-For
	TrustedProxies []string `mapstructure:"trusted_proxies" validate:"dive,cidr|ip"`
	// RateLimit 每个客户端IP每秒允许的请求数，0表示不限流
	RateLimit float64 `mapstructure:"rate_limit" validate:"min=0"`
	RateBurst int     `mapstructure:"rate_burst" validate:"min=0"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" validate:"oneof=sqlite postgres mysql"`
	DSN             string `mapstructure:"dsn" validate:"required"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
	LogLevel        string `mapstructure:"log_level" validate:"oneof=silent error warn info"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format" validate:"oneof=json text"`
	Output   string `mapstructure:"output" validate:"oneof=console file both"`
	FilePath string `mapstructure:"file_path"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" validate:"required"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	// SessionTimeout 会话校验的最长等待时间，超时视为未登录
	SessionTimeout    time.Duration `mapstructure:"session_timeout"`
	MinPasswordLength int           `mapstructure:"min_password_length" validate:"min=1"`
	// AdminKey 管理员密钥，未配置时账户删除等特权操作不可用
	AdminKey string `mapstructure:"admin_key"`
}

// StorageConfig 图片存储配置
type StorageConfig struct {
	// Provider 可选 local, aliyun, tencent, qiniu, minio, s3, none
	Provider      string `mapstructure:"provider" validate:"oneof=local aliyun tencent qiniu minio s3 none"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	Region        string `mapstructure:"region"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	// LocalRoot 本地存储根目录，仅 provider=local 时生效
	LocalRoot string `mapstructure:"local_root"`
}

// GeocodeConfig 逆地理编码配置
type GeocodeConfig struct {
	PrimaryURL   string        `mapstructure:"primary_url" validate:"required,url"`
	SecondaryURL string        `mapstructure:"secondary_url" validate:"required,url"`
	Language     string        `mapstructure:"language"`
	UserAgent    string        `mapstructure:"user_agent" validate:"required"`
	Timeout      time.Duration `mapstructure:"timeout"`
	// SecondaryRPS 备用服务每秒请求上限
	SecondaryRPS   float64 `mapstructure:"secondary_rps" validate:"gt=0"`
	SecondaryBurst int     `mapstructure:"secondary_burst" validate:"min=1"`
}

// UploadConfig 图片上传限制
type UploadConfig struct {
	MaxImageSize int64    `mapstructure:"max_image_size"` // 字节
	MaxImages    int      `mapstructure:"max_images"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

// Load 加载配置
// 参数:
//   - file: 配置文件路径，为空时在 . 和 ./config 下查找 config.yaml
//
// 返回值:
//   - *Config: 配置
//   - error: 读取或校验失败
func Load(file string) (*Config, error) {
	v, err := newViper(file)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// Watch 监听配置文件变化，变更后重新解析并回调
// 解析失败的变更会被忽略，只有通过校验的配置才会传给 onChange
func Watch(file string, onChange func(*Config)) error {
	v, err := newViper(file)
	if err != nil {
		return err
	}
	if v.ConfigFileUsed() == "" {
		return errors.New("no config file to watch")
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

func newViper(file string) (*viper.Viper, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
		return v, nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.enable_https", false)
	v.SetDefault("server.enable_http2", true)
	v.SetDefault("server.tls_cert_file", "")
	v.SetDefault("server.tls_key_file", "")
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 50)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/lzydiary.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 3600)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.file_path", "logs/lzydiary.log")

	v.SetDefault("auth.jwt_secret", "change-me")
	v.SetDefault("auth.token_ttl", "168h")
	v.SetDefault("auth.session_timeout", "5s")
	v.SetDefault("auth.min_password_length", 6)
	v.SetDefault("auth.admin_key", "")

	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.bucket", "diary-images")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.public_base_url", "/uploads")
	v.SetDefault("storage.local_root", "data/uploads")

	v.SetDefault("geocode.primary_url", "https://api.bigdatacloud.net/data/reverse-geocode-client")
	v.SetDefault("geocode.secondary_url", "https://nominatim.openstreetmap.org/reverse")
	v.SetDefault("geocode.language", "zh")
	v.SetDefault("geocode.user_agent", "LZYDiary/1.0 (personal diary)")
	v.SetDefault("geocode.timeout", "10s")
	v.SetDefault("geocode.secondary_rps", 1.0)
	v.SetDefault("geocode.secondary_burst", 1)

	v.SetDefault("upload.max_image_size", 10<<20)
	v.SetDefault("upload.max_images", 9)
	v.SetDefault("upload.allowed_types", []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/heic"})
}
