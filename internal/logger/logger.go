// Package logger 基于 logrus 的全局日志
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger 全局日志实例
var Logger *logrus.Logger

const timestampFormat = "2006-01-02 15:04:05"

// Config 日志配置
type Config struct {
	// Level 日志级别 (debug, info, warn, error)
	Level string
	// Format 日志格式 (json, text)
	Format string
	// Output 输出方式 (console, file, both)
	Output string
	// FilePath 日志文件路径，Output 为 file 或 both 时使用
	FilePath string
}

// DefaultConfig 返回默认日志配置
func DefaultConfig() *Config {
	return &Config{
		Level:    "info",
		Format:   "text",
		Output:   "console",
		FilePath: "logs/lzydiary.log",
	}
}

// Init 初始化日志系统
// 参数:
//   - cfg: 日志配置，为nil时使用默认配置
//
// 返回值:
//   - error: 日志文件无法创建时返回错误
func Init(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	l := logrus.New()

	switch strings.ToLower(cfg.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timestampFormat})
	}

	out, err := openOutput(cfg)
	if err != nil {
		return err
	}
	l.SetOutput(out)

	Logger = l
	SetLevel(cfg.Level)

	// gin 的调试输出也走 logrus
	w := &GinLogWriter{logger: l}
	gin.DefaultWriter = w
	gin.DefaultErrorWriter = w

	l.Info("日志系统初始化完成")
	return nil
}

// SetLevel 动态调整日志级别，无法解析时回退到 info
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		GetLogger().Warnf("无效的日志级别 '%s'，使用默认级别 'info'", level)
		lvl = logrus.InfoLevel
	}
	GetLogger().SetLevel(lvl)
}

func openOutput(cfg *Config) (io.Writer, error) {
	if cfg.Output != "file" && cfg.Output != "both" {
		return os.Stdout, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	if cfg.Output == "file" {
		return f, nil
	}
	return io.MultiWriter(os.Stdout, f), nil
}

// GinLogWriter 把 gin 的输出转写到 logrus
type GinLogWriter struct {
	logger *logrus.Logger
}

// Write 实现io.Writer接口
func (w *GinLogWriter) Write(p []byte) (int, error) {
	w.logger.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// GetLogger 获取日志实例，未初始化时使用 logrus 标准实例
func GetLogger() *logrus.Logger {
	if Logger == nil {
		return logrus.StandardLogger()
	}
	return Logger
}

// Debugf 记录调试日志
func Debugf(format string, args ...interface{}) {
	GetLogger().Debugf(format, args...)
}

// Info 记录信息日志
func Info(args ...interface{}) {
	GetLogger().Info(args...)
}

// Infof 记录格式化信息日志
func Infof(format string, args ...interface{}) {
	GetLogger().Infof(format, args...)
}

// Warnf 记录格式化警告日志
func Warnf(format string, args ...interface{}) {
	GetLogger().Warnf(format, args...)
}

// Errorf 记录格式化错误日志
func Errorf(format string, args ...interface{}) {
	GetLogger().Errorf(format, args...)
}

// Fatalf 记录致命日志并退出程序
func Fatalf(format string, args ...interface{}) {
	GetLogger().Fatalf(format, args...)
}

// WithField 添加字段到日志条目
func WithField(key string, value interface{}) *logrus.Entry {
	return GetLogger().WithField(key, value)
}

// WithFields 添加多个字段到日志条目
func WithFields(fields logrus.Fields) *logrus.Entry {
	return GetLogger().WithFields(fields)
}
