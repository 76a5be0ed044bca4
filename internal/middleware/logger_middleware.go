package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/weiwangfds/lzydiary/internal/logger"
)

// LoggerMiddleware 访问日志中间件
type LoggerMiddleware struct {
	logger    *logrus.Logger
	skipPaths map[string]struct{}
}

// NewLoggerMiddleware 创建访问日志中间件
// 参数:
//   - l: 日志实例，为nil时使用全局日志
//   - skipPaths: 不记录的路径，例如 /health
func NewLoggerMiddleware(l *logrus.Logger, skipPaths ...string) *LoggerMiddleware {
	if l == nil {
		l = logger.GetLogger()
	}
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}
	return &LoggerMiddleware{logger: l, skipPaths: skip}
}

// Logger 每个请求结束后记录一条访问日志
// 5xx 记为 error，4xx 记为 warn
func (m *LoggerMiddleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if _, ok := m.skipPaths[path]; ok {
			return
		}

		status := c.Writer.Status()
		fields := logrus.Fields{
			"status":     status,
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
			"method":     c.Request.Method,
			"path":       path,
			"request_id": c.GetString(RequestIDKey),
		}
		if raw != "" {
			fields["query"] = raw
		}
		if id, ok := c.Get(AccountIDKey); ok {
			fields["account_id"] = id
		}
		if len(c.Errors) > 0 {
			fields["error"] = c.Errors.String()
		}

		entry := m.logger.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("HTTP请求")
		case status >= 400:
			entry.Warn("HTTP请求")
		default:
			entry.Info("HTTP请求")
		}
	}
}
