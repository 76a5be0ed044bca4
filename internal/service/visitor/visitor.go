// Package visitor 记录页面访问
// 写入失败只记日志，不影响页面
package visitor

import (
	"context"
	"net"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/weiwangfds/lzydiary/internal/database"
	"github.com/weiwangfds/lzydiary/internal/logger"
	"github.com/weiwangfds/lzydiary/internal/repository"
)

// Recorder 访客记录器
type Recorder struct {
	store repository.VisitorRepository
}

// NewRecorder 创建访客记录器
func NewRecorder(store repository.VisitorRepository) *Recorder {
	return &Recorder{store: store}
}

// Record 记录一次访问，path 为空时记为 "/"
func (r *Recorder) Record(ctx context.Context, ip, userAgent, path string) {
	if path == "" {
		path = "/"
	}
	v := &database.Visitor{
		IP:        truncate(ip, 64),
		UserAgent: truncate(userAgent, 500),
		Path:      truncate(path, 500),
	}
	if err := r.store.CreateVisitor(ctx, v); err != nil {
		logger.Warnf("[访客] 记录失败: %v", err)
	}
}

// ClientIP 客户端IP：X-Forwarded-For 的第一跳，其次 X-Real-IP，最后是连接地址
func ClientIP(req *http.Request) string {
	if forwarded := req.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(req.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}

// truncate 按字节截断，但不会切开多字节字符
func truncate(s string, max int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
