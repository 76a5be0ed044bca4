// Package handler 提供 HTTP 处理器
// 处理器只负责参数绑定和响应，业务规则都在 service 层
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/weiwangfds/lzydiary/internal/errors"
	"github.com/weiwangfds/lzydiary/internal/middleware"
	"github.com/weiwangfds/lzydiary/internal/response"
)

// currentAccount 返回当前登录账户ID
// 路由没有挂 RequireAuth 时写入401并返回false
func currentAccount(c *gin.Context) (string, bool) {
	id := c.GetString(middleware.AccountIDKey)
	if id == "" {
		response.FromError(c, apperrors.FromCode(apperrors.ErrUnauthorized))
		return "", false
	}
	return id, true
}

// bindJSON 绑定请求体，失败时写入400
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		response.FromError(c, apperrors.FromCode(apperrors.ErrInvalidParams).WithDetails(err.Error()))
		return false
	}
	return true
}

// queryInt 解析整数查询参数，缺省或无法解析时返回 def
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

// queryBool 解析布尔查询参数
func queryBool(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}

// Health 健康检查
func Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}
