package handler

import (
	"context"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/weiwangfds/lzydiary/internal/errors"
	"github.com/weiwangfds/lzydiary/internal/response"
	"github.com/weiwangfds/lzydiary/internal/service/location"
	"github.com/weiwangfds/lzydiary/internal/service/visitor"
)

// Resolver 坐标转地址
type Resolver interface {
	Resolve(ctx context.Context, lat, lon float64) string
}

// LocationHandler 位置解析和访客记录
type LocationHandler struct {
	resolver Resolver
	visitors *visitor.Recorder
}

// NewLocationHandler 创建位置处理器
func NewLocationHandler(resolver Resolver, visitors *visitor.Recorder) *LocationHandler {
	return &LocationHandler{resolver: resolver, visitors: visitors}
}

// Resolve 把坐标解析成可读地址，解析失败时返回坐标串本身
// @Router /api/v1/location/resolve [get]
func (h *LocationHandler) Resolve(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil || !finite(lat) || !finite(lon) {
		response.FromError(c, apperrors.FromCode(apperrors.ErrInvalidCoordinate))
		return
	}

	address := h.resolver.Resolve(c.Request.Context(), lat, lon)
	response.Success(c, gin.H{
		"address":    address,
		"coordinate": location.FormatCoordinate(lat, lon),
		"resolved":   address != location.FormatCoordinate(lat, lon),
	})
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Check 判断一个位置字符串是不是坐标串
// @Router /api/v1/location/check [get]
func (h *LocationHandler) Check(c *gin.Context) {
	value := c.Query("value")
	lat, lon, ok := location.ParseCoordinateString(value)
	data := gin.H{"is_coordinate": ok}
	if ok {
		data["lat"] = lat
		data["lon"] = lon
	}
	response.Success(c, data)
}

// Visit 记录一次页面访问，总是返回204
// @Router /api/v1/visitor [get]
func (h *LocationHandler) Visit(c *gin.Context) {
	if h.visitors != nil {
		h.visitors.Record(c.Request.Context(), visitor.ClientIP(c.Request), c.Request.UserAgent(), c.Query("path"))
	}
	response.NoContent(c)
}
