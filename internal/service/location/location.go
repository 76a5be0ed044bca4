// Package location 把经纬度解析成「xx市xx区」形式的地址
//
// 解析顺序：主服务 → 备用服务 → 坐标字符串。Resolve 永远返回可展示的字符串，
// 网络和解析错误只记录日志，不会返回给调用方。
package location

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/weiwangfds/lzydiary/config"
	"github.com/weiwangfds/lzydiary/internal/logger"
	"golang.org/x/time/rate"
)

// Place 各服务商返回结果的统一形式
type Place struct {
	City     string
	District string
	Country  string
}

// Provider 逆地理编码服务
type Provider interface {
	Name() string
	// Lookup 查询坐标，网络错误、非2xx状态和无法解析的响应都返回 error
	Lookup(ctx context.Context, lat, lon float64) (Place, error)
}

// Resolver 位置解析器
type Resolver struct {
	primary   Provider
	secondary Provider
}

// NewResolver 创建解析器，任一服务可以为 nil
func NewResolver(primary, secondary Provider) *Resolver {
	return &Resolver{primary: primary, secondary: secondary}
}

// NewResolverFromConfig 按配置创建 BigDataCloud + Nominatim 解析器
func NewResolverFromConfig(cfg config.GeocodeConfig) *Resolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	primary := NewBigDataCloud(client, cfg.PrimaryURL, cfg.Language)
	secondary := NewNominatim(client, cfg.SecondaryURL, cfg.Language, cfg.UserAgent,
		rate.NewLimiter(rate.Limit(cfg.SecondaryRPS), cfg.SecondaryBurst))
	return NewResolver(primary, secondary)
}

// Resolve 解析坐标
//
// 主服务调用成功时直接使用它的结果（没有可用字段就退回坐标字符串），
// 只有主服务调用失败才会尝试备用服务。
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64) string {
	fallback := FormatCoordinate(lat, lon)

	if r.primary != nil {
		place, err := r.primary.Lookup(ctx, lat, lon)
		if err == nil {
			return compose(place, fallback)
		}
		logger.Warnf("[定位服务] %s 查询 %s 失败: %v", r.primary.Name(), fallback, err)
	}

	if r.secondary != nil {
		place, err := r.secondary.Lookup(ctx, lat, lon)
		if err == nil {
			return compose(place, fallback)
		}
		logger.Warnf("[定位服务] %s 查询 %s 失败: %v", r.secondary.Name(), fallback, err)
	}

	return fallback
}

// ResolveStored 对已保存的位置做延迟解析
// 只有当 stored 是坐标串且解析出了真实地址时才返回 (地址, true)，否则原样返回 (stored, false)
func (r *Resolver) ResolveStored(ctx context.Context, stored string) (string, bool) {
	lat, lon, ok := ParseCoordinateString(stored)
	if !ok {
		return stored, false
	}
	resolved := r.Resolve(ctx, lat, lon)
	if IsCoordinateString(resolved) {
		return stored, false
	}
	return resolved, true
}

func compose(p Place, fallback string) string {
	switch {
	case p.City != "" && p.District != "":
		return p.City + p.District
	case p.City != "":
		return p.City
	case p.District != "":
		return p.District
	case p.Country != "":
		return p.Country
	default:
		return fallback
	}
}

// FormatCoordinate 坐标字符串，保留4位小数
func FormatCoordinate(lat, lon float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lon)
}

var coordinatePattern = regexp.MustCompile(`^[-+]?\d+\.?\d*,\s*[-+]?\d+\.?\d*$`)

// IsCoordinateString 判断字符串是否为 "纬度, 经度" 形式
func IsCoordinateString(s string) bool {
	return coordinatePattern.MatchString(strings.TrimSpace(s))
}

// ParseCoordinateString 解析 "纬度, 经度"
func ParseCoordinateString(s string) (lat, lon float64, ok bool) {
	s = strings.TrimSpace(s)
	if !coordinatePattern.MatchString(s) {
		return 0, 0, false
	}
	parts := strings.SplitN(s, ",", 2)
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
