package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"
)

// Nominatim 备用服务（OpenStreetMap）
// 公共实例要求携带 User-Agent 且每秒不超过1次请求，limiter 为 nil 时不限速
type Nominatim struct {
	client    *http.Client
	endpoint  string
	language  string
	userAgent string
	limiter   *rate.Limiter
}

// NewNominatim 创建 Nominatim 服务
func NewNominatim(client *http.Client, endpoint, language, userAgent string, limiter *rate.Limiter) *Nominatim {
	if client == nil {
		client = http.DefaultClient
	}
	return &Nominatim{
		client:    client,
		endpoint:  endpoint,
		language:  language,
		userAgent: userAgent,
		limiter:   limiter,
	}
}

type nominatimResponse struct {
	Address *struct {
		City     string `json:"city"`
		Town     string `json:"town"`
		Village  string `json:"village"`
		State    string `json:"state"`
		Province string `json:"province"`
		County   string `json:"county"`
		District string `json:"district"`
		Country  string `json:"country"`
	} `json:"address"`
}

// Name 服务名称
func (n *Nominatim) Name() string {
	return "nominatim"
}

// Lookup 查询坐标
func (n *Nominatim) Lookup(ctx context.Context, lat, lon float64) (Place, error) {
	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			return Place{}, fmt.Errorf("rate limit: %w", err)
		}
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("accept-language", n.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Place{}, err
	}
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return Place{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Place{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var data nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Place{}, fmt.Errorf("decode response: %w", err)
	}
	if data.Address == nil {
		return Place{}, nil
	}

	a := data.Address
	return Place{
		City:     firstNonEmpty(a.City, a.Town, a.Village, a.State, a.Province),
		District: firstNonEmpty(a.County, a.District),
		Country:  a.Country,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
