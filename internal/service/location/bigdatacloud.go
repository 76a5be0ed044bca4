package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// BigDataCloud 主服务，免费客户端接口无需密钥
type BigDataCloud struct {
	client   *http.Client
	endpoint string
	language string
}

// NewBigDataCloud 创建 BigDataCloud 服务
func NewBigDataCloud(client *http.Client, endpoint, language string) *BigDataCloud {
	if client == nil {
		client = http.DefaultClient
	}
	return &BigDataCloud{client: client, endpoint: endpoint, language: language}
}

type bigDataCloudResponse struct {
	City                 string `json:"city"`
	Locality             string `json:"locality"`
	PrincipalSubdivision string `json:"principalSubdivision"`
	CountryName          string `json:"countryName"`
	LocalityInfo         struct {
		Administrative []adminArea `json:"administrative"`
	} `json:"localityInfo"`
}

type adminArea struct {
	Name       string `json:"name"`
	AdminLevel int    `json:"adminLevel"`
}

// Name 服务名称
func (b *BigDataCloud) Name() string {
	return "bigdatacloud"
}

// Lookup 查询坐标
func (b *BigDataCloud) Lookup(ctx context.Context, lat, lon float64) (Place, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("localityLanguage", b.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Place{}, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return Place{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Place{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var data bigDataCloudResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Place{}, fmt.Errorf("decode response: %w", err)
	}
	return data.place(), nil
}

// place 顶层字段优先，缺失时从行政区划列表中补齐
// 市级取 adminLevel 4/5（找不到时取第2项），区级取 adminLevel 6/8
func (d bigDataCloudResponse) place() Place {
	city := d.City
	if city == "" {
		city = d.PrincipalSubdivision
	}
	district := d.Locality

	adm := d.LocalityInfo.Administrative
	if (city == "" || district == "") && len(adm) > 0 {
		if city == "" {
			if item, ok := findLevel(adm, 4, 5); ok {
				city = item.Name
			} else if len(adm) > 1 {
				city = adm[1].Name
			}
		}
		if district == "" {
			if item, ok := findLevel(adm, 6, 8); ok {
				district = item.Name
			}
		}
	}

	return Place{City: city, District: district, Country: d.CountryName}
}

func findLevel(adm []adminArea, levels ...int) (adminArea, bool) {
	for _, a := range adm {
		for _, l := range levels {
			if a.AdminLevel == l {
				return a, true
			}
		}
	}
	return adminArea{}, false
}
