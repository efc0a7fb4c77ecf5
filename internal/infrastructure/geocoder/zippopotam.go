package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vigil/internal/domain/geo"
)

// Zippopotam docs: https://api.zippopotam.us/
// Endpoint used: /us/<zipcode>

const DefaultBaseURL = "https://api.zippopotam.us/us"

type Zippopotam struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

type zipResp struct {
	PostCode            string      `json:"post code"`
	Country             string      `json:"country"`
	CountryAbbreviation string      `json:"country abbreviation"`
	Places              []placeResp `json:"places"`
}

// upstream sends coordinates as strings
type placeResp struct {
	PlaceName         string `json:"place name"`
	Longitude         string `json:"longitude"`
	State             string `json:"state"`
	StateAbbreviation string `json:"state abbreviation"`
	Latitude          string `json:"latitude"`
}

func NewZippopotam(baseURL, userAgent string, timeout time.Duration) *Zippopotam {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Zippopotam{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
	}
}

func (z *Zippopotam) Name() string { return "zippopotam" }

// Lookup fetches what the upstream knows about zipcode. An unknown zipcode is
// reported as geo.ErrNotFound.
func (z *Zippopotam) Lookup(ctx context.Context, zipcode string) (*geo.ZipInfo, error) {
	u := fmt.Sprintf("%s/%s", z.baseURL, zipcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if z.userAgent != "" {
		req.Header.Set("User-Agent", z.userAgent)
	}

	resp, err := z.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("zippopotam: %w: %s", geo.ErrNotFound, zipcode)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("zippopotam: rate limited (%d)", resp.StatusCode)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("zippopotam: http %d", resp.StatusCode)
	}

	var data zipResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("zippopotam: decode: %w", err)
	}

	info := &geo.ZipInfo{
		PostCode:    data.PostCode,
		Country:     data.Country,
		CountryCode: data.CountryAbbreviation,
		Places:      make([]geo.Place, 0, len(data.Places)),
	}
	for _, p := range data.Places {
		lat, err := strconv.ParseFloat(strings.TrimSpace(p.Latitude), 64)
		if err != nil {
			return nil, fmt.Errorf("zippopotam: bad latitude %q", p.Latitude)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(p.Longitude), 64)
		if err != nil {
			return nil, fmt.Errorf("zippopotam: bad longitude %q", p.Longitude)
		}
		info.Places = append(info.Places, geo.Place{
			Name:      p.PlaceName,
			State:     p.State,
			StateCode: p.StateAbbreviation,
			Latitude:  lat,
			Longitude: lon,
		})
	}
	return info, nil
}
