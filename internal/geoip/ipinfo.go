package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"goglobe/internal/geom"
)

var errNoToken = errors.New("ipinfo disabled")

type ipinfoClient struct {
	token   string
	baseURL string
	client  *http.Client
}

func newIPInfoClient(token, baseURL string, timeout time.Duration) *ipinfoClient {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = "https://ipinfo.io"
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ipinfoClient{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ExpectContinueTimeout: timeout,
			},
		},
	}
}

type ipinfoResponse struct {
	IP      string `json:"ip"`
	City    string `json:"city"`
	Country string `json:"country"`
	Loc     string `json:"loc"`
	Bogon   bool   `json:"bogon"`
}

func (c *ipinfoClient) lookup(ctx context.Context, addr netip.Addr) (Location, error) {
	if c == nil {
		return Location{}, errNoToken
	}
	url := fmt.Sprintf("%s/%s/json?token=%s", c.baseURL, addr.String(), c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Location{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return Location{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return Location{}, fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Location{}, err
	}
	var parsed ipinfoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Location{}, fmt.Errorf("decode: %w", err)
	}
	if parsed.Bogon || strings.TrimSpace(parsed.Loc) == "" {
		return Location{}, fmt.Errorf("no location for %s", addr)
	}
	lat, lon, err := geom.ParseLatLon(parsed.Loc)
	if err != nil {
		return Location{}, fmt.Errorf("loc: %w", err)
	}
	return Location{
		Lat:     lat,
		Lon:     lon,
		City:    strings.TrimSpace(parsed.City),
		Country: strings.TrimSpace(parsed.Country),
	}, nil
}
