// Package weather fetches the weather and moon phase snapshots a trip stores
// when it starts. Responses are shape-checked and passed through unchanged.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/fishlog/internal/domain"
)

const (
	defaultWeatherBaseURL = "https://api.openweathermap.org"
	defaultLunarBaseURL   = "https://api.farmsense.net"

	// Upstream bodies are small; anything larger is not a weather response.
	maxResponseBytes = 1 << 20
)

// Client talks to OpenWeather for current conditions and Farmsense for moon
// phases. The zero value works apart from APIKey, which OpenWeather requires.
type Client struct {
	APIKey         string
	WeatherBaseURL string
	LunarBaseURL   string
	HTTPClient     *http.Client
}

// Current returns the OpenWeather conditions at lat/lon for date as a raw
// JSON object. Failures are reported as domain.ErrDependency.
func (c *Client) Current(ctx context.Context, lat, lon float64, date time.Time) (json.RawMessage, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, fmt.Errorf("%w: weather API key not configured", domain.ErrDependency)
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("dt", strconv.FormatInt(date.Unix(), 10))
	q.Set("appid", c.APIKey)
	q.Set("units", "metric")
	endpoint := baseURL(c.WeatherBaseURL, defaultWeatherBaseURL) + "/data/2.5/weather?" + q.Encode()

	body, err := c.get(ctx, endpoint, "weather")
	if err != nil {
		return nil, err
	}
	if !isJSON(body, '{') {
		return nil, fmt.Errorf("%w: weather response is not a JSON object", domain.ErrDependency)
	}
	return body, nil
}

// MoonPhase returns the Farmsense moon phase list for date as a raw JSON array.
func (c *Client) MoonPhase(ctx context.Context, date time.Time) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("d", strconv.FormatInt(date.Unix(), 10))
	endpoint := baseURL(c.LunarBaseURL, defaultLunarBaseURL) + "/v1/moonphases/?" + q.Encode()

	body, err := c.get(ctx, endpoint, "lunar")
	if err != nil {
		return nil, err
	}
	if !isJSON(body, '[') {
		return nil, fmt.Errorf("%w: lunar response is not a JSON array", domain.ErrDependency)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, endpoint, name string) (json.RawMessage, error) {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("weather.Client: create %s request: %w", name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s request: %v", domain.ErrDependency, name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %v", domain.ErrDependency, name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s request failed with status %d", domain.ErrDependency, name, resp.StatusCode)
	}
	return json.RawMessage(strings.TrimSpace(string(body))), nil
}

func baseURL(configured, fallback string) string {
	u := strings.TrimRight(strings.TrimSpace(configured), "/")
	if u == "" {
		return fallback
	}
	return u
}

func isJSON(body []byte, open byte) bool {
	return len(body) > 0 && body[0] == open && json.Valid(body)
}
