package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client fetches current weather and reverse geocoding from the
// OpenWeather API.
type Client struct {
	httpClient *http.Client
	apiKey     string
	weatherURL string
	geoURL     string
}

func New(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiKey:     apiKey,
		weatherURL: "https://api.openweathermap.org/data/2.5/weather",
		geoURL:     "https://api.openweathermap.org/geo/1.0/reverse",
	}
}

// NewWithBase is used by tests to point the client at a local server.
func NewWithBase(apiKey, weatherURL, geoURL string) *Client {
	c := New(apiKey)
	c.weatherURL = weatherURL
	c.geoURL = geoURL
	return c
}

// CurrentTemperature returns the metric temperature at the coordinates.
func (c *Client) CurrentTemperature(ctx context.Context, lat, lon float64) (float64, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)

	var parsed struct {
		Main struct {
			Temp *float64 `json:"temp"`
		} `json:"main"`
	}
	if err := c.getJSON(ctx, c.weatherURL+"?"+q.Encode(), &parsed); err != nil {
		return 0, err
	}
	if parsed.Main.Temp == nil {
		return 0, fmt.Errorf("weather response has no temperature")
	}
	return *parsed.Main.Temp, nil
}

// CityName resolves the coordinates to a locality name, or "" when the
// geocoder has no result.
func (c *Client) CityName(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("limit", "1")
	q.Set("appid", c.apiKey)

	var parsed []struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, c.geoURL+"?"+q.Encode(), &parsed); err != nil {
		return "", err
	}
	if len(parsed) == 0 {
		return "", nil
	}
	return parsed[0].Name, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather request: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
