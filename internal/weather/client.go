// Package weather fetches current wind conditions from the Weather Underground conditions API.
package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"windguard/internal/config"
	"windguard/internal/models"
)

// ErrFetch marks every way a poll can fail to produce a usable reading.
var ErrFetch = errors.New("weather fetch failed")

// Client fetches the current wind speed for a single configured location.
type Client struct {
	baseURL    string
	apiKey     string
	query      string
	useGust    bool
	httpClient *http.Client
	now        func() time.Time
}

// NewClient builds a client from config with its own http.Client.
func NewClient(cfg config.Weather) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout})
}

// NewClientWithHTTP builds a client using the provided http.Client.
func NewClientWithHTTP(cfg config.Weather, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		query:      locationQuery(cfg),
		useGust:    cfg.UseGust,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// locationQuery is "lat,long", or "pws:<id>" for a specific personal weather station.
func locationQuery(cfg config.Weather) string {
	if cfg.StationID != "" {
		return "pws:" + cfg.StationID
	}
	return cfg.Latitude + "," + cfg.Longitude
}

type conditionsResponse struct {
	CurrentObservation struct {
		WindMph     json.RawMessage `json:"wind_mph"`
		WindGustMph json.RawMessage `json:"wind_gust_mph"`
	} `json:"current_observation"`
}

func (c *Client) conditionsURL() string {
	return fmt.Sprintf("%s/api/%s/conditions/q/%s.json",
		c.baseURL, url.PathEscape(c.apiKey), c.query)
}

// FetchWindSpeed issues one GET and returns the reading. Non-200 statuses,
// undecodable bodies and non-numeric wind fields all wrap ErrFetch.
func (c *Client) FetchWindSpeed(ctx context.Context) (models.WindReading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.conditionsURL(), nil)
	if err != nil {
		return models.WindReading{}, fmt.Errorf("%w: build request: %v", ErrFetch, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.WindReading{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.WindReading{}, fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.WindReading{}, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	var out conditionsResponse
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&out); err != nil {
		return models.WindReading{}, fmt.Errorf("%w: decode: %v", ErrFetch, err)
	}

	field := out.CurrentObservation.WindMph
	if c.useGust {
		field = out.CurrentObservation.WindGustMph
	}
	speed, err := parseSpeed(field)
	if err != nil {
		return models.WindReading{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	return models.WindReading{SpeedMph: speed, ObservedAt: c.now().UTC()}, nil
}

// parseSpeed accepts a JSON number or a string holding one. NaN and
// infinities are not speeds.
func parseSpeed(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New("wind speed missing")
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("wind speed is not numeric: %s", raw)
		}
		n, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("wind speed is not numeric: %q", s)
		}
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("wind speed is not numeric: %s", raw)
	}
	return n, nil
}
