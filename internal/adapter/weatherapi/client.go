package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/agrisarthi/crop-claims-service/internal/domain"
	"github.com/agrisarthi/crop-claims-service/internal/observability"
)

// Neutral defaults applied when the upstream response omits a reading. They
// sit well inside every danger threshold so a sparse payload never raises a
// false alert.
const (
	defaultTempC         = 25.0
	defaultHumidity      = 50
	defaultConditionCode = 1000
	defaultConditionText = "Clear"
)

// Client implements domain.WeatherSource using the WeatherAPI.com REST API.
type Client struct {
	key        string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a WeatherAPI.com client.
func NewClient(key string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		key: key,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.weatherapi.com/v1",
		logger:  logger,
		metrics: metrics,
	}
}

// SetBaseURL overrides the upstream endpoint, for pointing the client at a
// local stub.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// FetchCurrent returns current conditions for a free-form location query.
func (c *Client) FetchCurrent(ctx context.Context, query string) (*domain.WeatherSnapshot, error) {
	params := url.Values{
		"key": {c.key},
		"q":   {query},
		"aqi": {"no"},
	}

	var payload currentResponse
	if err := c.doRequest(ctx, "current", params, &payload); err != nil {
		return nil, err
	}
	return snapshotFrom(payload.Current), nil
}

// FetchForecastWithAlerts returns current conditions plus any government
// alerts covering the location.
func (c *Client) FetchForecastWithAlerts(ctx context.Context, query string, days int) (*domain.WeatherSnapshot, []domain.GovernmentAlert, error) {
	params := url.Values{
		"key":    {c.key},
		"q":      {query},
		"days":   {strconv.Itoa(days)},
		"alerts": {"yes"},
		"aqi":    {"no"},
	}

	var payload forecastResponse
	if err := c.doRequest(ctx, "forecast", params, &payload); err != nil {
		return nil, nil, err
	}

	var govAlerts []domain.GovernmentAlert
	for _, a := range payload.Alerts.Alert {
		govAlerts = append(govAlerts, domain.GovernmentAlert{
			Headline:  a.Headline,
			Event:     a.Event,
			Severity:  a.Severity,
			Areas:     a.Areas,
			Effective: a.Effective,
			Expires:   a.Expires,
			Desc:      a.Desc,
		})
	}
	return snapshotFrom(payload.Current), govAlerts, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, out any) error {
	fullURL := fmt.Sprintf("%s/%s.json?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.WeatherAPIDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%w: %s request: %s", domain.ErrWeatherSourceUnavailable, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("weather API error", "endpoint", endpoint, "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("%w: %s returned status %d", domain.ErrWeatherSourceUnavailable, endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %s", domain.ErrWeatherSourceUnavailable, endpoint, err)
	}
	return nil
}

// snapshotFrom maps the wire conditions to a snapshot, filling omitted fields
// with neutral defaults.
func snapshotFrom(cur currentConditions) *domain.WeatherSnapshot {
	s := &domain.WeatherSnapshot{
		TempC:         defaultTempC,
		Humidity:      defaultHumidity,
		ConditionCode: defaultConditionCode,
		ConditionText: defaultConditionText,
	}
	if cur.TempC != nil {
		s.TempC = *cur.TempC
	}
	if cur.Humidity != nil {
		s.Humidity = *cur.Humidity
	}
	if cur.PrecipMM != nil {
		s.PrecipMM = *cur.PrecipMM
	}
	if cur.WindKPH != nil {
		s.WindKPH = *cur.WindKPH
	}
	if cur.Condition.Code != nil {
		s.ConditionCode = *cur.Condition.Code
	}
	if cur.Condition.Text != "" {
		s.ConditionText = cur.Condition.Text
	}
	return s
}

// WeatherAPI.com response types.

type currentResponse struct {
	Current currentConditions `json:"current"`
}

type forecastResponse struct {
	Current currentConditions `json:"current"`
	Alerts  struct {
		Alert []wireAlert `json:"alert"`
	} `json:"alerts"`
}

type currentConditions struct {
	TempC     *float64 `json:"temp_c"`
	Humidity  *int     `json:"humidity"`
	PrecipMM  *float64 `json:"precip_mm"`
	WindKPH   *float64 `json:"wind_kph"`
	Condition struct {
		Text string `json:"text"`
		Code *int   `json:"code"`
	} `json:"condition"`
}

type wireAlert struct {
	Headline  string `json:"headline"`
	Event     string `json:"event"`
	Severity  string `json:"severity"`
	Areas     string `json:"areas"`
	Effective string `json:"effective"`
	Expires   string `json:"expires"`
	Desc      string `json:"desc"`
}
