package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/easel-ai/easel/internal/log"
	"github.com/easel-ai/easel/internal/stream"
)

// DefaultWeatherBaseURL is the open-meteo forecast API.
const DefaultWeatherBaseURL = "https://api.open-meteo.com"

// GetWeatherInput defines input for the getWeather tool.
type GetWeatherInput struct {
	Latitude  float64 `json:"latitude" jsonschema_description:"Latitude of the location"`
	Longitude float64 `json:"longitude" jsonschema_description:"Longitude of the location"`
}

// CurrentWeather is the current-conditions block of a forecast.
type CurrentWeather struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature_2m"`
	WeatherCode int     `json:"weather_code"`
	WindSpeed   float64 `json:"wind_speed_10m"`
}

// DailyWeather carries sunrise and sunset times per day.
type DailyWeather struct {
	Sunrise []string `json:"sunrise"`
	Sunset  []string `json:"sunset"`
}

// GetWeatherOutput is the forecast returned to the model.
type GetWeatherOutput struct {
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Timezone  string         `json:"timezone"`
	Current   CurrentWeather `json:"current"`
	Daily     DailyWeather   `json:"daily"`
}

// WeatherTools fetches current conditions from an open-meteo
// compatible forecast API. No API key needed.
type WeatherTools struct {
	baseURL    string
	httpClient *http.Client
	logger     log.Logger
}

// NewWeatherTools creates the weather toolset. An empty baseURL uses
// the public open-meteo endpoint.
func NewWeatherTools(baseURL string, logger log.Logger) *WeatherTools {
	if baseURL == "" {
		baseURL = DefaultWeatherBaseURL
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &WeatherTools{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Tools returns the weather tools.
func (wt *WeatherTools) Tools() ([]*Tool, error) {
	weather, err := NewTool(
		"getWeather",
		"Get the current weather at a location given its latitude and longitude.",
		wt.GetWeather,
	)
	if err != nil {
		return nil, err
	}
	return []*Tool{weather}, nil
}

// GetWeather fetches the current forecast for the given coordinates.
func (wt *WeatherTools) GetWeather(ctx context.Context, input GetWeatherInput, _ stream.Sink) (GetWeatherOutput, error) {
	if input.Latitude < -90 || input.Latitude > 90 {
		return GetWeatherOutput{}, &ToolError{
			ErrorType: ErrTypeInvalidArguments,
			Message:   fmt.Sprintf("latitude %v out of range", input.Latitude),
		}
	}
	if input.Longitude < -180 || input.Longitude > 180 {
		return GetWeatherOutput{}, &ToolError{
			ErrorType: ErrTypeInvalidArguments,
			Message:   fmt.Sprintf("longitude %v out of range", input.Longitude),
		}
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(input.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(input.Longitude, 'f', -1, 64))
	q.Set("current", "temperature_2m,weather_code,wind_speed_10m")
	q.Set("daily", "sunrise,sunset")
	q.Set("timezone", "auto")

	reqURL := wt.baseURL + "/v1/forecast?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return GetWeatherOutput{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := wt.httpClient.Do(req)
	if err != nil {
		return GetWeatherOutput{}, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return GetWeatherOutput{}, fmt.Errorf("failed to read weather response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return GetWeatherOutput{}, fmt.Errorf("weather API error (status %d): %s", resp.StatusCode, string(body))
	}

	var out GetWeatherOutput
	if err := json.Unmarshal(body, &out); err != nil {
		return GetWeatherOutput{}, fmt.Errorf("failed to decode weather response: %w", err)
	}

	wt.logger.Info("weather fetched",
		"latitude", input.Latitude,
		"longitude", input.Longitude,
		"temperature", out.Current.Temperature)

	return out, nil
}
