// Package lookup resolves a visitor IP to a place and the current weather
// there, using the geolocation and weather endpoints of a third-party API.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL = "https://api.xwteam.cn"
	DefaultTimeout = 3 * time.Second

	UnknownLocation    = "unknown location"
	WeatherUnavailable = "weather unavailable"

	geoPath     = "/api/ip/ip"
	weatherPath = "/api/weather/weather"

	maxResponseSize = 1 << 20 // 1MB
)

const instrumentationName = "github.com/xwteam/mascot/internal/lookup"

var tracer = otel.Tracer(instrumentationName)

// ErrNoData is returned when the API answers without a data object.
var ErrNoData = errors.New("response has no data")

// Client talks to the geolocation and weather API.
type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	degraded   metric.Int64Counter
}

// NewClient creates a client. An empty baseURL uses DefaultBaseURL and a
// non-positive timeout uses DefaultTimeout. The timeout bounds each of the
// two calls separately.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}

	counter, err := otel.Meter(instrumentationName).Int64Counter(
		"mascot.lookup.degraded",
		metric.WithDescription("Lookups that fell back to placeholder text"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		slog.Warn("lookup: creating degraded counter", "error", err)
	} else {
		c.degraded = counter
	}
	return c
}

// Lookup resolves ip to a location and a weather summary. It never fails:
// if geolocation fails both fields are placeholders, and if only the weather
// call fails the location is kept.
func (c *Client) Lookup(ctx context.Context, ip string) Result {
	place, err := c.Geolocate(ctx, ip)
	if err != nil {
		slog.Warn("lookup: geolocation failed", "error", err)
		c.recordDegraded(ctx, "geolocation")
		return Result{Location: UnknownLocation, Weather: WeatherUnavailable}
	}

	w, err := c.Weather(ctx, place)
	if err != nil {
		slog.Warn("lookup: weather failed", "province", place.Province, "city", place.City, "error", err)
		c.recordDegraded(ctx, "weather")
		return Result{Location: place.String(), Weather: WeatherUnavailable}
	}

	return Result{Location: place.String(), Weather: w.Summary()}
}

// Geolocate returns the province and city of ip.
func (c *Client) Geolocate(ctx context.Context, ip string) (Place, error) {
	ctx, span := tracer.Start(ctx, "lookup.Geolocate", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var resp geoResponse
	if err := c.getJSON(ctx, geoPath, url.Values{"ip": {ip}}, &resp); err != nil {
		return Place{}, spanError(span, err)
	}
	if resp.Data == nil || (resp.Data.Province == "" && resp.Data.City == "") {
		return Place{}, spanError(span, ErrNoData)
	}
	return *resp.Data, nil
}

// Weather returns current conditions for a place.
func (c *Client) Weather(ctx context.Context, p Place) (Weather, error) {
	ctx, span := tracer.Start(ctx, "lookup.Weather", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("lookup.province", p.Province), attribute.String("lookup.city", p.City))

	var resp weatherResponse
	if err := c.getJSON(ctx, weatherPath, url.Values{"province": {p.Province}, "city": {p.City}}, &resp); err != nil {
		return Weather{}, spanError(span, err)
	}
	if resp.Data == nil {
		return Weather{}, spanError(span, ErrNoData)
	}
	return *resp.Data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func (c *Client) recordDegraded(ctx context.Context, stage string) {
	if c.degraded == nil {
		return
	}
	c.degraded.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
