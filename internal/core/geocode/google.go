package geocode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"

	"places-api/internal/domain"
)

const DefaultGoogleBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

var lookupTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "geocode_lookups_total", Help: "Geocoding lookups by outcome"},
	[]string{"outcome"},
)

func init() { prometheus.MustRegister(lookupTotal) }

// Google 调用 Google Geocoding API（单次请求，不重试）
type Google struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewGoogle(apiKey, baseURL string, timeout time.Duration) *Google {
	if baseURL == "" {
		baseURL = DefaultGoogleBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Google{APIKey: apiKey, BaseURL: baseURL, Client: &http.Client{Timeout: timeout}}
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (g *Google) Lookup(ctx context.Context, address string) (domain.Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		lookupTotal.WithLabelValues("no_match").Inc()
		return domain.Location{}, domain.Geocoding(MsgNoMatch)
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		lookupTotal.WithLabelValues("error").Inc()
		return domain.Location{}, fmt.Errorf("%w: build request: %w", ErrUnavailable, err)
	}
	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		lookupTotal.WithLabelValues("error").Inc()
		return domain.Location{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		lookupTotal.WithLabelValues("error").Inc()
		return domain.Location{}, fmt.Errorf("%w: http status %d", ErrUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		lookupTotal.WithLabelValues("error").Inc()
		return domain.Location{}, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}
	// 空 payload 视为无结果
	if len(strings.TrimSpace(string(raw))) == 0 {
		lookupTotal.WithLabelValues("no_match").Inc()
		return domain.Location{}, domain.Geocoding(MsgNoMatch)
	}
	var body googleResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		lookupTotal.WithLabelValues("no_match").Inc()
		return domain.Location{}, &domain.Error{Kind: domain.KindGeocoding, Msg: MsgNoMatch, Err: err}
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		lookupTotal.WithLabelValues("no_match").Inc()
		return domain.Location{}, domain.Geocoding(MsgNoMatch)
	default:
		lookupTotal.WithLabelValues("error").Inc()
		return domain.Location{}, fmt.Errorf("%w: status %s %s", ErrUnavailable, body.Status, body.ErrorMessage)
	}
	if len(body.Results) == 0 {
		lookupTotal.WithLabelValues("no_match").Inc()
		return domain.Location{}, domain.Geocoding(MsgNoMatch)
	}

	loc := body.Results[0].Geometry.Location
	lookupTotal.WithLabelValues("ok").Inc()
	return domain.Location{Lat: loc.Lat, Lng: loc.Lng}, nil
}
