// Package noaa fetches game-day forecasts from the National Weather Service
// API and scores them as environment boosts.
package noaa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/okian/yaculator/internal/domain/model"
	"github.com/okian/yaculator/internal/domain/weather"
	"github.com/okian/yaculator/pkg/logger"
	"github.com/okian/yaculator/pkg/metrics"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL        = "https://api.weather.gov"
	defaultTimeout        = 10 * time.Second
	defaultRate           = 5
	defaultBreakerTimeout = 30 * time.Second
	breakerName           = "noaa"
	maxBodyBytes          = 4 << 20
)

type cacheKey struct {
	lat, lon float64
	date     string
}

// Client is a fail-open forecast lookup. It implements weather.Forecaster.
type Client struct {
	baseURL        string
	userAgent      string
	timeout        time.Duration
	breakerTimeout time.Duration
	http           *http.Client
	limiter        *rate.Limiter
	breaker        *gobreaker.CircuitBreaker
	logger         logger.Logger

	mu    sync.Mutex
	cache map[cacheKey]model.Environment
}

var _ weather.Forecaster = (*Client)(nil)

// New builds a client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:        defaultBaseURL,
		userAgent:      "yaculator",
		timeout:        defaultTimeout,
		breakerTimeout: defaultBreakerTimeout,
		http:           &http.Client{},
		limiter:        rate.NewLimiter(rate.Limit(defaultRate), 1),
		logger:         logger.Get(),
		cache:          make(map[cacheKey]model.Environment),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("noaa")
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     c.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateBreakerState(name, int(to))
			c.logger.Warn(context.Background(), "circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	return c
}

// Forecast returns the boost for a venue on date. Results, including
// failures, are cached per (lat, lon, date). Any failure yields a neutral
// boost labelled Unavailable.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, date string) model.Environment {
	key := cacheKey{lat: lat, lon: lon, date: date}
	c.mu.Lock()
	if env, ok := c.cache[key]; ok {
		c.mu.Unlock()
		metrics.RecordWeatherLookup("forecast", "cached")
		return env
	}
	c.mu.Unlock()

	env := model.Environment{Boost: weather.NeutralBoost, Condition: weather.ConditionUnavailable}
	periods, err := c.Periods(ctx, lat, lon)
	if err != nil {
		metrics.RecordWeatherLookup("forecast", "error")
		metrics.RecordErrorByComponent("noaa", "lookup_failed")
		c.logger.Warn(ctx, "forecast unavailable, using neutral boost",
			logger.Float64("lat", lat),
			logger.Float64("lon", lon),
			logger.String("date", date),
			logger.Error(err),
		)
	} else {
		metrics.RecordWeatherLookup("forecast", "ok")
		env = weather.SelectPeriod(periods, date)
	}

	// A cancelled lookup is not cached; a later run may succeed.
	if ctx.Err() == nil {
		c.mu.Lock()
		c.cache[key] = env
		c.mu.Unlock()
	}
	return env
}

// Periods fetches the forecast periods for a point, resolving the point's
// forecast URL first.
func (c *Client) Periods(ctx context.Context, lat, lon float64) ([]weather.Period, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		var pts pointsResponse
		if err := c.getJSON(ctx, fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lon), &pts); err != nil {
			return nil, err
		}
		if pts.Properties.Forecast == "" {
			return nil, ErrNoForecastURL
		}
		var fc forecastResponse
		if err := c.getJSON(ctx, pts.Properties.Forecast, &fc); err != nil {
			return nil, err
		}
		periods := make([]weather.Period, 0, len(fc.Properties.Periods))
		for _, p := range fc.Properties.Periods {
			periods = append(periods, weather.Period{
				Name:          p.Name,
				Temperature:   p.Temperature,
				WindSpeed:     p.WindSpeed,
				ShortForecast: p.ShortForecast,
			})
		}
		return periods, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]weather.Period), nil
}

// CacheLen returns the number of cached lookups.
func (c *Client) CacheLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("%w: %s returned %d", ErrStatus, url, resp.StatusCode)
	}
	return json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst)
}

type pointsResponse struct {
	Properties struct {
		Forecast string `json:"forecast"`
	} `json:"properties"`
}

type forecastResponse struct {
	Properties struct {
		Periods []struct {
			Name          string   `json:"name"`
			Temperature   *float64 `json:"temperature"`
			WindSpeed     string   `json:"windSpeed"`
			ShortForecast string   `json:"shortForecast"`
		} `json:"periods"`
	} `json:"properties"`
}
