package schedule

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/yaculator/internal/domain/model"
	"github.com/okian/yaculator/pkg/logger"
	"github.com/okian/yaculator/pkg/metrics"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://www.pro-football-reference.com"
	defaultTimeout = 20 * time.Second
	maxPageBytes   = 16 << 20
)

// Scraper downloads and parses season schedules.
type Scraper struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	http      *http.Client
	limiter   *rate.Limiter
	logger    logger.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithBaseURL overrides the site root.
func WithBaseURL(u string) Option {
	return func(s *Scraper) {
		if u != "" {
			s.baseURL = u
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(s *Scraper) {
		if h != nil {
			s.http = h
		}
	}
}

// WithRate limits page fetches per second. Zero or less disables the limiter.
func WithRate(perSecond float64) Option {
	return func(s *Scraper) {
		if perSecond <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithLogger sets the scraper's logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scraper) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds a scraper. The site asks for no more than one request every
// few seconds, which is the default pace.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		baseURL:   defaultBaseURL,
		userAgent: "Mozilla/5.0 (compatible; yaculator)",
		timeout:   defaultTimeout,
		http:      &http.Client{},
		limiter:   rate.NewLimiter(rate.Every(3*time.Second), 1),
		logger:    logger.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("schedule")
	return s
}

// URL returns the games page of season.
func (s *Scraper) URL(season int) string {
	return fmt.Sprintf("%s/years/%d/games.htm", s.baseURL, season)
}

// Fetch downloads and parses the season's schedule.
func (s *Scraper) Fetch(ctx context.Context, season int) ([]model.Game, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url := s.URL(season)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		metrics.RecordScrapeRequest("error")
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordScrapeRequest("status_" + fmt.Sprint(resp.StatusCode))
		return nil, fmt.Errorf("%w: %s returned %d", ErrStatus, url, resp.StatusCode)
	}

	games, err := Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		metrics.RecordScrapeRequest("parse_error")
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	metrics.RecordScrapeRequest("ok")
	s.logger.Info(ctx, "schedule scraped",
		logger.Int("season", season),
		logger.Int("games", len(games)),
	)
	return games, nil
}
