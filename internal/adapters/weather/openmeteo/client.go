package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/platform/config"
	"weatherjar/internal/platform/logger"
	ptime "weatherjar/internal/platform/time"

	"github.com/sony/gobreaker"
)

const (
	baseURLDefault         = "https://archive-api.open-meteo.com/v1/archive"
	defaultTimeout         = 60 * time.Second
	defaultUA              = "weatherjar"
	defaultMaxRetry        = 5
	defaultRetryBase       = 200 * time.Millisecond
	defaultBreakerFailures = 5
	defaultBreakerCooldown = 30 * time.Second
	maxBody                = 64 << 20
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	MaxRetries int
	RetryBase  time.Duration

	// consecutive failures before the breaker opens, and how long it stays open
	BreakerFailures int
	BreakerCooldown time.Duration

	// empty CacheDir disables the disk cache
	CacheDir      string
	RefreshRecent time.Duration
}

// OptionsFromConfig reads CORE_OPENMETEO_* through c
func OptionsFromConfig(c config.Conf) Options {
	oc := c.Prefix("CORE_OPENMETEO_")
	return Options{
		BaseURL:         oc.MayString("BASE_URL", baseURLDefault),
		UserAgent:       oc.MayString("USER_AGENT", defaultUA),
		Timeout:         oc.MayDuration("TIMEOUT", defaultTimeout),
		MaxRetries:      oc.MayInt("RETRIES", defaultMaxRetry),
		RetryBase:       oc.MayDuration("RETRY_BASE", defaultRetryBase),
		BreakerFailures: oc.MayInt("BREAKER_FAILURES", defaultBreakerFailures),
		BreakerCooldown: oc.MayDuration("BREAKER_COOLDOWN", defaultBreakerCooldown),
		CacheDir:        oc.MayString("CACHE_DIR", ""),
		RefreshRecent:   oc.MayDuration("REFRESH_RECENT", 72*time.Hour),
	}
}

// Client fetches archive windows
type Client struct {
	http    *http.Client
	opts    Options
	breaker *gobreaker.CircuitBreaker
	cache   *Cache
	log     logger.Logger
}

// NewClient applies defaults. It fails only when the cache dir cannot be created
func NewClient(o Options) (*Client, error) {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.BreakerFailures <= 0 {
		o.BreakerFailures = defaultBreakerFailures
	}
	if o.BreakerCooldown <= 0 {
		o.BreakerCooldown = defaultBreakerCooldown
	}

	c := &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("openmeteo"),
	}
	c.breaker = newBreaker(o, func(name string, from, to gobreaker.State) {
		c.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit state change")
	})
	if o.CacheDir != "" {
		cache, err := NewCache(o.CacheDir, o.RefreshRecent)
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}
	return c, nil
}

// URL builds the archive request for r
func (c *Client) URL(r FetchRequest) string {
	v := url.Values{}
	v.Set("latitude", strconv.FormatFloat(r.Latitude, 'f', -1, 64))
	v.Set("longitude", strconv.FormatFloat(r.Longitude, 'f', -1, 64))
	v.Set("start_date", ptime.FormatDate(r.Start))
	v.Set("end_date", ptime.FormatDate(r.End))
	v.Set("hourly", strings.Join(r.Set.Sources(), ","))
	if r.Timezone != "" {
		v.Set("timezone", r.Timezone)
	}
	for k, p := range r.Set.Params {
		v.Set(k, p)
	}
	// Encode sorts keys so identical requests share a cache entry
	return c.opts.BaseURL + "?" + v.Encode()
}

// Fetch returns hourly rows covering [Start 00:00, End+1 day 00:00)
func (c *Client) Fetch(ctx context.Context, r FetchRequest) (weather.Batch, error) {
	if err := r.Validate(); err != nil {
		return weather.Batch{}, err
	}
	u := c.URL(r)
	body, err := c.body(ctx, u, r.End)
	if err != nil {
		return weather.Batch{}, err
	}
	b, err := decode(body, r.Set)
	if err != nil {
		return weather.Batch{}, err
	}
	logger.C(ctx).Debug().Str("set", r.Set.Name).Int("rows", b.Len()).
		Str("start", ptime.FormatDate(r.Start)).Str("end", ptime.FormatDate(r.End)).Msg("openmeteo fetched")
	return b, nil
}

func (c *Client) body(ctx context.Context, u string, end time.Time) ([]byte, error) {
	var (
		cached []byte
		meta   *cacheMeta
	)
	if c.cache != nil {
		var ok bool
		if cached, meta, ok = c.cache.Load(u); ok {
			if !c.cache.Stale(end) {
				c.log.Debug().Str("url", u).Msg("openmeteo cache hit")
				return cached, nil
			}
		}
	}

	resp, err := c.do(ctx, c.request(u, meta))
	if err != nil {
		if cached != nil {
			c.log.Warn().Err(err).Msg("openmeteo revalidation failed; serving cached copy")
			return cached, nil
		}
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		c.cache.Touch(u, meta)
		return cached, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("openmeteo read body: %w", err)
	}
	if c.cache != nil {
		if err := c.cache.Store(u, body, resp.Header); err != nil {
			c.log.Warn().Err(err).Msg("openmeteo cache write failed")
		}
	}
	return body, nil
}

func (c *Client) request(u string, meta *cacheMeta) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		if meta != nil {
			if meta.ETag != "" {
				req.Header.Set("If-None-Match", meta.ETag)
			}
			if meta.LastModified != "" {
				req.Header.Set("If-Modified-Since", meta.LastModified)
			}
		}
		return req, nil
	}
}

// decode maps the archive payload onto set order. Nulls and short
// columns become NaN
func decode(body []byte, set weather.VariableSet) (weather.Batch, error) {
	var ar archiveResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		return weather.Batch{}, fmt.Errorf("openmeteo decode: %w", err)
	}
	rawTimes, ok := ar.Hourly["time"]
	if !ok {
		return weather.Batch{}, fmt.Errorf("openmeteo decode: hourly.time missing")
	}
	var times []string
	if err := json.Unmarshal(rawTimes, &times); err != nil {
		return weather.Batch{}, fmt.Errorf("openmeteo decode time: %w", err)
	}

	cols := make([][]*float64, set.Width())
	for i, src := range set.Sources() {
		raw, ok := ar.Hourly[src]
		if !ok {
			return weather.Batch{}, fmt.Errorf("openmeteo decode: hourly.%s missing", src)
		}
		if err := json.Unmarshal(raw, &cols[i]); err != nil {
			return weather.Batch{}, fmt.Errorf("openmeteo decode %s: %w", src, err)
		}
	}

	rows := make([]weather.Row, 0, len(times))
	for i, ts := range times {
		t, err := ptime.ParseHour(ts)
		if err != nil {
			return weather.Batch{}, fmt.Errorf("openmeteo decode row %d: %w", i, err)
		}
		vals := make([]float64, len(cols))
		for j, col := range cols {
			vals[j] = math.NaN()
			if i < len(col) && col[i] != nil {
				vals[j] = *col[i]
			}
		}
		rows = append(rows, weather.Row{Time: t, Values: vals})
	}
	return weather.Batch{Set: set, Rows: rows}, nil
}
