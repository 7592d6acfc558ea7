package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned without a network call while the breaker is open
var ErrCircuitOpen = errors.New("openmeteo: circuit breaker open")

func newBreaker(o Options, onChange func(name string, from, to gobreaker.State)) *gobreaker.CircuitBreaker {
	failures := uint32(o.BreakerFailures)
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     o.BreakerCooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		OnStateChange: onChange,
	})
}

// retryPolicy is a seam so tests can retry without sleeping
var retryPolicy = func(o Options) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.RetryBase
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// do runs build through the breaker with exponential retry.
// 429 and 5xx are retried, other 4xx fail at once. 200 and 304 are returned
// with an open body
func (c *Client) do(ctx context.Context, build func(context.Context) (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	attempts := 0

	op := func() error {
		attempts++
		req, err := build(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		out, err := c.breaker.Execute(func() (interface{}, error) {
			r, err := c.http.Do(req)
			if err != nil {
				return nil, err
			}
			if r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= 500 {
				_ = drainAndClose(r.Body)
				return nil, &StatusError{Code: r.StatusCode}
			}
			return r, nil
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(ErrCircuitOpen)
		}
		if err != nil {
			return err
		}
		r := out.(*http.Response)
		if r.StatusCode != http.StatusOK && r.StatusCode != http.StatusNotModified {
			return backoff.Permanent(statusErr(r))
		}
		resp = r
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.log.Warn().Err(err).Int("attempt", attempts).Dur("retry_in", wait).Msg("openmeteo request failed; retrying")
	}

	b := backoff.WithContext(backoff.WithMaxRetries(retryPolicy(c.opts), uint64(c.opts.MaxRetries)), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return resp, nil
}

// statusErr reads Open-Meteo's {"error":true,"reason":...} body when present
func statusErr(r *http.Response) error {
	defer func() { _ = r.Body.Close() }()
	var ae apiError
	body, _ := io.ReadAll(io.LimitReader(r.Body, 4096))
	if json.Unmarshal(body, &ae) == nil && ae.Reason != "" {
		return &StatusError{Code: r.StatusCode, Reason: ae.Reason}
	}
	return &StatusError{Code: r.StatusCode}
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 64<<10))
	return rc.Close()
}
