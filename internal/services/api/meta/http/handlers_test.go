package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "weatherjar/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func get(t *testing.T, d Deps, path string, out any) int {
	t.Helper()
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), d)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, path, nil))
	env := phttp.Envelope{Data: out}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code
}

func fixed() Deps {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return Deps{
		ServiceName: "weatherjar-api",
		StartedAt:   start,
		Now:         func() time.Time { return start.Add(5 * time.Minute) },
	}
}

func TestHealthAndService(t *testing.T) {
	var h HealthResponse
	assert.Equal(t, stdhttp.StatusOK, get(t, fixed(), "/health", &h))
	assert.True(t, h.OK)
	assert.Equal(t, "2024-01-01T00:05:00Z", h.Now)

	var s ServiceResponse
	get(t, fixed(), "/service", &s)
	assert.Equal(t, int64(300), s.Uptime)
}

func TestReady(t *testing.T) {
	cases := []struct {
		name string
		pg   any
		want string
	}{
		{"no store", nil, "degraded"},
		{"ok", pinger{}, "ok"},
		{"down", pinger{err: errors.New("connection refused")}, "fail"},
		{"not a pinger", struct{}{}, "degraded"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := fixed()
			d.PG = c.pg
			var r ReadyResponse
			get(t, d, "/ready", &r)
			assert.Equal(t, c.want, r.Status)
			require.Len(t, r.Checks, 1)
		})
	}
}

func TestVersionNamesService(t *testing.T) {
	var v struct {
		Service string `json:"service"`
	}
	get(t, fixed(), "/version", &v)
	assert.Equal(t, "weatherjar-api", v.Service)
}
