// Package http provides http transport for the summary queries
package http

import (
	stdhttp "net/http"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit/httpkit"
	"weatherjar/internal/services/api/weather/domain"
)

// Register mounts the summary endpoints on the given router
func Register(r httpkit.Router, q domain.QueryPort) {
	h := &handlers{q: q}

	// inclusive day range, both bounds required
	httpkit.GetQuery[weather.DateRange](r, "/daily", h.listDaily)

	httpkit.Get(r, "/daily/{date}", h.daily)
	httpkit.Get(r, "/daily/{date}/text", h.dailyText)
	httpkit.Get(r, "/monthly/{month}", h.monthly)
}

type handlers struct{ q domain.QueryPort }

// GET /summaries/daily?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *handlers) listDaily(r *stdhttp.Request, in weather.DateRange) (any, error) {
	return h.q.ListDaily(r.Context(), in)
}

// GET /summaries/daily/{date}
func (h *handlers) daily(r *stdhttp.Request) (any, error) {
	return h.q.GetSummary(r.Context(), httpkit.Param(r, "date"))
}

// GET /summaries/daily/{date}/text
func (h *handlers) dailyText(r *stdhttp.Request) (any, error) {
	return h.q.SummaryText(r.Context(), httpkit.Param(r, "date"))
}

// GET /summaries/monthly/{month}
func (h *handlers) monthly(r *stdhttp.Request) (any, error) {
	return h.q.GetMonthly(r.Context(), httpkit.Param(r, "month"))
}
