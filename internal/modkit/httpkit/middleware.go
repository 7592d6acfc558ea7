package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"weatherjar/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	Timeout time.Duration
	Slow    time.Duration
	Origins []string
	// Heartbeat is the full request path answered before routing, empty disables it
	Heartbeat string
}

// CommonStack is the middleware every API route runs behind
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Slow <= 0 {
		o.Slow = 500 * time.Millisecond
	}
	stack := []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.LogContext,
		middleware.RecoverJSON,
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: o.Slow}),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.Origins}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
		middleware.Timeout(o.Timeout),
	}
	if o.Heartbeat != "" {
		stack = append([]func(http.Handler) http.Handler{middleware.Heartbeat(o.Heartbeat)}, stack...)
	}
	return stack
}
