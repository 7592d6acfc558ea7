package middleware

import (
	stdhttp "net/http"
	"runtime/debug"

	perr "weatherjar/internal/platform/errors"
	"weatherjar/internal/platform/logger"
	phttp "weatherjar/internal/platform/net/http"
	pnet "weatherjar/internal/platform/net"
)

// RecoverJSON turns a panic into the standard JSON error envelope with status 500
func RecoverJSON(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == stdhttp.ErrAbortHandler {
				panic(v)
			}
			reqID := pnet.RequestID(r.Context())
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if reqID != "" {
				w.Header().Set("X-Request-ID", reqID)
			}
			phttp.RespondError(w, r, perr.PanicErrf("panic recovered"))
		}()
		next.ServeHTTP(w, r)
	})
}
