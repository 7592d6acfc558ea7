package pg

import (
	"context"
	"strings"

	"weatherjar/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one executed statement
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives every statement the store runs
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs statements through a copy of root pinned at debug so SQL shows
// up whenever LogSQL is on, whatever the process level is
func Tracer(root logger.Logger) QueryTracer {
	return &zlTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := z.log.Info()
	if ev.Slow {
		evt = z.log.Warn()
	}
	if ev.Err != nil {
		evt = z.log.Error().Err(ev.Err)
	}
	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Interface("args", summarizeArgs(ev.Args)).
		Msg("pg query")
}

// compact folds every whitespace run into one space
func compact(s string) string { return strings.Join(strings.Fields(s), " ") }

// summarizeArgs keeps bulk array parameters from flooding the log
func summarizeArgs(a any) any {
	args, ok := a.([]any)
	if !ok {
		return a
	}
	out := make([]any, len(args))
	for i, v := range args {
		switch x := v.(type) {
		case []int64:
			out[i] = map[string]int{"int64s": len(x)}
		case []*float64:
			out[i] = map[string]int{"floats": len(x)}
		case []float64:
			out[i] = map[string]int{"floats": len(x)}
		default:
			out[i] = v
		}
	}
	return out
}
