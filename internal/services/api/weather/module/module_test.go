package module

import (
	"context"
	"testing"

	"weatherjar/internal/core/weather"
	"weatherjar/internal/modkit"
	"weatherjar/internal/modkit/repokit/repotest"
	kit "weatherjar/internal/platform/testkit"
)

type oneLocation struct{}

func (oneLocation) Default(context.Context) (weather.Location, error) {
	return weather.Location{ID: 1, FriendlyName: "Lander, Wyoming"}, nil
}

func TestNewRequiresLocations(t *testing.T) {
	deps := modkit.Deps{PG: &repotest.Tx{}}
	kit.MustPanic(t, func() { New(deps) })

	m := New(deps, WithLocations(oneLocation{}))
	if m.Name() != "summaries" || m.Query() == nil {
		t.Fatalf("module = %q, query %v", m.Name(), m.Query())
	}
}
