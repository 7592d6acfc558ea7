package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"weatherjar/internal/modkit/httpkit"
	phttp "weatherjar/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestBuildDefaults(t *testing.T) {
	b := Build(WithName("summaries"), WithPrefix("/summaries"))
	if b.Name != "summaries" || b.Prefix != "/summaries" {
		t.Fatalf("Build = %+v", b)
	}
	if b.Mw != nil || b.Ports != nil {
		t.Fatalf("unset options should stay empty: %+v", b)
	}
}

func TestBuildCopiesMiddleware(t *testing.T) {
	mw := func(h http.Handler) http.Handler { return h }
	opts := []Option{WithMiddlewares(mw), WithPorts(42)}
	b := Build(opts...)
	if len(b.Mw) != 1 || b.Ports != 42 {
		t.Fatalf("Build = %+v", b)
	}
}

func TestBuiltMount(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	b := Build(
		WithPrefix("summaries/"),
		WithMiddlewares(mark("mw")),
	)

	mux := chi.NewRouter()
	b.Mount(phttp.AdaptChi(mux), func(r httpkit.Router) {
		httpkit.Get(r, "/daily/{date}", func(req *http.Request) (any, error) {
			return httpkit.Param(req, "date"), nil
		})
		httpkit.Get(r, "/monthly/{month}", func(req *http.Request) (any, error) {
			return httpkit.Param(req, "month"), nil
		})
	})

	for _, path := range []string{"/summaries/daily/2024-01-01", "/summaries/monthly/2024-01"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
	}
	if len(order) != 2 {
		t.Fatalf("module middleware ran %d times", len(order))
	}
}
