package httpkit

import (
	"net/http"
	"net/url"

	"weatherjar/internal/platform/net/http/bind"
)

// Get registers a GET handler through the envelope adapter
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}

// GetQuery binds and validates the query string into T before calling h
func GetQuery[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Get(path, Call(func(req *http.Request) (any, error) {
		in, err := bind.Query[T](req.URL.Query())
		if err != nil {
			return nil, err
		}
		return h(req, in)
	}))
}

// Values is a tiny helper for tests building query strings
func Values(kv ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v
}
