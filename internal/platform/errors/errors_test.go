package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeInvalidDate, http.StatusBadRequest},
		{ErrorCodeDuplicateKey, http.StatusConflict},
		{ErrorCodeConflict, http.StatusConflict},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeTooManyRequests, http.StatusTooManyRequests},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeDB, http.StatusInternalServerError},
		{ErrorCodePanic, http.StatusInternalServerError},
		{ErrorCodeUnknown, http.StatusInternalServerError},
		{9999, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestErrorCodeString(t *testing.T) {
	if got := ErrorCodeInvalidDate.String(); got != "invalid_date" {
		t.Fatalf("String() = %q", got)
	}
	if got := ErrorCode(9999).String(); got != "unknown" {
		t.Fatalf("String() default = %q", got)
	}
}

func TestErrorTypeAndMethods(t *testing.T) {
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil *Error render = %q, want <nil>", e.Error())
	}

	e1 := Newf(ErrorCodeJSON, "bad json %d", 12)
	if got := e1.Error(); got != "bad json 12" {
		t.Fatalf("Newf().Error = %q", got)
	}

	src := stderrs.New("root")
	e2 := Wrapf(src, ErrorCodeDB, "insert %s", "hourly")
	if want := "insert hourly: root"; e2.Error() != want {
		t.Fatalf("Wrapf().Error = %q, want %q", e2.Error(), want)
	}
	if u := stderrs.Unwrap(e2); u == nil || u.Error() != "root" {
		t.Fatalf("Wrap did not keep orig")
	}
	if Root(e2) != src {
		t.Fatalf("Root() should reach the original cause")
	}

	e3 := WithOp(WithField(e2, "date"), "ingest")
	got, ok := As(e3)
	if !ok || got.Field() != "date" || got.Op() != "ingest" || got.Code() != ErrorCodeDB {
		t.Fatalf("field/op not attached: %+v", got)
	}
	if orig, _ := As(e2); orig.Field() != "" {
		t.Fatalf("WithField must not mutate the original")
	}
	if WithField(src, "x") != src {
		t.Fatalf("foreign error should pass through WithField")
	}
}

func TestCodeOfThroughFmtWrap(t *testing.T) {
	inner := InvalidDatef("bad date %q", "2024-13-01")
	outer := fmt.Errorf("cli: %w", inner)
	if !IsCode(outer, ErrorCodeInvalidDate) {
		t.Fatalf("IsCode should see through fmt wrapping, got %v", CodeOf(outer))
	}
	if CodeOf(stderrs.New("plain")) != ErrorCodeUnknown {
		t.Fatalf("foreign errors should map to Unknown")
	}
}

func TestSourceUnavailable(t *testing.T) {
	err := SourceUnavailable(stderrs.New("502 bad gateway"), "open-meteo")
	if !IsCode(err, ErrorCodeUnavailable) {
		t.Fatalf("code = %v", CodeOf(err))
	}
	if want := "weather source open-meteo unavailable: 502 bad gateway"; err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWireAndHTTP(t *testing.T) {
	if w := WireFrom(nil); w != (Wire{}) {
		t.Fatalf("WireFrom(nil) = %+v", w)
	}
	w := WireFrom(stderrs.New("boom"))
	if w.Code != ErrorCodeUnknown || w.Message != "boom" {
		t.Fatalf("WireFrom(foreign) = %+v", w)
	}

	status, wire := HTTP(NotFoundf("no summary for %s", "2024-01-01"))
	if status != http.StatusNotFound || wire.Code != ErrorCodeNotFound || wire.Message != "no summary for 2024-01-01" {
		t.Fatalf("HTTP() = %d %+v", status, wire)
	}
	if status, _ := HTTP(nil); status != http.StatusOK {
		t.Fatalf("HTTP(nil) status = %d", status)
	}
}

func TestWrapIf(t *testing.T) {
	if WrapIf(nil, ErrorCodeDB, "x") != nil {
		t.Fatalf("WrapIf(nil) should be nil")
	}
	if !IsCode(WrapIf(stderrs.New("x"), ErrorCodeDB, "y"), ErrorCodeDB) {
		t.Fatalf("WrapIf should wrap non-nil errors")
	}
}

func TestSugarCodes(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorCode
	}{
		{NotFoundf("x"), ErrorCodeNotFound},
		{InvalidArgf("x"), ErrorCodeInvalidArgument},
		{InvalidDatef("x"), ErrorCodeInvalidDate},
		{DuplicateKeyf("x"), ErrorCodeDuplicateKey},
		{JSONErrf("x"), ErrorCodeJSON},
		{PanicErrf("x"), ErrorCodePanic},
		{Conflictf("x"), ErrorCodeConflict},
		{Unavailablef("x"), ErrorCodeUnavailable},
	}
	for _, c := range cases {
		if got := CodeOf(c.err); got != c.want {
			t.Fatalf("CodeOf(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
