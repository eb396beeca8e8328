package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeForbidden, http.StatusForbidden},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeConflict, http.StatusConflict},
		{ErrorCodeDuplicateKey, http.StatusConflict},
		{ErrorCodeDependency, http.StatusBadGateway},
		{ErrorCodeUnknown, http.StatusInternalServerError},
		{ErrorCodePanic, http.StatusInternalServerError},
		{ErrorCodeDB, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatusCode(tc.code); got != tc.want {
			t.Fatalf("HTTPStatusCode(%d) = %d want %d", tc.code, got, tc.want)
		}
	}
}

func TestCodeOf_Wrapping(t *testing.T) {
	base := Dependencyf("upstream broke")

	if CodeOf(base) != ErrorCodeDependency {
		t.Fatalf("direct code lost")
	}
	// fmt wrapping keeps the code reachable
	wrapped := fmt.Errorf("while validating: %w", base)
	if CodeOf(wrapped) != ErrorCodeDependency {
		t.Fatalf("code lost through fmt.Errorf: %v", wrapped)
	}
	// joined errors keep the code reachable too; jwt v5 joins its
	// verification errors this way
	joined := stderrs.Join(stderrs.New("token is unverifiable"), base)
	if CodeOf(joined) != ErrorCodeDependency {
		t.Fatalf("code lost through errors.Join: %v", joined)
	}
	if CodeOf(stderrs.New("plain")) != ErrorCodeUnknown {
		t.Fatal("foreign errors must map to unknown")
	}
	if CodeOf(nil) != ErrorCodeUnknown {
		t.Fatal("nil must map to unknown")
	}
}

func TestWireFrom(t *testing.T) {
	w := WireFrom(WithField(Validationf("text is required"), "text"))
	if w.Code != ErrorCodeValidation || w.Field != "text" || w.Message != "text is required" {
		t.Fatalf("wire = %+v", w)
	}

	w = WireFrom(stderrs.New("boom"))
	if w.Code != ErrorCodeUnknown || w.Message != "boom" {
		t.Fatalf("foreign wire = %+v", w)
	}
}

func TestWithField_CopyOnWrite(t *testing.T) {
	orig := Validationf("bad input")
	with := WithField(orig, "reviewId")

	oe, _ := As(orig)
	we, _ := As(with)
	if oe.Field() != "" {
		t.Fatal("original error mutated")
	}
	if we.Field() != "reviewId" {
		t.Fatalf("field = %q", we.Field())
	}
}

func TestRoot(t *testing.T) {
	cause := stderrs.New("cause")
	err := Wrap(fmt.Errorf("mid: %w", cause), ErrorCodeDB, "query failed")
	if Root(err) != cause {
		t.Fatalf("Root = %v want %v", Root(err), cause)
	}
}

func TestHTTP(t *testing.T) {
	status, w := HTTP(NotFoundf("appeal x not found"))
	if status != http.StatusNotFound || w.Code != ErrorCodeNotFound {
		t.Fatalf("HTTP = %d %+v", status, w)
	}
	status, w = HTTP(nil)
	if status != http.StatusOK || w.Code != 0 {
		t.Fatalf("HTTP(nil) = %d %+v", status, w)
	}
}
