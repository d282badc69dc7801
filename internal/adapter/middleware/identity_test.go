package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func callWithHeader(t *testing.T, caller string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	var seen string
	h := RequireCaller()(func(c echo.Context) error {
		seen = CallerID(c)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/loans", nil)
	if caller != "" {
		req.Header.Set(HeaderCallerID, caller)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		t.Fatalf("handler err: %v", err)
	}
	return rec, seen
}

func TestRequireCaller_Passes(t *testing.T) {
	id := strings.Repeat("a", 32)
	rec, seen := callWithHeader(t, id)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen != id {
		t.Fatalf("CallerID = %q, want %q", seen, id)
	}
}

func TestRequireCaller_Missing(t *testing.T) {
	rec, _ := callWithHeader(t, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireCaller_Malformed(t *testing.T) {
	for _, v := range []string{"short", strings.Repeat("A", 32), strings.Repeat("z", 32)} {
		rec, _ := callWithHeader(t, v)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("caller %q: status = %d, want 401", v, rec.Code)
		}
	}
}

func TestCallerID_EmptyWithoutMiddleware(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if got := CallerID(c); got != "" {
		t.Fatalf("CallerID = %q, want empty", got)
	}
}
