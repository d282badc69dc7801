package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func newIdempServer(t *testing.T) (*echo.Echo, *int) {
	t.Helper()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	calls := 0
	e := echo.New()
	e.POST("/loans/:loan_id/payments", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]any{"calls": calls})
	}, RequireCaller(), IdempotencyMiddleware(rdb, time.Minute))
	return e, &calls
}

func paymentReq(caller, reqID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/loans/1/payments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderCallerID, caller)
	req.Header.Set("Ax-Request-Id", reqID)
	req.Header.Set("Ax-Request-At", fmt.Sprintf("%d", time.Now().Unix()))
	return req
}

func TestIdempotency_ReplaysRecordedResponse(t *testing.T) {
	e, calls := newIdempServer(t)
	caller := strings.Repeat("b", 32)
	reqID := strings.Repeat("1", 32)
	body := `{"amount_minor":100000}`

	rec1 := httptest.NewRecorder()
	e.ServeHTTP(rec1, paymentReq(caller, reqID, body))
	if rec1.Code != http.StatusOK {
		t.Fatalf("first status = %d: %s", rec1.Code, rec1.Body.String())
	}

	rec2 := httptest.NewRecorder()
	e.ServeHTTP(rec2, paymentReq(caller, reqID, body))
	if rec2.Code != http.StatusOK {
		t.Fatalf("replay status = %d: %s", rec2.Code, rec2.Body.String())
	}
	if *calls != 1 {
		t.Fatalf("handler ran %d times, want 1", *calls)
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replayed body differs: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
}

func TestIdempotency_RejectsReusedIDWithDifferentBody(t *testing.T) {
	e, calls := newIdempServer(t)
	caller := strings.Repeat("b", 32)
	reqID := strings.Repeat("2", 32)

	rec1 := httptest.NewRecorder()
	e.ServeHTTP(rec1, paymentReq(caller, reqID, `{"amount_minor":100000}`))
	if rec1.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec1.Code)
	}

	rec2 := httptest.NewRecorder()
	e.ServeHTTP(rec2, paymentReq(caller, reqID, `{"amount_minor":999999}`))
	if rec2.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec2.Code)
	}
	if *calls != 1 {
		t.Fatalf("handler ran %d times, want 1", *calls)
	}
}

func TestIdempotency_DistinctRequestIDsBothRun(t *testing.T) {
	e, calls := newIdempServer(t)
	caller := strings.Repeat("b", 32)
	body := `{"amount_minor":100000}`

	rec1 := httptest.NewRecorder()
	e.ServeHTTP(rec1, paymentReq(caller, strings.Repeat("3", 32), body))
	rec2 := httptest.NewRecorder()
	e.ServeHTTP(rec2, paymentReq(caller, strings.Repeat("4", 32), body))
	if rec1.Code != http.StatusOK || rec2.Code != http.StatusOK {
		t.Fatalf("statuses = %d/%d, want 200/200", rec1.Code, rec2.Code)
	}
	if *calls != 2 {
		t.Fatalf("handler ran %d times, want 2", *calls)
	}
}

func TestIdempotency_MissingHeadersRejected(t *testing.T) {
	e, _ := newIdempServer(t)
	caller := strings.Repeat("b", 32)

	// no Ax-Request-Id
	req := httptest.NewRequest(http.MethodPost, "/loans/1/payments", strings.NewReader(`{}`))
	req.Header.Set(HeaderCallerID, caller)
	req.Header.Set("Ax-Request-At", fmt.Sprintf("%d", time.Now().Unix()))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	// skewed Ax-Request-At
	req2 := paymentReq(caller, strings.Repeat("5", 32), `{}`)
	req2.Header.Set("Ax-Request-At", fmt.Sprintf("%d", time.Now().Add(-time.Hour).Unix()))
	rec2 := httptest.NewRecorder()
	e.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec2.Code)
	}
}
