package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loan-ledger/internal/domain/identity"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const testUID = "admin-uid"

// asCaller stands in for SessionGate: it puts claims for uid on the context.
func asCaller(uid string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if uid != "" {
				c.Set(CtxKeyIdentity, &identity.Claims{UID: uid, Admin: true})
			}
			return next(c)
		}
	}
}

func setupEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	return setupEchoAs(testUID, rdb, ttl, handler)
}

func setupEchoAs(uid string, rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(asCaller(uid))
	e.Use(IdempotencyMiddleware(rdb, ttl, nil))
	e.POST("/loans/:id/transactions", handler)
	e.GET("/loans/:id/transactions", handler) // for non-mutating bypass test
	return e
}

const txPath = "/loans/L1/transactions"

func mkJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func validHeaders() map[string]string {
	return map[string]string{
		HeaderRequestID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		HeaderRequestAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// counting handler to check the write runs once
type countingHandler struct{ calls int }

func (h *countingHandler) handle(c echo.Context) error {
	h.calls++
	return c.JSON(http.StatusCreated, map[string]any{"success": true, "message": "Payment recorded!"})
}

func Test_BypassOnGET_NoHeadersRequired(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "get ok"})
	})
	if rec := doReq(t, e, http.MethodGet, txPath, nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_ValidationFailures(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	h := &countingHandler{}
	e := setupEcho(rdb, 30*time.Second, h.handle)

	cases := []struct {
		name string
		hdr  map[string]string
	}{
		{"missing request id", map[string]string{HeaderRequestAt: validHeaders()[HeaderRequestAt]}},
		{"invalid request id", map[string]string{HeaderRequestID: "NOT-VALID", HeaderRequestAt: validHeaders()[HeaderRequestAt]}},
		{"invalid request at", map[string]string{HeaderRequestID: validHeaders()[HeaderRequestID], HeaderRequestAt: "not-a-time"}},
		{"skewed request at", map[string]string{
			HeaderRequestID: validHeaders()[HeaderRequestID],
			HeaderRequestAt: time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339),
		}},
	}
	for _, tc := range cases {
		rec := doReq(t, e, http.MethodPost, txPath, mkJSONBody(t, map[string]int{"amount": 1}), tc.hdr)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s => want 400, got %d", tc.name, rec.Code)
		}
	}
	if h.calls != 0 {
		t.Fatalf("handler must not run on rejected requests")
	}
}

func Test_RequiresCaller(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	e := setupEchoAs("", rdb, time.Minute, (&countingHandler{}).handle)
	rec := doReq(t, e, http.MethodPost, txPath, mkJSONBody(t, map[string]int{"amount": 1}), validHeaders())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no caller => want 401, got %d", rec.Code)
	}
}

func Test_HappyPath_Then_Replay(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	h := &countingHandler{}
	e := setupEcho(rdb, 2*time.Minute, h.handle)
	hdr := validHeaders()

	rec1 := doReq(t, e, http.MethodPost, txPath, mkJSONBody(t, map[string]any{"amount": "25000"}), hdr)
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first request => want 201, got %d, body: %s", rec1.Code, rec1.Body.String())
	}

	// A double submit must not record the payment twice.
	rec2 := doReq(t, e, http.MethodPost, txPath, mkJSONBody(t, map[string]any{"amount": "25000"}), hdr)
	if rec2.Code != http.StatusCreated {
		t.Fatalf("replay => want 201, got %d, body: %s", rec2.Code, rec2.Body.String())
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
	if h.calls != 1 {
		t.Fatalf("handler ran %d times, want 1", h.calls)
	}
}

func Test_SameRequestID_DifferentCallers_AreIndependent(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	h := &countingHandler{}
	hdr := validHeaders()

	for _, uid := range []string{"admin-1", "admin-2"} {
		e := setupEchoAs(uid, rdb, time.Minute, h.handle)
		rec := doReq(t, e, http.MethodPost, txPath, mkJSONBody(t, map[string]any{"amount": "1"}), hdr)
		if rec.Code != http.StatusCreated {
			t.Fatalf("%s => want 201, got %d", uid, rec.Code)
		}
	}
	if h.calls != 2 {
		t.Fatalf("handler ran %d times, want 2", h.calls)
	}
}

func Test_ServerError_IsNotCached(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	calls := 0
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		calls++
		if calls == 1 {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "something went wrong, please try again"})
		}
		return c.JSON(http.StatusCreated, map[string]bool{"success": true})
	})
	hdr := validHeaders()

	if rec := doReq(t, e, http.MethodPost, txPath, bytes.NewReader([]byte(`{}`)), hdr); rec.Code != http.StatusInternalServerError {
		t.Fatalf("first => want 500, got %d", rec.Code)
	}
	if rec := doReq(t, e, http.MethodPost, txPath, bytes.NewReader([]byte(`{}`)), hdr); rec.Code != http.StatusCreated {
		t.Fatalf("retry => want 201, got %d", rec.Code)
	}
}

func Test_Conflict_When_InProgress(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, (&countingHandler{}).handle)

	reqID := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	body := []byte(`{"x":1}`)

	key := buildKey(http.MethodPost, "/loans/:id/transactions", testUID, reqID)
	entry := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash(body),
		RequestID:   reqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if ok, err := provisionalSet(context.Background(), rdb, key, entry); err != nil || !ok {
		t.Fatalf("seed provisional failed, ok=%v err=%v", ok, err)
	}

	rec := doReq(t, e, http.MethodPost, txPath, bytes.NewReader(body), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("in-progress => want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_Conflict_When_SameReqID_DifferentBody(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, (&countingHandler{}).handle)

	reqID := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	key := buildKey(http.MethodPost, "/loans/:id/transactions", testUID, reqID)
	final := idempEntry{
		Code:        http.StatusCreated,
		Body:        []byte(`{"success":true}`),
		BodySHA256:  bodyHash([]byte(`{"x":1}`)),
		RequestID:   reqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := saveFinal(context.Background(), rdb, key, final, 5*time.Minute); err != nil {
		t.Fatalf("seed final failed: %v", err)
	}

	rec := doReq(t, e, http.MethodPost, txPath, bytes.NewReader([]byte(`{"x":2}`)), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("different body same reqID => want 409, got %d", rec.Code)
	}
}

func Test_StoreUnavailable_Returns503(t *testing.T) {
	// closed address → SetNX error
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	e := setupEcho(rdb, time.Minute, (&countingHandler{}).handle)

	rec := doReq(t, e, http.MethodPost, txPath, bytes.NewReader([]byte(`{}`)), validHeaders())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store unavailable => want 503, got %d", rec.Code)
	}
}
