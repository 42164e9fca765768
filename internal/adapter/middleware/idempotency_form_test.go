package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func doForm(t *testing.T, e *echo.Echo, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func Test_FormPost_HiddenFields_Replay(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	h := &countingHandler{}
	e := setupEcho(rdb, 2*time.Minute, h.handle)

	form := url.Values{
		"amount":      {"40"},
		"date":        {"2025-01-01"},
		FormRequestID: {"bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"},
		FormRequestAt: {time.Now().UTC().Format(time.RFC3339)},
	}
	rec1 := doForm(t, e, txPath, form)
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first form post => want 201, got %d, body: %s", rec1.Code, rec1.Body.String())
	}
	// a double-clicked submit button resends the same hidden fields
	rec2 := doForm(t, e, txPath, form)
	if rec2.Code != http.StatusCreated {
		t.Fatalf("replay => want 201, got %d, body: %s", rec2.Code, rec2.Body.String())
	}
	if h.calls != 1 {
		t.Fatalf("handler ran %d times, want 1", h.calls)
	}
}

func Test_FormPost_WithoutRequestID_Rejected(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	h := &countingHandler{}
	e := setupEcho(rdb, time.Minute, h.handle)

	rec := doForm(t, e, txPath, url.Values{"amount": {"40"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
	if h.calls != 0 {
		t.Fatalf("handler ran %d times, want 0", h.calls)
	}
}

func Test_JSONBody_FieldsAreNotARequestID(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	h := &countingHandler{}
	e := setupEcho(rdb, time.Minute, h.handle)

	body := `{"request_id":"cccccccccccccccccccccccccccccccc","request_at":"` + time.Now().UTC().Format(time.RFC3339) + `"}`
	rec := doReq(t, e, http.MethodPost, txPath, strings.NewReader(body), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}

func TestRequestIdentity(t *testing.T) {
	at := "1736123456"

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(HeaderRequestID, " dddddddddddddddddddddddddddddddd ")
	req.Header.Set(HeaderRequestAt, at)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if id, got := requestIdentity(req, []byte("request_id=other")); id != "dddddddddddddddddddddddddddddddd" || got != at {
		t.Fatalf("header should win, got %q %q", id, got)
	}

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm+"; charset=utf-8")
	if id, got := requestIdentity(req, []byte("request_id=eeee&request_at="+at)); id != "eeee" || got != at {
		t.Fatalf("form fallback, got %q %q", id, got)
	}

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(echo.HeaderContentType, echo.MIMEMultipartForm)
	if id, _ := requestIdentity(req, []byte("request_id=eeee")); id != "" {
		t.Fatalf("multipart body must not be parsed, got %q", id)
	}
}
