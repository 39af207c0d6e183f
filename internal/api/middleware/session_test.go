package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runSession(t *testing.T, req *http.Request) string {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got string
	called := false
	handler := Session("sessionId")(func(c echo.Context) error {
		called = true
		got = SessionID(c)
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	return got
}

func TestSession_FromCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sessionId", Value: "abc"})

	if got := runSession(t, req); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}

func TestSession_FromHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "xyz")

	if got := runSession(t, req); got != "xyz" {
		t.Fatalf("expected xyz, got %q", got)
	}
}

func TestSession_CookieWinsOverHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sessionId", Value: "cookie"})
	req.Header.Set(SessionHeader, "header")

	if got := runSession(t, req); got != "cookie" {
		t.Fatalf("expected cookie, got %q", got)
	}
}

func TestSession_AnonymousPassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "other", Value: "nope"})

	if got := runSession(t, req); got != "" {
		t.Fatalf("expected no session, got %q", got)
	}
}
