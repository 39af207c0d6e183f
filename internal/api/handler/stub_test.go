package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/ledger-system/internal/api/middleware"
	"github.com/99minutos/ledger-system/internal/core/ports"
)

type stubLedgerService struct {
	loginFn    func(ctx context.Context, username, password string) (string, error)
	logoutFn   func(ctx context.Context, sessionID string) error
	viewFn     func(ctx context.Context, sessionID string) (*ports.AccountView, error)
	transferFn func(ctx context.Context, in ports.TransferInput) (*ports.TransferResult, error)
}

func (s *stubLedgerService) Login(ctx context.Context, username, password string) (string, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubLedgerService) Logout(ctx context.Context, sessionID string) error {
	return s.logoutFn(ctx, sessionID)
}

func (s *stubLedgerService) ViewAccount(ctx context.Context, sessionID string) (*ports.AccountView, error) {
	return s.viewFn(ctx, sessionID)
}

func (s *stubLedgerService) Transfer(ctx context.Context, in ports.TransferInput) (*ports.TransferResult, error) {
	return s.transferFn(ctx, in)
}

const testCookie = "sessionId"

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// serve runs h behind the session middleware, as the router does.
func serve(e *echo.Echo, h echo.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, error) {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := middleware.Session(testCookie)(h)(c)
	return rec, err
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func formRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}
