package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/99minutos/ledger-system/internal/core/ports"
)

func TestAccountHandler_View_Authenticated(t *testing.T) {
	e := newTestEcho()
	stub := &stubLedgerService{
		viewFn: func(ctx context.Context, sessionID string) (*ports.AccountView, error) {
			if sessionID != "sid-1" {
				t.Fatalf("unexpected session %q", sessionID)
			}
			return &ports.AccountView{Username: "alex", Balance: 300, CSRFToken: "tok"}, nil
		},
	}
	h := NewAccountHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/account", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "sid-1"})
	rec, err := serve(e, h.View, req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(CSRFHeader); got != "tok" {
		t.Fatalf("expected csrf header tok, got %q", got)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["authenticated"] != true || resp["username"] != "alex" {
		t.Fatalf("unexpected body: %v", resp)
	}
	if resp["balance"] != float64(300) || resp["balance_display"] != "300.00" {
		t.Fatalf("unexpected balance: %v / %v", resp["balance"], resp["balance_display"])
	}
	if resp["csrf_token"] != "tok" {
		t.Fatalf("unexpected csrf token: %v", resp["csrf_token"])
	}
}

func TestAccountHandler_View_ZeroBalanceIsShown(t *testing.T) {
	e := newTestEcho()
	stub := &stubLedgerService{
		viewFn: func(ctx context.Context, sessionID string) (*ports.AccountView, error) {
			return &ports.AccountView{Username: "alex", Balance: 0, CSRFToken: "tok"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/account", nil)
	req.Header.Set("X-Session-ID", "sid-1")
	rec, err := serve(e, NewAccountHandler(stub).View, req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["balance"] != float64(0) {
		t.Fatalf("expected balance 0 in body, got %v", resp["balance"])
	}
}

func TestAccountHandler_View_Anonymous(t *testing.T) {
	e := newTestEcho()
	stub := &stubLedgerService{
		viewFn: func(ctx context.Context, sessionID string) (*ports.AccountView, error) {
			return nil, nil
		},
	}

	rec, err := serve(e, NewAccountHandler(stub).View, httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(CSRFHeader) != "" {
		t.Fatalf("anonymous view must not carry a csrf token")
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["authenticated"] != false || len(resp) != 1 {
		t.Fatalf("unexpected anonymous body: %v", resp)
	}
}

func TestAccountHandler_View_Error(t *testing.T) {
	e := newTestEcho()
	boom := errors.New("token source failed")
	stub := &stubLedgerService{
		viewFn: func(ctx context.Context, sessionID string) (*ports.AccountView, error) {
			return nil, boom
		},
	}

	_, err := serve(e, NewAccountHandler(stub).View, httptest.NewRequest(http.MethodGet, "/", nil))
	if !errors.Is(err, boom) {
		t.Fatalf("expected error to propagate, got %v", err)
	}
}
