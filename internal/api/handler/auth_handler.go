package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/ledger-system/internal/api/metrics"
	"github.com/99minutos/ledger-system/internal/api/middleware"
	"github.com/99minutos/ledger-system/internal/core/ports"
)

// CookieConfig shapes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	// TTL becomes the cookie Max-Age. Zero makes it a browser-session cookie.
	TTL time.Duration
}

type AuthHandler struct {
	service ports.LedgerService
	cookie  CookieConfig
	metrics *metrics.Metrics
}

func NewAuthHandler(service ports.LedgerService, cookie CookieConfig, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{service: service, cookie: cookie, metrics: m}
}

// Login authenticates a user and sets the session cookie.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  errorBody
// @Failure      422   {object}  errorBody
// @Failure      503   {object}  errorBody
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sessionID, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	h.metrics.ObserveLogin(err)
	if err != nil {
		return err
	}

	c.SetCookie(h.sessionCookie(sessionID))
	return c.JSON(http.StatusOK, loginResponse{Username: req.Username})
}

// Logout revokes the caller's session and clears the cookie.
//
// @Summary      Log out
// @Tags         auth
// @Success      204
// @Failure      503   {object}  errorBody
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.expiredCookie())
	if err := h.service.Logout(c.Request().Context(), middleware.SessionID(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) sessionCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL / time.Second),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (h *AuthHandler) expiredCookie() *http.Cookie {
	c := h.sessionCookie("")
	c.MaxAge = -1
	return c
}
