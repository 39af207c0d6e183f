package middleware

import (
	"github.com/labstack/echo/v4"
)

const (
	// SessionHeader lets non-browser clients present a session without cookies.
	SessionHeader = "X-Session-ID"

	sessionIDKey = "session_id"
)

// Session copies the caller's session id into the request context. The
// cookie wins over the header. It never rejects a request: resolving the id
// to a user is left to the service.
func Session(cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(cookieName); err == nil {
				id = ck.Value
			}
			if id == "" {
				id = c.Request().Header.Get(SessionHeader)
			}
			if id != "" {
				c.Set(sessionIDKey, id)
			}
			return next(c)
		}
	}
}

// SessionID returns the id stored by Session, or "" when there is none.
func SessionID(c echo.Context) string {
	id, _ := c.Get(sessionIDKey).(string)
	return id
}
