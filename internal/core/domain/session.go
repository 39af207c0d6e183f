package domain

import "time"

// Session binds a bearer identifier to an authenticated username.
type Session struct {
	SessionID string    `json:"sessionId"           bson:"session_id"`
	Username  string    `json:"username"            bson:"username"`
	CreatedAt time.Time `json:"createdAt,omitzero"  bson:"created_at,omitempty"`
}

// Expired reports whether the session is older than ttl at now.
// A zero ttl disables expiry. Sessions without a creation time are treated
// as expired whenever expiry is enabled.
func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	if s.CreatedAt.IsZero() {
		return true
	}
	return now.Sub(s.CreatedAt) > ttl
}

// CSRFToken is a per-user secret echoed back on state-changing requests.
// Tokens live only in process memory.
type CSRFToken struct {
	Token    string
	Username string
}
