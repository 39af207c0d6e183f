package service

import (
	"crypto/subtle"
	"fmt"
	"sync"
)

// CSRFOptions tunes a CSRFManager.
type CSRFOptions struct {
	// MaxPerUser keeps only the most recent tokens per user. Zero keeps all.
	MaxPerUser int
	// SingleUse makes Redeem consume the token it accepts.
	SingleUse bool
	NewToken  TokenSource
}

// CSRFManager keeps per-user anti-forgery tokens in process memory. Tokens
// are lost on restart.
type CSRFManager struct {
	mu         sync.Mutex
	tokens     map[string][]string
	maxPerUser int
	singleUse  bool
	newToken   TokenSource
}

func NewCSRFManager(opts CSRFOptions) *CSRFManager {
	if opts.NewToken == nil {
		opts.NewToken = RandomToken
	}
	if opts.MaxPerUser < 0 {
		opts.MaxPerUser = 0
	}
	return &CSRFManager{
		tokens:     make(map[string][]string),
		maxPerUser: opts.MaxPerUser,
		singleUse:  opts.SingleUse,
		newToken:   opts.NewToken,
	}
}

// Issue creates a token for username. When the per-user bound is exceeded
// the oldest tokens are dropped.
func (m *CSRFManager) Issue(username string) (string, error) {
	token, err := m.newToken()
	if err != nil {
		return "", fmt.Errorf("issue csrf token: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := append(m.tokens[username], token)
	if m.maxPerUser > 0 && len(list) > m.maxPerUser {
		list = append([]string(nil), list[len(list)-m.maxPerUser:]...)
	}
	m.tokens[username] = list
	return token, nil
}

// Validate reports whether token was issued for username and is still held.
func (m *CSRFManager) Validate(username, token string) bool {
	if token == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexOf(username, token) >= 0
}

// Consume validates token and removes it in the same step.
func (m *CSRFManager) Consume(username, token string) bool {
	if token == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(username, token)
	if i < 0 {
		return false
	}
	list := m.tokens[username]
	m.tokens[username] = append(list[:i:i], list[i+1:]...)
	if len(m.tokens[username]) == 0 {
		delete(m.tokens, username)
	}
	return true
}

// Redeem is the check applied to state-changing requests: Consume in
// single-use mode, Validate otherwise.
func (m *CSRFManager) Redeem(username, token string) bool {
	if m.singleUse {
		return m.Consume(username, token)
	}
	return m.Validate(username, token)
}

// Count returns the number of tokens currently held for all users.
func (m *CSRFManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, list := range m.tokens {
		n += len(list)
	}
	return n
}

// indexOf compares against every held token so the scan time does not depend
// on where a match sits. Caller holds m.mu.
func (m *CSRFManager) indexOf(username, token string) int {
	found := -1
	for i, t := range m.tokens[username] {
		if subtle.ConstantTimeCompare([]byte(t), []byte(token)) == 1 {
			found = i
		}
	}
	return found
}
