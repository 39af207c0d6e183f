package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/ledger-system/internal/core/domain"
	"github.com/99minutos/ledger-system/internal/core/ports"
)

const (
	keyPrefix = "session:"
	scanCount = 100
)

// SessionRepository stores each session as a JSON string under
// session:<id>. With a positive ttl the keys expire alongside the session.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{client: client, ttl: ttl}
}

// LoadSessions walks the keyspace with SCAN and fetches the values in batches.
// Keys that vanish between SCAN and GET are skipped.
func (r *SessionRepository) LoadSessions(ctx context.Context) ([]domain.Session, error) {
	var (
		sessions []domain.Session
		cursor   uint64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, keyPrefix+"*", scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("scan sessions: %w", err)
		}

		if len(keys) > 0 {
			values, err := r.client.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, fmt.Errorf("get sessions: %w", err)
			}
			for i, v := range values {
				raw, ok := v.(string)
				if !ok {
					continue
				}
				var s domain.Session
				if err := json.Unmarshal([]byte(raw), &s); err != nil {
					return nil, fmt.Errorf("decode session %s: %w", keys[i], err)
				}
				sessions = append(sessions, s)
			}
		}

		cursor = next
		if cursor == 0 {
			return sessions, nil
		}
	}
}

func (r *SessionRepository) SaveSession(ctx context.Context, s domain.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	ttl := r.remaining(s)
	if ttl < 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.key(s.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	err := r.client.Del(ctx, r.key(sessionID)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// remaining is the key expiry for s: zero keeps the key forever, a negative
// value means the session is already past its lifetime.
func (r *SessionRepository) remaining(s domain.Session) time.Duration {
	if r.ttl <= 0 || s.CreatedAt.IsZero() {
		return 0
	}
	left := time.Until(s.CreatedAt.Add(r.ttl))
	if left <= 0 {
		return -1
	}
	return left
}

func (r *SessionRepository) key(sessionID string) string {
	return keyPrefix + sessionID
}
