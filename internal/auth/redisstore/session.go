// Package redisstore provides a Redis-backed session store. Expiry is
// delegated to Redis TTLs; a per-user set of tokens supports revoke-all.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Autonom664/hr-performance-dstchemicals/internal/auth"
)

const (
	tokenPrefix = "session:"
	userPrefix  = "user_sessions:"
)

type Store struct {
	client *redis.Client
}

func New(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Store{client: client}, nil
}

// NewWithClient wraps an existing client; used by tests with miniredis.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

type sessionRecord struct {
	ID        string    `json:"id"`
	UserEmail string    `json:"user_email"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func tokenKey(token string) string { return tokenPrefix + token }
func userKey(email string) string  { return userPrefix + email }

func (s *Store) Create(ctx context.Context, session *auth.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	data, err := json.Marshal(sessionRecord{
		ID:        session.ID,
		UserEmail: session.UserEmail,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, tokenKey(session.Token), data, ttl)
	pipe.SAdd(ctx, userKey(session.UserEmail), session.Token)
	// the set outlives individual tokens; stale members are pruned on revoke-all
	pipe.Expire(ctx, userKey(session.UserEmail), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Store) GetByToken(ctx context.Context, token string) (*auth.Session, error) {
	data, err := s.client.Get(ctx, tokenKey(token)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &auth.Session{
		ID:        rec.ID,
		UserEmail: rec.UserEmail,
		Token:     token,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	data, err := s.client.Get(ctx, tokenKey(token)).Result()
	if err == nil {
		var rec sessionRecord
		if jsonErr := json.Unmarshal([]byte(data), &rec); jsonErr == nil {
			s.client.SRem(ctx, userKey(rec.UserEmail), token)
		}
	}
	if err := s.client.Del(ctx, tokenKey(token)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Store) DeleteAllForUser(ctx context.Context, userEmail string) (int64, error) {
	tokens, err := s.client.SMembers(ctx, userKey(userEmail)).Result()
	if err != nil && err != redis.Nil {
		return 0, fmt.Errorf("list user sessions: %w", err)
	}

	var deleted int64
	for _, token := range tokens {
		n, err := s.client.Del(ctx, tokenKey(token)).Result()
		if err != nil {
			return deleted, fmt.Errorf("revoke session: %w", err)
		}
		deleted += n
	}

	if err := s.client.Del(ctx, userKey(userEmail)).Err(); err != nil {
		return deleted, fmt.Errorf("clear session index: %w", err)
	}
	return deleted, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
