// Package session tracks issued access tokens in Redis so logout takes effect
// before the JWT expires.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/vendorkyc-backend/pkg/config"
	redisclient "github.com/angelmondragon/vendorkyc-backend/pkg/redis"
)

var errAccessIDRequired = errors.New("access id is required")

type store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker is the read side used by the auth middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string, userID uuid.UUID) (bool, error)
}

// Manager stores one key per access token, valued with the owning user id and
// expiring with the token.
type Manager struct {
	store store
	ttl   time.Duration
}

func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return newManager(client, cfg)
}

func newManager(s store, cfg config.JWTConfig) (*Manager, error) {
	ttl := cfg.AccessTokenTTL()
	if ttl <= 0 {
		return nil, errors.New("access token ttl must be positive")
	}
	return &Manager{store: s, ttl: ttl}, nil
}

func (m *Manager) key(accessID string) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", errAccessIDRequired
	}
	return m.store.AccessSessionKey(accessID), nil
}

func (m *Manager) Open(ctx context.Context, accessID string, userID uuid.UUID) error {
	key, err := m.key(accessID)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, key, userID.String(), m.ttl)
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	key, err := m.key(accessID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

// HasSession is true only while the session exists and belongs to userID, so
// a jti lifted from one token cannot be replayed under another subject.
func (m *Manager) HasSession(ctx context.Context, accessID string, userID uuid.UUID) (bool, error) {
	key, err := m.key(accessID)
	if err != nil {
		return false, err
	}
	owner, err := m.store.Get(ctx, key)
	switch {
	case errors.Is(err, redislib.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	return owner == userID.String(), nil
}

// NewAccessID produces the identifier used as the JWT jti and Redis key.
func NewAccessID() string {
	return uuid.NewString()
}
