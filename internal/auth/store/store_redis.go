package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"fusebot/internal/auth/models"
	domainerrors "fusebot/pkg/domain-errors"
)

const sessionKeyPrefix = "auth_session:"

// RedisStore persists sessions as JSON values with a sliding TTL. Each read
// and write refreshes the expiry so an active conversation never loses its
// session mid-flow.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// RedisOption configures the RedisStore.
type RedisOption func(*RedisStore)

// WithRedisLogger sets the logger for non-fatal store events.
func WithRedisLogger(logger *slog.Logger) RedisOption {
	return func(s *RedisStore) {
		s.logger = logger
	}
}

// NewRedis constructs a Redis-backed session store.
func NewRedis(client *redis.Client, ttl time.Duration, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, ttl: ttl}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func sessionKey(roomID string) string {
	return sessionKeyPrefix + roomID
}

func (s *RedisStore) Get(ctx context.Context, roomID string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.NewSession(roomID), nil
	}
	if err != nil {
		return models.NewSession(roomID), domainerrors.Wrap(err, domainerrors.CodeStorage, "get session")
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		// A corrupt record is unrecoverable; start the flow over.
		return models.NewSession(roomID), domainerrors.Wrap(err, domainerrors.CodeStorage, "decode session")
	}
	if session.RoomID == "" {
		session.RoomID = roomID
	}

	// Sliding expiry: reads keep an active conversation alive. A refresh
	// failure does not fail the read; the record is still valid until its
	// previous deadline.
	if err := s.client.Expire(ctx, sessionKey(roomID), s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "session ttl refresh failed",
			"room_id", roomID,
			"error", err,
		)
	}

	return &session, nil
}

func (s *RedisStore) Put(ctx context.Context, session *models.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeStorage, "encode session")
	}
	if err := s.client.Set(ctx, sessionKey(session.RoomID), raw, s.ttl).Err(); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeStorage, "put session")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, roomID string) error {
	if err := s.client.Del(ctx, sessionKey(roomID)).Err(); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeStorage, "delete session")
	}
	return nil
}
