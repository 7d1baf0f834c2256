package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/usecase/flow"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "flow:session:"

// RedisStore keeps flow sessions as JSON values that expire after ttl of inactivity.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func Key(identity int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, identity)
}

func (s *RedisStore) Get(ctx context.Context, identity int64) (*flow.Session, error) {
	raw, err := s.client.Get(ctx, Key(identity)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session %d: %w", identity, err)
	}
	return Decode(raw)
}

func (s *RedisStore) Save(ctx context.Context, session *flow.Session) error {
	session.UpdatedAt = s.now()
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %d: %w", session.Identity, err)
	}
	if err := s.client.Set(ctx, Key(session.Identity), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %d: %w", session.Identity, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, identity int64) error {
	if err := s.client.Del(ctx, Key(identity)).Err(); err != nil {
		return fmt.Errorf("delete session %d: %w", identity, err)
	}
	return nil
}

// Decode reads a stored session. A value that no longer parses is treated as
// absent so the user simply starts over.
func Decode(raw []byte) (*flow.Session, error) {
	var session flow.Session
	if err := json.Unmarshal(raw, &session); err != nil || session.State == "" {
		return nil, nil
	}
	return &session, nil
}
