package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wholesale-registration-app/internal/domain"
	"wholesale-registration-app/internal/ports"

	"github.com/redis/go-redis/v9"
)

// RedisSessionRepository implements SessionStorage using Redis.
// A session lives under "<prefix>_<id>" as JSON; "<prefix>_shop_<shop>" indexes ids per shop.
type RedisSessionRepository struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisSessionRepository creates a new Redis session repository
func NewRedisSessionRepository(client *redis.Client, prefix string) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, prefix: prefix, now: time.Now}
}

var _ ports.SessionStorage = (*RedisSessionRepository)(nil)

func (r *RedisSessionRepository) sessionKey(id string) string {
	return r.prefix + "_" + id
}

func (r *RedisSessionRepository) shopKey(shop string) string {
	return r.prefix + "_shop_" + shop
}

// LoadSession retrieves a session by id
func (r *RedisSessionRepository) LoadSession(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &session, nil
}

// FindSessionsByShop retrieves every session indexed for a shop. Index entries
// whose session expired are skipped.
func (r *RedisSessionRepository) FindSessionsByShop(ctx context.Context, shop string) ([]*domain.Session, error) {
	variants := shopVariants(shop)
	keys := make([]string, 0, len(variants))
	for _, v := range variants {
		keys = append(keys, r.shopKey(v))
	}

	ids, err := r.client.SUnion(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to find sessions: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	sessionKeys := make([]string, 0, len(ids))
	for _, id := range ids {
		sessionKeys = append(sessionKeys, r.sessionKey(id))
	}
	values, err := r.client.MGet(ctx, sessionKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	sessions := make([]*domain.Session, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var session domain.Session
		if err := json.Unmarshal([]byte(s), &session); err != nil {
			return nil, fmt.Errorf("failed to decode session %s: %w", ids[i], err)
		}
		sessions = append(sessions, &session)
	}
	return sessions, nil
}

// StoreSession saves a session and indexes it by shop. Sessions with an expiry
// get a matching key TTL.
func (r *RedisSessionRepository) StoreSession(ctx context.Context, session *domain.Session) error {
	if err := validateSession(session); err != nil {
		return err
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	var ttl time.Duration
	if session.Expires != nil {
		ttl = session.Expires.Sub(r.now())
		if ttl <= 0 {
			return fmt.Errorf("session %s is already expired", session.ID)
		}
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.sessionKey(session.ID), raw, ttl)
		if session.Shop != "" {
			pipe.SAdd(ctx, r.shopKey(session.Shop), session.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
