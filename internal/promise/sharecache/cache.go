// Package sharecache decorates a share store with a Redis read-through cache
// on token lookups. Share tokens are immutable and the cached fields
// (id, promise id) never change after issue, so entries need no invalidation
// beyond TTL; verdict fields are always re-read from the store.
package sharecache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"pinky/internal/promise/models"
	"pinky/internal/promise/ports"
	id "pinky/pkg/domain"
)

const (
	tokenKeyPrefix = "share:token:"
	entryTTL       = 15 * time.Minute
)

// Store wraps an inner ShareStore. Cache failures degrade to the inner store;
// they are logged, never surfaced.
type Store struct {
	inner  ports.ShareStore
	client *redis.Client
	logger *slog.Logger
}

func New(inner ports.ShareStore, client *redis.Client, logger *slog.Logger) *Store {
	return &Store{inner: inner, client: client, logger: logger}
}

type cachedShare struct {
	ShareID string `json:"share_id"`
}

func (s *Store) Create(ctx context.Context, share *models.Share) error {
	return s.inner.Create(ctx, share)
}

func (s *Store) FindByID(ctx context.Context, shareID id.ShareID) (*models.Share, error) {
	return s.inner.FindByID(ctx, shareID)
}

// FindByToken consults the cache for the token's share ID, then loads the
// current row by primary key so evaluated fields are never stale.
func (s *Store) FindByToken(ctx context.Context, token string) (*models.Share, error) {
	key := tokenKeyPrefix + token
	raw, err := s.client.Get(ctx, key).Result()
	if err == nil {
		var cached cachedShare
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			if shareID, parseErr := id.ParseShareID(cached.ShareID); parseErr == nil {
				return s.inner.FindByID(ctx, shareID)
			}
		}
	} else if !errors.Is(err, redis.Nil) {
		s.logger.WarnContext(ctx, "share cache read failed", "error", err)
	}

	share, err := s.inner.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(cachedShare{ShareID: share.ID.String()})
	if err == nil {
		if setErr := s.client.Set(ctx, key, payload, entryTTL).Err(); setErr != nil {
			s.logger.WarnContext(ctx, "share cache write failed", "error", setErr)
		}
	}
	return share, nil
}
