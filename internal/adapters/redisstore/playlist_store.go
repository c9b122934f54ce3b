package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ewilliams-labs/moodshift/internal/core/domain"
	"github.com/ewilliams-labs/moodshift/internal/core/ports"
)

// PlaylistStore keeps the last playlist per user as a JSON string.
type PlaylistStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// compile-time interface assertion
var _ ports.PlaylistInfoStore = (*PlaylistStore)(nil)

// NewPlaylistStore constructs a PlaylistStore. A zero ttl keeps entries forever.
func NewPlaylistStore(rdb redis.Cmdable, ttl time.Duration) *PlaylistStore {
	return &PlaylistStore{rdb: rdb, ttl: ttl}
}

func playlistKey(userID string) string {
	return keyPrefix + "playlist:" + userID
}

// Put overwrites the user's entry.
func (s *PlaylistStore) Put(ctx context.Context, info domain.PlaylistInfo) error {
	b, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("redis store: encode playlist info: %w", err)
	}
	if err := s.rdb.Set(ctx, playlistKey(info.UserID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis store: put playlist info: %w", err)
	}
	return nil
}

// Get returns the user's entry or domain.ErrNotFound.
func (s *PlaylistStore) Get(ctx context.Context, userID string) (domain.PlaylistInfo, error) {
	b, err := s.rdb.Get(ctx, playlistKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PlaylistInfo{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.PlaylistInfo{}, fmt.Errorf("redis store: get playlist info: %w", err)
	}

	var info domain.PlaylistInfo
	if err := json.Unmarshal(b, &info); err != nil {
		return domain.PlaylistInfo{}, fmt.Errorf("redis store: decode playlist info: %w", err)
	}
	return info, nil
}
