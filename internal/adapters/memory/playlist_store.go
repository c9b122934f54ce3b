package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/ewilliams-labs/moodshift/internal/core/domain"
	"github.com/ewilliams-labs/moodshift/internal/core/ports"
)

// DefaultPlaylistCacheSize bounds the number of users remembered.
const DefaultPlaylistCacheSize = 10000

type entry struct {
	info    domain.PlaylistInfo
	expires time.Time // zero means no expiry
}

// PlaylistStore keeps the last playlist per user in a bounded LRU.
type PlaylistStore struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List // front is most recently used
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// compile-time interface assertion
var _ ports.PlaylistInfoStore = (*PlaylistStore)(nil)

// Option configures a PlaylistStore.
type Option func(*PlaylistStore)

// WithMaxSize bounds the store. Non-positive values keep the default.
func WithMaxSize(n int) Option {
	return func(s *PlaylistStore) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// WithTTL expires entries ttl after they are written. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *PlaylistStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// NewPlaylistStore constructs a PlaylistStore.
func NewPlaylistStore(opts ...Option) *PlaylistStore {
	s := &PlaylistStore{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: DefaultPlaylistCacheSize,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put replaces the user's entry, evicting the least recently used user when full.
func (s *PlaylistStore) Put(_ context.Context, info domain.PlaylistInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{info: clone(info)}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}

	if el, ok := s.items[info.UserID]; ok {
		el.Value = e
		s.order.MoveToFront(el)
		return nil
	}

	if s.order.Len() >= s.maxSize {
		s.evictOldest()
	}
	s.items[info.UserID] = s.order.PushFront(e)
	return nil
}

// Get returns the user's entry or domain.ErrNotFound.
func (s *PlaylistStore) Get(_ context.Context, userID string) (domain.PlaylistInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[userID]
	if !ok {
		return domain.PlaylistInfo{}, domain.ErrNotFound
	}
	e := el.Value.(entry)
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		s.remove(el)
		return domain.PlaylistInfo{}, domain.ErrNotFound
	}
	s.order.MoveToFront(el)
	return clone(e.info), nil
}

// Len returns the number of stored users, expired entries included.
func (s *PlaylistStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// evictOldest must be called with s.mu held.
func (s *PlaylistStore) evictOldest() {
	if el := s.order.Back(); el != nil {
		s.remove(el)
	}
}

func (s *PlaylistStore) remove(el *list.Element) {
	e := s.order.Remove(el).(entry)
	delete(s.items, e.info.UserID)
}

func clone(info domain.PlaylistInfo) domain.PlaylistInfo {
	if info.TrackURIs != nil {
		info.TrackURIs = append([]string(nil), info.TrackURIs...)
	}
	return info
}
