package ports

import (
	"context"

	"github.com/ewilliams-labs/moodshift/internal/core/domain"
)

// PlaylistInfoStore keeps the last transition playlist per user.
// Get returns domain.ErrNotFound on a miss.
type PlaylistInfoStore interface {
	Put(ctx context.Context, info domain.PlaylistInfo) error
	Get(ctx context.Context, userID string) (domain.PlaylistInfo, error)
}

// CodeGuard rejects authorization codes submitted twice within a cooldown.
type CodeGuard interface {
	// Claim records code and reports true, or reports false when the code
	// was already claimed and its cooldown has not elapsed.
	Claim(ctx context.Context, code string) (bool, error)
}
