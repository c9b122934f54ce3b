// Package memory holds in-process implementations of the core stores.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ewilliams-labs/moodshift/internal/core/ports"
)

// DefaultCodeCooldown is how long a claimed authorization code stays claimed.
const DefaultCodeCooldown = 10 * time.Minute

// CodeGuard remembers claimed authorization codes until their cooldown ends.
type CodeGuard struct {
	mu       sync.Mutex
	claimed  map[string]time.Time // code -> expiry
	cooldown time.Duration
	now      func() time.Time
}

// compile-time interface assertion
var _ ports.CodeGuard = (*CodeGuard)(nil)

// NewCodeGuard constructs a CodeGuard. A non-positive cooldown uses
// DefaultCodeCooldown.
func NewCodeGuard(cooldown time.Duration) *CodeGuard {
	if cooldown <= 0 {
		cooldown = DefaultCodeCooldown
	}
	return &CodeGuard{
		claimed:  make(map[string]time.Time),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Claim records code and reports whether this call was the first within the
// cooldown window.
func (g *CodeGuard) Claim(_ context.Context, code string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.sweep(now)

	if exp, ok := g.claimed[code]; ok && now.Before(exp) {
		return false, nil
	}
	g.claimed[code] = now.Add(g.cooldown)
	return true, nil
}

// Len returns the number of live claims.
func (g *CodeGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sweep(g.now())
	return len(g.claimed)
}

// sweep drops expired claims. Must be called with g.mu held.
func (g *CodeGuard) sweep(now time.Time) {
	for code, exp := range g.claimed {
		if !now.Before(exp) {
			delete(g.claimed, code)
		}
	}
}
