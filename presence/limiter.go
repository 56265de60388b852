package presence

import (
	"sync"
	"time"
)

// DefaultCooldown is the minimum interval between avatar change attempts
// for one bot. Discord throttles identity-image changes hard; changing on
// every poll cycle would get the endpoint silently rejected.
const DefaultCooldown = 10 * time.Minute

// AvatarLimiter permits at most one avatar change attempt per cooldown
// window, per key. The window starts when TryAcquire succeeds, so a set
// attempt that later fails still counts against the window.
type AvatarLimiter struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	until  map[string]time.Time
}

// NewAvatarLimiter creates a limiter. A non-positive window falls back to
// DefaultCooldown.
func NewAvatarLimiter(window time.Duration) *AvatarLimiter {
	if window <= 0 {
		window = DefaultCooldown
	}
	return &AvatarLimiter{
		window: window,
		now:    time.Now,
		until:  make(map[string]time.Time),
	}
}

// TryAcquire reports whether an avatar change attempt is permitted for
// key right now, and if so starts the cooldown window.
func (l *AvatarLimiter) TryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Before(l.until[key]) {
		return false
	}
	l.until[key] = now.Add(l.window)
	return true
}
