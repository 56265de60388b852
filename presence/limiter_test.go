package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTryAcquireStartsWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewAvatarLimiter(10 * time.Minute)
	l.now = func() time.Time { return now }

	assert.True(t, l.TryAcquire("a"))
	assert.False(t, l.TryAcquire("a"), "second acquire inside the window must fail")

	now = now.Add(9 * time.Minute)
	assert.False(t, l.TryAcquire("a"))

	now = now.Add(time.Minute)
	assert.True(t, l.TryAcquire("a"), "window has elapsed")
}

func TestTryAcquireKeysAreIndependent(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewAvatarLimiter(10 * time.Minute)
	l.now = func() time.Time { return now }

	assert.True(t, l.TryAcquire("a"))
	assert.True(t, l.TryAcquire("b"), "one bot's cooldown must not affect another's")
	assert.False(t, l.TryAcquire("b"))
}

func TestNewAvatarLimiterDefaultWindow(t *testing.T) {
	l := NewAvatarLimiter(0)
	assert.Equal(t, DefaultCooldown, l.window)
}
