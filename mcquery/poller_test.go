package mcquery

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftwatch/mcstatusbot/icon"
)

// fakeQuerier scripts the outcome of each query variant and records how
// often each was attempted.
type fakeQuerier struct {
	modernRes *QueryResult
	modernErr error
	legacyRes *QueryResult
	legacyErr error

	modernCalls int
	legacyCalls int
}

func (f *fakeQuerier) Modern(ctx context.Context, host string, port uint16) (*QueryResult, error) {
	f.modernCalls++
	return f.modernRes, f.modernErr
}

func (f *fakeQuerier) Legacy(ctx context.Context, host string, port uint16) (*QueryResult, error) {
	f.legacyCalls++
	return f.legacyRes, f.legacyErr
}

var errRefused = fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED)

func TestPollModernSuccess(t *testing.T) {
	q := &fakeQuerier{modernRes: &QueryResult{
		OnlineCount: 5,
		Players:     []Player{{ID: "a", Name: "Alice"}},
		Description: "My Server",
		Favicon:     "data:image/png;base64,AAAA",
	}}
	st := NewPoller(q).Poll(context.Background(), "mc.example.com", DefaultPort)

	assert.Equal(t, KindOnline, st.Kind)
	assert.Equal(t, 5, st.OnlineCount)
	require.Len(t, st.Players, 1)
	assert.Equal(t, "Alice", st.Players[0].Name)
	assert.Equal(t, "My Server", st.Description)
	assert.Equal(t, "data:image/png;base64,AAAA", st.Icon)
	assert.Equal(t, 0, q.legacyCalls)
}

func TestPollModernSuccessNoFavicon(t *testing.T) {
	q := &fakeQuerier{modernRes: &QueryResult{OnlineCount: 2, Description: "motd"}}
	st := NewPoller(q).Poll(context.Background(), "mc.example.com", DefaultPort)

	assert.Equal(t, KindOnline, st.Kind)
	assert.Equal(t, icon.Default(), st.Icon)
}

func TestPollRefusedSkipsLegacy(t *testing.T) {
	q := &fakeQuerier{modernErr: errRefused}
	st := NewPoller(q).Poll(context.Background(), "mc.example.com", DefaultPort)

	assert.Equal(t, KindOffline, st.Kind)
	assert.Equal(t, 0, st.OnlineCount)
	assert.Equal(t, icon.Offline(), st.Icon)
	assert.Equal(t, 0, q.legacyCalls, "refused connection must not trigger the legacy fallback")
}

func TestPollLegacyFallback(t *testing.T) {
	q := &fakeQuerier{
		modernErr: errors.New("read tcp: i/o timeout"),
		legacyRes: &QueryResult{OnlineCount: 3, Description: "old server"},
	}
	st := NewPoller(q).Poll(context.Background(), "mc.example.com", 25566)

	assert.Equal(t, KindOnline, st.Kind)
	assert.Equal(t, 3, st.OnlineCount)
	assert.Empty(t, st.Players, "legacy responses carry no player sample")
	assert.Equal(t, icon.Default(), st.Icon, "legacy responses carry no favicon")
	assert.Equal(t, 1, q.modernCalls)
	assert.Equal(t, 1, q.legacyCalls)
}

func TestPollBothFailUnreachable(t *testing.T) {
	q := &fakeQuerier{
		modernErr: errors.New("i/o timeout"),
		legacyErr: errors.New("unexpected packet"),
	}
	st := NewPoller(q).Poll(context.Background(), "mc.example.com", DefaultPort)

	assert.Equal(t, KindUnreachable, st.Kind)
	assert.Equal(t, icon.Offline(), st.Icon)
}

func TestPollLegacyRefused(t *testing.T) {
	q := &fakeQuerier{
		modernErr: errors.New("protocol mismatch"),
		legacyErr: errRefused,
	}
	st := NewPoller(q).Poll(context.Background(), "mc.example.com", DefaultPort)

	assert.Equal(t, KindOffline, st.Kind)
}

func TestHostLabel(t *testing.T) {
	assert.Equal(t, "mc.example.com", HostLabel("mc.example.com", DefaultPort))
	assert.Equal(t, "mc.example.com:25566", HostLabel("mc.example.com", 25566))
}

func TestKindString(t *testing.T) {
	for k, want := range map[Kind]string{
		KindOnline:      "online",
		KindOffline:     "offline",
		KindUnreachable: "unreachable",
		Kind(42):        "unknown",
	} {
		assert.Equal(t, want, k.String())
	}
}
