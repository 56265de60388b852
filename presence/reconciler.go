// Package presence maps a server status snapshot onto a Discord bot's
// identity: online status, activity text, avatar and per-guild nicknames.
package presence

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/craftwatch/mcstatusbot/icon"
	logger "github.com/craftwatch/mcstatusbot/log"
	"github.com/craftwatch/mcstatusbot/mcquery"
	"github.com/craftwatch/mcstatusbot/metrics"
)

// Sink is the slice of the Discord session the reconciler writes to.
type Sink interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
	UserUpdate(username, avatar, banner string, options ...discordgo.RequestOption) (*discordgo.User, error)
	GuildMemberNickname(guildID, userID, nickname string, options ...discordgo.RequestOption) error
}

// Target is the mutable identity state for one bot. It is written only
// from that bot's own update pipeline; the orchestrator guarantees
// pipelines for the same bot never overlap.
type Target struct {
	Host              string
	Port              uint16
	GuildIDs          []string
	AvatarFingerprint string
}

// Desired is the pure mapping from a status snapshot to the sink-facing
// presence values.
func Desired(st mcquery.ServerStatus) (status string, activity string) {
	switch {
	case st.Kind == mcquery.KindOnline && st.OnlineCount > 0:
		return "online", fmt.Sprintf("Online: %d", st.OnlineCount)
	case st.Kind == mcquery.KindOnline:
		return "idle", "Online: 0"
	default:
		return "dnd", "Offline"
	}
}

// Reconciler applies desired presence values to a sink, consulting the
// avatar limiter.
type Reconciler struct {
	limiter *AvatarLimiter
}

// NewReconciler creates a Reconciler sharing one limiter across bots.
func NewReconciler(limiter *AvatarLimiter) *Reconciler {
	return &Reconciler{limiter: limiter}
}

// Reconcile pushes the snapshot's presentation onto the sink. The three
// side effects (presence, avatar, nicknames) are independently fallible;
// a failure in one is logged and does not block the others.
func (r *Reconciler) Reconcile(ctx context.Context, sink Sink, t *Target, st mcquery.ServerStatus) {
	label := mcquery.HostLabel(t.Host, t.Port)
	status, activity := Desired(st)

	err := sink.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status: status,
		Activities: []*discordgo.Activity{
			{Name: activity, Type: discordgo.ActivityTypeGame},
		},
	})
	if err != nil {
		logger.Error(fmt.Sprintf("setting presence for %s", label), err)
	}

	r.reconcileAvatar(ctx, sink, t, st, label)
	r.reconcileNicknames(ctx, sink, t, label)
}

// reconcileAvatar sets the sink avatar when the desired image differs
// from the one last applied and the cooldown window permits an attempt.
// A failed attempt still consumes the window; the change is simply lost
// until a later cycle outside the window wants a different avatar.
func (r *Reconciler) reconcileAvatar(ctx context.Context, sink Sink, t *Target, st mcquery.ServerStatus, label string) {
	desired := icon.Fingerprint(st.Icon)
	if desired == t.AvatarFingerprint {
		return
	}
	if !r.limiter.TryAcquire(label) {
		metrics.AvatarAttempts.WithLabelValues(label, "rate_limited").Inc()
		return
	}

	if _, err := sink.UserUpdate("", st.Icon, "", discordgo.WithContext(ctx)); err != nil {
		logger.Error(fmt.Sprintf("setting avatar for %s", label), err)
		metrics.AvatarAttempts.WithLabelValues(label, "failed").Inc()
		return
	}
	t.AvatarFingerprint = desired
	metrics.AvatarAttempts.WithLabelValues(label, "ok").Inc()
	log.Printf("[PRESENCE] %s: avatar updated", label)
}

// reconcileNicknames sets the bot's display name in every guild it
// belongs to. The updates are fire-and-forget: the pipeline does not
// wait on them, and one guild's failure never blocks another's. A
// completion report is logged once all writes finish.
func (r *Reconciler) reconcileNicknames(ctx context.Context, sink Sink, t *Target, label string) {
	if len(t.GuildIDs) == 0 {
		return
	}
	nick := mcquery.HostLabel(t.Host, t.Port)

	// Detached from the pipeline context so the writes survive the
	// caller's cancellation, bounded by their own timeout.
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)

	var wg sync.WaitGroup
	var failures atomic.Int32
	for _, guildID := range t.GuildIDs {
		wg.Add(1)
		go func(guildID string) {
			defer wg.Done()
			if err := sink.GuildMemberNickname(guildID, "@me", nick, discordgo.WithContext(nctx)); err != nil {
				failures.Add(1)
				logger.Error(fmt.Sprintf("setting nickname in guild %s for %s", guildID, label), err)
			}
		}(guildID)
	}

	go func() {
		wg.Wait()
		cancel()
		if n := failures.Load(); n > 0 {
			log.Printf("[PRESENCE] %s: nickname update failed in %d/%d guilds", label, n, len(t.GuildIDs))
		}
	}()
}
