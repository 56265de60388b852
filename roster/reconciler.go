package roster

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	logger "github.com/craftwatch/mcstatusbot/log"
	"github.com/craftwatch/mcstatusbot/mcquery"
	"github.com/craftwatch/mcstatusbot/metrics"
)

// cleanupWindow is how many recent messages are scanned for stale
// bot-authored duplicates before a fresh roster is posted.
const cleanupWindow = 10

// Messenger is the channel-message slice of the Discord session.
type Messenger interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// Reconciler reconciles the roster message in a fixed set of channels.
type Reconciler struct {
	channels []string
	now      func() time.Time
}

// NewReconciler creates a Reconciler for the given channel list. The
// list may be empty, in which case Reconcile is a no-op.
func NewReconciler(channels []string) *Reconciler {
	return &Reconciler{channels: channels, now: time.Now}
}

// Reconcile brings every configured channel to the steady state of
// exactly one bot-authored roster message, which is the most recent one.
// Channels are handled independently; a failure in one is logged and
// does not touch the others.
func (r *Reconciler) Reconcile(ctx context.Context, m Messenger, selfID, host string, port uint16, st mcquery.ServerStatus) {
	if len(r.channels) == 0 {
		return
	}
	label := mcquery.HostLabel(host, port)
	embeds := BuildEmbeds(host, port, st, r.now())
	for _, channelID := range r.channels {
		r.reconcileChannel(ctx, m, selfID, channelID, label, embeds)
	}
}

func (r *Reconciler) reconcileChannel(ctx context.Context, m Messenger, selfID, channelID, label string, embeds []*discordgo.MessageEmbed) {
	latest, err := m.ChannelMessages(channelID, 1, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		logger.Error(fmt.Sprintf("fetching latest message in channel %s", channelID), err)
		metrics.RosterActions.WithLabelValues(label, channelID, "error").Inc()
		return
	}

	// Most recent message is ours: edit it in place.
	if len(latest) > 0 && latest[0].Author != nil && latest[0].Author.ID == selfID {
		edit := &discordgo.MessageEdit{Channel: channelID, ID: latest[0].ID}
		edit.Embeds = &embeds
		if _, err := m.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
			logger.Error(fmt.Sprintf("editing roster message in channel %s", channelID), err)
			metrics.RosterActions.WithLabelValues(label, channelID, "error").Inc()
			return
		}
		metrics.RosterActions.WithLabelValues(label, channelID, "edit").Inc()
		return
	}

	// Someone else spoke last (or the channel is empty): sweep our stale
	// messages out of the recent window, then post fresh. The sweep
	// bounds how many duplicates can pile up from races or crashes.
	recent, err := m.ChannelMessages(channelID, cleanupWindow, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		logger.Error(fmt.Sprintf("scanning channel %s for stale roster messages", channelID), err)
	} else {
		for _, msg := range recent {
			if msg.Author == nil || msg.Author.ID != selfID {
				continue
			}
			if err := m.ChannelMessageDelete(channelID, msg.ID, discordgo.WithContext(ctx)); err != nil {
				logger.Error(fmt.Sprintf("deleting stale roster message %s in channel %s", msg.ID, channelID), err)
				continue
			}
			metrics.RosterActions.WithLabelValues(label, channelID, "delete").Inc()
		}
	}

	if _, err := m.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{Embeds: embeds}, discordgo.WithContext(ctx)); err != nil {
		logger.Error(fmt.Sprintf("posting roster message in channel %s", channelID), err)
		metrics.RosterActions.WithLabelValues(label, channelID, "error").Inc()
		return
	}
	metrics.RosterActions.WithLabelValues(label, channelID, "post").Inc()
	log.Printf("[ROSTER] %s: posted roster in channel %s", label, channelID)
}
