// Package bot owns one Minecraft server / Discord bot pair: login and
// discovery at startup, then the per-cycle update pipeline.
package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/craftwatch/mcstatusbot/icon"
	logger "github.com/craftwatch/mcstatusbot/log"
	"github.com/craftwatch/mcstatusbot/mcquery"
	"github.com/craftwatch/mcstatusbot/metrics"
	"github.com/craftwatch/mcstatusbot/presence"
	"github.com/craftwatch/mcstatusbot/roster"
)

// Config identifies one server/bot pair.
type Config struct {
	Token string
	Host  string
	Port  uint16
}

// conn is what the update pipeline needs from the Discord session.
type conn interface {
	presence.Sink
	roster.Messenger
}

// Bot is the long-lived state for one pair. All mutation happens inside
// its own update pipeline; the orchestrator never runs two pipelines for
// the same bot concurrently.
type Bot struct {
	cfg      Config
	session  *discordgo.Session
	conn     conn
	selfID   string
	target   *presence.Target
	poller   *mcquery.Poller
	presence *presence.Reconciler
	roster   *roster.Reconciler

	lastMu     sync.Mutex
	lastStatus mcquery.ServerStatus
	lastPoll   time.Time
}

// New creates a Bot. Init must be called before Update.
func New(cfg Config, p *mcquery.Poller, pr *presence.Reconciler, rr *roster.Reconciler) *Bot {
	return &Bot{
		cfg:      cfg,
		target:   &presence.Target{Host: cfg.Host, Port: cfg.Port},
		poller:   p,
		presence: pr,
		roster:   rr,
	}
}

// Name returns the bot's server identity label.
func (b *Bot) Name() string {
	return mcquery.HostLabel(b.cfg.Host, b.cfg.Port)
}

// Init logs the bot in, discovers its guilds and seeds the avatar
// fingerprint from whatever avatar is currently live on the account.
func (b *Bot) Init(ctx context.Context) error {
	session, err := discordgo.New("Bot " + b.cfg.Token)
	if err != nil {
		return fmt.Errorf("creating session for %s: %w", b.Name(), err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	session.ShouldReconnectOnError = true

	if err := session.Open(); err != nil {
		return fmt.Errorf("opening session for %s: %w", b.Name(), err)
	}
	b.session = session
	b.conn = session
	b.selfID = session.State.User.ID

	for _, guild := range session.State.Guilds {
		b.target.GuildIDs = append(b.target.GuildIDs, guild.ID)
	}
	log.Printf("[BOT] %s: logged in as %s, member of %d guild(s)",
		b.Name(), session.State.User.Username, len(b.target.GuildIDs))

	b.seedAvatarFingerprint(ctx)
	return nil
}

// seedAvatarFingerprint fetches the account's current avatar so the
// first reconcile can tell whether a change is actually needed. Failure
// leaves the fingerprint empty, which at worst costs one redundant
// avatar set in the first cooldown window.
func (b *Bot) seedAvatarFingerprint(ctx context.Context) {
	user := b.session.State.User
	if user.Avatar == "" {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, user.AvatarURL(""), nil)
	if err != nil {
		logger.Error(fmt.Sprintf("building avatar request for %s", b.Name()), err)
		return
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Error(fmt.Sprintf("fetching current avatar for %s", b.Name()), err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil || resp.StatusCode != http.StatusOK {
		logger.Error(fmt.Sprintf("reading current avatar for %s (HTTP %d)", b.Name(), resp.StatusCode), err)
		return
	}
	b.target.AvatarFingerprint = icon.FingerprintBytes(body)
}

// Update runs one poll cycle and feeds the result to the presence and
// roster reconcilers concurrently. It never returns an error: every
// failure is contained and logged where it happened, and the next cycle
// self-corrects.
func (b *Bot) Update(ctx context.Context) {
	st := b.poller.Poll(ctx, b.cfg.Host, b.cfg.Port)

	b.lastMu.Lock()
	b.lastStatus = st
	b.lastPoll = time.Now()
	b.lastMu.Unlock()

	metrics.OnlinePlayers.WithLabelValues(b.Name()).Set(float64(st.OnlineCount))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		b.presence.Reconcile(ctx, b.conn, b.target, st)
	}()
	go func() {
		defer wg.Done()
		b.roster.Reconcile(ctx, b.conn, b.selfID, b.cfg.Host, b.cfg.Port, st)
	}()
	wg.Wait()

	metrics.UpdatesTotal.WithLabelValues(b.Name()).Inc()
}

// LastStatus returns the most recent poll result and when it was taken.
func (b *Bot) LastStatus() (mcquery.ServerStatus, time.Time) {
	b.lastMu.Lock()
	defer b.lastMu.Unlock()
	return b.lastStatus, b.lastPoll
}

// Close shuts the Discord session down.
func (b *Bot) Close() error {
	if b.session == nil {
		return nil
	}
	return b.session.Close()
}
