package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftwatch/mcstatusbot/mcquery"
	"github.com/craftwatch/mcstatusbot/presence"
	"github.com/craftwatch/mcstatusbot/roster"
)

// fakeConn implements the full session slice the pipeline touches and
// records what reached it.
type fakeConn struct {
	mu        sync.Mutex
	statuses  []string
	sends     int
	nicknames int
}

func (f *fakeConn) UpdateStatusComplex(usd discordgo.UpdateStatusData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, usd.Status)
	return nil
}

func (f *fakeConn) UserUpdate(username, avatar, banner string, options ...discordgo.RequestOption) (*discordgo.User, error) {
	return &discordgo.User{}, nil
}

func (f *fakeConn) GuildMemberNickname(guildID, userID, nickname string, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nicknames++
	return nil
}

func (f *fakeConn) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	return nil, nil
}

func (f *fakeConn) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends++
	return &discordgo.Message{ID: "m1", Author: &discordgo.User{ID: "self"}}, nil
}

func (f *fakeConn) ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{}, nil
}

func (f *fakeConn) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	return nil
}

// fakeQuerier always reports the server online with a fixed count.
type fakeQuerier struct{ count int }

func (f fakeQuerier) Modern(ctx context.Context, host string, port uint16) (*mcquery.QueryResult, error) {
	return &mcquery.QueryResult{OnlineCount: f.count, Description: "motd"}, nil
}

func (f fakeQuerier) Legacy(ctx context.Context, host string, port uint16) (*mcquery.QueryResult, error) {
	return &mcquery.QueryResult{OnlineCount: f.count, Description: "motd"}, nil
}

func testBot(conn *fakeConn, count int) *Bot {
	b := New(
		Config{Token: "t", Host: "mc.example.com", Port: mcquery.DefaultPort},
		mcquery.NewPoller(fakeQuerier{count: count}),
		presence.NewReconciler(presence.NewAvatarLimiter(time.Minute)),
		roster.NewReconciler([]string{"c1"}),
	)
	b.conn = conn
	b.selfID = "self"
	return b
}

func TestUpdateFeedsBothReconcilers(t *testing.T) {
	conn := &fakeConn{}
	b := testBot(conn, 5)

	b.Update(context.Background())

	conn.mu.Lock()
	defer conn.mu.Unlock()
	require.Len(t, conn.statuses, 1)
	assert.Equal(t, "online", conn.statuses[0])
	assert.Equal(t, 1, conn.sends, "roster posted into the configured channel")
}

func TestUpdateRecordsLastStatus(t *testing.T) {
	b := testBot(&fakeConn{}, 3)

	before := time.Now()
	b.Update(context.Background())

	st, at := b.LastStatus()
	assert.Equal(t, mcquery.KindOnline, st.Kind)
	assert.Equal(t, 3, st.OnlineCount)
	assert.False(t, at.Before(before))
}

func TestName(t *testing.T) {
	b := testBot(&fakeConn{}, 0)
	assert.Equal(t, "mc.example.com", b.Name())
}

func TestCloseWithoutInit(t *testing.T) {
	b := New(Config{}, nil, nil, nil)
	assert.NoError(t, b.Close())
}
