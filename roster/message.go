// Package roster keeps one live player-roster message per configured
// channel in sync with the latest server status.
package roster

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/craftwatch/mcstatusbot/mcquery"
)

// Embed colors by server state.
const (
	colorOnline  = 0x57F287
	colorIdle    = 0xFEE75C
	colorOffline = 0xED4245
)

// maxPlayerBlocks caps the per-player embeds. Discord allows 10 embeds
// per message and the header takes one slot.
const maxPlayerBlocks = 9

// BuildEmbeds renders the roster for one status snapshot: a header embed
// followed by one embed per sampled player, in sample order.
func BuildEmbeds(host string, port uint16, st mcquery.ServerStatus, now time.Time) []*discordgo.MessageEmbed {
	embeds := []*discordgo.MessageEmbed{headerEmbed(host, port, st, now)}

	color := stateColor(st)
	for i, p := range st.Players {
		if i == maxPlayerBlocks {
			break
		}
		embeds = append(embeds, &discordgo.MessageEmbed{
			Color: color,
			Author: &discordgo.MessageEmbedAuthor{
				Name:    p.Name,
				IconURL: "https://mc-heads.net/avatar/" + p.ID,
			},
		})
	}
	return embeds
}

func headerEmbed(host string, port uint16, st mcquery.ServerStatus, now time.Time) *discordgo.MessageEmbed {
	header := &discordgo.MessageEmbed{
		Color:     stateColor(st),
		Timestamp: now.UTC().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: mcquery.HostLabel(host, port)},
	}
	if st.Kind == mcquery.KindOnline {
		header.Title = fmt.Sprintf("Players Online: %d", st.OnlineCount)
		header.Description = st.Description
	} else {
		header.Title = "Server Offline"
		header.Description = "Players Online: 0"
	}
	return header
}

func stateColor(st mcquery.ServerStatus) int {
	switch {
	case st.Kind == mcquery.KindOnline && st.OnlineCount > 0:
		return colorOnline
	case st.Kind == mcquery.KindOnline:
		return colorIdle
	default:
		return colorOffline
	}
}
