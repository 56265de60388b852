// Package metrics exposes Prometheus instrumentation for the poll and
// reconcile pipelines. Everything is registered on the default registry
// and served by the status server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PollsTotal counts poll cycles by how they resolved
	// (modern, legacy, refused, failed).
	PollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcstatusbot_polls_total",
			Help: "Status polls by server and resolution",
		},
		[]string{"server", "result"},
	)

	// OnlinePlayers is the player count reported by the last poll;
	// zero when the server is down.
	OnlinePlayers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mcstatusbot_online_players",
			Help: "Players online as of the last poll",
		},
		[]string{"server"},
	)

	// AvatarAttempts counts avatar set attempts by outcome
	// (ok, failed, rate_limited).
	AvatarAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcstatusbot_avatar_attempts_total",
			Help: "Avatar change attempts by server and outcome",
		},
		[]string{"server", "outcome"},
	)

	// RosterActions counts per-channel roster reconciliations by the
	// action taken (edit, post, delete, error).
	RosterActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcstatusbot_roster_actions_total",
			Help: "Roster message reconciliations by server, channel and action",
		},
		[]string{"server", "channel", "action"},
	)

	// TicksSkipped counts ticks dropped because the previous update for
	// the same bot was still running.
	TicksSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcstatusbot_ticks_skipped_total",
			Help: "Update ticks skipped due to an in-flight update",
		},
		[]string{"server"},
	)

	// UpdatesTotal counts completed update pipelines.
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcstatusbot_updates_total",
			Help: "Completed update cycles by server",
		},
		[]string{"server"},
	)
)
