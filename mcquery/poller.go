package mcquery

import (
	"context"
	"errors"
	"log"
	"syscall"
	"time"

	"github.com/craftwatch/mcstatusbot/icon"
	"github.com/craftwatch/mcstatusbot/metrics"
)

// QueryResult is the source-agnostic shape of a successful status query.
type QueryResult struct {
	OnlineCount int
	Players     []Player // empty for the legacy variant
	Description string
	Favicon     string // data URI, or "" when the source provides none
}

// Querier is the subset of the Minecraft status protocol the poller
// needs. Modern is the server list ping supported by current servers;
// Legacy is the pre-1.7 variant used as a fallback.
type Querier interface {
	Modern(ctx context.Context, host string, port uint16) (*QueryResult, error)
	Legacy(ctx context.Context, host string, port uint16) (*QueryResult, error)
}

// Poller queries a server and classifies the result. It never returns an
// error: every failure mode is folded into the ServerStatus kind.
type Poller struct {
	querier Querier
	timeout time.Duration
}

// NewPoller creates a Poller with a per-query timeout.
func NewPoller(q Querier) *Poller {
	return &Poller{querier: q, timeout: 5 * time.Second}
}

// Poll runs the modern query with the legacy fallback chain.
//
// A refused connection on the modern query is authoritative: the server
// process is not listening, so the legacy query is skipped. Any other
// modern failure may just mean the server predates the modern protocol,
// so the legacy query gets a chance before the server is written off.
func (p *Poller) Poll(ctx context.Context, host string, port uint16) ServerStatus {
	label := HostLabel(host, port)

	res, err := p.query(ctx, host, port, p.querier.Modern)
	if err == nil {
		metrics.PollsTotal.WithLabelValues(label, "modern").Inc()
		return p.online(res)
	}
	if connectionRefused(err) {
		log.Printf("[POLL] %s: connection refused, server is down", label)
		metrics.PollsTotal.WithLabelValues(label, "refused").Inc()
		return p.down(KindOffline)
	}

	log.Printf("[POLL] %s: modern query failed (%v), trying legacy", label, err)
	res, legacyErr := p.query(ctx, host, port, p.querier.Legacy)
	if legacyErr == nil {
		metrics.PollsTotal.WithLabelValues(label, "legacy").Inc()
		return p.online(res)
	}
	log.Printf("[POLL] %s: legacy query failed: %v", label, legacyErr)
	metrics.PollsTotal.WithLabelValues(label, "failed").Inc()
	if connectionRefused(legacyErr) {
		return p.down(KindOffline)
	}
	return p.down(KindUnreachable)
}

type queryFunc func(ctx context.Context, host string, port uint16) (*QueryResult, error)

func (p *Poller) query(ctx context.Context, host string, port uint16, fn queryFunc) (*QueryResult, error) {
	qctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return fn(qctx, host, port)
}

func (p *Poller) online(res *QueryResult) ServerStatus {
	st := ServerStatus{
		Kind:        KindOnline,
		OnlineCount: res.OnlineCount,
		Players:     res.Players,
		Description: res.Description,
		Icon:        res.Favicon,
	}
	if st.Icon == "" {
		st.Icon = icon.Default()
	}
	return st
}

func (p *Poller) down(kind Kind) ServerStatus {
	return ServerStatus{Kind: kind, Icon: icon.Offline()}
}

// connectionRefused reports whether the error chain bottoms out in a
// refused TCP connection.
func connectionRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
