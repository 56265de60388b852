package mcquery

import (
	"context"

	"github.com/mcstatus-io/mcutil/v4/status"
)

// MCQuerier implements Querier over the mcutil server list ping client.
type MCQuerier struct{}

// NewMCQuerier returns the production Querier.
func NewMCQuerier() MCQuerier {
	return MCQuerier{}
}

// Modern runs the current server list ping protocol (1.7+).
func (MCQuerier) Modern(ctx context.Context, host string, port uint16) (*QueryResult, error) {
	res, err := status.Modern(ctx, host, port)
	if err != nil {
		return nil, err
	}

	out := &QueryResult{Description: res.MOTD.Clean}
	if res.Players.Online != nil {
		out.OnlineCount = int(*res.Players.Online)
	}
	for _, sample := range res.Players.Sample {
		out.Players = append(out.Players, Player{ID: sample.ID, Name: sample.Name.Clean})
	}
	if res.Favicon != nil {
		out.Favicon = *res.Favicon
	}
	return out, nil
}

// Legacy runs the pre-1.7 ping. The response carries no player sample
// and no favicon.
func (MCQuerier) Legacy(ctx context.Context, host string, port uint16) (*QueryResult, error) {
	res, err := status.Legacy(ctx, host, port)
	if err != nil {
		return nil, err
	}

	out := &QueryResult{Description: res.MOTD.Clean}
	out.OnlineCount = int(res.Players.Online)
	return out, nil
}
