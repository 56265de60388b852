// Package orchestrator drives every bot pipeline from one shared timer.
// Pipelines are fully independent: one bot failing to initialize, or
// hanging mid-update, never affects the others.
package orchestrator

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	logger "github.com/craftwatch/mcstatusbot/log"
	"github.com/craftwatch/mcstatusbot/mcquery"
	"github.com/craftwatch/mcstatusbot/metrics"
)

// Pipeline is one independently updatable bot pipeline.
type Pipeline interface {
	Name() string
	Init(ctx context.Context) error
	Update(ctx context.Context)
	LastStatus() (mcquery.ServerStatus, time.Time)
	Close() error
}

// minUpdateTimeout is the floor for the per-update deadline.
const minUpdateTimeout = 10 * time.Second

// runner pairs a pipeline with its in-flight flag. The flag is what
// prevents overlapping updates for the same bot: a tick that finds it
// set is skipped, not queued.
type runner struct {
	pipeline Pipeline
	inFlight atomic.Bool
}

// BotStatus is one pipeline's entry in the status snapshot.
type BotStatus struct {
	Server        string    `json:"server"`
	State         string    `json:"state"`
	OnlinePlayers int       `json:"online_players"`
	LastPoll      time.Time `json:"last_poll"`
}

// Orchestrator owns the pipeline set and the shared ticker.
type Orchestrator struct {
	pipelines []Pipeline
	interval  time.Duration
	stopChan  chan struct{}
	stopOnce  sync.Once

	mu      sync.Mutex
	runners []*runner
}

// New creates an Orchestrator for the given pipelines and poll interval.
func New(pipelines []Pipeline, interval time.Duration) *Orchestrator {
	return &Orchestrator{
		pipelines: pipelines,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Run initializes every pipeline concurrently, performs one immediate
// update per healthy pipeline, then ticks until Stop is called or the
// context is cancelled. Pipelines whose Init fails are logged and left
// out of the rotation; they do not stop the rest.
func (o *Orchestrator) Run(ctx context.Context) {
	var g errgroup.Group
	for _, p := range o.pipelines {
		p := p
		g.Go(func() error {
			if err := p.Init(ctx); err != nil {
				logger.Error("initializing bot "+p.Name(), err)
				return nil
			}
			r := &runner{pipeline: p}
			o.mu.Lock()
			o.runners = append(o.runners, r)
			o.mu.Unlock()

			o.runUpdate(ctx, r)
			return nil
		})
	}
	_ = g.Wait()

	o.mu.Lock()
	active := len(o.runners)
	o.mu.Unlock()
	log.Printf("[ORCH] %d/%d bot(s) active, polling every %s", active, len(o.pipelines), o.interval)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			o.tick(ctx)
		case <-o.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// tick fans one update out per pipeline. A pipeline whose previous
// update is still running gets skipped this round.
func (o *Orchestrator) tick(ctx context.Context) {
	o.mu.Lock()
	runners := o.runners
	o.mu.Unlock()

	for _, r := range runners {
		if !r.inFlight.CompareAndSwap(false, true) {
			log.Printf("[ORCH] %s: previous update still running, skipping tick", r.pipeline.Name())
			metrics.TicksSkipped.WithLabelValues(r.pipeline.Name()).Inc()
			continue
		}
		go func(r *runner) {
			defer r.inFlight.Store(false)
			o.update(ctx, r)
		}(r)
	}
}

// runUpdate is the synchronous variant used for the initial update.
func (o *Orchestrator) runUpdate(ctx context.Context, r *runner) {
	r.inFlight.Store(true)
	defer r.inFlight.Store(false)
	o.update(ctx, r)
}

// update runs one update under the per-update deadline, so a hung
// network call cannot occupy the pipeline's slot forever.
func (o *Orchestrator) update(ctx context.Context, r *runner) {
	uctx, cancel := context.WithTimeout(ctx, o.updateTimeout())
	defer cancel()
	r.pipeline.Update(uctx)
}

func (o *Orchestrator) updateTimeout() time.Duration {
	if o.interval < minUpdateTimeout {
		return minUpdateTimeout
	}
	return o.interval
}

// Snapshot reports the last poll result of every active pipeline.
func (o *Orchestrator) Snapshot() []BotStatus {
	o.mu.Lock()
	runners := o.runners
	o.mu.Unlock()

	out := make([]BotStatus, 0, len(runners))
	for _, r := range runners {
		st, at := r.pipeline.LastStatus()
		out = append(out, BotStatus{
			Server:        r.pipeline.Name(),
			State:         st.Kind.String(),
			OnlinePlayers: st.OnlineCount,
			LastPoll:      at,
		})
	}
	return out
}

// Stop ends the tick loop and closes every active pipeline. Safe to
// call more than once.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		close(o.stopChan)
		o.mu.Lock()
		defer o.mu.Unlock()
		for _, r := range o.runners {
			if err := r.pipeline.Close(); err != nil {
				logger.Error("closing bot "+r.pipeline.Name(), err)
			}
		}
	})
}
