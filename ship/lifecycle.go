// Package ship wires the receiver's components together (transport,
// protocol, normalizer, sync controller, downstream channel) behind a
// small start/stop contract, mirroring the teacher's node.Lifecycle shape
// (spec §2.1 C9) so an external harness can own process lifetime.
package ship

import (
	"context"
	"fmt"
	"sync"

	"github.com/vaultaevm/ship-receiver/log"
	"github.com/vaultaevm/ship-receiver/ship/channel"
	"github.com/vaultaevm/ship-receiver/ship/downstream"
	"github.com/vaultaevm/ship-receiver/ship/shipconfig"
	"github.com/vaultaevm/ship-receiver/ship/syncer"
)

// Receiver bundles a sync controller and its downstream channel behind
// Start/Stop, the contract an embedding process (the JSON-RPC daemon
// plugin, out of scope per spec §1) drives instead of managing the
// controller's goroutine directly.
type Receiver struct {
	controller *syncer.Controller
	feed       *channel.Feed

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	log    log.Logger
}

// New builds a Receiver from cfg and a downstream canonical-head
// provider. The returned Feed is the consumer-facing subscribe point
// (spec §4.5); callers should Subscribe before calling Start so they do
// not miss the first published block.
func New(cfg shipconfig.Config, provider downstream.CanonicalBlockProvider) (*Receiver, *channel.Feed, error) {
	feed := channel.New()
	ctrl, err := syncer.New(cfg, feed, provider)
	if err != nil {
		return nil, nil, fmt.Errorf("ship: %w", err)
	}
	return &Receiver{
		controller: ctrl,
		feed:       feed,
		log:        log.New("component", "ship"),
	}, feed, nil
}

// Start launches the sync controller's run loop in its own goroutine and
// returns immediately, following node.Lifecycle's non-blocking Start
// convention.
func (r *Receiver) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return fmt.Errorf("ship: receiver already started")
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		if err := r.controller.Run(ctx); err != nil {
			r.log.Error("sync controller terminated fatally", "err", err)
		}
	}()
	r.log.Info("receiver started")
	return nil
}

// Stop cancels the run loop and blocks until it has exited.
func (r *Receiver) Stop() error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	r.log.Info("receiver stopped")
	return nil
}

// Controller exposes the underlying sync controller, mainly for tests and
// for an embedder that wants to observe State()/Metrics().
func (r *Receiver) Controller() *syncer.Controller { return r.controller }
