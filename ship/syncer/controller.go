// Package syncer implements the sync controller (C4): connection state,
// retry budget, start-height computation, fork-recovery decision, request
// issuance, and publication to the downstream channel (spec §4.4).
package syncer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/vaultaevm/ship-receiver/common"
	"github.com/vaultaevm/ship-receiver/log"
	"github.com/vaultaevm/ship-receiver/metrics"
	"github.com/vaultaevm/ship-receiver/ship/channel"
	"github.com/vaultaevm/ship-receiver/ship/downstream"
	"github.com/vaultaevm/ship-receiver/ship/normalize"
	"github.com/vaultaevm/ship-receiver/ship/protocol"
	"github.com/vaultaevm/ship-receiver/ship/shipconfig"
	"github.com/vaultaevm/ship-receiver/ship/transport"
)

// recentBlockCacheSize bounds the recent-block guard: an LRU of
// recently-seen block ids, used only to warn on unexpected republication,
// never to suppress a legitimate reconnection replay.
const recentBlockCacheSize = 1024

// NewTransport is overridable in tests to inject a fake transport.
type NewTransport func() transport.Transport

// Controller drives the state machine described in spec §4.4.
type Controller struct {
	host, port  string
	coreAccount common.Name
	cfg         shipconfig.Config

	delay    time.Duration
	maxRetry uint32
	retryCount uint32

	lastLIB      uint32
	lastBlockNum uint32

	newTransport NewTransport
	tr           transport.Transport
	schema       *protocol.Schema

	feed     *channel.Feed
	provider downstream.CanonicalBlockProvider

	metrics *metrics.ShipMetrics
	log     log.Logger

	state State
	recent *lru.Cache
}

// New constructs a Controller from cfg. provider answers the canonical
// head queries needed for initial sync (spec §6); feed is the downstream
// publish point (spec §4.5).
func New(cfg shipconfig.Config, feed *channel.Feed, provider downstream.CanonicalBlockProvider) (*Controller, error) {
	host, port, err := net.SplitHostPort(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("syncer: invalid ship-endpoint %q: %w", cfg.Endpoint, err)
	}
	coreAccount, err := common.StringToName(cfg.CoreAccount)
	if err != nil {
		return nil, fmt.Errorf("syncer: invalid ship-core-account %q: %w", cfg.CoreAccount, err)
	}
	recent, err := lru.New(recentBlockCacheSize)
	if err != nil {
		return nil, fmt.Errorf("syncer: allocating recent-block cache: %w", err)
	}
	return &Controller{
		host:         host,
		port:         port,
		coreAccount:  coreAccount,
		cfg:          cfg,
		delay:        time.Duration(cfg.DelaySecond) * time.Second,
		maxRetry:     cfg.MaxRetry,
		newTransport: func() transport.Transport { return transport.New() },
		feed:         feed,
		provider:     provider,
		metrics:      metrics.NewShipMetrics(),
		log:          log.New("component", "ship/syncer"),
		state:        StateIdle,
		recent:       recent,
	}, nil
}

// State returns the controller's current position in the state machine.
func (c *Controller) State() State { return c.state }

// Metrics exposes the controller's counter set for an external reporter
// to register (spec §2.1 C8).
func (c *Controller) Metrics() *metrics.ShipMetrics { return c.metrics }

// Run drives the controller until ctx is cancelled (clean shutdown, nil
// returned) or a fatal condition is reached (spec §7), in which case the
// fatal error is returned for the host process to act on (spec §4.4:
// "signal fatal shutdown to the process").
//
// This is the reset_connection / sync / start_read trio from spec §4.4,
// expressed as a single loop instead of recursive callbacks (spec §9).
func (c *Controller) Run(ctx context.Context) error {
	first := true
	for {
		if ctx.Err() != nil {
			c.shutdown()
			return nil
		}

		if !first {
			c.closeTransport()
			c.retryCount++
			c.metrics.Retries.Set(int64(c.retryCount))
			if c.retryCount > c.maxRetry {
				c.state = StateTerminated
				return ErrRetryBudgetExhausted
			}
			c.state = StateBackoff
			if err := c.sleep(ctx, c.delay); err != nil {
				c.shutdown()
				return nil
			}
			c.metrics.Reconnects.Inc(1)
		}
		first = false

		c.state = StateResolving
		c.tr = c.newTransport()
		c.state = StateConnecting
		if err := c.tr.Connect(ctx, c.host, c.port); err != nil {
			c.log.Warn("connect failed, will retry", "err", err)
			continue
		}
		c.state = StateHandshaking

		c.state = StateAwaitingSchema
		if err := c.readSchema(); err != nil {
			c.log.Warn("initial schema read failed, will retry", "err", err)
			continue
		}

		c.state = StateSyncing
		if err := c.sync(ctx); err != nil {
			if isFatal(err) {
				c.state = StateTerminated
				return err
			}
			c.log.Warn("sync failed, will retry", "err", err)
			continue
		}

		c.state = StateReading
		readErr := c.readLoop(ctx)
		if readErr == nil {
			c.shutdown()
			return nil
		}
		if isFatal(readErr) {
			c.state = StateTerminated
			return readErr
		}
		c.log.Info("recovering from read failure, reconnecting", "err", readErr)
	}
}

func (c *Controller) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) closeTransport() {
	if c.tr != nil {
		c.tr.Close()
	}
}

func (c *Controller) shutdown() {
	c.closeTransport()
	c.state = StateTerminated
}

func (c *Controller) readSchema() error {
	b, err := c.tr.Read()
	if err != nil {
		return err
	}
	schema, err := protocol.ParseSchema(append(b, 0))
	if err != nil {
		return err
	}
	c.schema = schema
	return nil
}

// sync computes the start height and issues the subscription request
// (spec §4.4 "sync()").
func (c *Controller) sync(ctx context.Context) error {
	if err := c.tr.Send(protocol.EncodeGetStatusRequest()); err != nil {
		return err
	}
	raw, err := c.tr.Read()
	if err != nil {
		return err
	}
	res, err := protocol.DecodeResult(c.schema, raw)
	if err != nil {
		return err
	}
	if res.Status == nil {
		return fmt.Errorf("syncer: expected get_status_result, got something else")
	}
	status := res.Status

	startFrom, err := c.computeStartFrom(ctx)
	if err != nil {
		return err
	}

	if status.TraceBeginBlock > startFrom {
		return fmt.Errorf("%w: block #%d not available upstream (trace_begin_block=%d)",
			ErrHistoryPruned, startFrom, status.TraceBeginBlock)
	}

	req := protocol.DefaultGetBlocksRequest(startFrom)
	if err := c.tr.Send(protocol.EncodeGetBlocksRequest(req)); err != nil {
		return err
	}
	return nil
}

// computeStartFrom implements spec §4.4 step 2: reconnection rewinds to
// min(last_lib, last_block_num)+1 to avoid publishing across a fork;
// initial sync instead asks the downstream for its canonical head.
func (c *Controller) computeStartFrom(ctx context.Context) (uint32, error) {
	if c.lastLIB > 0 {
		base := c.lastBlockNum
		if c.lastLIB < base {
			base = c.lastLIB
		}
		return base + 1, nil
	}

	block, err := c.provider.CanonicalBlockAtHeight(ctx, c.cfg.StartFromCanonicalHeight)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", downstream.ErrDownstreamUnavailable, err)
	}
	if block == nil {
		return 0, downstream.ErrDownstreamUnavailable
	}
	return downstream.DecodeSourceHeight(block.Header.PrevRandao) + 1, nil
}

// readLoop implements spec §4.4 "start_read()": repeatedly read, decode,
// normalize, publish, until a transport/decode error (returned for the
// caller to reconnect) or a fatal condition (returned to the caller to
// halt).
func (c *Controller) readLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case res := <-c.tr.AsyncRead(ctx):
			if res.Err != nil {
				return res.Err
			}
			if err := c.handleFrame(res.Data); err != nil {
				return err
			}
		}
	}
}

func (c *Controller) handleFrame(raw []byte) error {
	result, err := protocol.DecodeResult(c.schema, raw)
	if err != nil {
		return err
	}
	if result.Blocks == nil {
		return fmt.Errorf("syncer: expected get_blocks_result while reading, got something else")
	}

	nb, err := normalize.Normalize(result.Blocks, c.coreAccount)
	if err != nil {
		c.metrics.InvariantErrors.Inc(1)
		return err
	}
	if nb == nil {
		return ErrUnexpectedEmptyBlock
	}

	if c.recent.Contains(nb.ID) {
		c.log.Warn("block id already seen, republishing anyway", "block_num", nb.BlockNum)
	}
	c.recent.Add(nb.ID, struct{}{})

	c.lastLIB = nb.LIB
	c.lastBlockNum = nb.BlockNum
	c.retryCount = 0
	c.metrics.LastLIB.Set(int64(nb.LIB))
	c.metrics.LastBlockNum.Set(int64(nb.BlockNum))
	c.metrics.BlocksPublished.Inc(1)

	c.feed.Publish(nb, channel.DefaultPublishPriority)
	return nil
}

// isFatal reports whether err should halt the controller (spec §7)
// instead of triggering a reconnect.
func isFatal(err error) bool {
	return errors.Is(err, ErrHistoryPruned) ||
		errors.Is(err, ErrRetryBudgetExhausted) ||
		errors.Is(err, ErrUnexpectedEmptyBlock) ||
		errors.Is(err, downstream.ErrDownstreamUnavailable) ||
		errors.Is(err, normalize.ErrInvariantViolated)
}
