// Command shipreceiver runs the state-history receiver core standalone,
// for manual operation and integration testing outside of its normal
// embedding inside a JSON-RPC daemon plugin (out of scope per spec §1).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/vaultaevm/ship-receiver/log"
	"github.com/vaultaevm/ship-receiver/metrics"
	"github.com/vaultaevm/ship-receiver/ship"
	"github.com/vaultaevm/ship-receiver/ship/downstream"
	"github.com/vaultaevm/ship-receiver/ship/shipconfig"
)

var (
	gitCommit = ""
	gitDate   = ""

	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML config file path; CLI flags override its values",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "shipreceiver"
	app.Usage = "state-history receiver core"
	app.Version = fmt.Sprintf("%s-%s", gitCommit, gitDate)
	app.Flags = append(append([]cli.Flag{configFlag}, shipconfig.Flags...), metrics.Flags...)
	app.Action = run
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg := shipconfig.Defaults
	if path := c.String(configFlag.Name); path != "" {
		loaded, err := shipconfig.LoadFile(path)
		if err != nil {
			return fmt.Errorf("shipreceiver: loading config %q: %w", path, err)
		}
		cfg = loaded
	}
	shipconfig.ApplyFlags(c, &cfg)

	provider, err := newCanonicalProvider(c)
	if err != nil {
		return err
	}

	receiver, feed, err := ship.New(cfg, provider)
	if err != nil {
		return err
	}

	metricsCfg := metrics.DefaultConfig
	metrics.ApplyFlags(c, &metricsCfg)
	metricsSrv := metrics.Serve(metricsCfg, receiver.Controller().Metrics())
	defer metrics.Shutdown(context.Background(), metricsSrv)

	logger := log.New("component", "cmd/shipreceiver")
	sub := feed.Subscribe()
	go func() {
		for {
			block, ok := sub.Next()
			if !ok {
				return
			}
			logger.Info("published block", "block_num", block.BlockNum, "txs", len(block.Transactions))
		}
	}()

	if err := receiver.Start(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	sub.Unsubscribe()
	return receiver.Stop()
}

// staticCanonicalProvider answers every canonical-head query with a fixed
// height, a stand-in for the real downstream chain client this binary
// normally runs embedded alongside (spec §6; out of scope per §1).
type staticCanonicalProvider struct {
	height uint64
}

func (p *staticCanonicalProvider) CanonicalBlockAtHeight(_ context.Context, height *uint64) (*downstream.CanonicalBlock, error) {
	h := p.height
	if height != nil {
		h = *height
	}
	return &downstream.CanonicalBlock{
		Header: downstream.Header{
			Number:     h,
			PrevRandao: downstream.EncodeSourceHeight(uint32(h)),
		},
	}, nil
}

func newCanonicalProvider(c *cli.Context) (downstream.CanonicalBlockProvider, error) {
	if c.IsSet(shipconfig.StartFromCanonicalHeightFlag.Name) {
		return &staticCanonicalProvider{height: c.Uint64(shipconfig.StartFromCanonicalHeightFlag.Name)}, nil
	}
	return &staticCanonicalProvider{height: 0}, nil
}
