package metrics

import (
	"context"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestApplyFlagsOnlyOverridesSetFlags(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range Flags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse([]string{"--metrics", "--metrics.port", "9100"}))
	ctx := cli.NewContext(cli.NewApp(), set, nil)

	cfg := DefaultConfig
	ApplyFlags(ctx, &cfg)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, DefaultConfig.HTTP, cfg.HTTP)
}

func TestServeDisabledReturnsNilServer(t *testing.T) {
	srv := Serve(Config{Enabled: false}, NewShipMetrics())
	assert.Nil(t, srv)
	assert.NotPanics(t, func() { Shutdown(context.Background(), srv) })
}
