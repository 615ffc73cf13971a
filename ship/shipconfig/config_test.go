package shipconfig

import (
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
	require.NoError(t, set.Parse([]string{"--ship-endpoint", "10.0.0.1:9000"}))
	ctx := cli.NewContext(cli.NewApp(), set, nil)

	cfg := Defaults
	ApplyFlags(ctx, &cfg)

	assert.Equal(t, "10.0.0.1:9000", cfg.Endpoint)
	assert.Equal(t, Defaults.CoreAccount, cfg.CoreAccount)
	assert.Equal(t, Defaults.MaxRetry, cfg.MaxRetry)
	assert.Nil(t, cfg.StartFromCanonicalHeight)
}

func TestApplyFlagsStartFromCanonicalHeight(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range Flags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse([]string{"--ship-start-from-canonical-height", "123"}))
	ctx := cli.NewContext(cli.NewApp(), set, nil)

	cfg := Defaults
	ApplyFlags(ctx, &cfg)

	require.NotNil(t, cfg.StartFromCanonicalHeight)
	assert.Equal(t, uint64(123), *cfg.StartFromCanonicalHeight)
}

func TestSaveAndLoadFileRoundTrip(t *testing.T) {
	cfg := Config{
		Endpoint:    "192.168.1.1:8999",
		CoreAccount: "evmevmevmevm",
		MaxRetry:    3,
		DelaySecond: 5,
	}
	path := t.TempDir() + "/shipreceiver.toml"
	require.NoError(t, SaveFile(path, cfg))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Endpoint, loaded.Endpoint)
	assert.Equal(t, cfg.MaxRetry, loaded.MaxRetry)
	assert.Equal(t, cfg.DelaySecond, loaded.DelaySecond)
}
