package metrics

import "github.com/urfave/cli/v2"

// Flag vars mirror the teacher's cmd/utils/flags.go metrics.* table, pared
// down to the stand-alone HTTP reporter (Enabled, HTTP, Port).
var (
	EnabledFlag = &cli.BoolFlag{
		Name:  "metrics",
		Usage: "Enable metrics collection and reporting",
		Value: DefaultConfig.Enabled,
	}
	HTTPFlag = &cli.StringFlag{
		Name:  "metrics.addr",
		Usage: "Enable stand-alone metrics HTTP server listening on this address",
		Value: DefaultConfig.HTTP,
	}
	PortFlag = &cli.IntFlag{
		Name:  "metrics.port",
		Usage: "Metrics HTTP server listening port",
		Value: DefaultConfig.Port,
	}
)

// Flags is the flag set cmd/shipreceiver registers alongside shipconfig's.
var Flags = []cli.Flag{EnabledFlag, HTTPFlag, PortFlag}

// ApplyFlags copies parsed CLI flag values onto cfg, following the same
// only-explicitly-set-flags-override convention as shipconfig.ApplyFlags.
func ApplyFlags(c *cli.Context, cfg *Config) {
	if c.IsSet(EnabledFlag.Name) {
		cfg.Enabled = c.Bool(EnabledFlag.Name)
	}
	if c.IsSet(HTTPFlag.Name) {
		cfg.HTTP = c.String(HTTPFlag.Name)
	}
	if c.IsSet(PortFlag.Name) {
		cfg.Port = c.Int(PortFlag.Name)
	}
}
