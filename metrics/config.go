// Package metrics exposes the runtime counters and gauges reported by the
// state-history receiver. It follows the teacher project's split between a
// reporting Config (how/where metrics are surfaced) and the registry itself,
// trimmed to the stand-alone HTTP reporter this module actually ships
// (SPEC_FULL.md §4.6 scopes out an InfluxDB forwarding path; see DESIGN.md).
package metrics

// Config contains the configuration for the metric collection.
type Config struct {
	Enabled bool   `toml:",omitempty"`
	HTTP    string `toml:",omitempty"`
	Port    int    `toml:",omitempty"`
}

// DefaultConfig is the default metrics reporting config for the receiver.
var DefaultConfig = Config{
	Enabled: false,
	HTTP:    "127.0.0.1",
	Port:    6060,
}
