// Package config loads pkgctl's TOML configuration and applies environment overrides.
package config

import "time"

// Transport names accepted by service.transport.
const (
	TransportCommand  = "command"
	TransportHTTP     = "http"
	TransportLongPoll = "longpoll"
)

// Diff formats accepted by output.diff_format.
const (
	DiffFormatSummary = "summary"
	DiffFormatUnified = "unified"
)

// Color modes accepted by output.color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the full pkgctl configuration.
type Config struct {
	Service ServiceConfig `toml:"service"`
	System  SystemConfig  `toml:"system"`
	Output  OutputConfig  `toml:"output"`
	Log     LogConfig     `toml:"log"`
}

// ServiceConfig selects how pkgctl reaches the package service.
type ServiceConfig struct {
	Transport string   `toml:"transport"`
	Command   []string `toml:"command"`
	Endpoint  string   `toml:"endpoint"`
	// PollWait is a Go duration string bounding each long-poll request.
	PollWait string `toml:"poll_wait"`
}

// SystemConfig locates the managed OS tree.
type SystemConfig struct {
	Sysroot string `toml:"sysroot"`
	// OSName is the default --os target; empty means the booted OS.
	OSName string `toml:"osname"`
	// StateFile and PeerLock are relative to Sysroot.
	StateFile string `toml:"state_file"`
	PeerLock  string `toml:"peer_lock"`
}

// OutputConfig controls the post-transaction report.
type OutputConfig struct {
	DiffFormat   string `toml:"diff_format"`
	DiffMaxLines int    `toml:"diff_max_lines"`
	Color        string `toml:"color"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Service: ServiceConfig{
			Transport: TransportCommand,
			Command:   []string{"pkgctl-daemon", "--peer"},
			Endpoint:  "http://127.0.0.1:7741",
			PollWait:  "30s",
		},
		System: SystemConfig{
			Sysroot:   "/",
			StateFile: "var/lib/pkgctl/deployments.toml",
			PeerLock:  "run/pkgctl/peer.lock",
		},
		Output: OutputConfig{
			DiffFormat:   DiffFormatSummary,
			DiffMaxLines: 40,
			Color:        ColorAuto,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// PollWaitDuration returns service.poll_wait parsed. Validate rejects bad values,
// so an unparsable value here yields zero and the transport default applies.
func (c *Config) PollWaitDuration() time.Duration {
	d, err := time.ParseDuration(c.Service.PollWait)
	if err != nil {
		return 0
	}
	return d
}
