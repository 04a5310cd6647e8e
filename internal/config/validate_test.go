package config

import (
	"strings"
	"testing"
)

func TestValidateConfigErrors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown transport",
			mutate:  func(c *Config) { c.Service.Transport = "dbus" },
			wantErr: "service.transport",
		},
		{
			name:    "command transport without command",
			mutate:  func(c *Config) { c.Service.Command = nil },
			wantErr: "service.command is required",
		},
		{
			name: "http transport without endpoint",
			mutate: func(c *Config) {
				c.Service.Transport = TransportHTTP
				c.Service.Endpoint = " "
			},
			wantErr: "required for http transport",
		},
		{
			name: "longpoll endpoint not http",
			mutate: func(c *Config) {
				c.Service.Transport = TransportLongPoll
				c.Service.Endpoint = "unix:///run/pkgd.sock"
			},
			wantErr: "must be an http or https URL",
		},
		{
			name:    "bad poll wait",
			mutate:  func(c *Config) { c.Service.PollWait = "soon" },
			wantErr: "service.poll_wait",
		},
		{
			name:    "negative poll wait",
			mutate:  func(c *Config) { c.Service.PollWait = "-1s" },
			wantErr: "service.poll_wait",
		},
		{
			name:    "relative sysroot",
			mutate:  func(c *Config) { c.System.Sysroot = "sysroot" },
			wantErr: "system.sysroot",
		},
		{
			name:    "absolute state file",
			mutate:  func(c *Config) { c.System.StateFile = "/var/lib/pkgctl/deployments.toml" },
			wantErr: "system.state_file",
		},
		{
			name:    "escaping peer lock",
			mutate:  func(c *Config) { c.System.PeerLock = "../peer.lock" },
			wantErr: "system.peer_lock",
		},
		{
			name:    "diff format",
			mutate:  func(c *Config) { c.Output.DiffFormat = "side-by-side" },
			wantErr: "output.diff_format",
		},
		{
			name:    "diff max lines",
			mutate:  func(c *Config) { c.Output.DiffMaxLines = -3 },
			wantErr: "output.diff_max_lines",
		},
		{
			name:    "color",
			mutate:  func(c *Config) { c.Output.Color = "sometimes" },
			wantErr: "output.color",
		},
		{
			name:    "log level",
			mutate:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: "log.level",
		},
		{
			name:    "log format",
			mutate:  func(c *Config) { c.Log.Format = "logfmt" },
			wantErr: "log.format",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate("config.toml")
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected %q in error, got %v", tc.wantErr, err)
			}
			if !strings.HasPrefix(err.Error(), "config.toml: ") {
				t.Fatalf("error should start with the source: %v", err)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate("default"); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestValidateCommandTransportIgnoresEndpoint(t *testing.T) {
	cfg := Default()
	cfg.Service.Endpoint = ""
	if err := cfg.Validate("config.toml"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
