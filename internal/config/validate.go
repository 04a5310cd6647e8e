package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/conn-castle/pkgctl/internal/messages"
)

// Validate ensures the config is complete and consistent.
func (c *Config) Validate(path string) error {
	if !isValidOption("service.transport", c.Service.Transport) {
		return fmt.Errorf(messages.ConfigTransportInvalidFmt, path)
	}
	switch c.Service.Transport {
	case TransportCommand:
		if len(c.Service.Command) == 0 || strings.TrimSpace(c.Service.Command[0]) == "" {
			return fmt.Errorf(messages.ConfigCommandRequiredFmt, path)
		}
	case TransportHTTP, TransportLongPoll:
		if strings.TrimSpace(c.Service.Endpoint) == "" {
			return fmt.Errorf(messages.ConfigEndpointRequiredFmt, path, c.Service.Transport)
		}
		u, err := url.Parse(c.Service.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf(messages.ConfigEndpointInvalidFmt, path, c.Service.Endpoint)
		}
	}
	if d, err := time.ParseDuration(c.Service.PollWait); err != nil || d <= 0 {
		return fmt.Errorf(messages.ConfigPollWaitInvalidFmt, path, c.Service.PollWait)
	}

	if !filepath.IsAbs(c.System.Sysroot) {
		return fmt.Errorf(messages.ConfigSysrootRequiredFmt, path)
	}
	if !isRelativeInside(c.System.StateFile) {
		return fmt.Errorf(messages.ConfigStateFileInvalidFmt, path)
	}
	if !isRelativeInside(c.System.PeerLock) {
		return fmt.Errorf(messages.ConfigPeerLockInvalidFmt, path)
	}

	if !isValidOption("output.diff_format", c.Output.DiffFormat) {
		return fmt.Errorf(messages.ConfigDiffFormatInvalidFmt, path)
	}
	if c.Output.DiffMaxLines <= 0 {
		return fmt.Errorf(messages.ConfigDiffMaxLinesInvalidFmt, path)
	}
	if !isValidOption("output.color", c.Output.Color) {
		return fmt.Errorf(messages.ConfigColorInvalidFmt, path)
	}

	if !isValidOption("log.level", c.Log.Level) {
		return fmt.Errorf(messages.ConfigLogLevelInvalidFmt, path)
	}
	if !isValidOption("log.format", c.Log.Format) {
		return fmt.Errorf(messages.ConfigLogFormatInvalidFmt, path)
	}
	return nil
}

// isRelativeInside reports whether p is a non-empty relative path that stays
// under the directory it is joined to.
func isRelativeInside(p string) bool {
	if strings.TrimSpace(p) == "" || filepath.IsAbs(p) {
		return false
	}
	return filepath.IsLocal(p)
}
