package messages

// Config messages for configuration loading and validation.
const (
	// ConfigMissingFileFmt formats missing config file errors.
	ConfigMissingFileFmt      = "missing config file %s: %w"
	ConfigReadFileFmt         = "read config file %s: %w"
	ConfigInvalidConfigFmt    = "invalid config %s: %w"
	ConfigUnrecognizedKeysFmt = "%s: unrecognized keys: %v"
	ConfigInvalidEnvFileFmt   = "invalid env file %s: %w"
	ConfigNoEnvOverrideFmt    = "no environment override for %s"
	ConfigExpandPathFmt       = "expand path %s: %w"
	ConfigValidationGuidance  = "(see /usr/share/doc/pkgctl/config.toml.example)"

	ConfigTransportInvalidFmt    = "%s: service.transport must be one of command, http, longpoll"
	ConfigCommandRequiredFmt     = "%s: service.command is required for command transport"
	ConfigEndpointRequiredFmt    = "%s: service.endpoint is required for %s transport"
	ConfigEndpointInvalidFmt     = "%s: service.endpoint %q must be an http or https URL"
	ConfigPollWaitInvalidFmt     = "%s: service.poll_wait %q is not a positive duration"
	ConfigSysrootRequiredFmt     = "%s: system.sysroot must be an absolute path"
	ConfigStateFileInvalidFmt    = "%s: system.state_file must be relative to the sysroot"
	ConfigPeerLockInvalidFmt     = "%s: system.peer_lock must be relative to the sysroot"
	ConfigDiffFormatInvalidFmt   = "%s: output.diff_format must be summary or unified"
	ConfigDiffMaxLinesInvalidFmt = "%s: output.diff_max_lines must be positive"
	ConfigColorInvalidFmt        = "%s: output.color must be auto, always, or never"
	ConfigLogLevelInvalidFmt     = "%s: log.level must be debug, info, warn, or error"
	ConfigLogFormatInvalidFmt    = "%s: log.format must be console or json"

	ConfigTransportCommandDescription  = "start a private peer daemon and speak MCP over its stdio"
	ConfigTransportHTTPDescription     = "connect to a running service over streamable HTTP MCP"
	ConfigTransportLongPollDescription = "submit over HTTP and long-poll the transaction status"
	ConfigDiffSummaryDescription       = "per-package upgrade, downgrade, removal, and addition lines"
	ConfigDiffUnifiedDescription       = "unified diff of the package lists"
)
