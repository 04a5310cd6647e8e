package messages

// Package change messages for resolution, transactions, and reporting.
const (
	// PkgrefUnreadableFmt formats relative package files that cannot be read.
	PkgrefUnreadableFmt     = "can't read package '%s': %v"
	PkgrefResolveFailedFmt  = "realpath '%s': %v"
	PkgrefEmptyTokenFmt     = "package argument %d is empty"
	PkgrefSystemRequired    = "package resolver filesystem is required"
	ChangeEmptyRequest      = "change request has no packages to add or remove"
	ChangeEmptyRemoveToken  = "package to remove at position %d is empty"
	OrchestratorDialerNil   = "transaction dialer is required"
	OrchestratorReporterNil = "outcome reporter is required"

	// TxnServiceUnreachable describes bus or connection failures before a transaction exists.
	TxnServiceUnreachable   = "package service unreachable"
	TxnServiceRejected      = "package service rejected the request"
	TxnConnectionLost       = "connection to package service lost before the transaction finished"
	TxnClientCancelled      = "cancelled while waiting for the transaction"
	TxnTransactionFailed    = "transaction failed"
	TxnErrorOpFmt           = "%s: %s"
	TxnErrorReasonFmt       = "%s: %s"
	TxnUnknownTransportFmt  = "unknown service transport %q"
	TxnEmptyAddressFmt      = "%s returned an empty transaction address"
	TxnUnexpectedOutcomeFmt = "unexpected transaction outcome %T"
	TxnInvalidResultFmt     = "decode %s result: %v"
	TxnUnknownStateFmt      = "unknown transaction state %q"

	// PeerLockOpenFmt formats failures opening the peer lock file.
	PeerLockOpenFmt    = "open peer lock %s: %w"
	PeerLockFmt        = "lock peer %s: %w"
	PeerLockTimeoutFmt = "another pkgctl peer is running; gave up after %s"
	PeerCommandEmpty   = "service.command is empty; cannot start a peer daemon"

	// ReportDryRun is printed when the transaction ran with --dry-run.
	ReportDryRun        = "Exiting because of '--dry-run' option"
	ReportRebootHint    = "Run \"systemctl reboot\" to start a reboot"
	ReportInspectorNil  = "state inspector is required"
	ReportDiffFailedFmt = "compute package diff: %w"

	// StatediffReadStateFmt formats failures reading the deployment state file.
	StatediffReadStateFmt      = "read deployment state %s: %w"
	StatediffInvalidStateFmt   = "invalid deployment state %s: %w"
	StatediffInvalidNEVRAFmt   = "invalid package %q in deployment %s: expected name-version-release.arch"
	StatediffMultipleBootedFmt = "deployment state %s lists more than one booted deployment"
	StatediffUpgradedHeader    = "Upgraded:"
	StatediffDowngradedHeader  = "Downgraded:"
	StatediffRemovedHeader     = "Removed:"
	StatediffAddedHeader       = "Added:"
	StatediffChangeFmt         = "  %s %s -> %s"
	StatediffPackageFmt        = "  %s"
	StatediffNoChanges         = "No package changes."
	StatediffTruncatedFmt      = "... (truncated to %d lines; set output.diff_max_lines to see more)"
	StatediffBootedLabel       = "booted"
	StatediffPendingLabel      = "pending"
)
