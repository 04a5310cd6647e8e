package messages

// CLI messages for user-facing commands and prompts.
const (
	// RootUse is the CLI command name.
	RootUse         = "pkgctl"
	RootShort       = "Add or remove layered packages on an image-based system"
	RootLong        = "pkgctl sends package layering requests to the package service, waits for the\ntransaction to finish, and prints the resulting package changes."
	RootVersionFlag = "Print version and exit"
	RootFlagConfig  = "Path to the pkgctl config file (default /etc/pkgctl/config.toml, or $PKGCTL_CONFIG)"
	RootFlagVerbose = "Log transaction details to stderr"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	// PkgAddUse is the add command usage line.
	PkgAddUse   = "pkg-add PACKAGE [PACKAGE...]"
	PkgAddShort = "Download and install layered RPM packages"
	PkgAddLong  = "Download and install layered RPM packages.\n\nPACKAGE is a repository package name, an absolute path to a local .rpm, or a\nrelative path to a local .rpm (resolved against the current directory)."
	PkgAddAlias = "install"

	// PkgRemoveUse is the remove command usage line.
	PkgRemoveUse   = "pkg-remove PACKAGE [PACKAGE...]"
	PkgRemoveShort = "Remove one or more overlay packages"
	PkgRemoveLong  = "Remove one or more overlay packages.\n\nPACKAGE is the name of a package currently layered on the booted deployment."
	PkgRemoveAlias = "uninstall"

	FlagOS          = "Operate on provided OSNAME"
	FlagReboot      = "Initiate a reboot after upgrade is prepared"
	FlagDryRun      = "Exit after printing the transaction"
	FlagInteractive = "Choose layered packages to remove from a list"

	PackageRequired             = "At least one PACKAGE must be specified"
	InteractiveConflictsPackage = "--interactive cannot be combined with PACKAGE arguments"
	InteractiveRequiresTerminal = "--interactive requires an interactive terminal"
	InteractiveNothingLayered   = "no layered packages on the booted deployment"
	InteractiveNothingSelected  = "no packages selected"
	InteractiveCancelled        = "package selection cancelled"
	InteractivePickTitle        = "Select layered packages to remove"
	UsageErrorFmt               = "%s\n\nUsage:\n  %s"

	// ProgressFmt formats a transaction progress line on stderr.
	ProgressFmt        = "%s\n"
	ProgressPercentFmt = "%s (%d%%)\n"
)
