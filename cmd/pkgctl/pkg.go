package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conn-castle/pkgctl/internal/change"
	"github.com/conn-castle/pkgctl/internal/logging"
	"github.com/conn-castle/pkgctl/internal/messages"
	"github.com/conn-castle/pkgctl/internal/orchestrator"
	"github.com/conn-castle/pkgctl/internal/picker"
	"github.com/conn-castle/pkgctl/internal/pkgref"
	"github.com/conn-castle/pkgctl/internal/report"
	"github.com/conn-castle/pkgctl/internal/statediff"
	"github.com/conn-castle/pkgctl/internal/terminal"
	"github.com/conn-castle/pkgctl/internal/txn"
)

var (
	dialService                  = txn.Dial
	newPicker                    = func() picker.Picker { return picker.New() }
	resolverSystem pkgref.System = pkgref.RealSystem{}
)

// pkgFlags are the options shared by pkg-add and pkg-remove.
type pkgFlags struct {
	osname      string
	reboot      bool
	dryRun      bool
	interactive bool
}

func addPkgFlags(cmd *cobra.Command, flags *pkgFlags) {
	cmd.Flags().StringVar(&flags.osname, "os", "", messages.FlagOS)
	cmd.Flags().BoolVarP(&flags.reboot, "reboot", "r", false, messages.FlagReboot)
	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, messages.FlagDryRun)
}

func newPkgAddCmd(root *rootOptions) *cobra.Command {
	flags := &pkgFlags{}
	cmd := &cobra.Command{
		Use:     messages.PkgAddUse,
		Aliases: []string{messages.PkgAddAlias},
		Short:   messages.PkgAddShort,
		Long:    messages.PkgAddLong,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return newUsageError(cmd, messages.PackageRequired)
			}
			a, err := loadApp(cmd, root)
			if err != nil {
				return err
			}
			return a.run(cmd, flags, orchestrator.Invocation{Add: args})
		},
	}
	addPkgFlags(cmd, flags)
	return cmd
}

func newPkgRemoveCmd(root *rootOptions) *cobra.Command {
	flags := &pkgFlags{}
	cmd := &cobra.Command{
		Use:     messages.PkgRemoveUse,
		Aliases: []string{messages.PkgRemoveAlias},
		Short:   messages.PkgRemoveShort,
		Long:    messages.PkgRemoveLong,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case flags.interactive && len(args) > 0:
				return newUsageError(cmd, messages.InteractiveConflictsPackage)
			case !flags.interactive && len(args) < 1:
				return newUsageError(cmd, messages.PackageRequired)
			}
			a, err := loadApp(cmd, root)
			if err != nil {
				return err
			}
			if flags.interactive {
				args, err = a.pickLayered()
				if err != nil {
					return err
				}
			}
			return a.run(cmd, flags, orchestrator.Invocation{Remove: args})
		},
	}
	addPkgFlags(cmd, flags)
	cmd.Flags().BoolVar(&flags.interactive, "interactive", false, messages.FlagInteractive)
	return cmd
}

func newUsageError(cmd *cobra.Command, msg string) error {
	return &usageError{msg: msg, useLine: cmd.UseLine()}
}

// pickLayered asks which layered packages of the booted deployment to remove.
func (a *app) pickLayered() ([]string, error) {
	inspector := statediff.StateInspector{StateFile: a.cfg.System.StateFile}
	layered, err := inspector.LayeredPackages(a.cfg.System.Sysroot)
	if err != nil {
		return nil, err
	}
	if len(layered) == 0 {
		return nil, errors.New(messages.InteractiveNothingLayered)
	}
	picked, err := newPicker().Pick(messages.InteractivePickTitle, layered)
	if errors.Is(err, picker.ErrCancelled) {
		// The user backed out at the prompt; there is nothing to report.
		return nil, &SilentExitError{Code: 1}
	}
	if err != nil {
		return nil, err
	}
	if len(picked) == 0 {
		return nil, errors.New(messages.InteractiveNothingSelected)
	}
	return picked, nil
}

// run wires the configured transport, reporter, and resolver into an
// orchestrator and executes inv until it finishes or the process is signalled.
func (a *app) run(cmd *cobra.Command, flags *pkgFlags, inv orchestrator.Invocation) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.ToContext(ctx, a.log.Named(messages.RootUse))

	inv.Target = flags.osname
	if inv.Target == "" {
		inv.Target = a.cfg.System.OSName
	}
	inv.Options = change.Options{Reboot: flags.reboot, DryRun: flags.dryRun}

	out := cmd.OutOrStdout()
	reporter, err := report.New(
		out,
		statediff.StateInspector{StateFile: a.cfg.System.StateFile},
		a.cfg.System.Sysroot,
		statediff.RenderOptions{
			Format:   a.cfg.Output.DiffFormat,
			MaxLines: a.cfg.Output.DiffMaxLines,
			Color:    terminal.ColorEnabled(a.cfg.Output.Color, out),
		},
	)
	if err != nil {
		return err
	}

	dialCfg := txn.DialConfig{
		Transport:     a.cfg.Service.Transport,
		Command:       a.cfg.Service.Command,
		Endpoint:      a.cfg.Service.Endpoint,
		PollWait:      a.cfg.PollWaitDuration(),
		PeerLockPath:  a.cfg.PeerLockPath(),
		ClientVersion: Version,
		OnProgress:    progressPrinter(cmd.ErrOrStderr()),
	}
	orch, err := orchestrator.New(orchestrator.Deps{
		Dial: func(ctx context.Context) (txn.Service, error) {
			return dialService(ctx, dialCfg)
		},
		Reporter: reporter,
		System:   resolverSystem,
	})
	if err != nil {
		return err
	}
	return orch.Run(ctx, inv)
}

// progressPrinter writes service progress messages to w, one per line.
func progressPrinter(w io.Writer) txn.ProgressFunc {
	return func(p txn.Progress) {
		if p.Percent >= 0 {
			_, _ = fmt.Fprintf(w, messages.ProgressPercentFmt, p.Message, p.Percent)
			return
		}
		_, _ = fmt.Fprintf(w, messages.ProgressFmt, p.Message)
	}
}
