// Package report turns a finished transaction into the user-visible result.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/conn-castle/pkgctl/internal/change"
	"github.com/conn-castle/pkgctl/internal/logging"
	"github.com/conn-castle/pkgctl/internal/messages"
	"github.com/conn-castle/pkgctl/internal/statediff"
	"github.com/conn-castle/pkgctl/internal/txn"
)

// Reporter prints the outcome of one transaction.
type Reporter struct {
	out       io.Writer
	inspector statediff.Inspector
	sysroot   string
	render    statediff.RenderOptions
}

// New returns a Reporter writing to out. inspector computes the package diff
// for sysroot after a successful transaction that neither reboots nor dry-runs.
func New(out io.Writer, inspector statediff.Inspector, sysroot string, render statediff.RenderOptions) (*Reporter, error) {
	if inspector == nil {
		return nil, errors.New(messages.ReportInspectorNil)
	}
	return &Reporter{out: out, inspector: inspector, sysroot: sysroot, render: render}, nil
}

// Report prints the action for outcome under opts:
//   - dry-run: the dry-run notice only;
//   - reboot requested: nothing, the service reboots;
//   - otherwise: the package diff, then how to activate the change.
//
// A Failed outcome is returned as an ErrTransactionFailed error and nothing is printed.
func (r *Reporter) Report(ctx context.Context, outcome txn.Outcome, opts change.Options) error {
	switch o := outcome.(type) {
	case txn.Failed:
		return txn.FailedError(o)
	case txn.Succeeded, txn.AlreadyCompleted:
	default:
		return fmt.Errorf(messages.TxnUnexpectedOutcomeFmt, outcome)
	}

	if opts.DryRun {
		_, err := fmt.Fprintln(r.out, messages.ReportDryRun)
		return err
	}
	if opts.Reboot {
		logging.From(ctx).Debug("reboot requested; skipping package diff")
		return nil
	}

	diff, err := r.inspector.Diff(r.sysroot)
	if err != nil {
		return fmt.Errorf(messages.ReportDiffFailedFmt, err)
	}
	if err := statediff.Render(r.out, diff, r.render); err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.out, messages.ReportRebootHint)
	return err
}
