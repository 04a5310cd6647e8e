// Package orchestrator runs one package change end to end: resolve the
// package tokens, build the request, submit it, wait for the transaction,
// and report the outcome.
package orchestrator

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/conn-castle/pkgctl/internal/change"
	"github.com/conn-castle/pkgctl/internal/logging"
	"github.com/conn-castle/pkgctl/internal/messages"
	"github.com/conn-castle/pkgctl/internal/pkgref"
	"github.com/conn-castle/pkgctl/internal/txn"
)

// Invocation is one user request.
type Invocation struct {
	// Add holds package tokens to install: repository names or .rpm paths.
	Add []string
	// Remove holds installed package names.
	Remove []string
	// Target names the OS to change; empty means the booted OS.
	Target  string
	Options change.Options
}

// DialFunc opens the connection to the package service.
type DialFunc func(ctx context.Context) (txn.Service, error)

// Reporter prints the outcome of a finished transaction.
type Reporter interface {
	Report(ctx context.Context, outcome txn.Outcome, opts change.Options) error
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Dial     DialFunc
	Reporter Reporter
	System   pkgref.System
}

// Orchestrator runs invocations against the package service.
type Orchestrator struct {
	dial     DialFunc
	reporter Reporter
	resolver *pkgref.Resolver
}

// New validates deps and returns an Orchestrator.
func New(deps Deps) (*Orchestrator, error) {
	if deps.Dial == nil {
		return nil, errors.New(messages.OrchestratorDialerNil)
	}
	if deps.Reporter == nil {
		return nil, errors.New(messages.OrchestratorReporterNil)
	}
	resolver, err := pkgref.NewResolver(deps.System)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{dial: deps.Dial, reporter: deps.Reporter, resolver: resolver}, nil
}

// Run executes inv. Local validation happens before the service is contacted,
// and the service connection is closed on every path once opened.
func (o *Orchestrator) Run(ctx context.Context, inv Invocation) error {
	log := logging.From(ctx).With(logging.Target(inv.Target))

	add, err := o.resolver.Resolve(inv.Add)
	if err != nil {
		return err
	}
	remove, err := pkgref.Passthrough(inv.Remove)
	if err != nil {
		return err
	}
	req, err := change.Build(add, remove, inv.Options)
	if err != nil {
		return err
	}
	log.Debug("built change request",
		zap.Strings("add", pkgref.WireAll(req.Add)),
		zap.Strings("remove", req.Remove),
		zap.Bool("reboot", req.Options.Reboot),
		zap.Bool("dry_run", req.Options.DryRun),
	)

	svc, err := o.dial(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			log.Debug("closing package service connection", zap.Error(cerr))
		}
	}()

	handle, err := svc.Submit(ctx, inv.Target, req)
	if err != nil {
		return err
	}
	log = log.With(logging.Transaction(handle.Address))
	outcome, err := svc.AwaitCompletion(logging.ToContext(ctx, log), handle)
	if err != nil {
		return err
	}
	if failed, ok := outcome.(txn.Failed); ok {
		return txn.FailedError(failed)
	}
	log.Debug("transaction finished", zap.String("outcome", outcomeName(outcome)))
	return o.reporter.Report(ctx, outcome, req.Options)
}

func outcomeName(o txn.Outcome) string {
	switch o.(type) {
	case txn.Succeeded:
		return "succeeded"
	case txn.AlreadyCompleted:
		return "already-completed"
	case txn.Failed:
		return "failed"
	default:
		return "unknown"
	}
}
