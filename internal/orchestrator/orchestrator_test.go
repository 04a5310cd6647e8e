package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/pkgctl/internal/change"
	"github.com/conn-castle/pkgctl/internal/pkgref"
	"github.com/conn-castle/pkgctl/internal/report"
	"github.com/conn-castle/pkgctl/internal/statediff"
	"github.com/conn-castle/pkgctl/internal/testutil"
	"github.com/conn-castle/pkgctl/internal/txn"
)

// fakeService is a deterministic package service.
type fakeService struct {
	submitErr error
	outcome   txn.Outcome
	awaitErr  error
	// block makes AwaitCompletion wait for ctx.
	block bool

	submitted []change.Request
	target    string
	awaited   []txn.Handle
	closed    int
}

func (f *fakeService) Submit(_ context.Context, target string, req change.Request) (txn.Handle, error) {
	f.submitted = append(f.submitted, req)
	f.target = target
	if f.submitErr != nil {
		return txn.Handle{}, f.submitErr
	}
	return txn.Handle{Address: "/org/pkgctl/txn/1"}, nil
}

func (f *fakeService) AwaitCompletion(ctx context.Context, h txn.Handle) (txn.Outcome, error) {
	f.awaited = append(f.awaited, h)
	if f.block {
		<-ctx.Done()
		return nil, txn.Classify(ctx, "wait", ctx.Err(), txn.ErrConnectionLost)
	}
	return f.outcome, f.awaitErr
}

func (f *fakeService) Close() error {
	f.closed++
	return nil
}

type fakeInspector struct {
	diff  statediff.Diff
	calls int
}

func (f *fakeInspector) Diff(string) (statediff.Diff, error) {
	f.calls++
	return f.diff, nil
}

type harness struct {
	svc       *fakeService
	inspector *fakeInspector
	out       *bytes.Buffer
	dials     int
	orch      *Orchestrator
}

func newHarness(t *testing.T, svc *fakeService) *harness {
	t.Helper()
	added, err := statediff.ParseNEVRA("vim-enhanced-2:9.1.031-1.fc40.x86_64")
	require.NoError(t, err)
	h := &harness{
		svc:       svc,
		inspector: &fakeInspector{diff: statediff.Compute(nil, []statediff.Package{added})},
		out:       &bytes.Buffer{},
	}
	reporter, err := report.New(h.out, h.inspector, "/", statediff.RenderOptions{Format: statediff.FormatSummary})
	require.NoError(t, err)
	h.orch, err = New(Deps{
		Dial: func(context.Context) (txn.Service, error) {
			h.dials++
			return svc, nil
		},
		Reporter: reporter,
		System:   pkgref.RealSystem{},
	})
	require.NoError(t, err)
	return h
}

// boundedRun fails the test instead of hanging.
func boundedRun(t *testing.T, h *harness, inv Invocation) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- h.orch.Run(ctx, inv) }()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("orchestrator run did not return")
		return nil
	}
}

func TestNew_RequiresDeps(t *testing.T) {
	dial := func(context.Context) (txn.Service, error) { return nil, nil }
	reporter, err := report.New(&bytes.Buffer{}, &fakeInspector{}, "/", statediff.RenderOptions{})
	require.NoError(t, err)

	_, err = New(Deps{Reporter: reporter, System: pkgref.RealSystem{}})
	assert.EqualError(t, err, "transaction dialer is required")
	_, err = New(Deps{Dial: dial, System: pkgref.RealSystem{}})
	assert.EqualError(t, err, "outcome reporter is required")
	_, err = New(Deps{Dial: dial, Reporter: reporter})
	assert.Error(t, err)
}

func TestRun_AddRepositoryAndLocalArchive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local-build.rpm"), []byte("rpm"), 0o644))
	want, err := filepath.EvalSymlinks(filepath.Join(dir, "local-build.rpm"))
	require.NoError(t, err)

	h := newHarness(t, &fakeService{outcome: txn.Succeeded{}})
	testutil.WithWorkingDir(t, dir, func() {
		err = boundedRun(t, h, Invocation{Add: []string{"vim-enhanced", "./local-build.rpm"}})
	})
	require.NoError(t, err)

	require.Len(t, h.svc.submitted, 1)
	req := h.svc.submitted[0]
	assert.Equal(t, []pkgref.Ref{pkgref.RepositoryRef{Spec: "vim-enhanced"}, pkgref.LocalFileRef{Path: want}}, req.Add)
	assert.Empty(t, req.Remove)
	assert.Equal(t, "", h.svc.target)
	assert.Equal(t, []txn.Handle{{Address: "/org/pkgctl/txn/1"}}, h.svc.awaited)
	assert.Equal(t, 1, h.svc.closed)

	assert.Equal(t, 1, h.inspector.calls)
	lines := strings.Split(strings.TrimRight(h.out.String(), "\n"), "\n")
	assert.Contains(t, lines, "  vim-enhanced-2:9.1.031-1.fc40.x86_64")
	assert.Equal(t, "Run \"systemctl reboot\" to start a reboot", lines[len(lines)-1])
}

func TestRun_DryRunPrintsOnlyNotice(t *testing.T) {
	h := newHarness(t, &fakeService{outcome: txn.Succeeded{}})

	err := boundedRun(t, h, Invocation{Add: []string{"vim-enhanced"}, Options: change.Options{DryRun: true}})
	require.NoError(t, err)
	assert.Equal(t, "Exiting because of '--dry-run' option\n", h.out.String())
	assert.Zero(t, h.inspector.calls)
	assert.True(t, h.svc.submitted[0].Options.DryRun)
}

func TestRun_RemoveRejectedByService(t *testing.T) {
	h := newHarness(t, &fakeService{submitErr: txn.Rejected("PkgChange", "package htop is not installed")})

	err := boundedRun(t, h, Invocation{Remove: []string{"htop"}, Target: "fedora"})
	require.Error(t, err)
	assert.ErrorIs(t, err, txn.ErrServiceRejected)
	assert.Contains(t, err.Error(), "not installed")
	assert.Empty(t, h.out.String())
	assert.Zero(t, h.inspector.calls)
	assert.Equal(t, "fedora", h.svc.target)
	assert.Equal(t, []string{"htop"}, h.svc.submitted[0].Remove)
	assert.Equal(t, 1, h.svc.closed, "connection is closed after a rejected submit")
}

func TestRun_MissingArchiveFailsBeforeDial(t *testing.T) {
	h := newHarness(t, &fakeService{outcome: txn.Succeeded{}})

	var err error
	testutil.WithWorkingDir(t, t.TempDir(), func() {
		err = boundedRun(t, h, Invocation{Add: []string{"vim-enhanced", "missing.rpm"}})
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgref.ErrUnreadablePackageFile)
	assert.Contains(t, err.Error(), "missing.rpm")
	assert.Zero(t, h.dials)
	assert.Empty(t, h.svc.submitted)
}

func TestRun_EmptyRequestFailsBeforeDial(t *testing.T) {
	h := newHarness(t, &fakeService{})
	err := boundedRun(t, h, Invocation{})
	require.ErrorIs(t, err, change.ErrEmptyRequest)
	assert.Zero(t, h.dials)
}

func TestRun_EmptyRemoveTokenFailsBeforeDial(t *testing.T) {
	h := newHarness(t, &fakeService{})
	err := boundedRun(t, h, Invocation{Remove: []string{"htop", ""}})
	require.ErrorIs(t, err, pkgref.ErrEmptyToken)
	assert.Zero(t, h.dials)
}

func TestRun_FailedOutcome(t *testing.T) {
	h := newHarness(t, &fakeService{outcome: txn.Failed{Reason: "Could not depsolve transaction"}})

	err := boundedRun(t, h, Invocation{Add: []string{"vim-enhanced"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, txn.ErrTransactionFailed)
	assert.Contains(t, err.Error(), "Could not depsolve transaction")
	assert.Empty(t, h.out.String())
	assert.Equal(t, 1, h.svc.closed)
}

func TestRun_AlreadyCompletedIsSuccess(t *testing.T) {
	h := newHarness(t, &fakeService{outcome: txn.AlreadyCompleted{}})
	require.NoError(t, boundedRun(t, h, Invocation{Add: []string{"vim-enhanced"}}))
	assert.Equal(t, 1, h.inspector.calls)
}

func TestRun_RebootSkipsDiff(t *testing.T) {
	h := newHarness(t, &fakeService{outcome: txn.Succeeded{}})
	require.NoError(t, boundedRun(t, h, Invocation{Add: []string{"vim-enhanced"}, Options: change.Options{Reboot: true}}))
	assert.Empty(t, h.out.String())
	assert.True(t, h.svc.submitted[0].Options.Reboot)
}

func TestRun_ConnectionLost(t *testing.T) {
	h := newHarness(t, &fakeService{awaitErr: txn.NewError(txn.ErrConnectionLost, "wait", errors.New("EOF"))})
	err := boundedRun(t, h, Invocation{Add: []string{"vim-enhanced"}})
	require.ErrorIs(t, err, txn.ErrConnectionLost)
	assert.NotErrorIs(t, err, txn.ErrTransactionFailed)
	assert.Equal(t, 1, h.svc.closed)
}

func TestRun_CancelledWhileWaiting(t *testing.T) {
	h := newHarness(t, &fakeService{block: true})
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	err := h.orch.Run(ctx, Invocation{Add: []string{"vim-enhanced"}})
	require.ErrorIs(t, err, txn.ErrClientCancelled)
	assert.Equal(t, 1, h.svc.closed)
	assert.Empty(t, h.out.String())
}

func TestRun_DialFailure(t *testing.T) {
	reporter, err := report.New(&bytes.Buffer{}, &fakeInspector{}, "/", statediff.RenderOptions{})
	require.NoError(t, err)
	orch, err := New(Deps{
		Dial: func(context.Context) (txn.Service, error) {
			return nil, txn.NewError(txn.ErrServiceUnreachable, "dial", errors.New("connection refused"))
		},
		Reporter: reporter,
		System:   pkgref.RealSystem{},
	})
	require.NoError(t, err)

	err = orch.Run(context.Background(), Invocation{Add: []string{"vim-enhanced"}})
	require.ErrorIs(t, err, txn.ErrServiceUnreachable)
}
