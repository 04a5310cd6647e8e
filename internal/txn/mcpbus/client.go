package mcpbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os/exec"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/conn-castle/pkgctl/internal/change"
	"github.com/conn-castle/pkgctl/internal/logging"
	"github.com/conn-castle/pkgctl/internal/messages"
	"github.com/conn-castle/pkgctl/internal/peerlock"
	"github.com/conn-castle/pkgctl/internal/txn"
)

func init() {
	txn.RegisterTransport(TransportCommand, dialCommand)
	txn.RegisterTransport(TransportHTTP, dialHTTP)
}

// session is the part of *mcp.ClientSession the service uses.
type session interface {
	CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error)
	Close() error
}

// Service is a txn.Service backed by an MCP client session.
type Service struct {
	session  session
	lock     *peerlock.Lock
	progress txn.ProgressFunc

	mu    sync.Mutex
	token string

	closeOnce sync.Once
	closeErr  error
}

var (
	acquirePeerLock = peerlock.Acquire
	releasePeerLock = (*peerlock.Lock).Release
)

// dialCommand starts a private peer daemon and speaks MCP over its stdio.
func dialCommand(ctx context.Context, cfg txn.DialConfig) (txn.Service, error) {
	if len(cfg.Command) == 0 || strings.TrimSpace(cfg.Command[0]) == "" {
		return nil, errors.New(messages.PeerCommandEmpty)
	}
	var lock *peerlock.Lock
	if cfg.PeerLockPath != "" {
		var err error
		lock, err = acquirePeerLock(cfg.PeerLockPath)
		if err != nil {
			return nil, err
		}
	}
	cmd := exec.Command(cfg.Command[0], cfg.Command[1:]...)
	logging.From(ctx).Debug("starting peer daemon", zap.Strings("command", cfg.Command))
	svc, err := connect(ctx, &mcp.CommandTransport{Command: cmd}, cfg, lock)
	if err != nil {
		if rerr := releasePeerLock(lock); rerr != nil {
			logging.From(ctx).Debug("releasing peer lock after failed dial", zap.Error(rerr))
		}
		return nil, err
	}
	return svc, nil
}

// dialHTTP connects to a running service over streamable HTTP.
func dialHTTP(ctx context.Context, cfg txn.DialConfig) (txn.Service, error) {
	logging.From(ctx).Debug("connecting to package service", zap.String("endpoint", cfg.Endpoint))
	svc, err := connect(ctx, &mcp.StreamableClientTransport{Endpoint: cfg.Endpoint}, cfg, nil)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func connect(ctx context.Context, transport mcp.Transport, cfg txn.DialConfig, lock *peerlock.Lock) (*Service, error) {
	svc := &Service{lock: lock, progress: cfg.OnProgress}
	client := mcp.NewClient(&mcp.Implementation{Name: messages.RootUse, Version: cfg.ClientVersion}, &mcp.ClientOptions{
		ProgressNotificationHandler: svc.handleProgress,
	})
	cs, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, err
	}
	svc.session = cs
	return svc, nil
}

// Submit calls PkgChange and returns the address of the started transaction.
func (s *Service) Submit(ctx context.Context, target string, req change.Request) (txn.Handle, error) {
	args := newPkgChangeArgs(target, req.Payload())
	res, err := s.session.CallTool(ctx, &mcp.CallToolParams{Name: ToolPkgChange, Arguments: args})
	if err != nil {
		kind := txn.ErrServiceRejected
		if isConnectionError(err) {
			kind = txn.ErrServiceUnreachable
		}
		return txn.Handle{}, txn.Classify(ctx, ToolPkgChange, err, kind)
	}
	if res.IsError {
		return txn.Handle{}, txn.Rejected(ToolPkgChange, resultText(res))
	}
	var out PkgChangeResult
	if err := decodeResult(res, &out); err != nil {
		return txn.Handle{}, txn.NewError(txn.ErrServiceRejected, ToolPkgChange, fmt.Errorf(messages.TxnInvalidResultFmt, ToolPkgChange, err))
	}
	if strings.TrimSpace(out.TransactionAddress) == "" {
		return txn.Handle{}, txn.Rejected(ToolPkgChange, fmt.Sprintf(messages.TxnEmptyAddressFmt, ToolPkgChange))
	}
	logging.From(ctx).Debug("transaction started", logging.Transaction(out.TransactionAddress))
	return txn.Handle{Address: out.TransactionAddress}, nil
}

// AwaitCompletion calls TransactionWait, forwarding progress for the call's
// progress token until the service returns the terminal state.
func (s *Service) AwaitCompletion(ctx context.Context, h txn.Handle) (txn.Outcome, error) {
	// The token stays set after the call returns: notifications can be
	// dispatched after the response, and a fresh token per wait keeps them apart.
	token := uuid.NewString()
	s.setToken(token)

	params := &mcp.CallToolParams{
		Meta:      mcp.Meta{},
		Name:      ToolTransactionWait,
		Arguments: WaitArgs{TransactionAddress: h.Address},
	}
	params.SetProgressToken(token)
	res, err := s.session.CallTool(ctx, params)
	if err != nil {
		// Whatever broke, the transaction may still finish on the service.
		return nil, txn.Classify(ctx, ToolTransactionWait, err, txn.ErrConnectionLost)
	}
	if res.IsError {
		// The transaction exists; a failed wait says nothing about its outcome.
		return nil, txn.Lost(ToolTransactionWait, resultText(res))
	}
	var out WaitResult
	if err := decodeResult(res, &out); err != nil {
		return nil, txn.NewError(txn.ErrConnectionLost, ToolTransactionWait, fmt.Errorf(messages.TxnInvalidResultFmt, ToolTransactionWait, err))
	}
	switch {
	case !out.Success:
		return txn.Failed{Reason: out.ErrorMessage}, nil
	case out.AlreadyCompleted:
		return txn.AlreadyCompleted{}, nil
	default:
		return txn.Succeeded{}, nil
	}
}

// Close ends the session, which stops a peer daemon, then releases the peer lock.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.session != nil {
			errs = append(errs, s.session.Close())
		}
		errs = append(errs, releasePeerLock(s.lock))
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

func (s *Service) setToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Service) handleProgress(_ context.Context, req *mcp.ProgressNotificationClientRequest) {
	if req == nil || req.Params == nil {
		return
	}
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" || fmt.Sprint(req.Params.ProgressToken) != token {
		return
	}
	percent := -1
	if req.Params.Total > 0 {
		percent = int(req.Params.Progress * 100 / req.Params.Total)
	}
	s.progress.Notify(txn.Progress{Message: req.Params.Message, Percent: percent})
}

// isConnectionError reports whether err means the session could not carry the call.
func isConnectionError(err error) bool {
	if errors.Is(err, mcp.ErrConnectionClosed) || errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// decodeResult reads a tool's structured content, falling back to JSON text content.
func decodeResult(res *mcp.CallToolResult, out any) error {
	if res.StructuredContent != nil {
		data, err := json.Marshal(res.StructuredContent)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, out)
	}
	text := resultText(res)
	if text == "" {
		return errors.New("empty result")
	}
	return json.Unmarshal([]byte(text), out)
}

func resultText(res *mcp.CallToolResult) string {
	parts := make([]string, 0, len(res.Content))
	for _, content := range res.Content {
		if text, ok := content.(*mcp.TextContent); ok && text.Text != "" {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}
