// Package txn defines the contract between pkgctl and the package service:
// submitting a change request, waiting for the transaction it starts, and the
// errors either step can produce.
//
// Transports live in subpackages and register themselves by name.
package txn

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/conn-castle/pkgctl/internal/change"
	"github.com/conn-castle/pkgctl/internal/messages"
)

// Service is a connection to the package service. A Service is owned by one
// invocation and carries at most one transaction at a time.
type Service interface {
	// Submit sends req for the OS named target ("" for the booted OS) and
	// returns the handle of the transaction the service started.
	Submit(ctx context.Context, target string, req change.Request) (Handle, error)
	// AwaitCompletion blocks until the transaction reaches a terminal state,
	// the connection drops, or ctx is cancelled.
	AwaitCompletion(ctx context.Context, h Handle) (Outcome, error)
	// Close releases the connection and anything acquired to open it.
	Close() error
}

// DialConfig selects and configures a transport.
type DialConfig struct {
	// Transport names a registered transport.
	Transport string
	// Command starts a private peer daemon (command transport).
	Command []string
	// Endpoint is the service URL (http and longpoll transports).
	Endpoint string
	// PollWait bounds each long-poll request.
	PollWait time.Duration
	// PeerLockPath guards peer daemon startup (command transport).
	PeerLockPath string
	// ClientVersion identifies pkgctl to the service.
	ClientVersion string
	// OnProgress receives in-flight progress; nil discards it.
	OnProgress ProgressFunc
}

// DialFunc opens a Service.
type DialFunc func(ctx context.Context, cfg DialConfig) (Service, error)

var (
	transportsMu sync.RWMutex
	transports   = map[string]DialFunc{}
)

// RegisterTransport makes a transport available to Dial under name.
// Registering the same name twice panics.
func RegisterTransport(name string, dial DialFunc) {
	transportsMu.Lock()
	defer transportsMu.Unlock()
	if dial == nil {
		panic("txn: RegisterTransport dial func is nil")
	}
	if _, dup := transports[name]; dup {
		panic("txn: RegisterTransport called twice for " + name)
	}
	transports[name] = dial
}

// Transports returns the registered transport names, sorted.
func Transports() []string {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	names := make([]string, 0, len(transports))
	for name := range transports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dial opens a Service with the transport named in cfg. Connection failures
// are reported as ErrServiceUnreachable; cancellation as ErrClientCancelled.
func Dial(ctx context.Context, cfg DialConfig) (Service, error) {
	transportsMu.RLock()
	dial, ok := transports[cfg.Transport]
	transportsMu.RUnlock()
	if !ok {
		return nil, NewError(ErrServiceUnreachable, "dial", fmt.Errorf(messages.TxnUnknownTransportFmt, cfg.Transport))
	}
	svc, err := dial(ctx, cfg)
	if err != nil {
		return nil, Classify(ctx, "dial", err, ErrServiceUnreachable)
	}
	return svc, nil
}

// Notify calls fn with p when fn is set.
func (fn ProgressFunc) Notify(p Progress) {
	if fn != nil {
		fn(p)
	}
}
