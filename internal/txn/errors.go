package txn

import (
	"context"
	"errors"
	"fmt"

	"github.com/conn-castle/pkgctl/internal/messages"
)

var (
	// ErrServiceUnreachable reports a connection failure before a transaction exists.
	ErrServiceUnreachable = errors.New(messages.TxnServiceUnreachable)
	// ErrServiceRejected reports that the service validated the request and refused it.
	ErrServiceRejected = errors.New(messages.TxnServiceRejected)
	// ErrConnectionLost reports that the connection dropped while waiting. The
	// transaction may still have completed on the service.
	ErrConnectionLost = errors.New(messages.TxnConnectionLost)
	// ErrClientCancelled reports that the caller cancelled the wait.
	ErrClientCancelled = errors.New(messages.TxnClientCancelled)
	// ErrTransactionFailed reports a service-side transaction failure.
	ErrTransactionFailed = errors.New(messages.TxnTransactionFailed)
)

// Error is the error type returned by transports.
// Kind is one of the package sentinels. Reason is service-supplied text and is
// shown verbatim; Err is the underlying transport error.
type Error struct {
	Kind   error
	Op     string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = fmt.Sprintf(messages.TxnErrorOpFmt, e.Op, msg)
	}
	switch {
	case e.Reason != "":
		return fmt.Sprintf(messages.TxnErrorReasonFmt, msg, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf(messages.TxnErrorReasonFmt, msg, e.Err)
	default:
		return msg
	}
}

// Unwrap exposes the sentinel kind and the transport cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError builds a transport error of the given kind.
func NewError(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Rejected builds an ErrServiceRejected error carrying the service's reason.
func Rejected(op string, reason string) *Error {
	return &Error{Kind: ErrServiceRejected, Op: op, Reason: reason}
}

// Lost builds an ErrConnectionLost error carrying the service's reason. It is
// used once a transaction exists and its outcome can no longer be observed.
func Lost(op string, reason string) *Error {
	return &Error{Kind: ErrConnectionLost, Op: op, Reason: reason}
}

// FailedError converts a Failed outcome into an ErrTransactionFailed error.
func FailedError(f Failed) *Error {
	return &Error{Kind: ErrTransactionFailed, Reason: f.Reason}
}

// Classify maps a transport error to a taxonomy error. Context cancellation
// always wins so an interrupted wait is never reported as a service problem;
// otherwise fallback is used.
func Classify(ctx context.Context, op string, err error, fallback error) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	if ctx != nil && ctx.Err() != nil {
		return NewError(ErrClientCancelled, op, ctx.Err())
	}
	if errors.Is(err, context.Canceled) {
		return NewError(ErrClientCancelled, op, err)
	}
	return NewError(fallback, op, err)
}
