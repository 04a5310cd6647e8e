// Package httppoll talks to the package service's HTTP API, waiting for
// transactions by long-polling their status.
package httppoll

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conn-castle/pkgctl/internal/change"
	"github.com/conn-castle/pkgctl/internal/logging"
	"github.com/conn-castle/pkgctl/internal/messages"
	"github.com/conn-castle/pkgctl/internal/txn"
)

// TransportName is the name registered with txn.
const TransportName = "longpoll"

// DefaultPollWait bounds a single status request when the config leaves it unset.
const DefaultPollWait = 30 * time.Second

// Transaction states reported by the status endpoint.
const (
	StateRunning   = "running"
	StateSucceeded = "succeeded"
	StateFailed    = "failed"
)

// HeaderRequestID carries a per-invocation id for correlating service logs.
const HeaderRequestID = "X-Pkgctl-Request-Id"

const maxErrorBody = 64 << 10

// minPollInterval spaces status requests when the service answers before the
// requested wait has elapsed.
var minPollInterval = 250 * time.Millisecond

// SubmitResponse is the body of a successful pkg-change call.
type SubmitResponse struct {
	TransactionAddress string `json:"transaction_address"`
}

// StatusResponse is the body of a transaction status call.
type StatusResponse struct {
	State            string `json:"state"`
	Message          string `json:"message,omitempty"`
	Percent          *int   `json:"percent,omitempty"`
	ErrorMessage     string `json:"error_message,omitempty"`
	AlreadyCompleted bool   `json:"already_completed,omitempty"`
}

// ErrorResponse is the body of a non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Service is a txn.Service speaking the HTTP API.
type Service struct {
	base      *url.URL
	client    *http.Client
	pollWait  time.Duration
	progress  txn.ProgressFunc
	requestID string
	version   string
}

func init() {
	txn.RegisterTransport(TransportName, Dial)
}

// Dial validates the endpoint and returns a Service. No request is made until Submit.
func Dial(ctx context.Context, cfg txn.DialConfig) (txn.Service, error) {
	base, err := url.Parse(strings.TrimRight(cfg.Endpoint, "/"))
	if err != nil {
		return nil, err
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q must be an http or https URL", cfg.Endpoint)
	}
	pollWait := cfg.PollWait
	if pollWait <= 0 {
		pollWait = DefaultPollWait
	}
	svc := &Service{
		base: base,
		// Each status request may legitimately take pollWait; leave headroom above it.
		client:    &http.Client{Timeout: pollWait + 10*time.Second},
		pollWait:  pollWait,
		progress:  cfg.OnProgress,
		requestID: uuid.NewString(),
		version:   cfg.ClientVersion,
	}
	logging.From(ctx).Debug("using long-poll package service", zap.String("endpoint", base.String()))
	return svc, nil
}

// Submit posts the change request and returns the started transaction's handle.
func (s *Service) Submit(ctx context.Context, target string, req change.Request) (txn.Handle, error) {
	const op = "pkg-change"
	osname := target
	if osname == "" {
		osname = "booted"
	}
	body, err := json.Marshal(req.Payload())
	if err != nil {
		return txn.Handle{}, txn.NewError(txn.ErrServiceRejected, op, err)
	}
	endpoint := s.base.JoinPath("v1", "os", osname, "pkg-change")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return txn.Handle{}, txn.NewError(txn.ErrServiceUnreachable, op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	s.setHeaders(httpReq)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return txn.Handle{}, txn.Classify(ctx, op, err, txn.ErrServiceUnreachable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return txn.Handle{}, txn.Rejected(op, errorReason(resp))
	}
	var out SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return txn.Handle{}, txn.NewError(txn.ErrServiceRejected, op, fmt.Errorf(messages.TxnInvalidResultFmt, op, err))
	}
	if strings.TrimSpace(out.TransactionAddress) == "" {
		return txn.Handle{}, txn.Rejected(op, fmt.Sprintf(messages.TxnEmptyAddressFmt, op))
	}
	logging.From(ctx).Debug("transaction started", logging.Transaction(out.TransactionAddress))
	return txn.Handle{Address: out.TransactionAddress}, nil
}

// AwaitCompletion long-polls the transaction until it leaves the running state.
// A new message or percentage in a status reply is forwarded as progress.
// Once the transaction exists, a status the client cannot use is reported as
// ErrConnectionLost: the outcome is unknown, not refused.
func (s *Service) AwaitCompletion(ctx context.Context, h txn.Handle) (txn.Outcome, error) {
	const op = "transaction-wait"
	var last txn.Progress
	for {
		started := time.Now()
		status, err := s.poll(ctx, h)
		if err != nil {
			return nil, txn.Classify(ctx, op, err, txn.ErrConnectionLost)
		}
		switch status.State {
		case StateRunning:
			current := txn.Progress{Message: status.Message, Percent: -1}
			if status.Percent != nil {
				current.Percent = *status.Percent
			}
			if current.Message != "" && current != last {
				s.progress.Notify(current)
				last = current
			}
			if err := sleepCtx(ctx, minPollInterval-time.Since(started)); err != nil {
				return nil, txn.Classify(ctx, op, err, txn.ErrConnectionLost)
			}
		case StateSucceeded:
			if status.AlreadyCompleted {
				return txn.AlreadyCompleted{}, nil
			}
			return txn.Succeeded{}, nil
		case StateFailed:
			return txn.Failed{Reason: status.ErrorMessage}, nil
		default:
			return nil, txn.Lost(op, fmt.Sprintf(messages.TxnUnknownStateFmt, status.State))
		}
	}
}

func (s *Service) poll(ctx context.Context, h txn.Handle) (StatusResponse, error) {
	// Addresses are object paths; they travel as a single escaped segment.
	endpoint := s.base.JoinPath("v1", "transactions", url.PathEscape(h.Address))
	query := endpoint.Query()
	query.Set("wait", s.pollWait.String())
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return StatusResponse{}, err
	}
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return StatusResponse{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return StatusResponse{}, txn.Lost("transaction-wait", errorReason(resp))
	}
	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return StatusResponse{}, err
	}
	return status, nil
}

// sleepCtx waits for d unless ctx ends first. A non-positive d returns at once.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Close drops idle pooled connections. The service keeps no session state.
func (s *Service) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *Service) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", messages.RootUse+"/"+s.version)
	req.Header.Set(HeaderRequestID, s.requestID)
}

// errorReason extracts the service's reason from a non-2xx reply.
func errorReason(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil && strings.TrimSpace(body.Error) != "" {
		return body.Error
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		return text
	}
	return resp.Status
}
