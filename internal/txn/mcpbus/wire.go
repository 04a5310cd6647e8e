// Package mcpbus talks to the package service over the Model Context Protocol.
//
// The service exposes two tools. PkgChange validates a request and starts a
// transaction, returning its address. TransactionWait blocks until that
// transaction finishes, streaming progress notifications for the caller's
// progress token while it runs.
package mcpbus

import "github.com/conn-castle/pkgctl/internal/change"

// Tool names exposed by the package service.
const (
	ToolPkgChange       = "PkgChange"
	ToolTransactionWait = "TransactionWait"
)

// Transport names registered with txn.
const (
	TransportCommand = "command"
	TransportHTTP    = "http"
)

// PkgChangeArgs are the PkgChange tool arguments.
type PkgChangeArgs struct {
	OSName           string                `json:"osname"`
	Options          change.OptionsPayload `json:"options"`
	PackagesToAdd    []string              `json:"packages_to_add"`
	PackagesToRemove []string              `json:"packages_to_remove"`
}

// PkgChangeResult is the PkgChange structured result.
type PkgChangeResult struct {
	TransactionAddress string `json:"transaction_address"`
}

// WaitArgs are the TransactionWait tool arguments.
type WaitArgs struct {
	TransactionAddress string `json:"transaction_address"`
}

// WaitResult is the TransactionWait structured result.
type WaitResult struct {
	Success          bool   `json:"success"`
	ErrorMessage     string `json:"error_message,omitempty"`
	AlreadyCompleted bool   `json:"already_completed,omitempty"`
}

func newPkgChangeArgs(target string, payload change.Payload) PkgChangeArgs {
	return PkgChangeArgs{
		OSName:           target,
		Options:          payload.Options,
		PackagesToAdd:    payload.PackagesToAdd,
		PackagesToRemove: payload.PackagesToRemove,
	}
}
