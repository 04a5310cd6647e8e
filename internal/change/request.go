// Package change assembles package change requests for the package service.
package change

import (
	"errors"
	"fmt"

	"github.com/conn-castle/pkgctl/internal/messages"
	"github.com/conn-castle/pkgctl/internal/pkgref"
)

// ErrEmptyRequest is returned when a request has nothing to add or remove.
// Commands reject empty package lists before building, so this signals a caller bug.
var ErrEmptyRequest = errors.New(messages.ChangeEmptyRequest)

// Options are the standing transaction options for one invocation.
type Options struct {
	Reboot bool
	DryRun bool
}

// Request is one package change request. Build it with Build.
type Request struct {
	Add     []pkgref.Ref
	Remove  []string
	Options Options
}

// Payload is the wire form of a Request.
type Payload struct {
	Options          OptionsPayload `json:"options"`
	PackagesToAdd    []string       `json:"packages_to_add"`
	PackagesToRemove []string       `json:"packages_to_remove"`
}

// OptionsPayload is the wire form of Options.
type OptionsPayload struct {
	Reboot bool `json:"reboot"`
	DryRun bool `json:"dry-run"`
}

// Build assembles a request from resolved add references and raw remove names.
// Order of both lists is preserved.
func Build(add []pkgref.Ref, remove []string, opts Options) (Request, error) {
	if len(add) == 0 && len(remove) == 0 {
		return Request{}, ErrEmptyRequest
	}
	for i, name := range remove {
		if name == "" {
			return Request{}, fmt.Errorf(messages.ChangeEmptyRemoveToken, i+1)
		}
	}
	req := Request{
		Add:     append([]pkgref.Ref(nil), add...),
		Remove:  append([]string(nil), remove...),
		Options: opts,
	}
	return req, nil
}

// Payload returns the request in wire form. Absent sides are empty, never nil.
func (r Request) Payload() Payload {
	remove := make([]string, len(r.Remove))
	copy(remove, r.Remove)
	return Payload{
		Options: OptionsPayload{
			Reboot: r.Options.Reboot,
			DryRun: r.Options.DryRun,
		},
		PackagesToAdd:    pkgref.WireAll(r.Add),
		PackagesToRemove: remove,
	}
}
