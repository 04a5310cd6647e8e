// Package statediff reads the local deployment state and reports how packages
// differ between the booted deployment and the one that will boot next.
package statediff

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/pkgctl/internal/messages"
)

// Deployment is one bootable OS tree recorded in the state file.
// The first deployment in the file is the default for the next boot.
type Deployment struct {
	Checksum          string   `toml:"checksum"`
	OSName            string   `toml:"osname"`
	Booted            bool     `toml:"booted"`
	Pending           bool     `toml:"pending"`
	Packages          []string `toml:"packages"`
	RequestedPackages []string `toml:"requested_packages"`
}

// State is the parsed deployment state file.
type State struct {
	Deployments []Deployment `toml:"deployment"`
}

var readFile = os.ReadFile

// LoadState reads and strictly decodes the state file at path.
func LoadState(path string) (*State, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf(messages.StatediffReadStateFmt, path, err)
	}
	var state State
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&state); err != nil {
		return nil, fmt.Errorf(messages.StatediffInvalidStateFmt, path, err)
	}
	booted := 0
	for _, d := range state.Deployments {
		if d.Booted {
			booted++
		}
	}
	if booted > 1 {
		return nil, fmt.Errorf(messages.StatediffMultipleBootedFmt, path)
	}
	return &state, nil
}

// Booted returns the booted deployment, or nil when none is marked booted.
func (s *State) Booted() *Deployment {
	for i := range s.Deployments {
		if s.Deployments[i].Booted {
			return &s.Deployments[i]
		}
	}
	return nil
}

// Default returns the deployment that boots next, or nil for an empty state.
func (s *State) Default() *Deployment {
	if len(s.Deployments) == 0 {
		return nil
	}
	return &s.Deployments[0]
}
