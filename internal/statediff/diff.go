package statediff

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/conn-castle/pkgctl/internal/messages"
)

// Change is a package whose version differs between two deployments.
type Change struct {
	From Package
	To   Package
}

// Diff is the package difference between the booted and the next deployment.
type Diff struct {
	Upgraded   []Change
	Downgraded []Change
	Removed    []Package
	Added      []Package

	// Prior and Next are the full sorted package lists the diff was computed from.
	Prior []Package
	Next  []Package
}

// Empty reports whether nothing changed.
func (d Diff) Empty() bool {
	return len(d.Upgraded) == 0 && len(d.Downgraded) == 0 && len(d.Removed) == 0 && len(d.Added) == 0
}

// Inspector computes the package diff for a system root.
type Inspector interface {
	Diff(sysroot string) (Diff, error)
}

// StateInspector reads the deployment state file found at StateFile under the sysroot.
type StateInspector struct {
	StateFile string
}

// Diff compares the booted deployment with the default deployment. The diff is
// empty when nothing is booted or the default is the booted deployment.
func (i StateInspector) Diff(sysroot string) (Diff, error) {
	path := filepath.Join(sysroot, i.StateFile)
	state, err := LoadState(path)
	if err != nil {
		return Diff{}, err
	}
	booted := state.Booted()
	next := state.Default()
	if booted == nil || next == nil || next == booted {
		return Diff{}, nil
	}
	prior, err := parsePackages(booted, path)
	if err != nil {
		return Diff{}, err
	}
	nextPkgs, err := parsePackages(next, path)
	if err != nil {
		return Diff{}, err
	}
	return Compute(prior, nextPkgs), nil
}

// LayeredPackages returns the packages requested on top of the booted deployment, sorted.
func (i StateInspector) LayeredPackages(sysroot string) ([]string, error) {
	state, err := LoadState(filepath.Join(sysroot, i.StateFile))
	if err != nil {
		return nil, err
	}
	booted := state.Booted()
	if booted == nil {
		return []string{}, nil
	}
	out := append([]string(nil), booted.RequestedPackages...)
	sort.Strings(out)
	return out, nil
}

func parsePackages(d *Deployment, path string) ([]Package, error) {
	out := make([]Package, 0, len(d.Packages))
	for _, s := range d.Packages {
		p, err := ParseNEVRA(s)
		if err != nil {
			return nil, fmt.Errorf(messages.StatediffInvalidNEVRAFmt, s, path)
		}
		out = append(out, p)
	}
	return out, nil
}

// Compute diffs two package sets by name and architecture.
func Compute(prior []Package, next []Package) Diff {
	before := indexByKey(prior)
	after := indexByKey(next)

	var d Diff
	for key, old := range before {
		cur, ok := after[key]
		if !ok {
			d.Removed = append(d.Removed, old)
			continue
		}
		switch c := CompareEVR(old, cur); {
		case c < 0:
			d.Upgraded = append(d.Upgraded, Change{From: old, To: cur})
		case c > 0:
			d.Downgraded = append(d.Downgraded, Change{From: old, To: cur})
		}
	}
	for key, cur := range after {
		if _, ok := before[key]; !ok {
			d.Added = append(d.Added, cur)
		}
	}

	sortChanges(d.Upgraded)
	sortChanges(d.Downgraded)
	sortPackages(d.Removed)
	sortPackages(d.Added)
	d.Prior = sortedCopy(prior)
	d.Next = sortedCopy(next)
	return d
}

func indexByKey(pkgs []Package) map[string]Package {
	idx := make(map[string]Package, len(pkgs))
	for _, p := range pkgs {
		// With several versions installed in one slot, the newest represents it.
		if existing, ok := idx[p.Key()]; ok && CompareEVR(existing, p) >= 0 {
			continue
		}
		idx[p.Key()] = p
	}
	return idx
}

func sortPackages(pkgs []Package) {
	sort.Slice(pkgs, func(i, j int) bool {
		if pkgs[i].Name != pkgs[j].Name {
			return pkgs[i].Name < pkgs[j].Name
		}
		return pkgs[i].Arch < pkgs[j].Arch
	})
}

func sortChanges(changes []Change) {
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].To.Name != changes[j].To.Name {
			return changes[i].To.Name < changes[j].To.Name
		}
		return changes[i].To.Arch < changes[j].To.Arch
	})
}

func sortedCopy(pkgs []Package) []Package {
	out := append([]Package(nil), pkgs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Key() != out[j].Key() {
			if out[i].Name != out[j].Name {
				return out[i].Name < out[j].Name
			}
			return out[i].Arch < out[j].Arch
		}
		return CompareEVR(out[i], out[j]) < 0
	})
	return out
}
