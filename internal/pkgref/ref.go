// Package pkgref classifies package arguments as repository references or local
// package files and canonicalizes relative package file paths.
package pkgref

// ArchiveSuffix marks a token as a local package file.
const ArchiveSuffix = ".rpm"

// Ref is a resolved package reference. The set of implementations is closed:
// RepositoryRef and LocalFileRef.
type Ref interface {
	// Wire returns the string sent to the package service.
	Wire() string
	isRef()
}

// RepositoryRef names a package the service resolves from its repositories.
// Spec is passed through exactly as the user typed it.
type RepositoryRef struct {
	Spec string
}

// Wire returns the package spec unchanged.
func (r RepositoryRef) Wire() string { return r.Spec }

func (RepositoryRef) isRef() {}

// LocalFileRef is an absolute path to a package file on the local filesystem.
type LocalFileRef struct {
	Path string
}

// Wire returns the absolute path.
func (r LocalFileRef) Wire() string { return r.Path }

func (LocalFileRef) isRef() {}

// WireAll maps refs to their wire strings, preserving order.
func WireAll(refs []Ref) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.Wire())
	}
	return out
}
