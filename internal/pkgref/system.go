package pkgref

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// System abstracts the filesystem checks the resolver needs.
type System interface {
	// Readable reports whether path can be opened for reading by this process.
	Readable(path string) error
	// Abs returns an absolute form of path.
	Abs(path string) (string, error)
	// EvalSymlinks returns path with all symbolic links resolved.
	EvalSymlinks(path string) (string, error)
}

// RealSystem implements System using the OS.
type RealSystem struct{}

// Readable checks read permission with access(2), so the answer matches what
// the kernel grants this process rather than the file mode bits.
func (RealSystem) Readable(path string) error {
	return unix.Access(path, unix.R_OK)
}

// Abs returns an absolute representation of path.
func (RealSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// EvalSymlinks returns the path name after the evaluation of any symbolic links.
func (RealSystem) EvalSymlinks(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}
