package pkgref

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conn-castle/pkgctl/internal/messages"
)

var (
	// ErrUnreadablePackageFile reports a relative package file that cannot be read.
	ErrUnreadablePackageFile = errors.New("unreadable package file")
	// ErrPathResolution reports a relative package file whose canonical path cannot be resolved.
	ErrPathResolution = errors.New("package path resolution failed")
	// ErrEmptyToken reports an empty package argument.
	ErrEmptyToken = errors.New("empty package argument")
)

// Error carries the offending token for a resolution failure.
// Kind is one of the package sentinels; Err is the underlying OS error, if any.
type Error struct {
	Token string
	Index int
	Kind  error
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrUnreadablePackageFile:
		return fmt.Sprintf(messages.PkgrefUnreadableFmt, e.Token, e.Err)
	case ErrPathResolution:
		return fmt.Sprintf(messages.PkgrefResolveFailedFmt, e.Token, e.Err)
	case ErrEmptyToken:
		return fmt.Sprintf(messages.PkgrefEmptyTokenFmt, e.Index+1)
	default:
		return fmt.Sprintf("%s: %v", e.Token, e.Err)
	}
}

// Unwrap exposes both the sentinel kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Resolver turns add-package tokens into references.
type Resolver struct {
	sys System
}

// NewResolver returns a Resolver that checks files through sys.
func NewResolver(sys System) (*Resolver, error) {
	if sys == nil {
		return nil, errors.New(messages.PkgrefSystemRequired)
	}
	return &Resolver{sys: sys}, nil
}

// Resolve classifies every token, in order. It stops at the first failure so
// no partially resolved list ever reaches the request builder.
func (r *Resolver) Resolve(tokens []string) ([]Ref, error) {
	refs := make([]Ref, 0, len(tokens))
	for i, token := range tokens {
		ref, err := r.resolveOne(token)
		if err != nil {
			var resolveErr *Error
			if errors.As(err, &resolveErr) {
				resolveErr.Index = i
			}
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (r *Resolver) resolveOne(token string) (Ref, error) {
	if token == "" {
		return nil, &Error{Token: token, Kind: ErrEmptyToken}
	}

	// Repository names and absolute package paths pass through verbatim; only
	// a relative package path needs checking and canonicalizing.
	if !strings.HasSuffix(token, ArchiveSuffix) || strings.HasPrefix(token, "/") {
		if strings.HasPrefix(token, "/") {
			return LocalFileRef{Path: token}, nil
		}
		return RepositoryRef{Spec: token}, nil
	}

	if err := r.sys.Readable(token); err != nil {
		return nil, &Error{Token: token, Kind: ErrUnreadablePackageFile, Err: err}
	}
	abs, err := r.sys.Abs(token)
	if err != nil {
		return nil, &Error{Token: token, Kind: ErrPathResolution, Err: err}
	}
	canonical, err := r.sys.EvalSymlinks(abs)
	if err != nil {
		return nil, &Error{Token: token, Kind: ErrPathResolution, Err: err}
	}
	return LocalFileRef{Path: canonical}, nil
}

// Passthrough validates remove-package tokens without touching the filesystem.
// Removal names refer to installed packages, so they are never resolved as paths.
func Passthrough(tokens []string) ([]string, error) {
	out := make([]string, 0, len(tokens))
	for i, token := range tokens {
		if token == "" {
			return nil, &Error{Token: token, Index: i, Kind: ErrEmptyToken}
		}
		out = append(out, token)
	}
	return out, nil
}
