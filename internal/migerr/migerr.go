// Package migerr classifies the errors midas surfaces to the entry layer.
package migerr

import "fmt"

// Kind is the category of failure a caller can branch on.
type Kind int

const (
	// Config covers a missing URL/directory or an unrecognized scheme.
	Config Kind = iota
	// Filesystem covers directory/file read, write, or fsync failures.
	Filesystem
	// Parse covers a migration body missing a marker.
	Parse
	// Connect covers driver construction failure (network, auth, permissions).
	Connect
	// Schema covers ensure_log/drop_log failures.
	Schema
	// Execution covers migrate or log-mutation SQL failures.
	Execution
	// Integrity covers a logged migration number with no matching file.
	Integrity
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "config"
	case Filesystem:
		return "filesystem"
	case Parse:
		return "parse"
	case Connect:
		return "connect"
	case Schema:
		return "schema"
	case Execution:
		return "execution"
	case Integrity:
		return "integrity"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with the Kind and operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error, wrapping err with the given kind and operation label.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err (or any error it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
