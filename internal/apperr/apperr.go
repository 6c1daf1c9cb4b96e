// Package apperr separates business-data failures, which fail a single queue
// item, from infrastructure failures, which abort the run.
package apperr

import (
	"errors"
	"fmt"
)

// Kind error class
type Kind int

const (
	// KindInfrastructure network, auth, storage or configuration failure
	KindInfrastructure Kind = iota
	// KindDomain recoverable per-item business condition
	KindDomain
)

func (k Kind) String() string {
	switch k {
	case KindDomain:
		return "domain"
	default:
		return "infrastructure"
	}
}

// Error tagged error carrying its kind and the failing operation
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Domain wraps err as a domain error
func Domain(op string, err error) error {
	return &Error{Kind: KindDomain, Op: op, Err: err}
}

// Domainf builds a domain error from a format string
func Domainf(op string, format string, args ...any) error {
	return &Error{Kind: KindDomain, Op: op, Err: fmt.Errorf(format, args...)}
}

// Infra wraps err as an infrastructure error
func Infra(op string, err error) error {
	return &Error{Kind: KindInfrastructure, Op: op, Err: err}
}

// KindOf returns the kind of the outermost tagged error in err's chain.
// Untagged errors are infrastructure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}

// IsDomain reports whether err is a domain error
func IsDomain(err error) bool {
	return err != nil && KindOf(err) == KindDomain
}
