package model

import (
	"errors"
	"fmt"
)

// Error kinds. Callers pattern-match these with errors.Is/errors.As instead
// of parsing messages.
var (
	// ErrNotFound is returned when a DID, verification method, service, or
	// connector does not exist.
	ErrNotFound = errors.New("NOT_FOUND")

	// ErrInvalidArgument is returned for missing/ill-typed input, a bad DID,
	// a malformed JWT, or an out-of-range revocation index.
	ErrInvalidArgument = errors.New("INVALID_ARGUMENT")

	// ErrIntegrity is returned when a stored document fails its vault
	// signature verification.
	ErrIntegrity = errors.New("INTEGRITY")

	// ErrSignature is returned when a JWT signature does not verify.
	ErrSignature = errors.New("SIGNATURE")

	// ErrInvalidState is returned when a resolved verification method lacks
	// usable key material.
	ErrInvalidState = errors.New("INVALID_STATE")

	// ErrVault is returned when the underlying vault collaborator fails.
	ErrVault = errors.New("VAULT")

	// ErrStorage is returned when the underlying entity store fails.
	ErrStorage = errors.New("STORAGE")

	// ErrEncoding is returned for malformed base64/gzip/JSON input.
	ErrEncoding = errors.New("ENCODING")
)

// OpError wraps an unexpected lower-level error with the name of the public
// operation that produced it, preserving the chain for errors.Is/errors.As.
type OpError struct {
	Op    string
	Kind  error
	Cause error
}

func (e *OpError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%sFailed: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("%sFailed: %v", e.Op, e.Kind)
}

func (e *OpError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Kind
}

// Is reports whether target matches the declared kind, so callers can test
// errors.Is(err, model.ErrNotFound) regardless of which operation produced it.
func (e *OpError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// WrapOp builds an OpError associating an operation name, an error kind, and
// the lower-level cause. Pass a nil cause when the kind alone explains it.
func WrapOp(op string, kind error, cause error) error {
	return &OpError{Op: op, Kind: kind, Cause: cause}
}
