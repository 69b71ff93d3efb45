package ingest

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure for callers that need to translate it
// into a transport-level response.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound: the referenced user does not exist.
	KindNotFound
	// KindInvalidInput: the upload itself is unacceptable (wrong file type).
	KindInvalidInput
	// KindUpstream: a transcription or extraction call failed or returned
	// an unusable payload.
	KindUpstream
	// KindPersistence: the batch write could not complete; the whole batch
	// was rolled back.
	KindPersistence
)

// Error is a classified pipeline failure. The wrapped error keeps the
// original reason for diagnostics.
type Error struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func failf(kind Kind, stage, format string, args ...any) *Error {
	return &Error{Kind: kind, Stage: stage, Err: fmt.Errorf(format, args...)}
}

func fail(kind Kind, stage string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Err: err}
}

// KindOf extracts the failure classification from an error chain.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}
