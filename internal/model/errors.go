package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by mutations addressed to an id no source knows.
	ErrNotFound = errors.New("not found")

	// ErrWouldCreateCycle rejects a folder move that would nest a folder inside itself.
	ErrWouldCreateCycle = errors.New("move would create a folder cycle")

	// ErrSourceUnavailable marks a source whose listing could not be fetched.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrReadOnly rejects mutations addressed to a pack.
	ErrReadOnly = errors.New("source is read-only")

	// ErrPersistenceFailed marks a write to the flag store that did not commit.
	ErrPersistenceFailed = errors.New("persistence failed")
)

// SourceError reports a fetch failure for one source.
type SourceError struct {
	SourceID string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.SourceID, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrSourceUnavailable) match.
func (e *SourceError) Is(target error) bool { return target == ErrSourceUnavailable }

// PersistError reports a failed flag store write.
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %q: %v", e.Key, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrPersistenceFailed) match.
func (e *PersistError) Is(target error) bool { return target == ErrPersistenceFailed }

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}
