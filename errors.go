package exfat

import (
	"fmt"

	"github.com/dsoprea/go-logging"
)

// The error kinds form a closed sum distinguishing the ways a core operation
// can fail. Command front-ends type-switch on these (after unwrapping with
// go-logging's Wrap chain) rather than matching message strings, to decide
// an exit code.

// IoError wraps a failure to transfer the full requested byte count against
// the image handle.
type IoError struct {
	msg string
}

func (e *IoError) Error() string { return e.msg }

// NewIoError builds an IoError.
func NewIoError(format string, args ...interface{}) error {
	return log.Wrap(&IoError{msg: fmt.Sprintf(format, args...)})
}

// InvalidSuperblockError reports one or more boot-sector field violations.
type InvalidSuperblockError struct {
	msg string
}

func (e *InvalidSuperblockError) Error() string { return e.msg }

// NewInvalidSuperblockError builds an InvalidSuperblockError.
func NewInvalidSuperblockError(format string, args ...interface{}) error {
	return log.Wrap(&InvalidSuperblockError{msg: fmt.Sprintf(format, args...)})
}

// InvalidArgumentError reports an out-of-range cluster index or directory
// entry value supplied by a caller.
type InvalidArgumentError struct {
	msg string
}

func (e *InvalidArgumentError) Error() string { return e.msg }

// NewInvalidArgumentError builds an InvalidArgumentError.
func NewInvalidArgumentError(format string, args ...interface{}) error {
	return log.Wrap(&InvalidArgumentError{msg: fmt.Sprintf(format, args...)})
}

// NotFoundError reports that a path component could not be resolved.
type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string { return e.msg }

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(format string, args ...interface{}) error {
	return log.Wrap(&NotFoundError{msg: fmt.Sprintf(format, args...)})
}

// InconsistencyError reports a FAT loop, a bitmap/FAT disagreement, a
// cross-link, or a cluster-chain length mismatch.
type InconsistencyError struct {
	msg string
}

func (e *InconsistencyError) Error() string { return e.msg }

// NewInconsistencyError builds an InconsistencyError.
func NewInconsistencyError(format string, args ...interface{}) error {
	return log.Wrap(&InconsistencyError{msg: fmt.Sprintf(format, args...)})
}

// OutOfMemoryError reports an allocation that could not be satisfied (e.g.
// the directory cache's growth-and-eviction path).
type OutOfMemoryError struct {
	msg string
}

func (e *OutOfMemoryError) Error() string { return e.msg }

// NewOutOfMemoryError builds an OutOfMemoryError.
func NewOutOfMemoryError(format string, args ...interface{}) error {
	return log.Wrap(&OutOfMemoryError{msg: fmt.Sprintf(format, args...)})
}

// UnsupportedError reports an unrecognized directory-entry type that must not
// be silently skipped (as opposed to a recognized-but-benign type).
type UnsupportedError struct {
	msg string
}

func (e *UnsupportedError) Error() string { return e.msg }

// NewUnsupportedError builds an UnsupportedError.
func NewUnsupportedError(format string, args ...interface{}) error {
	return log.Wrap(&UnsupportedError{msg: fmt.Sprintf(format, args...)})
}
