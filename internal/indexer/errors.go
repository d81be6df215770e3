package indexer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRoot indicates the project root is missing or not a directory
	ErrInvalidRoot = errors.New("invalid root path")

	// ErrNoFilesDiscovered indicates discovery produced no candidate files
	ErrNoFilesDiscovered = errors.New("no files discovered")

	// ErrNoFilesParsed indicates every discovered file failed
	ErrNoFilesParsed = errors.New("no files parsed successfully")

	// ErrInvalidConfig indicates the configuration failed validation
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidHierarchy indicates extracted elements do not form a forest
	ErrInvalidHierarchy = errors.New("invalid element hierarchy")
)

// FileErrorKind classifies a per-file failure.
type FileErrorKind string

const (
	ParseError          FileErrorKind = "ParseError"
	MaxFileSizeExceeded FileErrorKind = "MaxFileSizeExceeded"
	IoError             FileErrorKind = "IoError"
)

// FileError is a recoverable failure of a single file. It never aborts a run; the
// file is left out of the ProjectModel and the error is reported in its failures.
type FileError struct {
	Path string
	Kind FileErrorKind
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// FatalErrorKind classifies a run-level failure.
type FatalErrorKind string

const (
	FatalInvalidRoot       FatalErrorKind = "InvalidRoot"
	FatalNoFilesDiscovered FatalErrorKind = "NoFilesDiscovered"
	FatalNoFilesParsed     FatalErrorKind = "NoFilesParsed"
	FatalConfigInvalid     FatalErrorKind = "ConfigInvalid"
	FatalInvalidHierarchy  FatalErrorKind = "InvalidHierarchy"
)

// FatalError aborts an extraction run.
type FatalError struct {
	Kind FatalErrorKind
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("extraction failed (%s): %v", e.Kind, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func fatal(kind FatalErrorKind, sentinel error, format string, args ...any) *FatalError {
	return &FatalError{
		Kind: kind,
		Err:  fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)),
	}
}
