package webauth

import (
	"errors"
	"fmt"
)

// Code identifies the broad category of a WebAuth failure. Callers
// dispatch on the code; the message is for humans.
type Code int

// Status codes for all operations in this library.
const (
	CodeNone Code = iota
	CodeNoMem
	CodeCorrupt
	CodeBadHMAC
	CodeBadKey
	CodeRandFailure
	CodeNotFound
	CodeInvalid
	CodeFileNotFound
	CodeFileVersion
	CodeFileOpenRead
	CodeFileOpenWrite
	CodeFileRead
	CodeFileWrite
	CodeTokenExpired
)

var codeNames = map[Code]string{
	CodeNone:          "success",
	CodeNoMem:         "out of memory",
	CodeCorrupt:       "corrupt data",
	CodeBadHMAC:       "HMAC verification failed",
	CodeBadKey:        "invalid key",
	CodeRandFailure:   "random data generation failed",
	CodeNotFound:      "not found",
	CodeInvalid:       "invalid argument",
	CodeFileNotFound:  "file not found",
	CodeFileVersion:   "unsupported file format version",
	CodeFileOpenRead:  "cannot open file for reading",
	CodeFileOpenWrite: "cannot open file for writing",
	CodeFileRead:      "error reading file",
	CodeFileWrite:     "error writing file",
	CodeTokenExpired:  "token has expired",
}

// String returns a short description of the code.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("unknown status %d", int(c))
}

// Error is the error type returned by every package in this module. It
// carries a status code, a message with enough context to name the failing
// file, token kind, or attribute, and optionally the underlying cause.
//
// Error supports unwrapping via errors.Unwrap, errors.Is, and errors.As
// from the standard library. Messages never contain key material.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error with the given code and formatted message that
// preserves err as the underlying cause.
func Wrap(err error, code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf extracts the status code from an error returned by this module.
// It returns CodeNone for nil and CodeInvalid for foreign errors.
func CodeOf(err error) Code {
	if err == nil {
		return CodeNone
	}
	var we *Error
	if errors.As(err, &we) {
		return we.Code
	}
	return CodeInvalid
}
