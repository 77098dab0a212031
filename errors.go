/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package pdfstrings

import "golang.org/x/xerrors"

// Fatal errors surfaced to callers of FromPath/FromBytes
// Page-fatal and soft conditions never reach this type; they accumulate as
// Warnings on the returned TextOutput instead.
var (
	// ErrInvalidPdf is returned when the input is not a PDF, or its trailer
	// and cross-reference information is too damaged to recover.
	ErrInvalidPdf = xerrors.New("pdfstrings: invalid PDF")

	// ErrEncryptedPdfNoPassword is returned when the document is encrypted
	// and no password was supplied.
	ErrEncryptedPdfNoPassword = xerrors.New("pdfstrings: encrypted PDF requires a password")

	// ErrWrongPassword is returned when a supplied password fails to
	// authenticate against the document's security handler.
	ErrWrongPassword = xerrors.New("pdfstrings: wrong password")
)

// UnsupportedError reports a feature the core or its provider declined to
// support. FromPath and FromBytes do not return it: an unrecognised
// security handler or revision is reported as ErrInvalidPdf.
type UnsupportedError struct {
	Feature string
}

func (e *UnsupportedError) Error() string {
	return "pdfstrings: unsupported: " + e.Feature
}

// Unsupported constructs an UnsupportedError for feature.
func Unsupported(feature string) error {
	return &UnsupportedError{Feature: feature}
}

// IoError wraps an underlying I/O failure (file open, read, etc).
type IoError struct {
	Cause error
}

func (e *IoError) Error() string {
	return "pdfstrings: io: " + e.Cause.Error()
}

func (e *IoError) Unwrap() error {
	return e.Cause
}

func ioErr(cause error) error {
	if cause == nil {
		return nil
	}
	return &IoError{Cause: cause}
}
