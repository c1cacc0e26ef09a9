package service

import (
	"errors"
	"fmt"
)

var (
	// ErrPreviewNotFound covers both "never existed" and "expired"; the
	// caller cannot tell the two apart and restarts the flow either way.
	ErrPreviewNotFound = errors.New("preview not found or expired")

	// ErrPreviewConflict means a Put hit an existing preview id. With random
	// 128-bit ids this indicates an implementation bug, not user error.
	ErrPreviewConflict = errors.New("preview id already exists")

	// ErrSchoolNotFound rejects previews targeting an unknown school.
	ErrSchoolNotFound = errors.New("school not found")

	// ErrArchiveDisabled means no upload archive is configured, so the
	// original file behind a preview cannot be served.
	ErrArchiveDisabled = errors.New("upload archiving is not enabled")
)

// ParseError means the uploaded file could not be turned into rows at all
// (unreadable, wrong extension, missing sheet, bad header). Recoverable by
// re-uploading; no preview is stored when it occurs.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Reason
}

func parseErrorf(format string, args ...interface{}) error {
	return &ParseError{Reason: fmt.Sprintf(format, args...)}
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
