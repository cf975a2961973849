package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownMarksheetType is returned when a type string is not in the catalog.
var ErrUnknownMarksheetType = errors.New("unknown marksheet type")

// ErrNoFile is returned when validation is asked to check a missing handle.
var ErrNoFile = errors.New("no file given")

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("file validation failed")

// ValidationError reports a file rejected before it reaches the network.
type ValidationError struct {
	Kind     ValidationKind
	FileName string
	MIMEType string
	Size     int64
	Limit    int64
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case UnsupportedType:
		return fmt.Sprintf("%s: unsupported file type %q (allowed: PDF, JPEG, PNG)", e.FileName, e.MIMEType)
	case FileTooLarge:
		return fmt.Sprintf("%s: file is %d bytes, limit is %d bytes", e.FileName, e.Size, e.Limit)
	default:
		return fmt.Sprintf("%s: invalid file", e.FileName)
	}
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
