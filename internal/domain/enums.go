package domain

import (
	"fmt"
	"strings"
)

// MarksheetType identifies the category of an academic transcript.
type MarksheetType string

const (
	MarksheetTenth    MarksheetType = "10th"
	MarksheetTwelfth  MarksheetType = "12th"
	MarksheetSemester MarksheetType = "semester"
)

// ValidMarksheetTypes is the canonical set of accepted marksheet type strings.
var ValidMarksheetTypes = map[string]bool{
	"10th": true, "12th": true, "semester": true,
}

// ParseMarksheetType normalizes s and returns the matching MarksheetType.
// Matching is case-insensitive since the processing service lowercases types.
func ParseMarksheetType(s string) (MarksheetType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if !ValidMarksheetTypes[norm] {
		return "", fmt.Errorf("%w: %q", ErrUnknownMarksheetType, s)
	}
	return MarksheetType(norm), nil
}

func (t MarksheetType) String() string { return string(t) }

// ValidationKind distinguishes local file validation failures.
type ValidationKind string

const (
	UnsupportedType ValidationKind = "unsupported_type"
	FileTooLarge    ValidationKind = "file_too_large"
)
