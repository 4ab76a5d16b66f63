package vcf

import (
	"errors"
	"fmt"
)

// Error kinds returned (wrapped in *ParseError) by the reader.
// Use errors.Is to test for a kind.
var (
	ErrCannotOpen     = errors.New("cannot open vcf file")
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrMalformedToken = errors.New("malformed token")
	ErrMissingHeader  = errors.New("missing #CHROM header line")
)

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Kind    error
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("vcf parse error at line %d: %v: %s", e.Line, e.Kind, e.Message)
	}
	return fmt.Sprintf("vcf parse error: %v: %s", e.Kind, e.Message)
}

// Unwrap returns the error kind.
func (e *ParseError) Unwrap() error {
	return e.Kind
}

func newParseError(line int, kind error, format string, args ...any) *ParseError {
	return &ParseError{
		Line:    line,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}
