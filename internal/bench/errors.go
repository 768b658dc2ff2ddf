package bench

import (
	"errors"
	"fmt"
	"strings"

	"github.com/linuxmatters/vsbench/internal/config"
)

var (
	ErrUnknownFilter   = errors.New("unknown filter")
	ErrUnknownTest     = errors.New("unknown test")
	ErrInvalidBitDepth = errors.New("invalid bit depth")
	ErrMissingSource   = errors.New("source file not found")
	ErrToolFailed      = errors.New("benchmark tool failed")
)

// SelectionError reports a filter, test or bit depth selection that does not
// match the matrix, with the valid alternatives.
type SelectionError struct {
	Err       error // ErrUnknownFilter, ErrUnknownTest or ErrInvalidBitDepth
	Value     string
	Filter    string
	Available []string
}

func (e *SelectionError) Error() string {
	available := strings.Join(e.Available, ", ")
	switch e.Err {
	case ErrUnknownFilter:
		return fmt.Sprintf("unknown filter '%s'. Available filters: %s", e.Value, available)
	case ErrUnknownTest:
		return fmt.Sprintf("unknown test '%s' for filter '%s'. Available tests: %s", e.Value, e.Filter, available)
	case ErrInvalidBitDepth:
		return fmt.Sprintf("invalid --bits value '%s'. Must be %s", e.Value, orList(e.Available))
	default:
		return fmt.Sprintf("%v '%s'", e.Err, e.Value)
	}
}

func (e *SelectionError) Unwrap() error { return e.Err }

// orList renders ["8", "10", "all"] as "8, 10, or all"
func orList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " or " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", or " + items[len(items)-1]
}

// SourceError reports a missing source clip for a bit depth
type SourceError struct {
	Bits config.BitDepth
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingSource, e.Path)
}

func (e *SourceError) Unwrap() []error { return []error{ErrMissingSource, e.Err} }

// ToolError reports a failed hyperfine invocation for one scenario
type ToolError struct {
	Filter string
	Test   string
	Bits   config.BitDepth
	Err    error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%v for %s/%s (%s): %v", ErrToolFailed, e.Filter, e.Test, e.Bits, e.Err)
}

func (e *ToolError) Unwrap() []error { return []error{ErrToolFailed, e.Err} }
