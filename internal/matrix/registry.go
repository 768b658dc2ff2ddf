// Package matrix holds the test matrix: for each filter under comparison, how
// to render a VapourSynth script that runs both implementations side by side,
// and the named parameter sets worth benchmarking.
package matrix

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrUnknownFilter is returned when a filter id is not registered
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrDuplicateTest is returned when a test name is declared twice for a filter
	ErrDuplicateTest = errors.New("duplicate test")
)

// GenerateFunc renders a script that decodes sourcePath once and applies the
// filter through both implementations, binding the reference result to
// output 0 and the reimplementation to output 1. It must be pure.
type GenerateFunc func(sourcePath string, params Params) string

// Filter describes one filter under test.
type Filter struct {
	ID       string
	Title    string
	Generate GenerateFunc
	Tests    []ParameterSet
}

// Test looks up a parameter set by name
func (f *Filter) Test(name string) (ParameterSet, bool) {
	for _, t := range f.Tests {
		if t.Name == name {
			return t, true
		}
	}
	return ParameterSet{}, false
}

// TestNames returns test names in declared order
func (f *Filter) TestNames() []string {
	names := make([]string, len(f.Tests))
	for i, t := range f.Tests {
		names[i] = t.Name
	}
	return names
}

// Registry is an immutable, ordered table of filters. Build it once with
// Default or NewRegistry and derive variants with WithTests.
type Registry struct {
	filters []*Filter
}

// NewRegistry validates and copies the given filters into a Registry.
func NewRegistry(filters ...Filter) (*Registry, error) {
	r := &Registry{filters: make([]*Filter, 0, len(filters))}
	seen := make(map[string]bool, len(filters))
	for _, f := range filters {
		if f.ID == "" {
			return nil, errors.New("filter with empty id")
		}
		if f.Generate == nil {
			return nil, fmt.Errorf("filter %q has no script generator", f.ID)
		}
		if seen[f.ID] {
			return nil, fmt.Errorf("filter %q registered twice", f.ID)
		}
		seen[f.ID] = true

		if err := checkTestNames(f.ID, f.Tests); err != nil {
			return nil, err
		}

		fc := f
		if fc.Title == "" {
			fc.Title = Title(fc.ID)
		}
		fc.Tests = append([]ParameterSet(nil), f.Tests...)
		r.filters = append(r.filters, &fc)
	}
	return r, nil
}

// MustRegistry is NewRegistry for static tables; it panics on error.
func MustRegistry(filters ...Filter) *Registry {
	r, err := NewRegistry(filters...)
	if err != nil {
		panic(err)
	}
	return r
}

func checkTestNames(filterID string, tests []ParameterSet) error {
	seen := make(map[string]bool, len(tests))
	for _, t := range tests {
		if t.Name == "" {
			return fmt.Errorf("filter %q has a test with an empty name", filterID)
		}
		if seen[t.Name] {
			return fmt.Errorf("%w %q for filter %q", ErrDuplicateTest, t.Name, filterID)
		}
		seen[t.Name] = true
	}
	return nil
}

// Filter looks up a filter by id. The returned Filter must not be modified.
func (r *Registry) Filter(id string) (*Filter, bool) {
	for _, f := range r.filters {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

// IDs returns filter ids in registration order
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.filters))
	for i, f := range r.filters {
		ids[i] = f.ID
	}
	return ids
}

// Filters returns every filter in registration order
func (r *Registry) Filters() []*Filter {
	return append([]*Filter(nil), r.filters...)
}

// WithTests returns a new Registry where filter id has sets appended to its
// tests. r is left untouched.
func (r *Registry) WithTests(id string, sets ...ParameterSet) (*Registry, error) {
	if _, ok := r.Filter(id); !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownFilter, id, strings.Join(r.IDs(), ", "))
	}

	filters := make([]Filter, len(r.filters))
	for i, f := range r.filters {
		filters[i] = *f
		if f.ID == id {
			filters[i].Tests = append(append([]ParameterSet(nil), f.Tests...), sets...)
		}
	}
	return NewRegistry(filters...)
}

// Title upper-cases the first letter of a filter id: "super" -> "Super".
func Title(id string) string {
	r, size := utf8.DecodeRuneInString(id)
	if r == utf8.RuneError {
		return id
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(id[size:])
}
