package matrix

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Overlay is a set of extra parameter sets loaded from a matrix file, keyed
// by filter id. Filter and test order follow the file.
//
//	super:
//	  pel2_no_chroma:
//	    pel: 2
//	    chroma: false
type Overlay struct {
	Filters []OverlayFilter
}

// OverlayFilter holds the extra tests declared for one filter
type OverlayFilter struct {
	ID    string
	Tests []ParameterSet
}

// LoadOverlay reads and parses a matrix file
func LoadOverlay(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read matrix file: %w", err)
	}
	ov, err := ParseOverlay(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ov, nil
}

// ParseOverlay parses a matrix document. Mappings are walked as yaml.Nodes
// rather than decoded into Go maps so declaration order survives.
func ParseOverlay(data []byte) (*Overlay, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	ov := &Overlay{}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return ov, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return ov, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, nodeError(root, "expected a mapping of filter ids")
	}

	seenFilters := make(map[string]bool)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, body := root.Content[i], root.Content[i+1]
		id := key.Value
		if seenFilters[id] {
			return nil, nodeError(key, "filter %q declared twice", id)
		}
		seenFilters[id] = true

		tests, err := parseTests(body)
		if err != nil {
			return nil, err
		}
		ov.Filters = append(ov.Filters, OverlayFilter{ID: id, Tests: tests})
	}
	return ov, nil
}

func parseTests(n *yaml.Node) ([]ParameterSet, error) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, nodeError(n, "expected a mapping of test names")
	}

	var tests []ParameterSet
	seen := make(map[string]bool)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, body := n.Content[i], n.Content[i+1]
		if seen[key.Value] {
			return nil, nodeError(key, "%w %q", ErrDuplicateTest, key.Value)
		}
		seen[key.Value] = true

		params, err := parseParams(body)
		if err != nil {
			return nil, err
		}
		tests = append(tests, ParameterSet{Name: key.Value, Params: params})
	}
	return tests, nil
}

func parseParams(n *yaml.Node) (Params, error) {
	var p Params
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null" {
		return p, nil
	}
	if n.Kind != yaml.MappingNode {
		return p, nodeError(n, "expected a mapping of parameters")
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if _, dup := p.Get(key.Value); dup {
			return p, nodeError(key, "parameter %q set twice", key.Value)
		}
		v, err := scalarValue(val)
		if err != nil {
			return p, err
		}
		p = p.With(key.Value, v)
	}
	return p, nil
}

func scalarValue(n *yaml.Node) (Value, error) {
	if n.Kind != yaml.ScalarNode {
		return Value{}, nodeError(n, "parameter values must be numbers or booleans")
	}
	switch n.ShortTag() {
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return Value{}, nodeError(n, "invalid integer %q", n.Value)
		}
		return Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, nodeError(n, "invalid float %q", n.Value)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, nodeError(n, "non-finite float %q", n.Value)
		}
		return Float(f), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, nodeError(n, "invalid boolean %q", n.Value)
		}
		return Bool(b), nil
	default:
		return Value{}, nodeError(n, "parameter values must be numbers or booleans, got %s", strings.TrimPrefix(n.ShortTag(), "!!"))
	}
}

func nodeError(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("line %d: "+format, append([]any{n.Line}, args...)...)
}

// ApplyOverlay returns a new Registry with every overlay test appended to its
// filter. Unknown filters and names clashing with existing tests are errors.
func (r *Registry) ApplyOverlay(ov *Overlay) (*Registry, error) {
	out := r
	for _, of := range ov.Filters {
		f, ok := out.Filter(of.ID)
		if !ok {
			return nil, fmt.Errorf("%w %q in matrix file (available: %s)", ErrUnknownFilter, of.ID, strings.Join(r.IDs(), ", "))
		}
		for _, t := range of.Tests {
			if _, exists := f.Test(t.Name); exists {
				return nil, fmt.Errorf("%w %q for filter %q: already built in", ErrDuplicateTest, t.Name, of.ID)
			}
		}

		next, err := out.WithTests(of.ID, of.Tests...)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}
