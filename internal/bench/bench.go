// Package bench turns a filter/test/bit-depth selection into benchmark
// scenarios and runs each one through hyperfine, strictly one at a time.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/linuxmatters/vsbench/internal/cli"
	"github.com/linuxmatters/vsbench/internal/config"
	"github.com/linuxmatters/vsbench/internal/hyperfine"
	"github.com/linuxmatters/vsbench/internal/matrix"
)

// Selection is what the user asked to benchmark. An empty Test selects every
// test of the filter.
type Selection struct {
	Filter string
	Test   string
	Bits   string
}

// Plan is a validated Selection
type Plan struct {
	Filter *matrix.Filter
	Tests  []matrix.ParameterSet
	Bits   []config.BitDepth
}

// Len returns the number of scenarios the plan will run
func (p *Plan) Len() int {
	return len(p.Bits) * len(p.Tests)
}

// Scenario is one (test, bit depth) pair ready to run
type Scenario struct {
	Filter *matrix.Filter
	Test   matrix.ParameterSet
	Bits   config.BitDepth
	Source string
	Script string
}

// SourceResolver maps a bit depth to the absolute path of its source clip
type SourceResolver func(bits config.BitDepth) (string, error)

// Orchestrator runs benchmark plans. Registry, Sources and Runner are
// required; the rest have usable zero values.
type Orchestrator struct {
	Registry *matrix.Registry
	Sources  SourceResolver
	Runner   hyperfine.Runner

	Out        io.Writer    // Scenario headers; os.Stdout when nil
	ScratchDir string       // Where transient scripts live; os.TempDir() when empty
	Warmup     int          // hyperfine -w
	Runs       int          // hyperfine -r, tool default when zero
	Logger     *slog.Logger // slog.Default() when nil
}

// Run validates sel and executes every scenario it selects
func (o *Orchestrator) Run(ctx context.Context, sel Selection) error {
	plan, err := o.Plan(sel)
	if err != nil {
		return err
	}
	return o.Execute(ctx, plan)
}

// Plan validates sel against the registry without touching the filesystem.
// Checks run in order: filter, test, bit depth.
func (o *Orchestrator) Plan(sel Selection) (*Plan, error) {
	f, ok := o.Registry.Filter(sel.Filter)
	if !ok {
		return nil, &SelectionError{
			Err:       ErrUnknownFilter,
			Value:     sel.Filter,
			Available: o.Registry.IDs(),
		}
	}

	tests := f.Tests
	if sel.Test != "" {
		t, ok := f.Test(sel.Test)
		if !ok {
			return nil, &SelectionError{
				Err:       ErrUnknownTest,
				Value:     sel.Test,
				Filter:    f.ID,
				Available: f.TestNames(),
			}
		}
		tests = []matrix.ParameterSet{t}
	}

	bits, err := config.ParseBitDepths(sel.Bits)
	if err != nil {
		return nil, &SelectionError{
			Err:       ErrInvalidBitDepth,
			Value:     sel.Bits,
			Available: config.BitDepthChoices(),
		}
	}

	return &Plan{Filter: f, Tests: tests, Bits: bits}, nil
}

// Execute runs the plan bit depth by bit depth, test by test. The first
// missing source or tool failure aborts the remaining scenarios.
func (o *Orchestrator) Execute(ctx context.Context, plan *Plan) error {
	log := o.logger()
	log.Debug("executing plan",
		"filter", plan.Filter.ID,
		"tests", len(plan.Tests),
		"bits", len(plan.Bits),
		"scenarios", plan.Len())

	for _, bits := range plan.Bits {
		source, err := o.resolveSource(bits)
		if err != nil {
			return err
		}

		for _, test := range plan.Tests {
			if err := ctx.Err(); err != nil {
				return err
			}

			sc := Scenario{
				Filter: plan.Filter,
				Test:   test,
				Bits:   bits,
				Source: source,
				Script: plan.Filter.Generate(source, test.Params),
			}
			if err := o.runScenario(ctx, sc); err != nil {
				return err
			}
		}
	}
	return nil
}

func (o *Orchestrator) resolveSource(bits config.BitDepth) (string, error) {
	path, err := o.Sources(bits)
	if err != nil {
		return "", &SourceError{Bits: bits, Path: path, Err: err}
	}
	if _, err := os.Stat(path); err != nil {
		return "", &SourceError{Bits: bits, Path: path, Err: err}
	}
	return path, nil
}

func (o *Orchestrator) runScenario(ctx context.Context, sc Scenario) error {
	fmt.Fprintln(o.out(), cli.FormatScenarioHeader(sc.Filter.Title, sc.Test.Name, int(sc.Bits)))

	return withScript(o.ScratchDir, sc.Script, func(path string) error {
		args := hyperfine.Args(
			hyperfine.Options{Warmup: o.Warmup, Runs: o.Runs},
			hyperfine.Comparison(sc.Filter.Title, path, matrix.ReferenceOutput, matrix.RewriteOutput)...,
		)
		o.logger().Debug("running hyperfine",
			"filter", sc.Filter.ID,
			"test", sc.Test.Name,
			"bits", int(sc.Bits),
			"script", path)

		if err := o.Runner.Run(ctx, args); err != nil {
			return &ToolError{Filter: sc.Filter.ID, Test: sc.Test.Name, Bits: sc.Bits, Err: err}
		}
		return nil
	})
}

// withScript writes text to a fresh script file, hands its path to use and
// removes the file on every return path.
func withScript(dir, text string, use func(path string) error) (err error) {
	f, err := os.CreateTemp(dir, config.ScriptPattern)
	if err != nil {
		return fmt.Errorf("failed to create script file: %w", err)
	}
	path := f.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("failed to remove script file: %w", rmErr))
		}
	}()

	if _, err := io.WriteString(f, text); err != nil {
		f.Close()
		return fmt.Errorf("failed to write script file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write script file: %w", err)
	}

	return use(path)
}

func (o *Orchestrator) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}
